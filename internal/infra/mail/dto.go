package mail

import (
	"time"

	"gopkg.in/gomail.v2"
)

// ConversionNoticeData feeds the conversion notice template.
type ConversionNoticeData struct {
	ContactName   string
	ContactEmail  string
	AccountName   string
	AccountIsNew  bool
	OpportunityID string
	LeadSource    string
	ConvertedAt   time.Time
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	NotifyTo string

	send func(m *gomail.Message) error
}
