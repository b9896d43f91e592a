package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/xavierca1/doula-crm/internal/entity"
	"gopkg.in/gomail.v2"
)

var conversionNoticeTmpl = template.Must(template.New("conversion_notice").Parse(`<p>{{.ContactName}} has been converted from a lead.</p>
<ul>
  <li>Household: {{.AccountName}}{{if .AccountIsNew}} (new){{end}}</li>
  {{- if .ContactEmail}}
  <li>Email: {{.ContactEmail}}</li>
  {{- end}}
  {{- if .LeadSource}}
  <li>Lead source: {{.LeadSource}}</li>
  {{- end}}
  {{- if .OpportunityID}}
  <li>An opportunity was opened for this client.</li>
  {{- end}}
  <li>Converted at: {{.ConvertedAt.Format "2006-01-02 15:04 MST"}}</li>
</ul>
`))

func NewEmailSender(host string, port int, user, password, from, notifyTo string) *EmailSender {
	s := &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		NotifyTo: notifyTo,
	}
	s.send = func(m *gomail.Message) error {
		return gomail.NewDialer(s.Host, s.Port, s.User, s.Password).DialAndSend(m)
	}
	return s
}

// SendConversionNotice mails the practice inbox about a converted lead.
func (s *EmailSender) SendConversionNotice(ctx context.Context, event entity.LeadConvertedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := ConversionNoticeData{
		ContactName:   event.ContactName,
		ContactEmail:  event.ContactEmail,
		AccountName:   event.AccountName,
		AccountIsNew:  event.AccountIsNew,
		OpportunityID: event.OpportunityID,
		LeadSource:    event.LeadSource,
		ConvertedAt:   event.ConvertedAt,
	}

	var body bytes.Buffer
	if err := conversionNoticeTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render conversion notice: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.NotifyTo)
	m.SetHeader("Subject", fmt.Sprintf("New client: %s", event.ContactName))
	m.SetBody("text/html", body.String())

	if err := s.send(m); err != nil {
		return fmt.Errorf("send conversion notice: %w", err)
	}
	return nil
}
