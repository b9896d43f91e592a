package entity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lead is a prospective client captured by an intake form or entered by staff.
type Lead struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Status    string `json:"status"` // new, contacted, qualified, converted

	// Marketing attribution, carried forward to the Contact on conversion
	LeadSource        string `json:"lead_source,omitempty"`
	UTMSource         string `json:"utm_source,omitempty"`
	UTMMedium         string `json:"utm_medium,omitempty"`
	UTMCampaign       string `json:"utm_campaign,omitempty"`
	ReferralPartnerID string `json:"referral_partner_id,omitempty"`

	EstimatedValue    decimal.NullDecimal `json:"estimated_value"`
	ExpectedCloseDate *time.Time          `json:"expected_close_date,omitempty"`
	ExpectedDueDate   *time.Time          `json:"expected_due_date,omitempty"`
	ServiceInterest   string              `json:"service_interest,omitempty"`

	IsConverted            bool       `json:"is_converted"`
	ConvertedAt            *time.Time `json:"converted_at,omitempty"`
	ConvertedContactID     string     `json:"converted_contact_id,omitempty"`
	ConvertedAccountID     string     `json:"converted_account_id,omitempty"`
	ConvertedOpportunityID string     `json:"converted_opportunity_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	LeadStatusNew       = "new"
	LeadStatusConverted = "converted"
)

func NewLead(firstName, lastName, email, phone string) *Lead {
	now := time.Now()
	return &Lead{
		ID:        uuid.New().String(),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Phone:     strings.TrimSpace(phone),
		Status:    LeadStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// LeadConversion holds the ids written onto a Lead when it flips to converted.
type LeadConversion struct {
	LeadID        string
	ContactID     string
	AccountID     string
	OpportunityID string
	ConvertedAt   time.Time
}

type LeadRepositoryInterface interface {
	Upsert(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	// MarkConverted only touches unconverted leads; it reports whether the row flipped.
	MarkConverted(ctx context.Context, c LeadConversion) (bool, error)
}
