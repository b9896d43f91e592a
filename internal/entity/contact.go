package entity

import (
	"context"
	"time"
)

type Contact struct {
	ID              string     `json:"id"`
	AccountID       string     `json:"account_id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	ExpectedDueDate *time.Time `json:"expected_due_date,omitempty"`

	LeadSource        string `json:"lead_source,omitempty"`
	UTMSource         string `json:"utm_source,omitempty"`
	UTMMedium         string `json:"utm_medium,omitempty"`
	UTMCampaign       string `json:"utm_campaign,omitempty"`
	ReferralPartnerID string `json:"referral_partner_id,omitempty"`

	ConvertedFromLeadID string    `json:"converted_from_lead_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type ContactRepositoryInterface interface {
	Create(ctx context.Context, c *Contact) error
}
