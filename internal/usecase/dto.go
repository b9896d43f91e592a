package usecase

import (
	"github.com/shopspring/decimal"
	"github.com/xavierca1/doula-crm/internal/entity"
)

type AccountOption string

const (
	AccountOptionCreate   AccountOption = "create"
	AccountOptionExisting AccountOption = "existing"
)

// Dates travel as YYYY-MM-DD strings, the way the wizard's date inputs send them.
const dateLayout = "2006-01-02"

type AccountDataInput struct {
	Name   string `json:"name" validate:"required"`
	Type   string `json:"account_type,omitempty" validate:"omitempty,oneof=household organization"`
	Status string `json:"status,omitempty" validate:"omitempty,oneof=active inactive prospect"`
}

type ContactDataInput struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string `json:"phone,omitempty"`
	ExpectedDueDate string `json:"expected_due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type OpportunityDataInput struct {
	Name        string                  `json:"name"`
	Stage       entity.OpportunityStage `json:"stage,omitempty"`
	Amount      decimal.NullDecimal     `json:"amount" validate:"-"`
	CloseDate   string                  `json:"close_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ServiceType string                  `json:"service_type,omitempty"`
}

// ConvertLeadOptions is everything the wizard buffered before the final confirmation.
type ConvertLeadOptions struct {
	LeadID            string                `json:"leadId" validate:"required"`
	AccountOption     AccountOption         `json:"accountOption" validate:"required,oneof=create existing"`
	AccountData       *AccountDataInput     `json:"accountData,omitempty"`
	ExistingAccountID string                `json:"existingAccountId,omitempty"`
	ContactData       *ContactDataInput     `json:"contactData" validate:"required"`
	CreateOpportunity bool                  `json:"createOpportunity"`
	OpportunityData   *OpportunityDataInput `json:"opportunityData,omitempty"`
}

type ConvertLeadOutput struct {
	Success        bool   `json:"success"`
	ContactID      string `json:"contactId"`
	AccountID      string `json:"accountId"`
	AccountCreated bool   `json:"accountCreated"`
	OpportunityID  string `json:"opportunityId,omitempty"`
}

// ConversionPreview holds the non-binding defaults shown when the wizard opens.
type ConversionPreview struct {
	Lead                     *entity.Lead         `json:"lead"`
	MappedContactData        ContactDataInput     `json:"mappedContactData"`
	MappedAccountData        AccountDataInput     `json:"mappedAccountData"`
	SuggestedOpportunityName string               `json:"suggestedOpportunityName"`
	SuggestedOpportunity     OpportunityDataInput `json:"suggestedOpportunity"`
	AlreadyConverted         bool                 `json:"alreadyConverted"`
}

type CaptureLeadInput struct {
	FirstName         string              `json:"first_name" validate:"required,max=100"`
	LastName          string              `json:"last_name" validate:"max=100"`
	Email             string              `json:"email" validate:"required,email"`
	Phone             string              `json:"phone,omitempty"`
	LeadSource        string              `json:"lead_source,omitempty"`
	UTMSource         string              `json:"utm_source,omitempty"`
	UTMMedium         string              `json:"utm_medium,omitempty"`
	UTMCampaign       string              `json:"utm_campaign,omitempty"`
	ReferralPartnerID string              `json:"referral_partner_id,omitempty" validate:"omitempty,uuid"`
	ServiceInterest   string              `json:"service_interest,omitempty"`
	ExpectedDueDate   string              `json:"expected_due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EstimatedValue    decimal.NullDecimal `json:"estimated_value" validate:"-"`
}

type CaptureLeadOutput struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	IsConverted bool   `json:"is_converted"`
}
