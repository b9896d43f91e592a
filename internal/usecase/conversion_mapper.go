package usecase

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/xavierca1/doula-crm/internal/entity"
)

const defaultPhoneRegion = "US"

// MapLeadToContactData pre-fills the Contact step straight from the lead.
func MapLeadToContactData(lead *entity.Lead) ContactDataInput {
	return ContactDataInput{
		FirstName:       strings.TrimSpace(lead.FirstName),
		LastName:        strings.TrimSpace(lead.LastName),
		Email:           strings.TrimSpace(lead.Email),
		Phone:           NormalizePhone(lead.Phone),
		ExpectedDueDate: formatDate(lead.ExpectedDueDate),
	}
}

// MapLeadToAccountData suggests a new household named after the lead.
func MapLeadToAccountData(lead *entity.Lead) AccountDataInput {
	name := "New Household"
	if base := householdBase(lead); base != "" {
		name = base + " Family"
	}
	return AccountDataInput{
		Name:   name,
		Type:   entity.AccountTypeHousehold,
		Status: entity.AccountStatusActive,
	}
}

func SuggestOpportunityName(lead *entity.Lead) string {
	base := householdBase(lead)
	if base == "" {
		base = "New Client"
	}
	if service := humanize(lead.ServiceInterest); service != "" {
		return base + " - " + service
	}
	return base + " Birth Package"
}

func SuggestOpportunityData(lead *entity.Lead) OpportunityDataInput {
	return OpportunityDataInput{
		Name:        SuggestOpportunityName(lead),
		Stage:       entity.StageQualification,
		Amount:      lead.EstimatedValue,
		CloseDate:   formatDate(lead.ExpectedCloseDate),
		ServiceType: lead.ServiceInterest,
	}
}

// NormalizePhone returns the E.164 form when the number parses, otherwise the input.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func householdBase(lead *entity.Lead) string {
	if last := strings.TrimSpace(lead.LastName); last != "" {
		return last
	}
	return strings.TrimSpace(lead.FirstName)
}

// humanize turns "postpartum_doula" into "Postpartum Doula".
func humanize(s string) string {
	s = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(s))
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func buildAccount(data *AccountDataInput) *entity.Account {
	return entity.NewAccount(data.Name, data.Type, data.Status)
}

// buildContact takes the user-approved fields and carries the lead's attribution forward.
func buildContact(lead *entity.Lead, data *ContactDataInput, accountID string, now time.Time) *entity.Contact {
	return &entity.Contact{
		ID:                  uuid.New().String(),
		AccountID:           accountID,
		FirstName:           strings.TrimSpace(data.FirstName),
		LastName:            strings.TrimSpace(data.LastName),
		Email:               strings.ToLower(strings.TrimSpace(data.Email)),
		Phone:               NormalizePhone(data.Phone),
		ExpectedDueDate:     parseDate(data.ExpectedDueDate),
		LeadSource:          lead.LeadSource,
		UTMSource:           lead.UTMSource,
		UTMMedium:           lead.UTMMedium,
		UTMCampaign:         lead.UTMCampaign,
		ReferralPartnerID:   lead.ReferralPartnerID,
		ConvertedFromLeadID: lead.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func buildOpportunity(lead *entity.Lead, data *OpportunityDataInput, accountID, contactID string, now time.Time) *entity.Opportunity {
	stage := data.Stage
	if stage == "" {
		stage = entity.StageQualification
	}
	return &entity.Opportunity{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		ContactID:   contactID,
		Name:        strings.TrimSpace(data.Name),
		Stage:       stage,
		Amount:      data.Amount,
		CloseDate:   parseDate(data.CloseDate),
		ServiceType: strings.TrimSpace(data.ServiceType),
		LeadSource:  lead.LeadSource,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
