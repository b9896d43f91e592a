package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/doula-crm/internal/entity"
)

func seedJaneDoe(s *memStore) {
	s.leads["lead-1"] = entity.Lead{
		ID:          "lead-1",
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		Status:      entity.LeadStatusNew,
		LeadSource:  "website",
		UTMSource:   "google",
		UTMCampaign: "spring",
	}
}

func seedAcc123(s *memStore) {
	s.accounts["acc_123"] = entity.Account{
		ID:     "acc_123",
		Name:   "Doe Household",
		Type:   entity.AccountTypeHousehold,
		Status: entity.AccountStatusActive,
	}
}

func createOptions() ConvertLeadOptions {
	return ConvertLeadOptions{
		LeadID:            "lead-1",
		AccountOption:     AccountOptionCreate,
		AccountData:       &AccountDataInput{Name: "Doe Family", Type: "household", Status: "active"},
		ContactData:       &ContactDataInput{FirstName: "Jane", LastName: "Doe", Email: "Jane@Example.com"},
		CreateOpportunity: true,
		OpportunityData: &OpportunityDataInput{
			Name:  "Doe Birth Package",
			Stage: entity.StageQualification,
		},
	}
}

func existingOptions() ConvertLeadOptions {
	return ConvertLeadOptions{
		LeadID:            "lead-1",
		AccountOption:     AccountOptionExisting,
		ExistingAccountID: "acc_123",
		ContactData:       &ContactDataInput{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
		CreateOpportunity: false,
	}
}

func onlyValue[K comparable, V any](t *testing.T, m map[K]V) V {
	t.Helper()
	require.Len(t, m, 1)
	for _, v := range m {
		return v
	}
	panic("unreachable")
}

func TestConvertLead_CreateAccountWithOpportunity(t *testing.T) {
	s := newMemStore()
	seedJaneDoe(s)
	uc := s.useCase()

	cache := new(MockSearchCache)
	cache.On("Invalidate", mock.Anything).Return(nil).Once()
	uc.SearchCache = cache

	out, err := uc.Execute(context.Background(), createOptions())
	require.NoError(t, err)

	account := onlyValue(t, s.accounts)
	contact := onlyValue(t, s.contacts)
	opp := onlyValue(t, s.opportunities)

	assert.Equal(t, "Doe Family", account.Name)
	assert.Equal(t, contact.ID, account.PrimaryContactID)

	assert.Equal(t, "Jane", contact.FirstName)
	assert.Equal(t, "Doe", contact.LastName)
	assert.Equal(t, "jane@example.com", contact.Email)
	assert.Equal(t, account.ID, contact.AccountID)
	assert.Equal(t, "google", contact.UTMSource)
	assert.Equal(t, "spring", contact.UTMCampaign)
	assert.Equal(t, "lead-1", contact.ConvertedFromLeadID)

	assert.Equal(t, "Doe Birth Package", opp.Name)
	assert.Equal(t, entity.StageQualification, opp.Stage)
	assert.Equal(t, account.ID, opp.AccountID)
	assert.Equal(t, contact.ID, opp.ContactID)

	lead := s.leads["lead-1"]
	assert.True(t, lead.IsConverted)
	assert.Equal(t, entity.LeadStatusConverted, lead.Status)
	assert.NotNil(t, lead.ConvertedAt)
	assert.Equal(t, contact.ID, lead.ConvertedContactID)
	assert.Equal(t, account.ID, lead.ConvertedAccountID)
	assert.Equal(t, opp.ID, lead.ConvertedOpportunityID)

	assert.Equal(t, &ConvertLeadOutput{
		Success:        true,
		ContactID:      contact.ID,
		AccountID:      account.ID,
		AccountCreated: true,
		OpportunityID:  opp.ID,
	}, out)

	require.Len(t, s.outbox, 1)
	assert.Equal(t, entity.EventLeadConverted, s.outbox[0].EventType)
	var payload entity.LeadConvertedEvent
	require.NoError(t, json.Unmarshal(s.outbox[0].Payload, &payload))
	assert.Equal(t, "Jane Doe", payload.ContactName)
	assert.True(t, payload.AccountIsNew)

	cache.AssertExpectations(t)
}

func TestConvertLead_ExistingAccountWithoutOpportunity(t *testing.T) {
	s := newMemStore()
	seedJaneDoe(s)
	seedAcc123(s)
	uc := s.useCase()

	cache := new(MockSearchCache)
	cache.On("Invalidate", mock.Anything).Return(nil).Once()
	uc.SearchCache = cache

	out, err := uc.Execute(context.Background(), existingOptions())
	require.NoError(t, err)

	assert.Len(t, s.accounts, 1, "no account may be created")
	assert.Empty(t, s.opportunities)

	contact := onlyValue(t, s.contacts)
	assert.Equal(t, "acc_123", contact.AccountID)
	assert.Equal(t, "Jane", contact.FirstName)

	lead := s.leads["lead-1"]
	assert.True(t, lead.IsConverted)
	assert.Equal(t, "acc_123", lead.ConvertedAccountID)
	assert.Empty(t, lead.ConvertedOpportunityID)

	assert.False(t, out.AccountCreated)
	assert.Empty(t, out.OpportunityID)
	assert.Equal(t, contact.ID, s.accounts["acc_123"].PrimaryContactID)

	// the account's primary contact name changed, so cached search rows are stale
	cache.AssertExpectations(t)
}

func TestConvertLead_ExistingPrimaryContactIsKept(t *testing.T) {
	s := newMemStore()
	seedJaneDoe(s)
	seedAcc123(s)
	acc := s.accounts["acc_123"]
	acc.PrimaryContactID = "contact-partner"
	s.accounts["acc_123"] = acc

	uc := s.useCase()
	cache := new(MockSearchCache)
	uc.SearchCache = cache

	_, err := uc.Execute(context.Background(), existingOptions())
	require.NoError(t, err)

	assert.Equal(t, "contact-partner", s.accounts["acc_123"].PrimaryContactID)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestConvertLead_StaleOpportunityInputIgnoredWithoutOpportunity(t *testing.T) {
	s := newMemStore()
	seedJaneDoe(s)

	opts := createOptions()
	opts.CreateOpportunity = false
	opts.OpportunityData.CloseDate = "sometime in June"

	out, err := s.useCase().Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, out.OpportunityID)
	assert.Empty(t, s.opportunities)
}

func TestConvertLead_SecondConversionIsRejected(t *testing.T) {
	s := newMemStore()
	seedJaneDoe(s)
	seedAcc123(s)
	uc := s.useCase()

	first, err := uc.Execute(context.Background(), existingOptions())
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), createOptions())
	require.Error(t, err)

	assert.ErrorIs(t, err, entity.ErrLeadAlreadyConverted)
	var conflict *AlreadyConvertedError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ContactID, conflict.ContactID)

	assert.Len(t, s.accounts, 1)
	assert.Len(t, s.contacts, 1)
	assert.Empty(t, s.opportunities)
	assert.Len(t, s.outbox, 1)
}

func TestConvertLead_LostRaceRollsBack(t *testing.T) {
	s := newMemStore()
	seedJaneDoe(s)
	s.onMarkConverted = func(s *memStore) {
		// another request commits its conversion between our read and our update
		lead := s.leads["lead-1"]
		lead.IsConverted = true
		lead.ConvertedContactID = "contact-other"
		s.leads["lead-1"] = lead
	}

	_, err := s.useCase().Execute(context.Background(), createOptions())

	var conflict *AlreadyConvertedError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "contact-other", conflict.ContactID)

	assert.Empty(t, s.accounts)
	assert.Empty(t, s.contacts)
	assert.Empty(t, s.opportunities)
	assert.Empty(t, s.outbox)
}

func TestConvertLead_FailureAfterAccountInsertLeavesNoOrphan(t *testing.T) {
	s := newMemStore()
	seedJaneDoe(s)
	s.failContactCreate = errors.New("connection reset")

	_, err := s.useCase().Execute(context.Background(), createOptions())

	require.Error(t, err)
	assert.True(t, IsTechnicalError(err))
	assert.Empty(t, s.accounts)
	assert.Empty(t, s.contacts)
	assert.False(t, s.leads["lead-1"].IsConverted)
}

func TestConvertLead_OutboxFailureUndoesLeadFlip(t *testing.T) {
	s := newMemStore()
	seedJaneDoe(s)
	s.failOutbox = errors.New("disk full")

	_, err := s.useCase().Execute(context.Background(), createOptions())

	require.Error(t, err)
	lead := s.leads["lead-1"]
	assert.False(t, lead.IsConverted)
	assert.Empty(t, lead.ConvertedContactID)
	assert.Empty(t, s.accounts)
	assert.Empty(t, s.opportunities)
}

func TestConvertLead_ExistingAccountMissing(t *testing.T) {
	s := newMemStore()
	seedJaneDoe(s)

	_, err := s.useCase().Execute(context.Background(), existingOptions())

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeNotFound, de.Code)
	assert.ErrorIs(t, err, entity.ErrAccountNotFound)
	assert.Empty(t, s.contacts)
	assert.False(t, s.leads["lead-1"].IsConverted)
}

func TestConvertLead_LeadMissing(t *testing.T) {
	s := newMemStore()

	_, err := s.useCase().Execute(context.Background(), createOptions())

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeNotFound, de.Code)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestConvertLead_InvalidOptionsTouchNothing(t *testing.T) {
	s := newMemStore()
	seedJaneDoe(s)

	opts := createOptions()
	opts.AccountData.Name = "   "
	opts.OpportunityData.Amount = decimal.NewNullDecimal(decimal.NewFromInt(-5))

	_, err := s.useCase().Execute(context.Background(), opts)

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeValidation, de.Code)
	assert.Contains(t, de.Fields, ValidationError{"accountData.name", "is required"})
	assert.Contains(t, de.Fields, ValidationError{"opportunityData.amount", "must not be negative"})
	assert.Empty(t, s.accounts)
	assert.False(t, s.leads["lead-1"].IsConverted)
}

func TestConvertLead_OpportunityStageDefaultsToQualification(t *testing.T) {
	s := newMemStore()
	seedJaneDoe(s)

	opts := createOptions()
	opts.OpportunityData.Stage = ""
	opts.OpportunityData.Amount = decimal.NewNullDecimal(decimal.RequireFromString("2400.00"))
	opts.OpportunityData.CloseDate = "2026-08-01"

	_, err := s.useCase().Execute(context.Background(), opts)
	require.NoError(t, err)

	opp := onlyValue(t, s.opportunities)
	assert.Equal(t, entity.StageQualification, opp.Stage)
	assert.True(t, opp.Amount.Decimal.Equal(decimal.NewFromInt(2400)))
	require.NotNil(t, opp.CloseDate)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), *opp.CloseDate)
	assert.Equal(t, "website", opp.LeadSource)
}

func TestConvertLead_ConvertedLeadsAlwaysHaveContact(t *testing.T) {
	s := newMemStore()
	seedJaneDoe(s)
	seedAcc123(s)
	s.leads["lead-2"] = entity.Lead{ID: "lead-2", FirstName: "Ann", LastName: "Lee", Status: entity.LeadStatusNew}

	uc := s.useCase()
	_, err := uc.Execute(context.Background(), existingOptions())
	require.NoError(t, err)

	opts := createOptions()
	opts.LeadID = "lead-2"
	opts.CreateOpportunity = false
	opts.OpportunityData = nil
	_, err = uc.Execute(context.Background(), opts)
	require.NoError(t, err)

	for id, lead := range s.leads {
		if lead.IsConverted {
			assert.NotEmpty(t, lead.ConvertedContactID, id)
			assert.Contains(t, s.contacts, lead.ConvertedContactID, id)
		}
	}
}

func TestConvertLead_CacheInvalidationFailureIsNotFatal(t *testing.T) {
	s := newMemStore()
	seedJaneDoe(s)
	uc := s.useCase()

	cache := new(MockSearchCache)
	cache.On("Invalidate", mock.Anything).Return(errors.New("redis down"))
	uc.SearchCache = cache

	out, err := uc.Execute(context.Background(), createOptions())
	require.NoError(t, err)
	assert.True(t, out.Success)
}
