package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/doula-crm/internal/entity"
)

func janePreview() *ConversionPreview {
	lead := &entity.Lead{ID: "lead-1", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}
	opp := SuggestOpportunityData(lead)
	return &ConversionPreview{
		Lead:                     lead,
		MappedContactData:        MapLeadToContactData(lead),
		MappedAccountData:        MapLeadToAccountData(lead),
		SuggestedOpportunityName: opp.Name,
		SuggestedOpportunity:     opp,
	}
}

func TestWizard_SeededFromPreview(t *testing.T) {
	w := NewConversionWizard(janePreview())

	assert.Equal(t, StepAccount, w.Current())
	assert.Equal(t, "lead-1", w.Draft.LeadID)
	assert.Equal(t, AccountOptionCreate, w.Draft.AccountOption)
	assert.Equal(t, "Doe Family", w.Draft.Account.Name)
	assert.Equal(t, "Jane", w.Draft.Contact.FirstName)
	assert.Equal(t, "Doe Birth Package", w.Draft.Opportunity.Name)
	assert.False(t, w.Draft.CreateOpportunity)
}

func TestWizard_StepGating(t *testing.T) {
	w := NewConversionWizard(janePreview())

	w.Draft.Account.Name = " "
	assert.False(t, w.CanAdvance())
	assert.ErrorIs(t, w.Next(), ErrStepInvalid)
	assert.Equal(t, StepAccount, w.Current())

	w.SelectAccount(entity.AccountSearchResult{ID: "acc_123", Name: "Doe Household"})
	require.NoError(t, w.Next())
	assert.Equal(t, StepContact, w.Current())

	w.Draft.Contact.LastName = ""
	assert.ErrorIs(t, w.Next(), ErrStepInvalid)
	w.Draft.Contact.LastName = "Doe"
	require.NoError(t, w.Next())

	w.Draft.CreateOpportunity = true
	w.Draft.Opportunity.Name = ""
	assert.ErrorIs(t, w.Next(), ErrStepInvalid)
	w.Draft.CreateOpportunity = false
	require.NoError(t, w.Next())

	assert.Equal(t, StepReview, w.Current())
	assert.False(t, w.CanAdvance())
	assert.ErrorIs(t, w.Next(), ErrNoNextStep)
}

func TestWizard_BackKeepsDraft(t *testing.T) {
	w := NewConversionWizard(janePreview())
	require.NoError(t, w.Next())
	w.Draft.Contact.Phone = "+16502530000"
	require.NoError(t, w.Next())

	assert.True(t, w.Back())
	assert.True(t, w.Back())
	assert.False(t, w.Back())

	assert.Equal(t, StepAccount, w.Current())
	assert.Equal(t, "+16502530000", w.Draft.Contact.Phone)
	assert.Equal(t, "Doe Family", w.Draft.Account.Name)
}

func TestWizard_SubmitOnlyFromReviewAndOnce(t *testing.T) {
	w := NewConversionWizard(janePreview())
	converter := new(MockLeadConverter)
	out := &ConvertLeadOutput{Success: true, ContactID: "contact-1", AccountID: "acc-1", AccountCreated: true}
	converter.On("Execute", mock.Anything, mock.MatchedBy(func(o ConvertLeadOptions) bool {
		return o.LeadID == "lead-1" &&
			o.AccountOption == AccountOptionCreate &&
			o.AccountData != nil && o.AccountData.Name == "Doe Family" &&
			o.ExistingAccountID == "" &&
			o.OpportunityData == nil
	})).Return(out, nil).Once()

	_, err := w.Submit(context.Background(), converter)
	assert.ErrorIs(t, err, ErrWizardNotAtReview)

	for w.Current() != StepReview {
		require.NoError(t, w.Next())
	}

	got, err := w.Submit(context.Background(), converter)
	require.NoError(t, err)
	assert.Equal(t, out, got)

	_, err = w.Submit(context.Background(), converter)
	assert.ErrorIs(t, err, ErrWizardAlreadyDone)
	converter.AssertExpectations(t)
}

func TestWizard_FailedSubmitCanRetry(t *testing.T) {
	w := NewConversionWizard(janePreview())
	for w.Current() != StepReview {
		require.NoError(t, w.Next())
	}
	converter := new(MockLeadConverter)
	converter.On("Execute", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()
	converter.On("Execute", mock.Anything, mock.Anything).Return(&ConvertLeadOutput{Success: true}, nil).Once()

	_, err := w.Submit(context.Background(), converter)
	require.Error(t, err)
	_, err = w.Submit(context.Background(), converter)
	require.NoError(t, err)
}

func TestDraftOptions_CarriesOnlyChosenPath(t *testing.T) {
	w := NewConversionWizard(janePreview())
	w.SelectAccount(entity.AccountSearchResult{ID: "acc_123"})
	w.Draft.CreateOpportunity = true

	opts := w.Draft.Options()

	assert.Equal(t, AccountOptionExisting, opts.AccountOption)
	assert.Equal(t, "acc_123", opts.ExistingAccountID)
	assert.Nil(t, opts.AccountData)
	require.NotNil(t, opts.OpportunityData)
	assert.Equal(t, "Doe Birth Package", opts.OpportunityData.Name)
	assert.Empty(t, ValidateConvertLeadOptions(opts))

	w.UseNewAccount(AccountDataInput{Name: "Doe-Smith Family"})
	opts = w.Draft.Options()
	assert.Equal(t, AccountOptionCreate, opts.AccountOption)
	assert.Empty(t, opts.ExistingAccountID)
	assert.Equal(t, "Doe-Smith Family", opts.AccountData.Name)
}

func TestParseWizardStep(t *testing.T) {
	step, err := ParseWizardStep(" Opportunity ")
	require.NoError(t, err)
	assert.Equal(t, StepOpportunity, step)
	assert.Equal(t, "opportunity", step.String())

	_, err = ParseWizardStep("payment")
	assert.Error(t, err)
	assert.Equal(t, "step(9)", WizardStep(9).String())
}
