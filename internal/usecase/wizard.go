package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xavierca1/doula-crm/internal/entity"
)

type WizardStep int

const (
	StepAccount WizardStep = iota
	StepContact
	StepOpportunity
	StepReview
)

var wizardStepNames = [...]string{"account", "contact", "opportunity", "review"}

func (s WizardStep) String() string {
	if s < StepAccount || s > StepReview {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return wizardStepNames[s]
}

func ParseWizardStep(name string) (WizardStep, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range wizardStepNames {
		if n == name {
			return WizardStep(i), nil
		}
	}
	return 0, fmt.Errorf("unknown wizard step %q", name)
}

var (
	ErrStepInvalid       = errors.New("current step is not complete")
	ErrNoNextStep        = errors.New("already at the review step")
	ErrWizardNotAtReview = errors.New("conversion can only be submitted from the review step")
	ErrWizardAlreadyDone = errors.New("conversion was already submitted")
)

// ConversionDraft is the form state buffered across the wizard steps.
type ConversionDraft struct {
	LeadID            string                      `json:"leadId"`
	AccountOption     AccountOption               `json:"accountOption"`
	Account           AccountDataInput            `json:"account"`
	SelectedAccount   *entity.AccountSearchResult `json:"selectedAccount,omitempty"`
	Contact           ContactDataInput            `json:"contact"`
	CreateOpportunity bool                        `json:"createOpportunity"`
	Opportunity       OpportunityDataInput        `json:"opportunity"`
}

// StepValid is the gate for the "Next" button of step.
func (d ConversionDraft) StepValid(step WizardStep) bool {
	switch step {
	case StepAccount:
		switch d.AccountOption {
		case AccountOptionCreate:
			return !isBlank(d.Account.Name)
		case AccountOptionExisting:
			return d.SelectedAccount != nil && !isBlank(d.SelectedAccount.ID)
		}
		return false
	case StepContact:
		return !isBlank(d.Contact.FirstName) && !isBlank(d.Contact.LastName)
	case StepOpportunity:
		return !d.CreateOpportunity || !isBlank(d.Opportunity.Name)
	case StepReview:
		return true
	}
	return false
}

// Options turns the draft into the single executor call. Only the fields of the
// chosen account path and opportunity choice are carried over.
func (d ConversionDraft) Options() ConvertLeadOptions {
	contact := d.Contact
	opts := ConvertLeadOptions{
		LeadID:            d.LeadID,
		AccountOption:     d.AccountOption,
		ContactData:       &contact,
		CreateOpportunity: d.CreateOpportunity,
	}
	switch d.AccountOption {
	case AccountOptionCreate:
		account := d.Account
		opts.AccountData = &account
	case AccountOptionExisting:
		if d.SelectedAccount != nil {
			opts.ExistingAccountID = d.SelectedAccount.ID
		}
	}
	if d.CreateOpportunity {
		opp := d.Opportunity
		opts.OpportunityData = &opp
	}
	return opts
}

// ConversionWizard walks a draft through Account, Contact, Opportunity and Review.
// Going back never clears what was typed.
type ConversionWizard struct {
	Draft     ConversionDraft
	step      WizardStep
	submitted bool
}

// NewConversionWizard seeds a draft with the preview defaults.
func NewConversionWizard(preview *ConversionPreview) *ConversionWizard {
	w := &ConversionWizard{
		Draft: ConversionDraft{AccountOption: AccountOptionCreate},
	}
	if preview == nil {
		return w
	}
	if preview.Lead != nil {
		w.Draft.LeadID = preview.Lead.ID
	}
	w.Draft.Account = preview.MappedAccountData
	w.Draft.Contact = preview.MappedContactData
	w.Draft.Opportunity = preview.SuggestedOpportunity
	if w.Draft.Opportunity.Name == "" {
		w.Draft.Opportunity.Name = preview.SuggestedOpportunityName
	}
	return w
}

func (w *ConversionWizard) Current() WizardStep {
	return w.step
}

func (w *ConversionWizard) CanAdvance() bool {
	return w.step < StepReview && w.Draft.StepValid(w.step)
}

func (w *ConversionWizard) Next() error {
	if w.step == StepReview {
		return ErrNoNextStep
	}
	if !w.Draft.StepValid(w.step) {
		return fmt.Errorf("%w: %s", ErrStepInvalid, w.step)
	}
	w.step++
	return nil
}

// Back moves one step back. It reports false on the first step.
func (w *ConversionWizard) Back() bool {
	if w.step == StepAccount {
		return false
	}
	w.step--
	return true
}

func (w *ConversionWizard) UseNewAccount(data AccountDataInput) {
	w.Draft.AccountOption = AccountOptionCreate
	w.Draft.Account = data
}

func (w *ConversionWizard) SelectAccount(result entity.AccountSearchResult) {
	w.Draft.AccountOption = AccountOptionExisting
	w.Draft.SelectedAccount = &result
}

// Submit hands the buffered draft to the converter exactly once.
func (w *ConversionWizard) Submit(ctx context.Context, converter LeadConverter) (*ConvertLeadOutput, error) {
	if w.submitted {
		return nil, ErrWizardAlreadyDone
	}
	if w.step != StepReview {
		return nil, ErrWizardNotAtReview
	}
	out, err := converter.Execute(ctx, w.Draft.Options())
	if err != nil {
		return nil, err
	}
	w.submitted = true
	return out, nil
}
