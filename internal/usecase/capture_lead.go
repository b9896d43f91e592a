package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/doula-crm/internal/entity"
	"github.com/xavierca1/doula-crm/internal/logging"
)

type CaptureLeadUseCase struct {
	Repo   entity.LeadRepositoryInterface
	Logger logrus.FieldLogger
}

func NewCaptureLeadUseCase(repo entity.LeadRepositoryInterface, logger logrus.FieldLogger) *CaptureLeadUseCase {
	return &CaptureLeadUseCase{Repo: repo, Logger: logging.OrDiscard(logger)}
}

// Execute records an intake-form submission. Submitting the same email again
// refreshes the open lead instead of creating a second one; converted leads are
// left untouched.
func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput) (*CaptureLeadOutput, error) {
	if errs := ValidateCaptureLeadInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	lead := entity.NewLead(input.FirstName, input.LastName, input.Email, NormalizePhone(input.Phone))
	lead.LeadSource = strings.TrimSpace(input.LeadSource)
	lead.UTMSource = strings.TrimSpace(input.UTMSource)
	lead.UTMMedium = strings.TrimSpace(input.UTMMedium)
	lead.UTMCampaign = strings.TrimSpace(input.UTMCampaign)
	lead.ReferralPartnerID = strings.TrimSpace(input.ReferralPartnerID)
	lead.ServiceInterest = strings.TrimSpace(input.ServiceInterest)
	lead.ExpectedDueDate = parseDate(input.ExpectedDueDate)
	lead.EstimatedValue = input.EstimatedValue

	if err := uc.Repo.Upsert(ctx, lead); err != nil {
		if errors.Is(err, entity.ErrLeadAlreadyConverted) {
			return &CaptureLeadOutput{Status: entity.LeadStatusConverted, IsConverted: true}, nil
		}
		return nil, newDatabaseError("failed to capture lead", err)
	}

	uc.Logger.WithFields(logrus.Fields{"lead_id": lead.ID, "lead_source": lead.LeadSource}).Info("lead captured")

	return &CaptureLeadOutput{ID: lead.ID, Status: lead.Status, IsConverted: lead.IsConverted}, nil
}
