package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/xavierca1/doula-crm/internal/entity"
)

type GetConversionPreviewUseCase struct {
	LeadRepo entity.LeadRepositoryInterface
}

func NewGetConversionPreviewUseCase(leadRepo entity.LeadRepositoryInterface) *GetConversionPreviewUseCase {
	return &GetConversionPreviewUseCase{LeadRepo: leadRepo}
}

// Execute computes the wizard defaults. Nothing is written.
func (uc *GetConversionPreviewUseCase) Execute(ctx context.Context, leadID string) (*ConversionPreview, error) {
	if strings.TrimSpace(leadID) == "" {
		return nil, newValidationError([]ValidationError{{"leadId", "is required"}})
	}

	lead, err := uc.LeadRepo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, newNotFoundError(err)
		}
		return nil, newDatabaseError("failed to load lead", err)
	}

	opportunity := SuggestOpportunityData(lead)
	return &ConversionPreview{
		Lead:                     lead,
		MappedContactData:        MapLeadToContactData(lead),
		MappedAccountData:        MapLeadToAccountData(lead),
		SuggestedOpportunityName: opportunity.Name,
		SuggestedOpportunity:     opportunity,
		AlreadyConverted:         lead.IsConverted,
	}, nil
}
