package usecase

import (
	"context"

	"github.com/xavierca1/doula-crm/internal/entity"
)

// AccountSearchCache keeps recent account-picker results around for a short time.
type AccountSearchCache interface {
	Get(ctx context.Context, term string) ([]entity.AccountSearchResult, bool, error)
	Set(ctx context.Context, term string, results []entity.AccountSearchResult) error
	Invalidate(ctx context.Context) error
}

// LeadConverter is what the wizard submits to.
type LeadConverter interface {
	Execute(ctx context.Context, opts ConvertLeadOptions) (*ConvertLeadOutput, error)
}
