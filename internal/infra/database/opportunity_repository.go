package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/doula-crm/internal/entity"
)

type OpportunityRepository struct {
	DB *sql.DB
}

func NewOpportunityRepository(db *sql.DB) *OpportunityRepository {
	return &OpportunityRepository{DB: db}
}

func (r *OpportunityRepository) Create(ctx context.Context, o *entity.Opportunity) error {
	query := `
		INSERT INTO crm_opportunities (
			id, account_id, contact_id, name, stage, amount, close_date,
			service_type, lead_source, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		o.ID,
		o.AccountID,
		nullString(o.ContactID),
		o.Name,
		string(o.Stage),
		o.Amount,
		nullTime(o.CloseDate),
		nullString(o.ServiceType),
		nullString(o.LeadSource),
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return mapPgError("create opportunity", err)
	}
	return nil
}
