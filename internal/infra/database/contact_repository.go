package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/doula-crm/internal/entity"
)

type ContactRepository struct {
	DB *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{DB: db}
}

func (r *ContactRepository) Create(ctx context.Context, c *entity.Contact) error {
	query := `
		INSERT INTO crm_contacts (
			id, account_id, first_name, last_name, email, phone, expected_due_date,
			lead_source, utm_source, utm_medium, utm_campaign, referral_partner_id,
			converted_from_lead_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		c.ID,
		c.AccountID,
		c.FirstName,
		c.LastName,
		nullString(c.Email),
		nullString(c.Phone),
		nullTime(c.ExpectedDueDate),
		nullString(c.LeadSource),
		nullString(c.UTMSource),
		nullString(c.UTMMedium),
		nullString(c.UTMCampaign),
		nullString(c.ReferralPartnerID),
		nullString(c.ConvertedFromLeadID),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return mapPgError("create contact", err)
	}
	return nil
}
