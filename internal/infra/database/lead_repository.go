package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/doula-crm/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, first_name, last_name, email, phone, status,
	lead_source, utm_source, utm_medium, utm_campaign, referral_partner_id,
	estimated_value, expected_close_date, expected_due_date, service_interest,
	is_converted, converted_at, converted_contact_id, converted_account_id, converted_opportunity_id,
	created_at, updated_at`

// Upsert inserts a lead or refreshes the open lead with the same email. A converted
// lead is never touched; that case surfaces as entity.ErrLeadAlreadyConverted.
func (r *LeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO crm_leads (
			id, first_name, last_name, email, phone, status,
			lead_source, utm_source, utm_medium, utm_campaign, referral_partner_id,
			estimated_value, expected_due_date, service_interest, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (email)
		DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = COALESCE(EXCLUDED.last_name, crm_leads.last_name),
			phone = COALESCE(EXCLUDED.phone, crm_leads.phone),
			service_interest = COALESCE(EXCLUDED.service_interest, crm_leads.service_interest),
			expected_due_date = COALESCE(EXCLUDED.expected_due_date, crm_leads.expected_due_date),
			estimated_value = COALESCE(EXCLUDED.estimated_value, crm_leads.estimated_value),
			updated_at = EXCLUDED.updated_at
		WHERE crm_leads.is_converted = false
		RETURNING id, status, is_converted, created_at, updated_at
	`

	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		lead.ID,
		lead.FirstName,
		nullString(lead.LastName),
		lead.Email,
		nullString(lead.Phone),
		lead.Status,
		nullString(lead.LeadSource),
		nullString(lead.UTMSource),
		nullString(lead.UTMMedium),
		nullString(lead.UTMCampaign),
		nullString(lead.ReferralPartnerID),
		lead.EstimatedValue,
		nullTime(lead.ExpectedDueDate),
		nullString(lead.ServiceInterest),
		lead.CreatedAt,
		lead.UpdatedAt,
	).Scan(
		&lead.ID,
		&lead.Status,
		&lead.IsConverted,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// the conflicting row exists but is converted, so the WHERE filtered it out
		return entity.ErrLeadAlreadyConverted
	}
	if err != nil {
		return mapPgError("upsert lead", err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM crm_leads WHERE id = $1`

	var (
		lead                                          entity.Lead
		lastName, email, phone                        sql.NullString
		leadSource, utmSource, utmMedium, utmCampaign sql.NullString
		referralPartnerID, serviceInterest            sql.NullString
		contactID, accountID, opportunityID           sql.NullString
		closeDate, dueDate, convertedAt               sql.NullTime
	)

	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&lead.ID,
		&lead.FirstName,
		&lastName,
		&email,
		&phone,
		&lead.Status,
		&leadSource,
		&utmSource,
		&utmMedium,
		&utmCampaign,
		&referralPartnerID,
		&lead.EstimatedValue,
		&closeDate,
		&dueDate,
		&serviceInterest,
		&lead.IsConverted,
		&convertedAt,
		&contactID,
		&accountID,
		&opportunityID,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) || isMalformedInput(err) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lead %s: %w", id, err)
	}

	lead.LastName = lastName.String
	lead.Email = email.String
	lead.Phone = phone.String
	lead.LeadSource = leadSource.String
	lead.UTMSource = utmSource.String
	lead.UTMMedium = utmMedium.String
	lead.UTMCampaign = utmCampaign.String
	lead.ReferralPartnerID = referralPartnerID.String
	lead.ServiceInterest = serviceInterest.String
	lead.ExpectedCloseDate = timePtr(closeDate)
	lead.ExpectedDueDate = timePtr(dueDate)
	lead.ConvertedAt = timePtr(convertedAt)
	lead.ConvertedContactID = contactID.String
	lead.ConvertedAccountID = accountID.String
	lead.ConvertedOpportunityID = opportunityID.String

	return &lead, nil
}

// MarkConverted is a compare-and-swap on is_converted. It returns false when the
// lead was already converted (or does not exist), in which case nothing changed.
func (r *LeadRepository) MarkConverted(ctx context.Context, c entity.LeadConversion) (bool, error) {
	query := `
		UPDATE crm_leads
		SET
			is_converted = true,
			status = 'converted',
			converted_at = $2,
			converted_contact_id = $3,
			converted_account_id = $4,
			converted_opportunity_id = $5,
			updated_at = $2
		WHERE id = $1 AND is_converted = false
	`

	res, err := conn(ctx, r.DB).ExecContext(ctx, query,
		c.LeadID,
		c.ConvertedAt,
		c.ContactID,
		c.AccountID,
		nullString(c.OpportunityID),
	)
	if err != nil {
		return false, mapPgError("mark lead converted", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark lead converted: %w", err)
	}
	return n == 1, nil
}
