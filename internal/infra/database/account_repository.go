package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xavierca1/doula-crm/internal/entity"
)

type AccountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	query := `
		INSERT INTO crm_accounts (id, name, account_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query, a.ID, a.Name, a.Type, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return mapPgError("create account", err)
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	query := `
		SELECT id, name, account_type, status, primary_contact_id, created_at, updated_at
		FROM crm_accounts
		WHERE id = $1
	`

	var a entity.Account
	var primaryContactID sql.NullString

	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Name, &a.Type, &a.Status, &primaryContactID, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) || isMalformedInput(err) {
		return nil, entity.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account %s: %w", id, err)
	}

	a.PrimaryContactID = primaryContactID.String
	return &a, nil
}

// SearchByName is a case-insensitive substring match on the account name.
func (r *AccountRepository) SearchByName(ctx context.Context, term string, limit int) ([]entity.AccountSearchResult, error) {
	query := `
		SELECT
			a.id,
			a.name,
			a.account_type,
			a.status,
			COALESCE(TRIM(c.first_name || ' ' || c.last_name), '')
		FROM crm_accounts a
		LEFT JOIN crm_contacts c ON c.id = a.primary_contact_id
		WHERE a.name ILIKE $1 ESCAPE '\'
		ORDER BY a.name ASC
		LIMIT $2
	`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, "%"+escapeLike(term)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	defer rows.Close()

	results := []entity.AccountSearchResult{}
	for rows.Next() {
		var res entity.AccountSearchResult
		if err := rows.Scan(&res.ID, &res.Name, &res.Type, &res.Status, &res.PrimaryContactName); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	return results, nil
}

func (r *AccountRepository) SetPrimaryContactIfEmpty(ctx context.Context, accountID, contactID string) error {
	query := `
		UPDATE crm_accounts
		SET primary_contact_id = $2, updated_at = NOW()
		WHERE id = $1 AND primary_contact_id IS NULL
	`
	if _, err := conn(ctx, r.DB).ExecContext(ctx, query, accountID, contactID); err != nil {
		return mapPgError("set primary contact", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
