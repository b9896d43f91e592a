package entity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	AccountTypeHousehold    = "household"
	AccountTypeOrganization = "organization"

	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
	AccountStatusProspect = "prospect"
)

// Account is a household or organization that owns Contacts and Opportunities.
type Account struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"account_type"`
	Status           string    `json:"status"`
	PrimaryContactID string    `json:"primary_contact_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewAccount(name, accountType, status string) *Account {
	if accountType == "" {
		accountType = AccountTypeHousehold
	}
	if status == "" {
		status = AccountStatusActive
	}
	now := time.Now()
	return &Account{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Type:      accountType,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AccountSearchResult is the row shape returned to the conversion account picker.
type AccountSearchResult struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Type               string `json:"account_type"`
	Status             string `json:"status"`
	PrimaryContactName string `json:"primary_contact_name,omitempty"`
}

type AccountRepositoryInterface interface {
	Create(ctx context.Context, a *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	SearchByName(ctx context.Context, term string, limit int) ([]AccountSearchResult, error)
	// SetPrimaryContactIfEmpty leaves accounts that already have a primary contact alone.
	SetPrimaryContactIfEmpty(ctx context.Context, accountID, contactID string) error
}
