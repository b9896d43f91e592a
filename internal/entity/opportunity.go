package entity

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OpportunityStage string

const (
	StageQualification OpportunityStage = "qualification"
	StageNeedsAnalysis  OpportunityStage = "needs_analysis"
	StageProposal       OpportunityStage = "proposal"
	StageNegotiation    OpportunityStage = "negotiation"
	StageClosedWon      OpportunityStage = "closed_won"
	StageClosedLost     OpportunityStage = "closed_lost"
)

// IsOpen reports whether the stage can be used when an opportunity is created.
func (s OpportunityStage) IsOpen() bool {
	switch s {
	case StageQualification, StageNeedsAnalysis, StageProposal, StageNegotiation:
		return true
	}
	return false
}

type Opportunity struct {
	ID          string              `json:"id"`
	AccountID   string              `json:"account_id"`
	ContactID   string              `json:"contact_id"`
	Name        string              `json:"name"`
	Stage       OpportunityStage    `json:"stage"`
	Amount      decimal.NullDecimal `json:"amount"`
	CloseDate   *time.Time          `json:"close_date,omitempty"`
	ServiceType string              `json:"service_type,omitempty"`
	LeadSource  string              `json:"lead_source,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type OpportunityRepositoryInterface interface {
	Create(ctx context.Context, o *Opportunity) error
}
