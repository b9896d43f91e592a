package entity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const EventLeadConverted = "lead.converted"

// OutboxEvent is written in the same transaction as the change it describes and
// relayed to the broker afterwards.
type OutboxEvent struct {
	ID          string
	EventType   string
	AggregateID string
	Payload     json.RawMessage
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	PublishedAt *time.Time
}

func NewOutboxEvent(eventType, aggregateID string, payload any) (*OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		ID:          uuid.New().String(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     body,
		CreatedAt:   time.Now(),
	}, nil
}

// LeadConvertedEvent is the payload of a lead.converted event.
type LeadConvertedEvent struct {
	LeadID        string    `json:"lead_id"`
	ContactID     string    `json:"contact_id"`
	AccountID     string    `json:"account_id"`
	AccountName   string    `json:"account_name"`
	AccountIsNew  bool      `json:"account_is_new"`
	OpportunityID string    `json:"opportunity_id,omitempty"`
	ContactName   string    `json:"contact_name"`
	ContactEmail  string    `json:"contact_email,omitempty"`
	LeadSource    string    `json:"lead_source,omitempty"`
	ConvertedAt   time.Time `json:"converted_at"`
}

type OutboxRepositoryInterface interface {
	Enqueue(ctx context.Context, e *OutboxEvent) error
	// ClaimPending locks up to limit unpublished events for the caller's transaction.
	ClaimPending(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
}
