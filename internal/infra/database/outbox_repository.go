package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/doula-crm/internal/entity"
)

// Events that keep failing stop being retried after this many attempts.
const maxOutboxAttempts = 10

type OutboxRepository struct {
	DB *sql.DB
}

func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{DB: db}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, e *entity.OutboxEvent) error {
	query := `
		INSERT INTO crm_outbox_events (id, event_type, aggregate_id, payload, attempts, created_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6)
	`
	// lib/pq would send []byte as bytea, so the JSON goes over as text
	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		e.ID, e.EventType, e.AggregateID, string(e.Payload), e.Attempts, e.CreatedAt,
	)
	if err != nil {
		return mapPgError("enqueue outbox event", err)
	}
	return nil
}

// ClaimPending must run inside a transaction: the rows stay locked until it ends,
// so concurrent relays skip them.
func (r *OutboxRepository) ClaimPending(ctx context.Context, limit int) ([]*entity.OutboxEvent, error) {
	query := `
		SELECT id, event_type, aggregate_id, payload, attempts, created_at
		FROM crm_outbox_events
		WHERE published_at IS NULL AND attempts < $1
		ORDER BY created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, maxOutboxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("claim outbox events: %w", err)
	}
	defer rows.Close()

	var events []*entity.OutboxEvent
	for rows.Next() {
		e := &entity.OutboxEvent{}
		var payload []byte
		if err := rows.Scan(&e.ID, &e.EventType, &e.AggregateID, &payload, &e.Attempts, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		e.Payload = payload
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE crm_outbox_events SET published_at = $2, attempts = attempts + 1 WHERE id = $1`
	if _, err := conn(ctx, r.DB).ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("mark outbox event %s published: %w", id, err)
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	query := `UPDATE crm_outbox_events SET attempts = attempts + 1, last_error = $2 WHERE id = $1`
	if _, err := conn(ctx, r.DB).ExecContext(ctx, query, id, reason); err != nil {
		return fmt.Errorf("mark outbox event %s failed: %w", id, err)
	}
	return nil
}
