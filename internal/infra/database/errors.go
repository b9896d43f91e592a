package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/xavierca1/doula-crm/internal/entity"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextInput    = "22P02"
)

// isMalformedInput reports whether Postgres rejected a value for its column type,
// e.g. "acc_123" for a UUID id.
func isMalformedInput(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextInput
}

// mapPgError turns constraint violations into entity sentinels and wraps the rest.
func mapPgError(op string, err error) error {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, entity.ErrDuplicate, pgErr.Constraint)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w (%s)", op, entity.ErrInvalidReference, pgErr.Constraint)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
