package usecase

import (
	"errors"
	"fmt"

	"github.com/xavierca1/doula-crm/internal/entity"
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeAlreadyConverted = "LEAD_ALREADY_CONVERTED"
	CodeDuplicate        = "DUPLICATE"
	CodeDatabase         = "DATABASE_ERROR"
)

// DomainError is a business rule failure the caller can act on.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps store or infrastructure failures.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// AlreadyConvertedError is returned when a conversion targets a lead that has
// already been converted. ContactID points at the contact created back then.
type AlreadyConvertedError struct {
	LeadID    string
	ContactID string
}

func (e *AlreadyConvertedError) Error() string {
	return fmt.Sprintf("lead %s was already converted", e.LeadID)
}

func (e *AlreadyConvertedError) Is(target error) bool {
	return target == entity.ErrLeadAlreadyConverted
}

func newValidationError(fields []ValidationError) *DomainError {
	msg := "validation failed: "
	for i, f := range fields {
		if i > 0 {
			msg += ", "
		}
		msg += f.Field + " (" + f.Message + ")"
	}
	return &DomainError{Code: CodeValidation, Message: msg, Fields: fields}
}

func newNotFoundError(err error) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: err.Error(), Err: err}
}

func newDatabaseError(msg string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeDatabase, Message: msg, Err: err}
}
