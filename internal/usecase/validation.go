package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// structErrors runs the tag rules and turns them into ValidationErrors keyed by json path.
func structErrors(s any) []ValidationError {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{"input", err.Error()}}
	}

	var out []ValidationError
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fieldPath(fe.Namespace()), Message: tagMessage(fe)})
	}
	return out
}

func fieldPath(namespace string) string {
	// drop the root struct name: "ConvertLeadOptions.contactData.first_name"
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is invalid"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a valid date (YYYY-MM-DD)"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	case "uuid":
		return "must be a valid UUID"
	}
	return "is invalid"
}

// ValidateConvertLeadOptions re-checks on the server what the wizard gates on the client.
func ValidateConvertLeadOptions(opts ConvertLeadOptions) []ValidationError {
	tagged := opts
	if !opts.CreateOpportunity {
		// leftover wizard input for an opportunity that will not be created
		tagged.OpportunityData = nil
	}
	errs := structErrors(tagged)

	switch opts.AccountOption {
	case AccountOptionCreate:
		if opts.AccountData == nil {
			errs = append(errs, ValidationError{"accountData", "is required when accountOption is create"})
		} else if isBlank(opts.AccountData.Name) && !hasField(errs, "accountData.name") {
			errs = append(errs, ValidationError{"accountData.name", "is required"})
		}
		if strings.TrimSpace(opts.ExistingAccountID) != "" {
			errs = append(errs, ValidationError{"existingAccountId", "must be empty when accountOption is create"})
		}
	case AccountOptionExisting:
		if isBlank(opts.ExistingAccountID) {
			errs = append(errs, ValidationError{"existingAccountId", "is required when accountOption is existing"})
		}
		if opts.AccountData != nil {
			errs = append(errs, ValidationError{"accountData", "must be empty when accountOption is existing"})
		}
	}

	if c := opts.ContactData; c != nil {
		if isBlank(c.FirstName) && !hasField(errs, "contactData.first_name") {
			errs = append(errs, ValidationError{"contactData.first_name", "is required"})
		}
		if isBlank(c.LastName) && !hasField(errs, "contactData.last_name") {
			errs = append(errs, ValidationError{"contactData.last_name", "is required"})
		}
	}

	if opts.CreateOpportunity {
		o := opts.OpportunityData
		if o == nil || isBlank(o.Name) {
			errs = append(errs, ValidationError{"opportunityData.name", "is required when createOpportunity is true"})
		}
		if o != nil {
			if o.Stage != "" && !o.Stage.IsOpen() {
				errs = append(errs, ValidationError{"opportunityData.stage", "must be one of: qualification, needs_analysis, proposal, negotiation"})
			}
			if o.Amount.Valid && o.Amount.Decimal.IsNegative() {
				errs = append(errs, ValidationError{"opportunityData.amount", "must not be negative"})
			}
		}
	}

	return errs
}

func ValidateCaptureLeadInput(input CaptureLeadInput) []ValidationError {
	errs := structErrors(input)
	if isBlank(input.FirstName) && !hasField(errs, "first_name") {
		errs = append(errs, ValidationError{"first_name", "is required"})
	}
	if input.EstimatedValue.Valid && input.EstimatedValue.Decimal.LessThan(decimal.Zero) {
		errs = append(errs, ValidationError{"estimated_value", "must not be negative"})
	}
	return errs
}

func hasField(errs []ValidationError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func parseDate(s string) *time.Time {
	if isBlank(s) {
		return nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
