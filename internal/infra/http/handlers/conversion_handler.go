package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/xavierca1/doula-crm/internal/entity"
	"github.com/xavierca1/doula-crm/internal/infra/http/middleware"
	"github.com/xavierca1/doula-crm/internal/logging"
	"github.com/xavierca1/doula-crm/internal/usecase"
)

type AccountSearcher interface {
	Execute(ctx context.Context, term string) ([]entity.AccountSearchResult, error)
}

type ConversionPreviewer interface {
	Execute(ctx context.Context, leadID string) (*usecase.ConversionPreview, error)
}

type ConversionHandler struct {
	Search      AccountSearcher
	Preview     ConversionPreviewer
	Converter   usecase.LeadConverter
	rateLimiter *RateLimiter
	logger      logrus.FieldLogger
}

// NewConversionHandler wires the lead conversion endpoints. limiter throttles the
// account search only and may be nil.
func NewConversionHandler(
	search AccountSearcher,
	preview ConversionPreviewer,
	converter usecase.LeadConverter,
	limiter *RateLimiter,
	logger logrus.FieldLogger,
) *ConversionHandler {
	return &ConversionHandler{
		Search:      search,
		Preview:     preview,
		Converter:   converter,
		rateLimiter: limiter,
		logger:      logging.OrDiscard(logger),
	}
}

type ConvertLeadResponse struct {
	Success   bool                      `json:"success"`
	ContactID string                    `json:"contactId,omitempty"`
	Error     string                    `json:"error,omitempty"`
	Code      string                    `json:"code,omitempty"`
	Fields    []usecase.ValidationError `json:"fields,omitempty"`
}

type StepValidationResponse struct {
	Step     string `json:"step"`
	Valid    bool   `json:"valid"`
	NextStep string `json:"nextStep,omitempty"`
}

// SearchAccounts handles GET /conversions/accounts?q=term.
func (h *ConversionHandler) SearchAccounts(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil && !h.rateLimiter.Allow(getClientIP(r)) {
		writeDataError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	results, err := h.Search.Execute(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		status, _, msg := errorStatus(err)
		h.logger.WithError(err).Error("account search failed")
		writeDataError(w, status, msg)
		return
	}

	writeData(w, results)
}

// GetPreview handles GET /leads/{leadId}/conversion/preview.
func (h *ConversionHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadId")

	preview, err := h.Preview.Execute(r.Context(), leadID)
	if err != nil {
		status, _, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithError(err).WithField("lead_id", leadID).Error("conversion preview failed")
		}
		writeDataError(w, status, msg)
		return
	}

	writeData(w, preview)
}

// Convert handles POST /leads/{leadId}/convert.
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var opts usecase.ConvertLeadOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		middleware.RecordConversion("invalid_request")
		writeJSON(w, http.StatusBadRequest, ConvertLeadResponse{Error: "Invalid JSON", Code: "INVALID_JSON"})
		return
	}
	opts.LeadID = chi.URLParam(r, "leadId")

	out, err := h.Converter.Execute(r.Context(), opts)
	if err != nil {
		status, code, msg := errorStatus(err)
		middleware.RecordConversion(conversionResult(code))

		resp := ConvertLeadResponse{Error: msg, Code: code, Fields: validationFields(err)}
		var conflict *usecase.AlreadyConvertedError
		if errors.As(err, &conflict) {
			resp.ContactID = conflict.ContactID
		}
		if status >= http.StatusInternalServerError {
			h.logger.WithError(err).WithField("lead_id", opts.LeadID).Error("lead conversion failed")
		}
		writeJSON(w, status, resp)
		return
	}

	middleware.RecordConversion("success")
	writeJSON(w, http.StatusOK, out)
}

// ValidateStep handles POST /leads/{leadId}/conversion/steps/{step}/validate. The body
// is the wizard draft; the answer says whether the step may be left with Next.
func (h *ConversionHandler) ValidateStep(w http.ResponseWriter, r *http.Request) {
	step, err := usecase.ParseWizardStep(chi.URLParam(r, "step"))
	if err != nil {
		writeDataError(w, http.StatusBadRequest, err.Error())
		return
	}

	var draft usecase.ConversionDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeDataError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	draft.LeadID = chi.URLParam(r, "leadId")

	resp := StepValidationResponse{Step: step.String(), Valid: draft.StepValid(step)}
	if resp.Valid && step < usecase.StepReview {
		resp.NextStep = (step + 1).String()
	}
	writeData(w, resp)
}

func conversionResult(code string) string {
	switch code {
	case usecase.CodeAlreadyConverted:
		return "already_converted"
	case usecase.CodeValidation:
		return "validation_error"
	case usecase.CodeNotFound:
		return "not_found"
	}
	return "error"
}
