package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/doula-crm/internal/logging"
	"github.com/xavierca1/doula-crm/internal/usecase"
)

type LeadCapturer interface {
	Execute(ctx context.Context, input usecase.CaptureLeadInput) (*usecase.CaptureLeadOutput, error)
}

type LeadHandler struct {
	Capture     LeadCapturer
	rateLimiter *RateLimiter
	logger      logrus.FieldLogger
}

func NewLeadHandler(capture LeadCapturer, limiter *RateLimiter, logger logrus.FieldLogger) *LeadHandler {
	if limiter == nil {
		limiter = NewRateLimiter(10, 3) // 10 req/min per IP
	}
	return &LeadHandler{
		Capture:     capture,
		rateLimiter: limiter,
		logger:      logging.OrDiscard(logger),
	}
}

type CaptureLeadResponse struct {
	Success     bool                      `json:"success"`
	LeadID      string                    `json:"leadId,omitempty"`
	IsConverted bool                      `json:"isConverted,omitempty"`
	Message     string                    `json:"message,omitempty"`
	Code        string                    `json:"code,omitempty"`
	Fields      []usecase.ValidationError `json:"fields,omitempty"`
}

// CaptureLead handles POST /leads from the public intake form.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, CaptureLeadResponse{
			Message: "Too many requests. Please try again later.",
		})
		return
	}

	var input usecase.CaptureLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, CaptureLeadResponse{Message: "Invalid JSON", Code: "INVALID_JSON"})
		return
	}

	out, err := h.Capture.Execute(r.Context(), input)
	if err != nil {
		status, code, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithError(err).Error("lead capture failed")
			msg = "Failed to capture lead"
		}
		writeJSON(w, status, CaptureLeadResponse{Message: msg, Code: code, Fields: validationFields(err)})
		return
	}

	writeJSON(w, http.StatusOK, CaptureLeadResponse{
		Success:     true,
		LeadID:      out.ID,
		IsConverted: out.IsConverted,
	})
}
