package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/doula-crm/internal/infra/http/middleware"
	"github.com/xavierca1/doula-crm/internal/usecase"
)

// DataResponse is the {data, error} envelope used by the read endpoints.
type DataResponse struct {
	Data  any     `json:"data"`
	Error *string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, DataResponse{Data: data})
}

func writeDataError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, DataResponse{Error: &message})
}

// errorStatus maps use case errors to an HTTP status, a code and a client-safe message.
func errorStatus(err error) (int, string, string) {
	var conflict *usecase.AlreadyConvertedError
	if errors.As(err, &conflict) {
		return http.StatusConflict, usecase.CodeAlreadyConverted, "Lead has already been converted"
	}

	var de *usecase.DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case usecase.CodeValidation:
			return http.StatusBadRequest, de.Code, de.Message
		case usecase.CodeNotFound:
			return http.StatusNotFound, de.Code, de.Message
		case usecase.CodeDuplicate:
			return http.StatusConflict, de.Code, "A record with the same unique value already exists"
		}
		return http.StatusUnprocessableEntity, de.Code, de.Message
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		middleware.CaptureError(err, map[string]any{"code": te.Code})
		return http.StatusInternalServerError, te.Code, te.Message
	}

	middleware.CaptureError(err, nil)
	return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
}

func validationFields(err error) []usecase.ValidationError {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}
