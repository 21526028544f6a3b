package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

const (
	codeBadRequest  = "bad_request"
	codeNotFound    = "not_found"
	codeNotLocal    = "not_local"
	codeValidation  = "validation_error"
	codeUpstream    = "upstream_error"
	codeStorage     = "storage_error"
	codeInternal    = "internal_error"
	codeMalformedID = "invalid_id"
)

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	writeJSON(w, httpStatus, APIErrorResponse{
		Errors: []APIErrorDetail{{Code: code, Status: strconv.Itoa(httpStatus), Detail: detail}},
	})
}

// writeValidationError reports every invalid field as its own error entry.
func writeValidationError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		WriteAPIError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
		return
	}

	status := strconv.Itoa(http.StatusUnprocessableEntity)
	resp := APIErrorResponse{Errors: make([]APIErrorDetail, 0, len(ve.Fields))}
	for _, f := range ve.Fields {
		resp.Errors = append(resp.Errors, APIErrorDetail{Code: codeValidation, Status: status, Detail: f.Field + " " + f.Message})
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
