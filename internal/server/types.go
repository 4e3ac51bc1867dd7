package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heimdall-ai/heimdall/internal/apperr"
	"github.com/heimdall-ai/heimdall/models"
)

// AnalyzeEmailRequest is the payload for /analyze-email. Both fields must be
// present; empty strings are accepted.
type AnalyzeEmailRequest struct {
	Subject      *string `json:"subject" validate:"required"`
	EmailContent *string `json:"email_content" validate:"required"`
}

// MessageResponse acknowledges a rules mutation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Detail string              `json:"detail"`
	Kind   apperr.Kind         `json:"kind"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

func writeAPIJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("write response", "error", err)
	}
}

// writeError answers with the status of err's kind, unless status is non-zero.
func writeError(w http.ResponseWriter, err error, status int) {
	kind := apperr.KindOf(err)
	if status == 0 {
		status = apperr.HTTPStatus(kind)
	}

	resp := ErrorResponse{Detail: detail(err), Kind: kind}
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		resp.Fields = ve.Fields
	}
	writeJSONStatus(w, status, resp)
}

// detail is the caller-facing message: the classified message for client
// errors, the full chain for server errors.
func detail(err error) string {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		return err.Error()
	}
	if apperr.HTTPStatus(ae.Kind) < http.StatusInternalServerError && ae.Kind != apperr.KindValidation {
		return ae.Message
	}
	if ae.Kind == apperr.KindUnparseableResponse {
		slog.Warn("unparseable model reply", "cause", ae.Cause)
		return ae.Message
	}
	return ae.Error()
}
