package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/techpostia/techpost/internal/billing"
	"github.com/techpostia/techpost/internal/entitlement"
	"github.com/techpostia/techpost/internal/github"
	"github.com/techpostia/techpost/internal/logging"
	"github.com/techpostia/techpost/internal/post"
	"github.com/techpostia/techpost/internal/services"
)

// Attachments travel inline as base64, so bodies can be large.
const maxBodyBytes = 20 << 20

const (
	codeUnauthorized  = "unauthorized"
	codeQuotaExceeded = "quota_exceeded"
	codeInvalid       = "invalid_request"
	codeNotFound      = "not_found"
	codeRateLimited   = "rate_limited"
	codeInternal      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeServiceError maps domain errors onto the HTTP error taxonomy. Anything
// unrecognised is an upstream failure and gets a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, stage, message string) {
	logging.EnrichError(r.Context(), err, stage)

	var validationErr *services.ValidationError
	var asaasErr *billing.AsaasError

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		writeJSONError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())
	case errors.Is(err, entitlement.ErrQuotaExceeded):
		writeJSONError(w, http.StatusForbidden, codeQuotaExceeded, entitlement.ErrQuotaExceeded.Error())
	case errors.As(err, &validationErr):
		writeJSONError(w, http.StatusBadRequest, codeInvalid, validationErr.Error())
	case errors.Is(err, billing.ErrMissingTaxID), errors.Is(err, billing.ErrInvalidTaxID),
		errors.Is(err, billing.ErrMissingUserData):
		writeJSONError(w, http.StatusBadRequest, codeInvalid, err.Error())
	case errors.As(err, &asaasErr):
		writeJSONError(w, http.StatusBadRequest, codeInvalid, asaasErr.Description)
	case errors.Is(err, github.ErrUserNotFound):
		writeJSONError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, post.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, codeNotFound, err.Error())
	default:
		log.Error().Err(err).Str("stage", stage).Str("path", r.URL.Path).Msg("Request failed")
		writeJSONError(w, http.StatusInternalServerError, codeInternal, message)
	}
}
