package handlers

import (
	"encoding/json"
	"net/http"

	"giveup-backend/internal/apperr"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    apperr.Code `json:"code"`
	Details any         `json:"details,omitempty"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError maps err to its HTTP status and public message. Errors
// without a code are internal and never leak their text.
func respondError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	meta := apperr.MetadataFor(code)

	resp := ErrorResponse{
		Error: meta.PublicMessage,
		Code:  code,
	}
	if appErr := apperr.As(err); appErr != nil && meta.HTTPStatus < http.StatusInternalServerError {
		if msg := appErr.Message(); msg != "" {
			resp.Error = msg
		}
		if meta.DetailsAllowed {
			resp.Details = appErr.Details()
		}
	}

	if meta.HTTPStatus >= http.StatusInternalServerError {
		log.Error().Err(err).Str("code", string(code)).Msg("Request failed")
	}

	respondJSON(w, meta.HTTPStatus, resp)
}
