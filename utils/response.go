package utils

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// H is a shorthand for JSON object bodies.
type H map[string]any

// WriteJSON writes body as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(context.Background()).Warn().Err(err).Msg("failed to encode response")
	}
}

// WriteSuccess writes a 2xx body with "success": true merged into fields.
func WriteSuccess(w http.ResponseWriter, status int, fields H) {
	body := H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	WriteJSON(w, status, body)
}

// WriteError maps err to its status and writes {"message": ...}. Internal errors are logged
// with the request logger and answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := AsAppError(err)
	status := appErr.Status()
	message := appErr.Message
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(appErr.Err).Str("reason", appErr.Message).Msg("request failed")
		message = "Internal Server Error"
	}
	WriteJSON(w, status, H{"message": message})
}
