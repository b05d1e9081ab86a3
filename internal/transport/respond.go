// Package transport holds the HTTP wire helpers shared by all handlers:
// JSON response writing and the per-request user identity context.
package transport

import (
	"encoding/json"
	"net/http"
)

// JSON writes any payload with the given status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// Message writes a bare {"message": ...} body.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// Error is an alias for Message kept for readability at call sites.
func Error(w http.ResponseWriter, status int, message string) {
	Message(w, status, message)
}

// ServerError hides internal detail behind a generic message.
func ServerError(w http.ResponseWriter) {
	Message(w, http.StatusInternalServerError, "Server error")
}

// Decode parses a JSON request body into dst.
func Decode(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
