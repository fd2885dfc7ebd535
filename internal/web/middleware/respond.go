// Package middleware holds the portal's HTTP middleware: token checks, role
// gates and rate limiting of the public intake endpoint.
package middleware

import (
	"encoding/json"
	"net/http"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		_ = err // client disconnected
	}
}
