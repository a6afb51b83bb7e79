// Package endpoints provides HTTP endpoint handlers
package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/depotworks/tradedepot/pkg/logger"
)

// writeError writes an error response
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logger.HTTP().Error().Err(err).Str("message", message).Msg("Failed to encode error response")
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.HTTP().Error().Err(err).Msg("Failed to encode response")
	}
}
