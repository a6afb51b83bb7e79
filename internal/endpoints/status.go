package endpoints

import (
	"net/http"
	"time"

	"github.com/depotworks/tradedepot/internal/registry"
)

// StatusHandler handles /status requests
type StatusHandler struct {
	registry *registry.SessionRegistry
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(reg *registry.SessionRegistry) *StatusHandler {
	return &StatusHandler{registry: reg}
}

// ServeHTTP handles status requests
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"sessions":  h.registry.Len(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
