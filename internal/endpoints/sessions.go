package endpoints

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/depotworks/tradedepot/internal/registry"
	"github.com/depotworks/tradedepot/internal/session"
	"github.com/depotworks/tradedepot/pkg/logger"
)

// maxUploadSize limits credential bundle uploads (1MB)
const maxUploadSize = 1024 * 1024

// SessionsHandler handles /sessions requests: credential bundle uploads
// and the session list
type SessionsHandler struct {
	manager   *session.Manager
	registry  *registry.SessionRegistry
	mafileDir string
}

// NewSessionsHandler creates a sessions handler storing bundles under mafileDir
func NewSessionsHandler(manager *session.Manager, reg *registry.SessionRegistry, mafileDir string) *SessionsHandler {
	return &SessionsHandler{
		manager:   manager,
		registry:  reg,
		mafileDir: mafileDir,
	}
}

// ServeHTTP dispatches sessions requests
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleUpload(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleUpload accepts a multipart credential bundle, stores it under a
// fresh name and launches the login in the background. The 202 response
// means accepted, not logged in; the outcome arrives via notification.
func (h *SessionsHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("mafile")
	if err != nil {
		writeError(w, "Missing mafile upload field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		writeError(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	creds, err := session.ParseCredentials(data)
	if err != nil {
		logger.HTTP().Warn().Err(err).
			Str("upload", header.Filename).
			Msg("Rejected credential bundle")
		writeError(w, "Invalid credential bundle", http.StatusBadRequest)
		return
	}

	filename := uuid.New().String() + ".maFile"
	path := filepath.Join(h.mafileDir, filename)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		logger.HTTP().Error().Err(err).
			Str("path", path).
			Msg("Failed to store credential bundle")
		writeError(w, "Failed to store credential bundle", http.StatusInternalServerError)
		return
	}

	logger.HTTP().Info().
		Str("account", creds.AccountName).
		Str("mafile", filename).
		Msg("Credential bundle accepted, login queued")

	h.manager.Start(filename, creds)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"mafile":  filename,
		"message": "login started",
	})
}

// handleList returns the registered sessions
func (h *SessionsHandler) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.List())
}
