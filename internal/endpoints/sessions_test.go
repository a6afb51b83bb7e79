package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/depotworks/tradedepot/internal/offers"
	"github.com/depotworks/tradedepot/internal/registry"
	"github.com/depotworks/tradedepot/internal/session"
)

// fakeAuth hands back a scripted connection
type fakeAuth struct {
	conn session.Conn
	err  error
}

func (a *fakeAuth) LogOn(context.Context, string, string, string) (session.Conn, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.conn, nil
}

type sessionsFixture struct {
	handler  *SessionsHandler
	registry *registry.SessionRegistry
	dir      string
}

func newSessionsFixture(t *testing.T, auth session.Authenticator) *sessionsFixture {
	t.Helper()

	reg := registry.NewSessionRegistry()
	notifier := &recordingNotifier{}
	manager := session.NewManager(auth, reg, notifier, offers.NewTracker(notifier))
	dir := t.TempDir()
	return &sessionsFixture{
		handler:  NewSessionsHandler(manager, reg, dir),
		registry: reg,
		dir:      dir,
	}
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

const validMafile = `{"account_name":"botone","password":"hunter2","shared_secret":"c2hhcmVkc2VjcmV0MTIz"}`

func TestSessions_Upload(t *testing.T) {
	fx := newSessionsFixture(t, &fakeAuth{conn: &fakeConn{steamID: 76561198000000001}})

	body, contentType := multipartUpload(t, "mafile", "botone.maFile", validMafile)
	req := httptest.NewRequest(http.MethodPost, "/sessions", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	fx.handler.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool   `json:"success"`
		Mafile  string `json:"mafile"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !resp.Success {
		t.Error("Expected success true")
	}
	if !strings.HasSuffix(resp.Mafile, ".maFile") {
		t.Errorf("Expected stored mafile name, got %q", resp.Mafile)
	}

	// Bundle stored verbatim under the fresh name
	stored, err := os.ReadFile(filepath.Join(fx.dir, resp.Mafile))
	if err != nil {
		t.Fatalf("Expected stored bundle: %v", err)
	}
	if string(stored) != validMafile {
		t.Error("Stored bundle does not match the upload")
	}

	// Login runs in the background
	deadline := time.After(2 * time.Second)
	for fx.registry.Len() != 1 {
		select {
		case <-deadline:
			t.Fatal("Timed out waiting for background login")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSessions_UploadInvalidBundle(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Malformed JSON", `{not json`},
		{"Missing fields", `{"account_name":"botone"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newSessionsFixture(t, &fakeAuth{conn: &fakeConn{steamID: 1}})

			body, contentType := multipartUpload(t, "mafile", "bad.maFile", tt.content)
			req := httptest.NewRequest(http.MethodPost, "/sessions", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			fx.handler.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", w.Code)
			}

			// Rejected bundles are not stored
			entries, err := os.ReadDir(fx.dir)
			if err != nil {
				t.Fatalf("ReadDir failed: %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("Expected no stored bundles, found %d", len(entries))
			}
		})
	}
}

func TestSessions_UploadMissingField(t *testing.T) {
	fx := newSessionsFixture(t, &fakeAuth{conn: &fakeConn{steamID: 1}})

	body, contentType := multipartUpload(t, "wrongfield", "botone.maFile", validMafile)
	req := httptest.NewRequest(http.MethodPost, "/sessions", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	fx.handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing mafile field, got %d", w.Code)
	}
}

func TestSessions_UploadNotMultipart(t *testing.T) {
	fx := newSessionsFixture(t, &fakeAuth{conn: &fakeConn{steamID: 1}})

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(validMafile))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	fx.handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-multipart body, got %d", w.Code)
	}
}

func TestSessions_List(t *testing.T) {
	fx := newSessionsFixture(t, &fakeAuth{conn: &fakeConn{steamID: 1}})

	for _, s := range []*session.Session{
		{Identity: "76561198000000002", DisplayName: "bravo"},
		{Identity: "76561198000000001", DisplayName: "alpha"},
	} {
		if err := fx.registry.Register(s); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	w := httptest.NewRecorder()
	fx.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var entries []registry.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].DisplayName != "alpha" || entries[1].DisplayName != "bravo" {
		t.Errorf("Expected identity-ordered entries, got %v", entries)
	}
}

func TestSessions_ListEmpty(t *testing.T) {
	fx := newSessionsFixture(t, &fakeAuth{conn: &fakeConn{steamID: 1}})

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	w := httptest.NewRecorder()
	fx.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("Expected empty JSON array, got %s", body)
	}
}

func TestSessions_MethodNotAllowed(t *testing.T) {
	fx := newSessionsFixture(t, &fakeAuth{conn: &fakeConn{steamID: 1}})

	req := httptest.NewRequest(http.MethodDelete, "/sessions", nil)
	w := httptest.NewRecorder()
	fx.handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}
