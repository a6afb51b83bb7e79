package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/depotworks/tradedepot/internal/metrics"
	"github.com/depotworks/tradedepot/internal/notify"
	"github.com/depotworks/tradedepot/internal/offers"
	"github.com/depotworks/tradedepot/internal/steam"
	"github.com/depotworks/tradedepot/pkg/logger"
)

// Registrar accepts established sessions. Register returns
// ErrDuplicateIdentity when the identity already holds a session.
type Registrar interface {
	Register(*Session) error
}

// Manager drives session establishment. Uploads are acknowledged
// immediately; the login handshake runs in the background and every
// outcome is reported through the notifier.
type Manager struct {
	auth     Authenticator
	registry Registrar
	notifier notify.Notifier
	tracker  *offers.Tracker

	loginTimeout time.Duration
	metrics      *metrics.Metrics
}

// NewManager creates a session manager
func NewManager(auth Authenticator, registry Registrar, notifier notify.Notifier, tracker *offers.Tracker) *Manager {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Manager{
		auth:         auth,
		registry:     registry,
		notifier:     notifier,
		tracker:      tracker,
		loginTimeout: 60 * time.Second,
	}
}

// SetMetrics wires up login and session gauges
func (m *Manager) SetMetrics(mx *metrics.Metrics) {
	m.metrics = mx
}

// Start launches the login flow for one credential bundle in the
// background and returns immediately
func (m *Manager) Start(credentialFile string, creds *Credentials) {
	go m.establish(credentialFile, creds)
}

// establish runs one complete login attempt. Failures are terminal for
// the attempt; the bundle stays on disk and can be re-uploaded.
func (m *Manager) establish(credentialFile string, creds *Credentials) {
	ctx, cancel := context.WithTimeout(context.Background(), m.loginTimeout)
	defer cancel()

	code, err := steam.TwoFactorCode(creds.SharedSecret, time.Now())
	if err != nil {
		logger.Log.Error().Err(err).
			Str("account", creds.AccountName).
			Msg("Two-factor code generation failed")
		m.recordLogin("failure")
		m.notifier.Notify(ctx, notify.LoginFailure(creds.AccountName, "invalid shared secret"))
		return
	}

	conn, err := m.auth.LogOn(ctx, creds.AccountName, creds.Password, code)
	if err != nil {
		reason := "login error"
		var authErr *steam.AuthError
		if errors.As(err, &authErr) {
			reason = authErr.Message
		}
		logger.Log.Error().Err(err).
			Str("account", creds.AccountName).
			Msg("Session login failed")
		m.recordLogin("failure")
		m.notifier.Notify(ctx, notify.LoginFailure(creds.AccountName, reason))
		return
	}

	identity := strconv.FormatUint(conn.SteamID64(), 10)
	sess := &Session{
		Identity:       identity,
		DisplayName:    creds.AccountName,
		CredentialFile: credentialFile,
		Conn:           conn,
	}

	if err := m.registry.Register(sess); err != nil {
		// The original session stays authoritative; the new
		// connection is discarded.
		conn.Close()
		logger.Session(identity).Warn().
			Str("account", creds.AccountName).
			Msg("Duplicate session rejected")
		m.recordLogin("duplicate")
		m.notifier.Notify(ctx, notify.DuplicateSession(creds.AccountName, identity))
		return
	}

	logger.Session(identity).Info().
		Str("account", creds.AccountName).
		Msg("Session established")
	m.recordLogin("success")
	if m.metrics != nil {
		m.metrics.SessionsActive.Inc()
	}
	m.notifier.Notify(ctx, notify.LoginSuccess(creds.AccountName, identity))

	go m.pumpEvents(sess)
}

// pumpEvents forwards provider offer observations into the tracker
// until the connection closes
func (m *Manager) pumpEvents(sess *Session) {
	for change := range sess.Conn.OfferStateChanges() {
		m.tracker.HandleEvent(context.Background(), offers.StateEvent{
			OfferID:  change.OfferID,
			NewState: offers.StateFromProvider(change.StateCode),
		})
	}
}

func (m *Manager) recordLogin(result string) {
	if m.metrics != nil {
		m.metrics.RecordLogin(result)
	}
}
