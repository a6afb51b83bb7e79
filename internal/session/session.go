// Package session owns the bot session lifecycle: credential loading,
// asynchronous login, duplicate rejection and the pump that feeds
// provider offer events into the tracker.
package session

import (
	"context"
	"errors"

	"github.com/depotworks/tradedepot/internal/steam"
)

// ErrDuplicateIdentity marks a login whose identity already holds a
// registered session. The original session is kept.
var ErrDuplicateIdentity = errors.New("session identity already registered")

// Conn is an established trading connection. *steam.Conn satisfies it.
type Conn interface {
	SteamID64() uint64
	OfferStateChanges() <-chan steam.OfferStateChange
	ListInventory(ctx context.Context, appID, contextID uint32) ([]steam.InventoryItem, error)
	SubmitOffer(ctx context.Context, partnerSteamID uint64, token, message string, appID, contextID uint32, assetIDs []string) (string, error)
	Close()
}

// Authenticator turns credentials into a live connection
type Authenticator interface {
	LogOn(ctx context.Context, accountName, password, twoFactorCode string) (Conn, error)
}

// WebAuthenticator adapts steam.WebAuth to the Authenticator interface
type WebAuthenticator struct {
	auth *steam.WebAuth
}

// NewWebAuthenticator wraps a web authenticator
func NewWebAuthenticator(auth *steam.WebAuth) WebAuthenticator {
	return WebAuthenticator{auth: auth}
}

func (a WebAuthenticator) LogOn(ctx context.Context, accountName, password, twoFactorCode string) (Conn, error) {
	conn, err := a.auth.LogOn(ctx, accountName, password, twoFactorCode)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Session is one logged-in bot account
type Session struct {
	// Identity is the decimal 64-bit network identity, the registry key
	Identity string
	// DisplayName is the account name used in notifications
	DisplayName string
	// CredentialFile is the stored credential bundle filename
	CredentialFile string
	// Conn is the live trading connection
	Conn Conn
}
