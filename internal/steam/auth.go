package steam

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/depotworks/tradedepot/pkg/logger"
)

const communityBaseURL = "https://steamcommunity.com"

// maxAuthResponseSize bounds login endpoint responses
const maxAuthResponseSize = 1024 * 1024

// AuthError is a credential rejection by the remote network. It is
// terminal for the attempt; callers do not retry.
type AuthError struct {
	AccountName string
	Message     string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("steam login failed for %s: %s", e.AccountName, e.Message)
}

// WebAuthConfig holds authenticator configuration
type WebAuthConfig struct {
	// BaseURL overrides the community endpoint (tests)
	BaseURL string
	// APIBaseURL overrides the web API endpoint used by offer polling (tests)
	APIBaseURL string
	// APIKey is the Steam web API key used for offer state polling
	APIKey string
	// Timeout for each login HTTP call
	Timeout time.Duration
	// PollInterval is how often established connections poll offer states
	PollInterval time.Duration
}

// WebAuth performs the Steam community web login handshake and hands
// back a live Conn on success.
type WebAuth struct {
	cfg WebAuthConfig
}

// NewWebAuth creates a web authenticator
func NewWebAuth(cfg WebAuthConfig) *WebAuth {
	if cfg.BaseURL == "" {
		cfg.BaseURL = communityBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 30 * time.Second
	}
	return &WebAuth{cfg: cfg}
}

// rsaKeyResponse is the getrsakey payload
type rsaKeyResponse struct {
	Success      bool   `json:"success"`
	PublicKeyMod string `json:"publickey_mod"`
	PublicKeyExp string `json:"publickey_exp"`
	Timestamp    string `json:"timestamp"`
}

// doLoginResponse is the dologin payload
type doLoginResponse struct {
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	RequiresTwoFactor  bool   `json:"requires_twofactor"`
	TransferParameters struct {
		SteamID string `json:"steamid"`
	} `json:"transfer_parameters"`
}

// LogOn authenticates one account and returns a live connection. The
// password is RSA-encrypted with the key the network hands out for the
// account; the two-factor code comes from the credential bundle's
// shared secret. One attempt, no retry.
func (a *WebAuth) LogOn(ctx context.Context, accountName, password, twoFactorCode string) (*Conn, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	httpClient := &http.Client{
		Jar:     jar,
		Timeout: a.cfg.Timeout,
	}

	key, err := a.fetchRSAKey(ctx, httpClient, accountName)
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptPassword(password, key)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("username", accountName)
	form.Set("password", encrypted)
	form.Set("twofactorcode", twoFactorCode)
	form.Set("rsatimestamp", key.Timestamp)
	form.Set("remember_login", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.BaseURL+"/login/dologin/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAuthResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read login response: %w", err)
	}

	var login doLoginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		return nil, fmt.Errorf("parse login response: %w", err)
	}

	if !login.Success {
		message := login.Message
		if message == "" && login.RequiresTwoFactor {
			message = "two-factor code rejected"
		}
		if message == "" {
			message = "credentials rejected"
		}
		return nil, &AuthError{AccountName: accountName, Message: message}
	}

	steamID, err := ParseSteamID64(login.TransferParameters.SteamID)
	if err != nil {
		return nil, fmt.Errorf("login response steam id: %w", err)
	}

	logger.Session(login.TransferParameters.SteamID).Info().
		Str("account", accountName).
		Msg("Steam web login succeeded")

	return newConn(connConfig{
		httpClient:   httpClient,
		baseURL:      a.cfg.BaseURL,
		apiBaseURL:   a.cfg.APIBaseURL,
		apiKey:       a.cfg.APIKey,
		steamID:      steamID,
		pollInterval: a.cfg.PollInterval,
	}), nil
}

// fetchRSAKey asks the network for the account's login RSA key
func (a *WebAuth) fetchRSAKey(ctx context.Context, httpClient *http.Client, accountName string) (*rsaKeyResponse, error) {
	endpoint := fmt.Sprintf("%s/login/getrsakey/?username=%s", a.cfg.BaseURL, url.QueryEscape(accountName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build rsa key request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rsa key request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAuthResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read rsa key response: %w", err)
	}

	var key rsaKeyResponse
	if err := json.Unmarshal(body, &key); err != nil {
		return nil, fmt.Errorf("parse rsa key response: %w", err)
	}
	if !key.Success {
		return nil, &AuthError{AccountName: accountName, Message: "account unknown to login service"}
	}

	return &key, nil
}

// encryptPassword RSA-encrypts the password with the network-provided key
func encryptPassword(password string, key *rsaKeyResponse) (string, error) {
	mod, ok := new(big.Int).SetString(key.PublicKeyMod, 16)
	if !ok {
		return "", fmt.Errorf("malformed rsa modulus")
	}
	exp, ok := new(big.Int).SetString(key.PublicKeyExp, 16)
	if !ok {
		return "", fmt.Errorf("malformed rsa exponent")
	}

	pub := &rsa.PublicKey{N: mod, E: int(exp.Int64())}
	encrypted, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(password))
	if err != nil {
		return "", fmt.Errorf("encrypt password: %w", err)
	}

	return base64.StdEncoding.EncodeToString(encrypted), nil
}
