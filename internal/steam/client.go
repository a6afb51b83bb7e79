package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/depotworks/tradedepot/pkg/logger"
)

const apiBaseURL = "https://api.steampowered.com"

// maxInventoryResponseSize bounds inventory responses (large inventories
// stay well under this)
const maxInventoryResponseSize = 16 * 1024 * 1024

// eventBufferSize is the capacity of the offer state change channel
const eventBufferSize = 64

// TransportError is a rejection from the inventory/offer transport
type TransportError struct {
	Op      string
	Message string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("steam %s: %s", e.Op, e.Message)
}

// connConfig holds everything a Conn needs at construction
type connConfig struct {
	httpClient   *http.Client
	baseURL      string
	apiBaseURL   string
	apiKey       string
	steamID      uint64
	pollInterval time.Duration
}

// Conn is a live, authenticated connection to the trading network for
// one account. It carries the login cookies and polls the provider for
// offer state changes, publishing raw observations on a channel.
type Conn struct {
	httpClient   *http.Client
	baseURL      string
	apiBaseURL   string
	apiKey       string
	steamID      uint64
	pollInterval time.Duration

	events    chan OfferStateChange
	done      chan struct{}
	closeOnce sync.Once

	// lastSeen is touched only by the poll goroutine
	lastSeen map[string]int
}

func newConn(cfg connConfig) *Conn {
	if cfg.apiBaseURL == "" {
		cfg.apiBaseURL = apiBaseURL
	}

	c := &Conn{
		httpClient:   cfg.httpClient,
		baseURL:      cfg.baseURL,
		apiBaseURL:   cfg.apiBaseURL,
		apiKey:       cfg.apiKey,
		steamID:      cfg.steamID,
		pollInterval: cfg.pollInterval,
		events:       make(chan OfferStateChange, eventBufferSize),
		done:         make(chan struct{}),
	}

	if c.apiKey != "" {
		go c.pollOffers()
	} else {
		logger.Session(strconv.FormatUint(c.steamID, 10)).Warn().
			Msg("No Steam API key configured, offer state tracking disabled for this session")
		close(c.events)
	}

	return c
}

// SteamID64 returns the network identity of this connection
func (c *Conn) SteamID64() uint64 {
	return c.steamID
}

// OfferStateChanges returns the stream of raw offer state observations.
// The channel closes when the connection is closed.
func (c *Conn) OfferStateChanges() <-chan OfferStateChange {
	return c.events
}

// Close stops the offer state poller. Safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// inventoryResponse is the community inventory payload
type inventoryResponse struct {
	Success int `json:"success"`
	Assets  []struct {
		AssetID    string `json:"assetid"`
		ClassID    string `json:"classid"`
		InstanceID string `json:"instanceid"`
	} `json:"assets"`
	Descriptions []struct {
		ClassID        string `json:"classid"`
		InstanceID     string `json:"instanceid"`
		MarketHashName string `json:"market_hash_name"`
		Tradable       int    `json:"tradable"`
	} `json:"descriptions"`
}

// ListInventory fetches the bot's inventory for one app/context and
// joins asset records with their descriptions.
func (c *Conn) ListInventory(ctx context.Context, appID, contextID uint32) ([]InventoryItem, error) {
	endpoint := fmt.Sprintf("%s/inventory/%d/%d/%d?l=english&count=5000",
		c.baseURL, c.steamID, appID, contextID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build inventory request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: "inventory", Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInventoryResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read inventory response: %w", err)
	}

	var inv inventoryResponse
	if err := json.Unmarshal(body, &inv); err != nil {
		return nil, fmt.Errorf("parse inventory response: %w", err)
	}
	if inv.Success != 1 {
		return nil, &TransportError{Op: "inventory", Message: "provider reported failure"}
	}

	// Join assets to descriptions by class/instance
	type descKey struct{ class, instance string }
	descs := make(map[descKey]struct {
		name     string
		tradable bool
	}, len(inv.Descriptions))
	for _, d := range inv.Descriptions {
		descs[descKey{d.ClassID, d.InstanceID}] = struct {
			name     string
			tradable bool
		}{d.MarketHashName, d.Tradable == 1}
	}

	items := make([]InventoryItem, 0, len(inv.Assets))
	for _, a := range inv.Assets {
		d, ok := descs[descKey{a.ClassID, a.InstanceID}]
		if !ok {
			continue
		}
		items = append(items, InventoryItem{
			AssetID:  a.AssetID,
			Name:     d.name,
			Tradable: d.tradable,
		})
	}

	return items, nil
}

// tradeOfferAsset is one asset reference in an offer payload
type tradeOfferAsset struct {
	AppID     uint32 `json:"appid"`
	ContextID string `json:"contextid"`
	Amount    int    `json:"amount"`
	AssetID   string `json:"assetid"`
}

// tradeOfferBody is the json_tradeoffer form field
type tradeOfferBody struct {
	NewVersion bool `json:"newversion"`
	Version    int  `json:"version"`
	Me         struct {
		Assets   []tradeOfferAsset `json:"assets"`
		Currency []struct{}        `json:"currency"`
		Ready    bool              `json:"ready"`
	} `json:"me"`
	Them struct {
		Assets   []tradeOfferAsset `json:"assets"`
		Currency []struct{}        `json:"currency"`
		Ready    bool              `json:"ready"`
	} `json:"them"`
}

// sendOfferResponse is the tradeoffer/new/send payload
type sendOfferResponse struct {
	TradeOfferID string `json:"tradeofferid"`
	Error        string `json:"strError"`
}

// SubmitOffer sends a one-sided trade offer to the partner and returns
// the provider-assigned offer ID.
func (c *Conn) SubmitOffer(ctx context.Context, partnerSteamID uint64, token, message string, appID, contextID uint32, assetIDs []string) (string, error) {
	var offer tradeOfferBody
	offer.NewVersion = true
	offer.Version = 4
	offer.Me.Assets = make([]tradeOfferAsset, 0, len(assetIDs))
	for _, id := range assetIDs {
		offer.Me.Assets = append(offer.Me.Assets, tradeOfferAsset{
			AppID:     appID,
			ContextID: strconv.FormatUint(uint64(contextID), 10),
			Amount:    1,
			AssetID:   id,
		})
	}

	offerJSON, err := json.Marshal(offer)
	if err != nil {
		return "", fmt.Errorf("marshal offer: %w", err)
	}

	accessParams, err := json.Marshal(map[string]string{"trade_offer_access_token": token})
	if err != nil {
		return "", fmt.Errorf("marshal offer params: %w", err)
	}

	form := url.Values{}
	form.Set("sessionid", c.sessionID())
	form.Set("serverid", "1")
	form.Set("partner", strconv.FormatUint(partnerSteamID, 10))
	form.Set("tradeoffermessage", message)
	form.Set("json_tradeoffer", string(offerJSON))
	form.Set("trade_offer_create_params", string(accessParams))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/tradeoffer/new/send", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build offer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", fmt.Sprintf("%s/tradeoffer/new/?partner=%d&token=%s",
		c.baseURL, AccountIDFromSteamID64(partnerSteamID), url.QueryEscape(token)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("offer request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAuthResponseSize))
	if err != nil {
		return "", fmt.Errorf("read offer response: %w", err)
	}

	var sent sendOfferResponse
	if err := json.Unmarshal(body, &sent); err != nil {
		return "", fmt.Errorf("parse offer response: %w", err)
	}
	if sent.TradeOfferID == "" {
		message := sent.Error
		if message == "" {
			message = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", &TransportError{Op: "submit offer", Message: message}
	}

	return sent.TradeOfferID, nil
}

// sessionID returns the community session cookie, which the offer
// endpoint requires in the form body as CSRF proof
func (c *Conn) sessionID() string {
	base, err := url.Parse(c.baseURL)
	if err != nil || c.httpClient.Jar == nil {
		return ""
	}
	for _, cookie := range c.httpClient.Jar.Cookies(base) {
		if cookie.Name == "sessionid" {
			return cookie.Value
		}
	}
	return ""
}

// sentOffersResponse is the GetTradeOffers payload
type sentOffersResponse struct {
	Response struct {
		TradeOffersSent []struct {
			TradeOfferID string `json:"tradeofferid"`
			State        int    `json:"trade_offer_state"`
		} `json:"trade_offers_sent"`
	} `json:"response"`
}

// pollOffers periodically fetches sent offers and publishes state
// changes. Only transitions since the previous poll are emitted; the
// tracker stays defensive about replays regardless.
func (c *Conn) pollOffers() {
	defer close(c.events)

	c.lastSeen = make(map[string]int)
	log := logger.Session(strconv.FormatUint(c.steamID, 10))

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.pollInterval)
		offers, err := c.fetchSentOffers(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("Offer state poll failed")
			continue
		}

		for _, o := range offers {
			prev, seen := c.lastSeen[o.OfferID]
			if seen && prev == o.StateCode {
				continue
			}
			c.lastSeen[o.OfferID] = o.StateCode

			select {
			case c.events <- o:
			case <-c.done:
				return
			}
		}
	}
}

// fetchSentOffers lists this account's sent offers with current states
func (c *Conn) fetchSentOffers(ctx context.Context) ([]OfferStateChange, error) {
	endpoint := fmt.Sprintf("%s/IEconService/GetTradeOffers/v1/?key=%s&get_sent_offers=1&active_only=0&format=json",
		c.apiBaseURL, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build poll request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: "poll offers", Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInventoryResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read poll response: %w", err)
	}

	var sent sentOffersResponse
	if err := json.Unmarshal(body, &sent); err != nil {
		return nil, fmt.Errorf("parse poll response: %w", err)
	}

	changes := make([]OfferStateChange, 0, len(sent.Response.TradeOffersSent))
	for _, o := range sent.Response.TradeOffersSent {
		changes = append(changes, OfferStateChange{OfferID: o.TradeOfferID, StateCode: o.State})
	}

	return changes, nil
}
