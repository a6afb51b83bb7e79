package endpoints

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/depotworks/tradedepot/internal/metrics"
	"github.com/depotworks/tradedepot/internal/notify"
	"github.com/depotworks/tradedepot/internal/offers"
	"github.com/depotworks/tradedepot/internal/prices"
	"github.com/depotworks/tradedepot/internal/registry"
	"github.com/depotworks/tradedepot/internal/steam"
	"github.com/depotworks/tradedepot/internal/valuation"
	"github.com/depotworks/tradedepot/pkg/logger"
)

// maxRequestBodySize limits request body reads (1MB)
const maxRequestBodySize = 1024 * 1024

// offerRequest is the POST /offers body
type offerRequest struct {
	SteamID   string `json:"steam_id"`
	TradeLink string `json:"trade_link"`
}

// OffersConfig holds the offer pipeline configuration
type OffersConfig struct {
	// Ceiling is the maximum number of items per offer
	Ceiling int
	// AppID and ContextID select the inventory to offer from
	AppID     uint32
	ContextID uint32
	// Rates converts scrap totals for the notification summary
	Rates valuation.Rates
}

// OffersHandler handles POST /offers: runs the full pipeline from
// session lookup through valuation to submission and tracking
type OffersHandler struct {
	registry *registry.SessionRegistry
	prices   prices.Source
	tracker  *offers.Tracker
	notifier notify.Notifier
	cfg      OffersConfig

	metrics *metrics.Metrics
}

// NewOffersHandler creates an offers handler
func NewOffersHandler(reg *registry.SessionRegistry, src prices.Source, tracker *offers.Tracker, notifier notify.Notifier, cfg OffersConfig) *OffersHandler {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &OffersHandler{
		registry: reg,
		prices:   src,
		tracker:  tracker,
		notifier: notifier,
		cfg:      cfg,
	}
}

// SetMetrics wires up offer and price fetch metrics
func (h *OffersHandler) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// ServeHTTP handles the offer request
func (h *OffersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req offerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		logger.HTTP().Warn().Err(err).Msg("Invalid JSON in offer request")
		writeError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if req.SteamID == "" || req.TradeLink == "" {
		writeError(w, "steam_id and trade_link are required", http.StatusBadRequest)
		return
	}

	sess, err := h.registry.Lookup(req.SteamID)
	if err != nil {
		writeError(w, "Unknown session", http.StatusBadRequest)
		return
	}

	if _, _, err := offers.ParseTradeLink(req.TradeLink); err != nil {
		writeError(w, "Invalid trade link", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	start := time.Now()

	table, err := h.fetchPrices(ctx)
	if err != nil {
		logger.HTTP().Error().Err(err).Msg("Price fetch failed")
		h.recordOffer("price_error", 0)
		writeError(w, "Failed to fetch prices", http.StatusInternalServerError)
		return
	}

	inventory, err := sess.Conn.ListInventory(ctx, h.cfg.AppID, h.cfg.ContextID)
	if err != nil {
		logger.Session(sess.Identity).Error().Err(err).Msg("Inventory listing failed")
		h.recordOffer("inventory_error", 0)
		writeError(w, "Failed to list inventory", http.StatusInternalServerError)
		return
	}

	tradable := make([]steam.InventoryItem, 0, len(inventory))
	for _, item := range inventory {
		if item.Tradable {
			tradable = append(tradable, item)
		}
	}

	valued := valuation.Value(tradable, table)
	request, err := offers.Build(req.TradeLink, valued, h.cfg.Ceiling)
	if err != nil {
		writeError(w, "Invalid trade link", http.StatusBadRequest)
		return
	}
	if len(request.Items) == 0 {
		writeError(w, "No priced tradable items to offer", http.StatusBadRequest)
		return
	}

	offerID, err := sess.Conn.SubmitOffer(ctx, request.PartnerSteamID, request.Token,
		request.Message, h.cfg.AppID, h.cfg.ContextID, request.AssetIDs())
	if err != nil {
		logger.Session(sess.Identity).Error().Err(err).Msg("Offer submission failed")
		h.recordOffer("submit_error", 0)
		writeError(w, "Failed to submit offer", http.StatusInternalServerError)
		return
	}

	h.tracker.Track(offerID, sess.Identity, sess.DisplayName, request.PartnerSteamID)
	h.recordOffer("success", len(request.Items))

	summary := valuation.Summarize(request.Items, h.cfg.Rates)
	names := make([]string, 0, len(request.Items))
	for _, item := range request.Items {
		names = append(names, item.Name)
	}
	h.notifier.Notify(ctx, notify.TradeSent(
		sess.DisplayName,
		sess.CredentialFile,
		steam.ProfileURL(request.PartnerSteamID),
		names,
		summary,
	))

	logger.Offer(offerID).Info().
		Str("steam_id", sess.Identity).
		Int("item_count", len(request.Items)).
		Float64("refined", summary.Refined).
		Dur("duration_ms", time.Since(start)).
		Msg("Offer submitted")

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"offer_id":   offerID,
		"item_count": len(request.Items),
		"refined":    summary.Refined,
		"keys":       summary.Keys,
		"usd":        summary.USD,
	})
}

// fetchPrices pulls one price snapshot, recording fetch metrics
func (h *OffersHandler) fetchPrices(ctx context.Context) (*prices.Table, error) {
	start := time.Now()
	table, err := h.prices.Fetch(ctx)
	if h.metrics != nil {
		h.metrics.RecordPriceFetch(time.Since(start), err)
	}
	return table, err
}

func (h *OffersHandler) recordOffer(result string, itemCount int) {
	if h.metrics != nil {
		h.metrics.RecordOffer(result, itemCount)
	}
}
