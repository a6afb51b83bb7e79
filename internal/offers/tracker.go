package offers

import (
	"context"
	"sync"
	"time"

	"github.com/depotworks/tradedepot/internal/metrics"
	"github.com/depotworks/tradedepot/internal/notify"
	"github.com/depotworks/tradedepot/internal/steam"
	"github.com/depotworks/tradedepot/pkg/logger"
)

// Record is the tracked lifecycle state of one submitted offer.
// Records are created at submission and never deleted within the
// process lifetime.
type Record struct {
	OfferID         string
	SessionIdentity string
	SessionName     string
	PartnerSteamID  uint64
	LastKnownState  State
	CreatedAt       time.Time
}

// Tracker maps provider offer events onto the notification protocol.
// Each observed transition is notified exactly once; replayed events
// are dropped, unknown offers are logged and ignored.
type Tracker struct {
	mu      sync.Mutex
	records map[string]*Record

	notifier notify.Notifier
	metrics  *metrics.Metrics
}

// NewTracker creates a tracker emitting on the given notifier
func NewTracker(notifier notify.Notifier) *Tracker {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Tracker{
		records:  make(map[string]*Record),
		notifier: notifier,
	}
}

// SetMetrics wires up transition metrics
func (t *Tracker) SetMetrics(m *metrics.Metrics) {
	t.metrics = m
}

// Track registers a freshly submitted offer in state Sent
func (t *Tracker) Track(offerID, sessionIdentity, sessionName string, partnerSteamID uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records[offerID] = &Record{
		OfferID:         offerID,
		SessionIdentity: sessionIdentity,
		SessionName:     sessionName,
		PartnerSteamID:  partnerSteamID,
		LastKnownState:  StateSent,
		CreatedAt:       time.Now(),
	}
}

// Lookup returns a copy of a tracked record
func (t *Tracker) Lookup(offerID string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.records[offerID]
	if !ok {
		return Record{}, false
	}
	return *record, true
}

// HandleEvent applies one provider state observation. A state equal to
// the last known one is a replay and produces nothing; a change updates
// the record and emits exactly one notification. The notification is
// best-effort: its failure never rolls back the state update.
func (t *Tracker) HandleEvent(ctx context.Context, ev StateEvent) {
	t.mu.Lock()
	record, ok := t.records[ev.OfferID]
	if !ok {
		t.mu.Unlock()
		logger.Offer(ev.OfferID).Warn().
			Str("state", ev.NewState.String()).
			Msg("State event for unknown offer ignored")
		return
	}

	if record.LastKnownState == ev.NewState {
		t.mu.Unlock()
		return
	}

	oldState := record.LastKnownState
	record.LastKnownState = ev.NewState
	snapshot := *record
	t.mu.Unlock()

	logger.Offer(ev.OfferID).Info().
		Str("steam_id", snapshot.SessionIdentity).
		Str("old_state", oldState.String()).
		Str("new_state", ev.NewState.String()).
		Msg("Offer state changed")

	if t.metrics != nil {
		t.metrics.RecordOfferTransition(ev.NewState.String())
	}

	t.notifier.Notify(ctx, notify.StateChange(
		snapshot.SessionName,
		snapshot.OfferID,
		steam.ProfileURL(snapshot.PartnerSteamID),
		oldState.String(),
		ev.NewState.String(),
	))
}
