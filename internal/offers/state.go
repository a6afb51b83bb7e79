// Package offers builds outbound trade offers and tracks their
// lifecycle. The builder is pure construction; the tracker owns the
// offer records and the notification protocol.
package offers

import "github.com/depotworks/tradedepot/internal/steam"

// State is the tracked lifecycle state of one offer. The set is closed;
// provider values with no mapping land on StateOther rather than being
// misclassified.
type State int

const (
	// StateSent is the initial state, set at submission before any
	// provider event arrives
	StateSent State = iota
	StateAccepted
	StateDeclined
	StateCanceled
	StateExpired
	StateOther
)

// String returns the lowercase state name
func (s State) String() string {
	switch s {
	case StateSent:
		return "sent"
	case StateAccepted:
		return "accepted"
	case StateDeclined:
		return "declined"
	case StateCanceled:
		return "canceled"
	case StateExpired:
		return "expired"
	default:
		return "other"
	}
}

// Terminal reports whether no further transitions are expected
func (s State) Terminal() bool {
	switch s {
	case StateAccepted, StateDeclined, StateCanceled, StateExpired:
		return true
	default:
		return false
	}
}

// StateFromProvider maps a raw provider state code onto the tracked set
func StateFromProvider(code int) State {
	switch code {
	case steam.StateCodeActive:
		return StateSent
	case steam.StateCodeAccepted:
		return StateAccepted
	case steam.StateCodeDeclined:
		return StateDeclined
	case steam.StateCodeCanceled, steam.StateCodeCanceledBySecondFactor:
		return StateCanceled
	case steam.StateCodeExpired:
		return StateExpired
	default:
		return StateOther
	}
}

// StateEvent is one provider state observation mapped onto the tracked set
type StateEvent struct {
	OfferID  string
	NewState State
}
