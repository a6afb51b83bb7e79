// Package steam provides thin adapters for the Steam trading network:
// identity conversion, two-factor code generation, web login, inventory
// listing, trade offer submission and offer state polling. No trading
// policy lives here; decisions belong to the callers.
package steam

// InventoryItem is one tradable asset in a bot's community inventory
type InventoryItem struct {
	// AssetID identifies the asset within its app/context
	AssetID string
	// Name is the market hash name, the key used by the price feed
	Name string
	// Tradable reports whether the asset can be included in an offer
	Tradable bool
}

// OfferStateChange is a raw provider observation for one sent offer.
// StateCode is the provider's trade_offer_state integer, unmapped.
type OfferStateChange struct {
	OfferID   string
	StateCode int
}

// Provider trade offer state codes (ETradeOfferState)
const (
	StateCodeInvalid                  = 1
	StateCodeActive                   = 2
	StateCodeAccepted                 = 3
	StateCodeCountered                = 4
	StateCodeExpired                  = 5
	StateCodeCanceled                 = 6
	StateCodeDeclined                 = 7
	StateCodeInvalidItems             = 8
	StateCodeCreatedNeedsConfirmation = 9
	StateCodeCanceledBySecondFactor   = 10
	StateCodeInEscrow                 = 11
)
