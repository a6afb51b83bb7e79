package offers

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/depotworks/tradedepot/internal/steam"
	"github.com/depotworks/tradedepot/internal/valuation"
)

// ErrInvalidTradeLink marks a trade link missing or mangling its
// partner or token component
var ErrInvalidTradeLink = errors.New("invalid trade link")

// OfferMessage is the fixed human-readable message attached to every offer
const OfferMessage = "Trade offer from automated TF2 bot."

var (
	partnerPattern = regexp.MustCompile(`partner=([0-9]+)`)
	tokenPattern   = regexp.MustCompile(`token=([a-zA-Z0-9-_]+)`)
)

// ParseTradeLink extracts the partner account ID and access token from
// a trade link. Both components are required.
func ParseTradeLink(link string) (partner uint32, token string, err error) {
	partnerMatch := partnerPattern.FindStringSubmatch(link)
	tokenMatch := tokenPattern.FindStringSubmatch(link)
	if partnerMatch == nil || tokenMatch == nil {
		return 0, "", ErrInvalidTradeLink
	}

	id, err := strconv.ParseUint(partnerMatch[1], 10, 32)
	if err != nil {
		return 0, "", ErrInvalidTradeLink
	}

	return uint32(id), tokenMatch[1], nil
}

// Request is an assembled outbound offer, immutable after construction
// and submitted exactly once.
type Request struct {
	// PartnerSteamID is the partner's full network identity
	PartnerSteamID uint64
	// PartnerAccountID is the 32-bit form from the trade link
	PartnerAccountID uint32
	// Token is the trade link access token
	Token string
	// Items are the selected candidates, highest value first
	Items []valuation.ValuedItem
	// Message is the fixed offer message
	Message string
}

// AssetIDs returns the asset identifiers of the selected items in order
func (r *Request) AssetIDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		ids = append(ids, item.AssetID)
	}
	return ids
}

// Build assembles an offer request from a trade link and valued items.
// The input must already be sorted descending by value; the first
// ceiling items are taken so the highest-valued candidates win when the
// inventory exceeds the provider limit.
func Build(tradeLink string, valued []valuation.ValuedItem, ceiling int) (*Request, error) {
	partner, token, err := ParseTradeLink(tradeLink)
	if err != nil {
		return nil, err
	}

	selected := valued
	if len(selected) > ceiling {
		selected = selected[:ceiling]
	}

	items := make([]valuation.ValuedItem, len(selected))
	copy(items, selected)

	return &Request{
		PartnerSteamID:   steam.SteamID64FromAccountID(partner),
		PartnerAccountID: partner,
		Token:            token,
		Items:            items,
		Message:          OfferMessage,
	}, nil
}
