package steam

import (
	"fmt"
	"strconv"
)

// accountIDOffset converts an individual public-universe account ID to
// its 64-bit SteamID (universe 1, type individual, instance desktop).
const accountIDOffset = 76561197960265728

// SteamID64FromAccountID converts a 32-bit account ID (the partner
// component of a trade link) to the full 64-bit network identity.
func SteamID64FromAccountID(accountID uint32) uint64 {
	return uint64(accountID) + accountIDOffset
}

// AccountIDFromSteamID64 extracts the 32-bit account ID from a SteamID64
func AccountIDFromSteamID64(steamID uint64) uint32 {
	return uint32(steamID - accountIDOffset)
}

// ParseSteamID64 parses a decimal SteamID64 string
func ParseSteamID64(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid steam id %q: %w", s, err)
	}
	return id, nil
}

// ProfileURL returns the community profile URL for a SteamID64
func ProfileURL(steamID uint64) string {
	return fmt.Sprintf("https://steamcommunity.com/profiles/%d", steamID)
}
