package notify

import (
	"fmt"
	"strings"

	"github.com/depotworks/tradedepot/internal/valuation"
)

// LoginSuccess announces an established session
func LoginSuccess(accountName, steamID string) string {
	return fmt.Sprintf("✅ Logged in as %s (%s)", accountName, steamID)
}

// LoginFailure announces a rejected login attempt
func LoginFailure(accountName, reason string) string {
	return fmt.Sprintf("❌ Failed to login %s: %s", accountName, reason)
}

// DuplicateSession announces a rejected second login of an account that
// already holds a registered session
func DuplicateSession(accountName, steamID string) string {
	return fmt.Sprintf("⚠️ Duplicate login for %s (%s) rejected, original session kept", accountName, steamID)
}

// ItemList renders item names as a bulleted list
func ItemList(names []string) string {
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, "• "+name)
	}
	return strings.Join(lines, "\n")
}

// TradeSent announces a submitted offer with its computed valuation
func TradeSent(botName, credentialFile, partnerURL string, itemNames []string, summary valuation.Summary) string {
	return fmt.Sprintf(
		"📤 Trade Sent!\nBot: %s\nMafile: %s\nTo: %s\nItems Offered: %d\n\n💰 Total Value:\n- %.2f ref\n- %.2f keys\n- ~$%.2f USD\n\n**Items:**\n%s",
		botName, credentialFile, partnerURL, len(itemNames),
		summary.Refined, summary.Keys, summary.USD,
		ItemList(itemNames),
	)
}

// stateBadges decorates known offer states the way the bot always has
var stateBadges = map[string]string{
	"accepted": "✅ Trade Accepted!",
	"declined": "❌ Trade Declined.",
	"canceled": "⚠️ Trade Canceled.",
	"expired":  "⌛ Trade Expired.",
}

// StateChange announces one observed offer state transition
func StateChange(botName, offerID, partnerURL, oldState, newState string) string {
	headline, ok := stateBadges[newState]
	if !ok {
		headline = fmt.Sprintf("ℹ️ Trade %s → %s.", oldState, newState)
	}
	return fmt.Sprintf("%s\nBot: %s\nTrade ID: %s\nPartner: %s", headline, botName, offerID, partnerURL)
}
