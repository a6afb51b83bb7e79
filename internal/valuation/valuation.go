// Package valuation converts inventory items into priced, sorted
// candidates for offer construction. Pure functions, no owned state.
package valuation

import (
	"sort"

	"github.com/depotworks/tradedepot/internal/config"
	"github.com/depotworks/tradedepot/internal/prices"
	"github.com/depotworks/tradedepot/internal/steam"
)

// ValuedItem is an inventory item with its price snapshot value
type ValuedItem struct {
	steam.InventoryItem
	// Value in scrap, from the price snapshot
	Value int
}

// Value filters and sorts items against a price snapshot. Items absent
// from the snapshot are excluded, never priced at zero. The result is
// sorted descending by value; ties keep input order so that selection
// under the offer ceiling stays deterministic.
func Value(items []steam.InventoryItem, table *prices.Table) []ValuedItem {
	valued := make([]ValuedItem, 0, len(items))
	for _, item := range items {
		price, ok := table.Lookup(item.Name)
		if !ok {
			continue
		}
		valued = append(valued, ValuedItem{InventoryItem: item, Value: price})
	}

	sort.SliceStable(valued, func(i, j int) bool {
		return valued[i].Value > valued[j].Value
	})

	return valued
}

// Total sums the scrap value of a set of valued items
func Total(items []ValuedItem) int {
	total := 0
	for _, item := range items {
		total += item.Value
	}
	return total
}

// Rates holds the currency conversion constants. These are business
// policy and overridable; the conversion shape is fixed.
type Rates struct {
	ScrapPerRefined float64
	RefinedPerKey   float64
	USDPerKey       float64
}

// DefaultRates returns the stock conversion constants
func DefaultRates() Rates {
	return Rates{
		ScrapPerRefined: config.DefaultScrapPerRefined,
		RefinedPerKey:   config.DefaultRefinedPerKey,
		USDPerKey:       config.DefaultUSDPerKey,
	}
}

// Summary is an approximate valuation of an item set in three units
type Summary struct {
	Refined float64
	Keys    float64
	USD     float64
}

// Summarize converts a total scrap value through the configured rates:
// scrap to refined to keys to estimated USD, chained linearly.
func Summarize(items []ValuedItem, rates Rates) Summary {
	total := float64(Total(items))
	refined := total / rates.ScrapPerRefined
	keys := refined / rates.RefinedPerKey
	usd := keys * rates.USDPerKey
	return Summary{Refined: refined, Keys: keys, USD: usd}
}
