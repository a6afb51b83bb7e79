package valuation

import (
	"math"
	"testing"
	"time"

	"github.com/depotworks/tradedepot/internal/prices"
	"github.com/depotworks/tradedepot/internal/steam"
)

func item(assetID, name string) steam.InventoryItem {
	return steam.InventoryItem{AssetID: assetID, Name: name, Tradable: true}
}

func TestValue_ExcludesUnpricedItems(t *testing.T) {
	table := prices.NewTable(map[string]int{
		"Priced Hat": 50,
	}, time.Now())

	items := []steam.InventoryItem{
		item("1", "Priced Hat"),
		item("2", "Unpriced Hat"),
		item("3", "Priced Hat"),
	}

	valued := Value(items, table)

	if len(valued) != 2 {
		t.Fatalf("Expected 2 valued items, got %d", len(valued))
	}
	for _, v := range valued {
		if v.Name != "Priced Hat" {
			t.Errorf("Unpriced item leaked into result: %s", v.Name)
		}
	}
}

func TestValue_ZeroPricedItemIncluded(t *testing.T) {
	table := prices.NewTable(map[string]int{
		"Free Item": 0,
	}, time.Now())

	valued := Value([]steam.InventoryItem{item("1", "Free Item")}, table)

	if len(valued) != 1 {
		t.Fatalf("Zero-priced item excluded; zero must be a valid price")
	}
	if valued[0].Value != 0 {
		t.Errorf("Expected value 0, got %d", valued[0].Value)
	}
}

func TestValue_SortsDescending(t *testing.T) {
	table := prices.NewTable(map[string]int{
		"Cheap":     10,
		"Expensive": 300,
		"Middle":    50,
	}, time.Now())

	items := []steam.InventoryItem{
		item("1", "Cheap"),
		item("2", "Expensive"),
		item("3", "Middle"),
	}

	valued := Value(items, table)

	if len(valued) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(valued))
	}
	for i := 1; i < len(valued); i++ {
		if valued[i].Value > valued[i-1].Value {
			t.Errorf("Result not descending at %d: %d > %d", i, valued[i].Value, valued[i-1].Value)
		}
	}
	if valued[0].Name != "Expensive" || valued[2].Name != "Cheap" {
		t.Errorf("Unexpected order: %v", valued)
	}
}

func TestValue_StableOnTies(t *testing.T) {
	table := prices.NewTable(map[string]int{
		"Twin A": 25,
		"Twin B": 25,
		"Twin C": 25,
	}, time.Now())

	items := []steam.InventoryItem{
		item("1", "Twin B"),
		item("2", "Twin A"),
		item("3", "Twin C"),
	}

	valued := Value(items, table)

	expected := []string{"Twin B", "Twin A", "Twin C"}
	for i, name := range expected {
		if valued[i].Name != name {
			t.Errorf("Tie order broken at %d: expected %s, got %s", i, name, valued[i].Name)
		}
	}
}

func TestValue_EmptyInputs(t *testing.T) {
	table := prices.NewTable(map[string]int{"X": 1}, time.Now())

	if got := Value(nil, table); len(got) != 0 {
		t.Errorf("Expected empty result for nil items, got %d", len(got))
	}

	empty := prices.NewTable(nil, time.Now())
	if got := Value([]steam.InventoryItem{item("1", "X")}, empty); len(got) != 0 {
		t.Errorf("Expected empty result for empty table, got %d", len(got))
	}
}

func TestTotal(t *testing.T) {
	items := []ValuedItem{
		{Value: 10},
		{Value: 30},
		{Value: 0},
	}
	if total := Total(items); total != 40 {
		t.Errorf("Expected total 40, got %d", total)
	}
}

func TestSummarize(t *testing.T) {
	// 540 scrap at stock rates: 60 refined, 1 key, $1.90
	items := []ValuedItem{{Value: 540}}

	summary := Summarize(items, DefaultRates())

	if math.Abs(summary.Refined-60) > 1e-9 {
		t.Errorf("Expected 60 refined, got %f", summary.Refined)
	}
	if math.Abs(summary.Keys-1) > 1e-9 {
		t.Errorf("Expected 1 key, got %f", summary.Keys)
	}
	if math.Abs(summary.USD-1.90) > 1e-9 {
		t.Errorf("Expected $1.90, got %f", summary.USD)
	}
}

func TestSummarize_CustomRates(t *testing.T) {
	items := []ValuedItem{{Value: 100}}
	rates := Rates{ScrapPerRefined: 10, RefinedPerKey: 5, USDPerKey: 2}

	summary := Summarize(items, rates)

	if math.Abs(summary.Refined-10) > 1e-9 {
		t.Errorf("Expected 10 refined, got %f", summary.Refined)
	}
	if math.Abs(summary.Keys-2) > 1e-9 {
		t.Errorf("Expected 2 keys, got %f", summary.Keys)
	}
	if math.Abs(summary.USD-4) > 1e-9 {
		t.Errorf("Expected $4, got %f", summary.USD)
	}
}
