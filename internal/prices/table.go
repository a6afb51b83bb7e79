// Package prices provides the item price table and its feed client.
// A Table is an immutable snapshot; every fetch produces a new one.
package prices

import "time"

// Table is a snapshot of item name to value mappings. Values are in
// scrap, the base currency unit. Immutable once constructed.
type Table struct {
	entries   map[string]int
	fetchedAt time.Time
}

// NewTable builds a snapshot from a value mapping. The mapping is
// copied so later mutation by the caller cannot leak in.
func NewTable(entries map[string]int, fetchedAt time.Time) *Table {
	copied := make(map[string]int, len(entries))
	for name, value := range entries {
		copied[name] = value
	}
	return &Table{entries: copied, fetchedAt: fetchedAt}
}

// Lookup returns the value for an item name. The second return value
// distinguishes an absent item from one genuinely priced at zero.
func (t *Table) Lookup(name string) (int, bool) {
	value, ok := t.entries[name]
	return value, ok
}

// Len returns the number of priced items in the snapshot
func (t *Table) Len() int {
	return len(t.entries)
}

// FetchedAt returns when the snapshot was taken
func (t *Table) FetchedAt() time.Time {
	return t.fetchedAt
}

// Entries returns a copy of the underlying mapping
func (t *Table) Entries() map[string]int {
	copied := make(map[string]int, len(t.entries))
	for name, value := range t.entries {
		copied[name] = value
	}
	return copied
}
