package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/depotworks/tradedepot/internal/session"
)

func TestRegisterAndLookup(t *testing.T) {
	reg := NewSessionRegistry()

	s := &session.Session{Identity: "76561198000000001", DisplayName: "BotOne"}
	if err := reg.Register(s); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := reg.Lookup("76561198000000001")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != s {
		t.Error("Expected lookup to return the registered session")
	}
}

func TestLookup_NotFound(t *testing.T) {
	reg := NewSessionRegistry()

	_, err := reg.Lookup("76561198000000001")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRegister_DuplicateKeepsOriginal(t *testing.T) {
	reg := NewSessionRegistry()

	original := &session.Session{Identity: "76561198000000001", DisplayName: "Original"}
	if err := reg.Register(original); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	replacement := &session.Session{Identity: "76561198000000001", DisplayName: "Replacement"}
	err := reg.Register(replacement)
	if !errors.Is(err, session.ErrDuplicateIdentity) {
		t.Fatalf("Expected ErrDuplicateIdentity, got %v", err)
	}

	got, err := reg.Lookup("76561198000000001")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != original {
		t.Error("Expected the original session to survive the duplicate")
	}
}

func TestList_SortedByIdentity(t *testing.T) {
	reg := NewSessionRegistry()

	for _, s := range []*session.Session{
		{Identity: "76561198000000003", DisplayName: "Charlie"},
		{Identity: "76561198000000001", DisplayName: "Alpha"},
		{Identity: "76561198000000002", DisplayName: "Bravo"},
	} {
		if err := reg.Register(s); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	entries := reg.List()
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"Alpha", "Bravo", "Charlie"} {
		if entries[i].DisplayName != want {
			t.Errorf("Entry %d: expected %s, got %s", i, want, entries[i].DisplayName)
		}
	}
}

func TestList_Empty(t *testing.T) {
	reg := NewSessionRegistry()
	if entries := reg.List(); len(entries) != 0 {
		t.Errorf("Expected empty list, got %d entries", len(entries))
	}
}

func TestConcurrentRegister(t *testing.T) {
	reg := NewSessionRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := &session.Session{
				Identity:    fmt.Sprintf("7656119800000%04d", i%5),
				DisplayName: fmt.Sprintf("Bot%d", i),
			}
			_ = reg.Register(s)
		}(i)
	}
	wg.Wait()

	if reg.Len() != 5 {
		t.Errorf("Expected 5 distinct identities, got %d", reg.Len())
	}
}
