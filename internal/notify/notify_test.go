package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/depotworks/tradedepot/internal/valuation"
)

func TestWebhook_Notify(t *testing.T) {
	received := make(chan webhookPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload webhookPayload
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)
		received <- payload
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	hook := NewWebhook(server.URL)
	hook.Notify(context.Background(), "hello")

	select {
	case payload := <-received:
		if payload.Content != "hello" {
			t.Errorf("Expected content 'hello', got %q", payload.Content)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for delivery")
	}
}

func TestWebhook_DoesNotBlockCaller(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	hook := NewWebhook(server.URL)

	start := time.Now()
	hook.Notify(context.Background(), "slow sink")
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Notify blocked the caller for %v", elapsed)
	}
}

func TestWebhook_EmptyURL(t *testing.T) {
	hook := NewWebhook("")
	// Must be a no-op, not a panic or an error log storm
	hook.Notify(context.Background(), "dropped")
}

func TestWebhook_DeliveryFailureSwallowed(t *testing.T) {
	hook := NewWebhook("http://127.0.0.1:1")
	// Failure must not panic or propagate
	hook.Notify(context.Background(), "lost")
}

func TestWebhook_CanceledCallerContext(t *testing.T) {
	delivered := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered <- struct{}{}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A finished request context must not block delivery
	hook := NewWebhook(server.URL)
	hook.Notify(ctx, "still delivered")

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Error("Expected delivery despite canceled caller context")
	}
}

func TestLoginMessages(t *testing.T) {
	success := LoginSuccess("testbot", "76561198000000001")
	if !strings.Contains(success, "testbot") || !strings.Contains(success, "76561198000000001") {
		t.Errorf("Login success message missing fields: %s", success)
	}

	failure := LoginFailure("testbot", "credentials rejected")
	if !strings.Contains(failure, "credentials rejected") {
		t.Errorf("Login failure message missing reason: %s", failure)
	}

	duplicate := DuplicateSession("testbot", "76561198000000001")
	if duplicate == success {
		t.Error("Duplicate session message must be distinct from fresh success")
	}
	if !strings.Contains(duplicate, "original session kept") {
		t.Errorf("Duplicate message missing retention note: %s", duplicate)
	}
}

func TestItemList(t *testing.T) {
	list := ItemList([]string{"Hat", "Key"})
	expected := "• Hat\n• Key"
	if list != expected {
		t.Errorf("Expected %q, got %q", expected, list)
	}

	if ItemList(nil) != "" {
		t.Errorf("Expected empty list for no items")
	}
}

func TestTradeSent(t *testing.T) {
	msg := TradeSent("testbot", "bundle.maFile",
		"https://steamcommunity.com/profiles/76561198083722517",
		[]string{"Mann Co. Supply Crate Key", "Tour of Duty Ticket"},
		valuation.Summary{Refined: 74.44, Keys: 1.24, USD: 2.36})

	for _, want := range []string{
		"Trade Sent!",
		"Bot: testbot",
		"Items Offered: 2",
		"74.44 ref",
		"1.24 keys",
		"~$2.36 USD",
		"• Mann Co. Supply Crate Key",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Trade sent message missing %q:\n%s", want, msg)
		}
	}
}

func TestStateChange(t *testing.T) {
	tests := []struct {
		newState string
		headline string
	}{
		{"accepted", "Trade Accepted!"},
		{"declined", "Trade Declined."},
		{"canceled", "Trade Canceled."},
		{"expired", "Trade Expired."},
		{"other", "sent → other"},
	}

	for _, tt := range tests {
		t.Run(tt.newState, func(t *testing.T) {
			msg := StateChange("testbot", "4501234567",
				"https://steamcommunity.com/profiles/76561198083722517",
				"sent", tt.newState)
			if !strings.Contains(msg, tt.headline) {
				t.Errorf("Expected headline %q in:\n%s", tt.headline, msg)
			}
			if !strings.Contains(msg, "Trade ID: 4501234567") {
				t.Errorf("Expected offer id in:\n%s", msg)
			}
		})
	}
}
