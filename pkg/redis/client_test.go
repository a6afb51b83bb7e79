package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, string) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	return mr, "redis://" + mr.Addr()
}

func TestNew_Success(t *testing.T) {
	mr, redisURL := setupTestRedis(t)
	defer mr.Close()

	client, err := New(redisURL)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestNew_EmptyURL(t *testing.T) {
	client, err := New("")
	if err == nil {
		t.Error("Expected error for empty URL")
	}
	if client != nil {
		t.Error("Expected nil client on error")
	}
}

func TestNew_InvalidURL(t *testing.T) {
	client, err := New("not-a-valid-redis-url")
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
	if client != nil {
		t.Error("Expected nil client on error")
	}
}

func TestGetSet(t *testing.T) {
	mr, redisURL := setupTestRedis(t)
	defer mr.Close()

	client, err := New(redisURL)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	if err := client.Set(ctx, "prices:snapshot", `{"a":1}`, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := client.Get(ctx, "prices:snapshot")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != `{"a":1}` {
		t.Errorf("Expected stored value, got %q", value)
	}
}

func TestGet_MissingKey(t *testing.T) {
	mr, redisURL := setupTestRedis(t)
	defer mr.Close()

	client, err := New(redisURL)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	value, err := client.Get(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "" {
		t.Errorf("Expected empty string for missing key, got %q", value)
	}
}

func TestSet_Expiry(t *testing.T) {
	mr, redisURL := setupTestRedis(t)
	defer mr.Close()

	client, err := New(redisURL)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	if err := client.Set(ctx, "short-lived", "x", 30*time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	ttl, err := client.TTL(ctx, "short-lived")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > 30*time.Second {
		t.Errorf("Expected TTL in (0, 30s], got %v", ttl)
	}

	// Expire the key and confirm it reads back as absent
	mr.FastForward(time.Minute)

	value, err := client.Get(ctx, "short-lived")
	if err != nil {
		t.Fatalf("Get after expiry failed: %v", err)
	}
	if value != "" {
		t.Errorf("Expected expired key to be absent, got %q", value)
	}
}

func TestDel(t *testing.T) {
	mr, redisURL := setupTestRedis(t)
	defer mr.Close()

	client, err := New(redisURL)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	if err := client.Set(ctx, "doomed", "x", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := client.Del(ctx, "doomed"); err != nil {
		t.Fatalf("Del failed: %v", err)
	}

	value, err := client.Get(ctx, "doomed")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "" {
		t.Errorf("Expected deleted key to be absent, got %q", value)
	}
}
