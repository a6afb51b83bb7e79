package prices

import (
	"context"
	"encoding/json"
	"time"

	"github.com/depotworks/tradedepot/pkg/logger"
	"github.com/depotworks/tradedepot/pkg/redis"
)

// snapshotKey is the Redis key holding the cached price snapshot
const snapshotKey = "tradedepot:prices:snapshot"

// cachedTable is the wire form of a snapshot in Redis
type cachedTable struct {
	Entries   map[string]int `json:"entries"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// CachedSource decorates a Source with a short-lived Redis snapshot
// cache. This is the documented staleness tradeoff: with caching on, a
// request may observe a snapshot up to TTL old. Any cache failure falls
// through to the feed; the cache never makes a request fail.
type CachedSource struct {
	src   Source
	cache *redis.Client
	ttl   time.Duration
}

// NewCachedSource wraps a source with the Redis cache
func NewCachedSource(src Source, cache *redis.Client, ttl time.Duration) *CachedSource {
	return &CachedSource{src: src, cache: cache, ttl: ttl}
}

// Fetch returns the cached snapshot when fresh, otherwise fetches from
// the feed and stores the result.
func (s *CachedSource) Fetch(ctx context.Context) (*Table, error) {
	if s.cache == nil || s.ttl <= 0 {
		return s.src.Fetch(ctx)
	}

	if raw, err := s.cache.Get(ctx, snapshotKey); err != nil {
		logger.Feed().Warn().Err(err).Msg("Price cache read failed, falling through to feed")
	} else if raw != "" {
		var cached cachedTable
		if err := json.Unmarshal([]byte(raw), &cached); err != nil {
			logger.Feed().Warn().Err(err).Msg("Price cache entry malformed, falling through to feed")
		} else {
			return NewTable(cached.Entries, cached.FetchedAt), nil
		}
	}

	table, err := s.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(cachedTable{Entries: table.Entries(), FetchedAt: table.FetchedAt()})
	if err == nil {
		if err := s.cache.Set(ctx, snapshotKey, string(raw), s.ttl); err != nil {
			logger.Feed().Warn().Err(err).Msg("Price cache write failed")
		}
	}

	return table, nil
}
