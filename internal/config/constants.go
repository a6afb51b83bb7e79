// Package config provides shared configuration constants for the trade depot
package config

import "time"

// Server timeout defaults
const (
	// ServerReadTimeout is the maximum duration for reading the entire request
	ServerReadTimeout = 30 * time.Second

	// ServerWriteTimeout is the maximum duration before timing out writes of the response
	ServerWriteTimeout = 60 * time.Second

	// ServerIdleTimeout is the maximum time to wait for the next request when keep-alives are enabled
	ServerIdleTimeout = 120 * time.Second

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 30 * time.Second
)

// Provider limits
const (
	// OfferItemCeiling is the maximum number of items Steam accepts in one trade offer
	OfferItemCeiling = 49

	// TF2AppID is the Steam application ID for Team Fortress 2
	TF2AppID = 440

	// CommunityContextID is the inventory context holding tradable items
	CommunityContextID = 2
)

// Currency conversion defaults. These are business policy, overridable
// via environment; the conversion shape (chained division) is fixed.
const (
	// DefaultScrapPerRefined is how many scrap make one refined metal
	DefaultScrapPerRefined = 9.0

	// DefaultRefinedPerKey is the approximate refined price of one key
	DefaultRefinedPerKey = 60.0

	// DefaultUSDPerKey is the estimated USD price of one key
	DefaultUSDPerKey = 1.90
)

// Price feed defaults
const (
	// PriceFeedTimeout is the default timeout for one price feed fetch
	PriceFeedTimeout = 10 * time.Second

	// PriceFeedMaxResponseSize bounds feed responses (backpack.tf price
	// dumps are large but stay well under this)
	PriceFeedMaxResponseSize = 32 * 1024 * 1024
)

// Offer tracking defaults
const (
	// OfferPollInterval is how often each session polls for offer state changes
	OfferPollInterval = 30 * time.Second
)

// Size limiting defaults
const (
	// DefaultMaxBodySize is the default maximum request body size (1MB,
	// enough for any credential bundle)
	DefaultMaxBodySize = 1024 * 1024

	// DefaultMaxURLLength is the default maximum URL length (8KB)
	DefaultMaxURLLength = 8192
)

// CORS defaults
const (
	// CORSMaxAge is the preflight cache duration in seconds (24 hours)
	CORSMaxAge = 86400
)

// Notification defaults
const (
	// WebhookTimeout is the timeout for one webhook delivery attempt
	WebhookTimeout = 10 * time.Second
)
