package main

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/depotworks/tradedepot/internal/config"
	"github.com/depotworks/tradedepot/internal/valuation"
)

// ServerConfig holds all server configuration
type ServerConfig struct {
	// Server
	Port      string
	MafileDir string

	// Price feed
	PriceFeedURL     string
	PriceFeedAPIKey  string
	PriceFeedTimeout time.Duration
	PriceCacheTTL    time.Duration

	// Redis
	RedisURL string

	// Notifications
	WebhookURL string

	// Steam
	SteamAPIKey       string
	OfferPollInterval time.Duration

	// Offer construction
	OfferCeiling int
	AppID        uint32
	ContextID    uint32
	Rates        valuation.Rates
}

// ParseConfig parses configuration from flags and environment variables
func ParseConfig() *ServerConfig {
	port := flag.String("port", getEnvOrDefault("PORT", "3000"), "Server port")
	mafileDir := flag.String("mafile-dir", getEnvOrDefault("MAFILE_DIR", "mafiles"), "Credential bundle directory")
	feedURL := flag.String("price-feed-url", getEnvOrDefault("PRICE_FEED_URL", "https://backpack.tf/api/IGetPrices/v4"), "Price feed endpoint")
	cacheTTL := flag.Duration("price-cache-ttl", getEnvDurationOrDefault("PRICE_CACHE_TTL", 0), "Price snapshot cache TTL, 0 disables caching")
	pollInterval := flag.Duration("offer-poll-interval", getEnvDurationOrDefault("OFFER_POLL_INTERVAL", config.OfferPollInterval), "Offer state poll interval")
	flag.Parse()

	return &ServerConfig{
		Port:              *port,
		MafileDir:         *mafileDir,
		PriceFeedURL:      *feedURL,
		PriceFeedAPIKey:   os.Getenv("PRICE_FEED_API_KEY"),
		PriceFeedTimeout:  getEnvDurationOrDefault("PRICE_FEED_TIMEOUT", config.PriceFeedTimeout),
		PriceCacheTTL:     *cacheTTL,
		RedisURL:          os.Getenv("REDIS_URL"),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		SteamAPIKey:       os.Getenv("STEAM_API_KEY"),
		OfferPollInterval: *pollInterval,
		OfferCeiling:      getEnvIntOrDefault("OFFER_CEILING", config.OfferItemCeiling),
		AppID:             uint32(getEnvIntOrDefault("APP_ID", config.TF2AppID)),
		ContextID:         uint32(getEnvIntOrDefault("CONTEXT_ID", config.CommunityContextID)),
		Rates: valuation.Rates{
			ScrapPerRefined: getEnvFloatOrDefault("SCRAP_PER_REFINED", config.DefaultScrapPerRefined),
			RefinedPerKey:   getEnvFloatOrDefault("REFINED_PER_KEY", config.DefaultRefinedPerKey),
			USDPerKey:       getEnvFloatOrDefault("USD_PER_KEY", config.DefaultUSDPerKey),
		},
	}
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns the environment variable as int or a default
func getEnvIntOrDefault(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// getEnvFloatOrDefault returns the environment variable as float or a default
func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// getEnvDurationOrDefault returns the environment variable as duration or a default
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
