package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"time"

	depotconfig "github.com/depotworks/tradedepot/internal/config"
	"github.com/depotworks/tradedepot/internal/endpoints"
	"github.com/depotworks/tradedepot/internal/metrics"
	"github.com/depotworks/tradedepot/internal/middleware"
	"github.com/depotworks/tradedepot/internal/notify"
	"github.com/depotworks/tradedepot/internal/offers"
	"github.com/depotworks/tradedepot/internal/prices"
	"github.com/depotworks/tradedepot/internal/registry"
	"github.com/depotworks/tradedepot/internal/session"
	"github.com/depotworks/tradedepot/internal/steam"
	"github.com/depotworks/tradedepot/pkg/logger"
	"github.com/depotworks/tradedepot/pkg/redis"
)

// Server represents the trade depot server
type Server struct {
	config      *ServerConfig
	httpServer  *http.Server
	metrics     *metrics.Metrics
	registry    *registry.SessionRegistry
	manager     *session.Manager
	tracker     *offers.Tracker
	notifier    notify.Notifier
	priceSource prices.Source
	redisClient *redis.Client
}

// NewServer creates a new trade depot server instance
func NewServer(cfg *ServerConfig) (*Server, error) {
	s := &Server{
		config: cfg,
	}

	if err := s.initialize(); err != nil {
		return nil, err
	}

	return s, nil
}

// initialize sets up all server components
func (s *Server) initialize() error {
	log := logger.Log

	log.Info().
		Str("port", s.config.Port).
		Str("mafile_dir", s.config.MafileDir).
		Str("price_feed", s.config.PriceFeedURL).
		Dur("poll_interval", s.config.OfferPollInterval).
		Msg("Initializing trade depot server")

	// Initialize Prometheus metrics
	s.metrics = metrics.NewMetrics("tradedepot")
	log.Info().Msg("Prometheus metrics enabled")

	if err := os.MkdirAll(s.config.MafileDir, 0o700); err != nil {
		return err
	}

	// Initialize Redis if configured
	if err := s.initRedis(); err != nil {
		// Redis failures are non-fatal, log and continue
		log.Warn().Err(err).Msg("Redis initialization failed, continuing with reduced functionality")
	}

	s.initNotifier()
	s.initPrices()
	s.initSessions()
	s.initHandlers()

	return nil
}

// initRedis initializes the Redis client
func (s *Server) initRedis() error {
	log := logger.Log

	if s.config.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, price snapshot caching disabled")
		return nil
	}

	var err error
	s.redisClient, err = redis.New(s.config.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis")
		return err
	}

	log.Info().Msg("Redis client initialized")
	return nil
}

// initNotifier initializes the webhook notifier
func (s *Server) initNotifier() {
	log := logger.Log

	if s.config.WebhookURL == "" {
		log.Info().Msg("WEBHOOK_URL not set, notifications disabled")
	}
	s.notifier = notify.NewWebhook(s.config.WebhookURL)
}

// initPrices initializes the price feed source
func (s *Server) initPrices() {
	log := logger.Log

	feed := prices.NewFeedClient(prices.FeedConfig{
		Endpoint: s.config.PriceFeedURL,
		APIKey:   s.config.PriceFeedAPIKey,
		Timeout:  s.config.PriceFeedTimeout,
	})
	s.priceSource = prices.NewCachedSource(feed, s.redisClient, s.config.PriceCacheTTL)

	if s.redisClient != nil && s.config.PriceCacheTTL > 0 {
		log.Info().Dur("ttl", s.config.PriceCacheTTL).Msg("Price snapshot caching enabled")
	}
}

// initSessions initializes the session pool and lifecycle manager
func (s *Server) initSessions() {
	log := logger.Log

	s.registry = registry.NewSessionRegistry()
	s.tracker = offers.NewTracker(s.notifier)
	s.tracker.SetMetrics(s.metrics)

	if s.config.SteamAPIKey == "" {
		log.Warn().Msg("STEAM_API_KEY not set, offer state polling disabled")
	}

	auth := steam.NewWebAuth(steam.WebAuthConfig{
		APIKey:       s.config.SteamAPIKey,
		PollInterval: s.config.OfferPollInterval,
	})
	s.manager = session.NewManager(session.NewWebAuthenticator(auth), s.registry, s.notifier, s.tracker)
	s.manager.SetMetrics(s.metrics)

	log.Info().Msg("Session lifecycle manager initialized")
}

// initHandlers initializes HTTP handlers and builds the handler chain
func (s *Server) initHandlers() {
	sessionsHandler := endpoints.NewSessionsHandler(s.manager, s.registry, s.config.MafileDir)
	offersHandler := endpoints.NewOffersHandler(s.registry, s.priceSource, s.tracker, s.notifier, endpoints.OffersConfig{
		Ceiling:   s.config.OfferCeiling,
		AppID:     s.config.AppID,
		ContextID: s.config.ContextID,
		Rates:     s.config.Rates,
	})
	offersHandler.SetMetrics(s.metrics)
	statusHandler := endpoints.NewStatusHandler(s.registry)

	// Setup routes
	mux := http.NewServeMux()
	mux.Handle("/sessions", sessionsHandler)
	mux.Handle("/offers", offersHandler)
	mux.Handle("/status", statusHandler)
	mux.Handle("/health", healthHandler())
	mux.Handle("/health/ready", readyHandler(s.redisClient))

	// Prometheus metrics endpoint
	mux.Handle("/metrics", metrics.Handler())

	// Build middleware chain
	handler := s.buildHandler(mux)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      handler,
		ReadTimeout:  depotconfig.ServerReadTimeout,
		WriteTimeout: depotconfig.ServerWriteTimeout,
		IdleTimeout:  depotconfig.ServerIdleTimeout,
	}
}

// buildHandler builds the middleware chain
func (s *Server) buildHandler(mux *http.ServeMux) http.Handler {
	cors := middleware.NewCORS(middleware.DefaultCORSConfig())
	sizeLimiter := middleware.NewSizeLimiter(middleware.DefaultSizeLimitConfig())

	logger.Log.Info().
		Bool("cors_enabled", true).
		Bool("size_limiting_enabled", true).
		Msg("Middleware chain built")

	// Build chain: CORS -> Logging -> Size Limit -> Metrics -> Handler
	handler := http.Handler(mux)
	handler = s.metrics.Middleware(handler)
	handler = sizeLimiter.Middleware(handler)
	handler = loggingMiddleware(handler)
	handler = cors.Middleware(handler)

	return handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log := logger.Log
	log.Info().Str("addr", s.httpServer.Addr).Msg("Server listening")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown performs graceful shutdown
func (s *Server) Shutdown(ctx context.Context) error {
	log := logger.Log
	log.Info().Msg("Starting graceful shutdown")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing Redis client")
		}
	}

	log.Info().Msg("Server stopped gracefully")
	return nil
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests with structured logging
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(wrapped, r.WithContext(logger.WithRequestID(r.Context(), requestID)))

		duration := time.Since(start)

		event := logger.Log.Info()
		if wrapped.statusCode >= 400 {
			event = logger.Log.Warn()
		}
		if wrapped.statusCode >= 500 {
			event = logger.Log.Error()
		}

		event.
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration_ms", duration).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP request")
	})
}

// healthHandler returns a simple liveness check
func healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(health); err != nil {
			logger.Log.Error().Err(err).Msg("failed to encode health response")
		}
	})
}

// readyHandler returns a readiness check with dependency verification
func readyHandler(redisClient *redis.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := make(map[string]interface{})
		allHealthy := true

		if redisClient != nil {
			if err := redisClient.Ping(ctx); err != nil {
				checks["redis"] = map[string]interface{}{
					"status": "unhealthy",
					"error":  err.Error(),
				}
				allHealthy = false
			} else {
				checks["redis"] = map[string]interface{}{
					"status": "healthy",
				}
			}
		} else {
			checks["redis"] = map[string]interface{}{
				"status": "disabled",
			}
		}

		status := http.StatusOK
		if !allHealthy {
			status = http.StatusServiceUnavailable
		}

		response := map[string]interface{}{
			"ready":     allHealthy,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"checks":    checks,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.Log.Error().Err(err).Msg("failed to encode readiness response")
		}
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(b)
}
