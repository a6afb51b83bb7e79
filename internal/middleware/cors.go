// Package middleware provides HTTP middleware components
package middleware

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/depotworks/tradedepot/internal/config"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled        bool
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// DefaultCORSConfig returns default CORS configuration. Origins come
// from CORS_ALLOWED_ORIGINS (comma separated), default wildcard.
func DefaultCORSConfig() *CORSConfig {
	origins := []string{"*"}
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	return &CORSConfig{
		Enabled:        os.Getenv("CORS_ENABLED") != "false",
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         config.CORSMaxAge,
	}
}

// CORS provides cross-origin request middleware
type CORS struct {
	config *CORSConfig
}

// NewCORS creates a new CORS middleware
func NewCORS(cfg *CORSConfig) *CORS {
	if cfg == nil {
		cfg = DefaultCORSConfig()
	}
	return &CORS{config: cfg}
}

// Middleware returns the CORS middleware handler
func (c *CORS) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		origin := r.Header.Get("Origin")
		if origin != "" && c.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", c.allowOriginValue(origin))
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", strings.Join(c.config.AllowedMethods, ", "))
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(c.config.AllowedHeaders, ", "))
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(c.config.MaxAge))
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (c *CORS) originAllowed(origin string) bool {
	for _, allowed := range c.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (c *CORS) allowOriginValue(origin string) string {
	for _, allowed := range c.config.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
	}
	return origin
}
