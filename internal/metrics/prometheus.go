// Package metrics provides Prometheus metrics for the trade depot
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Session metrics
	LoginsTotal    *prometheus.CounterVec
	SessionsActive prometheus.Gauge

	// Offer metrics
	OffersSubmitted  *prometheus.CounterVec
	OfferItems       prometheus.Histogram
	OfferTransitions *prometheus.CounterVec

	// Price feed metrics
	PriceFetchesTotal  *prometheus.CounterVec
	PriceFetchDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics on the default registry
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates metrics on a specific registry (tests)
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "tradedepot"
	}

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Total bot login attempts by result",
			},
			[]string{"result"},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of registered bot sessions",
			},
		),
		OffersSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "offers_submitted_total",
				Help:      "Total trade offer submissions by result",
			},
			[]string{"result"},
		),
		OfferItems: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "offer_items",
				Help:      "Number of items per submitted offer",
				Buckets:   []float64{1, 5, 10, 20, 30, 40, 49},
			},
		),
		OfferTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "offer_state_transitions_total",
				Help:      "Total observed offer state transitions by new state",
			},
			[]string{"state"},
		),
		PriceFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "price_fetches_total",
				Help:      "Total price feed fetches by result",
			},
			[]string{"result"},
		),
		PriceFetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "price_fetch_duration_seconds",
				Help:      "Price feed fetch duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.LoginsTotal,
		m.SessionsActive,
		m.OffersSubmitted,
		m.OfferItems,
		m.OfferTransitions,
		m.PriceFetchesTotal,
		m.PriceFetchDuration,
	)

	return m
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns HTTP middleware that records request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(wrapped.statusCode)

		m.RequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		m.RequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
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

// RecordLogin records one login attempt outcome
func (m *Metrics) RecordLogin(result string) {
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// RecordOffer records one offer submission outcome and its size
func (m *Metrics) RecordOffer(result string, itemCount int) {
	m.OffersSubmitted.WithLabelValues(result).Inc()
	if itemCount > 0 {
		m.OfferItems.Observe(float64(itemCount))
	}
}

// RecordOfferTransition records one observed state transition
func (m *Metrics) RecordOfferTransition(state string) {
	m.OfferTransitions.WithLabelValues(state).Inc()
}

// RecordPriceFetch records one price feed fetch
func (m *Metrics) RecordPriceFetch(duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.PriceFetchesTotal.WithLabelValues(result).Inc()
	if err == nil {
		m.PriceFetchDuration.Observe(duration.Seconds())
	}
}
