// Package metrics provides Prometheus metrics for the card resolver.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_resolver_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "card_resolver_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Identity Resolution Metrics
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_resolver_resolutions_total",
			Help: "Identity resolutions by game, winning strategy and confidence",
		},
		[]string{"game", "strategy", "confidence"},
	)

	ResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "card_resolver_resolution_duration_seconds",
			Help:    "Time taken to resolve a card identity",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"game"},
	)

	ResolutionScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "card_resolver_resolution_score",
			Help:    "Score of the returned candidate",
			Buckets: []float64{0.1, 0.3, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
		},
	)

	CoalescedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "card_resolver_coalesced_requests_total",
			Help: "Resolutions that shared an in-flight identical request",
		},
	)

	// Catalog Metrics
	CatalogRecordsByGame = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "card_resolver_catalog_records",
			Help: "Number of reference catalog records by game",
		},
		[]string{"game"},
	)

	// Pricing API Metrics
	PricingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_resolver_pricing_requests_total",
			Help: "Pricing API requests by endpoint and outcome",
		},
		[]string{"endpoint", "result"}, // result: "success", "error", "cloudflare"
	)

	PricingRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "card_resolver_pricing_retries_total",
			Help: "Pricing API requests retried after a transient failure",
		},
	)

	PricingAPILatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "card_resolver_pricing_api_latency_seconds",
			Help:    "Pricing API call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 15},
		},
	)

	PriceMatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_resolver_price_matches_total",
			Help: "Price catalog matches by game and confidence",
		},
		[]string{"game", "confidence", "fallback"},
	)

	// Price Cache Metrics
	PriceCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "card_resolver_price_cache_hits_total",
			Help: "Price cache hit count",
		},
	)

	PriceCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "card_resolver_price_cache_misses_total",
			Help: "Price cache miss count",
		},
	)
)
