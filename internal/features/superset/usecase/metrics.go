package usecase

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector manages Prometheus metrics for the Superset client.
// A nil collector records nothing.
type MetricsCollector struct {
	loginCounter      *prometheus.CounterVec
	cacheCounter      *prometheus.CounterVec
	guestTokenCounter *prometheus.CounterVec
	retryCounter      prometheus.Counter
	upstreamCounter   *prometheus.CounterVec
	upstreamLatency   *prometheus.HistogramVec
}

// NewMetricsCollector creates a collector and registers it with reg when reg is not nil
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	m := &MetricsCollector{
		loginCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "superset_embed_logins_total",
				Help: "Count of login calls to Superset by outcome",
			},
			[]string{"success"},
		),
		cacheCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "superset_embed_token_cache_lookups_total",
				Help: "Count of access token lookups by result (hit, miss, bypass)",
			},
			[]string{"result"},
		),
		guestTokenCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "superset_embed_guest_tokens_total",
				Help: "Count of guest token requests by outcome",
			},
			[]string{"success"},
		),
		retryCounter: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "superset_embed_token_refresh_retries_total",
				Help: "Count of operations retried after a cached access token was rejected",
			},
		),
		upstreamCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "superset_embed_upstream_requests_total",
				Help: "Count of Superset API requests by operation and status code",
			},
			[]string{"operation", "code"},
		),
		upstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "superset_embed_upstream_request_duration_seconds",
				Help:    "Duration of Superset API requests",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
			[]string{"operation"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.loginCounter,
			m.cacheCounter,
			m.guestTokenCounter,
			m.retryCounter,
			m.upstreamCounter,
			m.upstreamLatency,
		)
	}

	return m
}

// RecordLogin records the outcome of a login call
func (m *MetricsCollector) RecordLogin(successful bool) {
	if m == nil {
		return
	}
	m.loginCounter.WithLabelValues(strconv.FormatBool(successful)).Inc()
}

// RecordCacheLookup records a token cache lookup result
func (m *MetricsCollector) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheCounter.WithLabelValues(result).Inc()
}

// RecordGuestToken records the outcome of a guest token request
func (m *MetricsCollector) RecordGuestToken(successful bool) {
	if m == nil {
		return
	}
	m.guestTokenCounter.WithLabelValues(strconv.FormatBool(successful)).Inc()
}

// RecordTokenRetry records a forced refresh after a rejected cached token
func (m *MetricsCollector) RecordTokenRetry() {
	if m == nil {
		return
	}
	m.retryCounter.Inc()
}

// ObserveUpstream records one Superset API round trip; code 0 means no response
func (m *MetricsCollector) ObserveUpstream(operation string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamCounter.WithLabelValues(operation, strconv.Itoa(code)).Inc()
	m.upstreamLatency.WithLabelValues(operation).Observe(duration.Seconds())
}
