// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-xsuaa.
//
// go-xsuaa is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for token key handling
// and token verification. Metrics are registered with the default registry and
// can be switched off with Disable.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all xsuaa metrics
	Namespace = "xsuaa"

	// Label names
	LabelStatus    = "status"
	LabelResult    = "result"
	LabelReason    = "reason"
	LabelErrorType = "error_type"
	LabelEndpoint  = "endpoint"
	LabelService   = "service"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Key lookup results
	LookupHit     = "hit"
	LookupDefault = "default"
	LookupMiss    = "miss"

	// Key set refresh reasons
	RefreshInitial    = "initial"
	RefreshExpired    = "expired"
	RefreshUnknownKey = "unknown_kid"
)

var (
	// JWKSFetchesTotal counts token keys downloads by endpoint host and status.
	JWKSFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "jwks",
			Name:      "fetches_total",
			Help:      "Total number of token keys downloads by endpoint and status",
		},
		[]string{LabelEndpoint, LabelStatus},
	)

	// JWKSFetchDuration tracks token keys download latency in seconds,
	// including retries.
	JWKSFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "jwks",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of token keys downloads in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{LabelEndpoint},
	)

	// JWKSRefreshesTotal counts key set refreshes by reason.
	JWKSRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "jwks",
			Name:      "refreshes_total",
			Help:      "Total number of key set refreshes by reason",
		},
		[]string{LabelReason},
	)

	// JWKSRefreshesThrottled counts forced refreshes suppressed by the rate limiter.
	JWKSRefreshesThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "jwks",
			Name:      "refreshes_throttled_total",
			Help:      "Total number of forced key set refreshes suppressed by rate limiting",
		},
	)

	// JWKSStaleServed counts lookups answered from a key set that could not
	// be refreshed.
	JWKSStaleServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "jwks",
			Name:      "stale_served_total",
			Help:      "Total number of lookups served from a stale key set after a failed refresh",
		},
	)

	// JWKSKeys tracks the number of cached keys per endpoint host.
	JWKSKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "jwks",
			Name:      "keys",
			Help:      "Number of cached verification keys by endpoint",
		},
		[]string{LabelEndpoint},
	)

	// KeyLookupsTotal counts key lookups by result.
	KeyLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "key_lookups_total",
			Help:      "Total number of verification key lookups by result",
		},
		[]string{LabelResult},
	)

	// VerificationsTotal counts token verifications by status and error type.
	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "verifications_total",
			Help:      "Total number of token verifications by status and error type",
		},
		[]string{LabelStatus, LabelErrorType},
	)

	// VerificationDuration tracks token verification latency in seconds.
	VerificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "verification_duration_seconds",
			Help:      "Duration of token verifications in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	// BindingsLoaded tracks the number of service bindings found per service.
	BindingsLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "bindings_loaded",
			Help:      "Number of service bindings found in the environment by service",
		},
		[]string{LabelService},
	)

	// enabled tracks whether metrics collection is enabled
	enabled atomic.Bool
)

func init() {
	// Metrics are enabled by default
	enabled.Store(true)
}

// RecordJWKSFetch records a token keys download.
//
// Example:
//
//	start := time.Now()
//	data, err := fetcher.Fetch(ctx, url)
//	metrics.RecordJWKSFetch(host, err == nil, time.Since(start).Seconds())
func RecordJWKSFetch(endpoint string, success bool, duration float64) {
	if !enabled.Load() {
		return
	}
	status := StatusSuccess
	if !success {
		status = StatusError
	}
	JWKSFetchesTotal.WithLabelValues(endpoint, status).Inc()
	JWKSFetchDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordJWKSRefresh records a key set refresh (use Refresh* constants).
func RecordJWKSRefresh(reason string) {
	if !enabled.Load() {
		return
	}
	JWKSRefreshesTotal.WithLabelValues(reason).Inc()
}

// RecordRefreshThrottled records a forced refresh suppressed by rate limiting.
func RecordRefreshThrottled() {
	if !enabled.Load() {
		return
	}
	JWKSRefreshesThrottled.Inc()
}

// RecordStaleServed records a lookup served from a stale key set.
func RecordStaleServed() {
	if !enabled.Load() {
		return
	}
	JWKSStaleServed.Inc()
}

// SetJWKSKeys sets the number of cached keys for an endpoint.
func SetJWKSKeys(endpoint string, count int) {
	if !enabled.Load() {
		return
	}
	JWKSKeys.WithLabelValues(endpoint).Set(float64(count))
}

// RecordKeyLookup records a key lookup (use Lookup* constants).
func RecordKeyLookup(result string) {
	if !enabled.Load() {
		return
	}
	KeyLookupsTotal.WithLabelValues(result).Inc()
}

// RecordVerification records a token verification. errorType is empty for
// successful verifications.
func RecordVerification(errorType string, duration float64) {
	if !enabled.Load() {
		return
	}
	status := StatusSuccess
	if errorType != "" {
		status = StatusError
	}
	VerificationsTotal.WithLabelValues(status, errorType).Inc()
	VerificationDuration.Observe(duration)
}

// SetBindingsLoaded sets the number of bindings found for a service.
func SetBindingsLoaded(service string, count int) {
	if !enabled.Load() {
		return
	}
	BindingsLoaded.WithLabelValues(service).Set(float64(count))
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
// Useful for testing or when metrics are not desired.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
