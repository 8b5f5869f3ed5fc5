// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

// Package metrics declares the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto.
// Packages call the Record* helpers rather than touching collectors directly
// so that label sets stay consistent.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache service
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journeycache_cache_hits_total",
			Help: "Cache reads that returned a fresh entry",
		},
		[]string{"domain"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journeycache_cache_misses_total",
			Help: "Cache reads that found nothing usable",
		},
		[]string{"domain"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journeycache_cache_evictions_total",
			Help: "Entries removed lazily on read",
		},
		[]string{"domain", "reason"}, // reason: "expired", "version", "corrupt"
	)

	CacheWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journeycache_cache_write_failures_total",
			Help: "Cache writes dropped because of encoding or storage faults",
		},
		[]string{"domain"},
	)

	CacheClears = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journeycache_cache_clears_total",
			Help: "Number of full cache clears",
		},
	)

	// Key-value store
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journeycache_store_operations_total",
			Help: "Key-value store operations by backend and result",
		},
		[]string{"backend", "operation", "result"},
	)

	// Upstream clients
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journeycache_upstream_requests_total",
			Help: "Requests issued to upstream services",
		},
		[]string{"upstream", "endpoint", "status"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "journeycache_upstream_request_duration_seconds",
			Help:    "Latency of upstream requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream", "endpoint"},
	)

	// Fetch orchestration
	FetchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journeycache_fetch_outcomes_total",
			Help: "Final state reached by orchestrated fetches",
		},
		[]string{"accessor", "state"},
	)

	FallbacksServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journeycache_fallbacks_total",
			Help: "Responses served from bundled fallback data",
		},
		[]string{"accessor"},
	)

	// Revalidation
	Revalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journeycache_revalidations_total",
			Help: "Background refreshes by trigger and result",
		},
		[]string{"trigger", "result"}, // trigger: "auto", "manual"
	)

	RevalidationSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "journeycache_revalidation_subscribers",
			Help: "Open state streams",
		},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journeycache_api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "journeycache_api_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "journeycache_api_active_requests",
			Help: "In-flight API requests",
		},
	)
)

// RecordCacheRead counts a cache lookup.
func RecordCacheRead(domain string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(domain).Inc()
		return
	}
	CacheMisses.WithLabelValues(domain).Inc()
}

// RecordCacheEviction counts a lazy eviction.
func RecordCacheEviction(domain, reason string) {
	CacheEvictions.WithLabelValues(domain, reason).Inc()
}

// RecordCacheWriteFailure counts a dropped cache write.
func RecordCacheWriteFailure(domain string) {
	CacheWriteFailures.WithLabelValues(domain).Inc()
}

// RecordStoreOperation counts a store operation.
func RecordStoreOperation(backend, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreOperations.WithLabelValues(backend, operation, result).Inc()
}

// RecordUpstreamRequest records one upstream call. statusCode is 0 when no
// response was received.
func RecordUpstreamRequest(upstream, endpoint string, statusCode int, duration time.Duration) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	UpstreamRequests.WithLabelValues(upstream, endpoint, status).Inc()
	UpstreamDuration.WithLabelValues(upstream, endpoint).Observe(duration.Seconds())
}

// RecordFetchOutcome records the terminal state of an orchestrated fetch.
func RecordFetchOutcome(accessor, state string) {
	FetchOutcomes.WithLabelValues(accessor, state).Inc()
}

// RecordFallback counts a response served from fallback data.
func RecordFallback(accessor string) {
	FallbacksServed.WithLabelValues(accessor).Inc()
}

// RecordRevalidation counts a background refresh.
func RecordRevalidation(trigger string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	Revalidations.WithLabelValues(trigger, result).Inc()
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
