// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package api

import (
	"net/http"
	"time"

	"github.com/jaspercycles/journeycache/internal/cache"
	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/middleware"
)

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	StoreBackend  string            `json:"store_backend"`
	CacheVersion  string            `json:"cache_version"`
	Breakers      map[string]string `json:"breakers"`
	LiveStreams   int               `json:"live_streams"`
}

// CacheStats is the body of GET /api/cache/stats.
type CacheStats struct {
	cache.Stats
	HitRate float64 `json:"hit_rate"`
	Version string  `json:"version"`
}

// CacheClearResult is the body of POST /api/cache/clear.
type CacheClearResult struct {
	Removed int `json:"removed"`
}

// Health reports liveness and upstream breaker states. The service stays
// "healthy" while serving fallbacks; an open breaker marks it "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := "healthy"
	breakers := make(map[string]string, len(h.deps.Breakers))
	for name, b := range h.deps.Breakers {
		state := b.BreakerState()
		breakers[name] = state
		if state == "open" {
			status = "degraded"
		}
	}

	streams := 0
	if h.deps.Hub != nil {
		streams = h.deps.Hub.Streams()
	}

	respondData(w, r, HealthStatus{
		Status:        status,
		Version:       h.deps.Version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		StoreBackend:  h.deps.StoreBackend,
		CacheVersion:  h.deps.Journey.Cache().Version(),
		Breakers:      breakers,
		LiveStreams:   streams,
	}, start)
}

// CacheStats returns the cache counters.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	c := h.deps.Journey.Cache()
	stats := c.Stats()
	respondData(w, r, CacheStats{Stats: stats, HitRate: stats.HitRate(), Version: c.Version()}, start)
}

// CacheClear removes every cache entry, leaving foreign keys in the store
// untouched.
func (h *Handler) CacheClear(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	removed := h.deps.Journey.Cache().ClearCache()
	logging.Ctx(r.Context()).Info().Int("removed", removed).Msg("Cache cleared via API")
	respondData(w, r, CacheClearResult{Removed: removed}, start)
}

// PerformanceStats returns per-route latency over the recent window.
func (h *Handler) PerformanceStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondData(w, r, struct {
		Routes []middleware.RouteStats    `json:"routes"`
		Recent []middleware.RequestSample `json:"recent"`
	}{
		Routes: h.deps.Performance.Stats(),
		Recent: h.deps.Performance.Recent(getIntParam(r, "recent", 20)),
	}, start)
}
