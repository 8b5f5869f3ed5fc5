// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package api

import (
	"net/http"
	"net/url"
	"slices"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/jaspercycles/journeycache/internal/journey"
	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/middleware"
	"github.com/jaspercycles/journeycache/internal/websocket"
)

// BreakerReporter exposes an upstream circuit breaker's state.
type BreakerReporter interface {
	BreakerState() string
}

// Deps are the collaborators a Handler serves from.
type Deps struct {
	Journey *journey.Service
	// Hub shares journey coordinators between websocket clients. Nil
	// disables /api/journey/ws.
	Hub          *websocket.Hub[journey.Snapshot]
	Performance  *middleware.PerformanceMonitor
	Breakers     map[string]BreakerReporter
	StoreBackend string
	Version      string
	// AllowedOrigins is matched against websocket Origin headers. "*"
	// allows any origin.
	AllowedOrigins []string
}

// Handler implements the HTTP endpoints.
type Handler struct {
	deps      Deps
	startTime time.Time
}

// NewHandler creates a handler.
func NewHandler(deps Deps) *Handler {
	if deps.Performance == nil {
		deps.Performance = middleware.NewPerformanceMonitor(0)
	}
	return &Handler{deps: deps, startTime: time.Now()}
}

func (h *Handler) getUpgrader() gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin allows same-host requests, requests without an
// Origin header and the configured origins.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(h.deps.AllowedOrigins, "*") || slices.Contains(h.deps.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err == nil && u.Host == r.Host {
		return true
	}
	logging.Ctx(r.Context()).Warn().Str("origin", sanitizeLogValue(origin)).Msg("Websocket origin rejected")
	return false
}
