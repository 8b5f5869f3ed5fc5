// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

// Package api serves the journey and content data over HTTP with chi.
//
// Every JSON response uses the APIResponse envelope. Journey lists and
// content lists never fail because of an upstream outage: they fall back
// to bundled data. Single items that cannot be loaded are 404s.
//
// Routes:
//
//	GET  /api/health
//	GET  /api/journey/activities?startDate=&skipCache=
//	GET  /api/journey/activities/{id}
//	GET  /api/journey/activities/{id}/photos?size=
//	GET  /api/journey/routes/{id}
//	GET  /api/journey/planned-route
//	GET  /api/journey/ws?startDate=          (websocket)
//	GET  /api/posts?page=&per_page=&tag=
//	GET  /api/posts/{slug}
//	GET  /api/tags
//	GET  /api/authors
//	GET  /api/authors/{id}
//	GET  /api/cache/stats
//	POST /api/cache/clear
//	GET  /api/debug/performance
//	GET  /metrics
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jaspercycles/journeycache/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil config uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, config *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(config),
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(h.deps.Performance.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil, nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	// The websocket stays outside compression and security headers.
	r.With(router.chiMiddleware.RateLimit()).Get("/api/journey/ws", h.JourneyStream)

	r.Route("/api", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Route("/journey", func(r chi.Router) {
				r.Get("/activities", h.JourneyActivities)
				r.Get("/activities/{id}", h.JourneyActivity)
				r.Get("/activities/{id}/photos", h.JourneyActivityPhotos)
				r.Get("/routes/{id}", h.JourneyRoute)
				r.Get("/planned-route", h.JourneyPlannedRoute)
			})

			r.Get("/posts", h.Posts)
			r.Get("/posts/{slug}", h.Post)
			r.Get("/tags", h.Tags)
			r.Get("/authors", h.Authors)
			r.Get("/authors/{id}", h.Author)

			r.Get("/cache/stats", h.CacheStats)
			r.With(router.chiMiddleware.RateLimitStrict()).Post("/cache/clear", h.CacheClear)
			r.Get("/debug/performance", h.PerformanceStats)
		})
	})

	return r
}
