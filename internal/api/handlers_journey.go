// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package api

import (
	"net/http"
	"time"

	"github.com/jaspercycles/journeycache/internal/journey"
	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/websocket"
)

// JourneyActivities returns the journey snapshot. Upstream failures are
// served as the mock snapshot, never as an error.
func (h *Handler) JourneyActivities(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := activitiesRequest{StartDate: r.URL.Query().Get("startDate")}
	if !validateRequest(w, r, &req) {
		return
	}
	startDate, _ := journey.ParseStartDate(req.StartDate)

	w.Header().Set("Cache-Control", "public, max-age=60")
	respondData(w, r, h.deps.Journey.GetJourneyActivities(r.Context(), startDate, getBoolParam(r, "skipCache")), start)
}

// JourneyActivity returns one detailed activity.
func (h *Handler) JourneyActivity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := activityRequest{ID: urlParam(r, "id")}
	if !validateRequest(w, r, &req) {
		return
	}

	activity, ok := h.deps.Journey.GetDetailedActivity(r.Context(), req.ID, getBoolParam(r, "skipCache"))
	if !ok {
		respondNotFound(w, r, "activity")
		return
	}
	respondData(w, r, activity, start)
}

// JourneyActivityPhotos returns the photos of one activity.
func (h *Handler) JourneyActivityPhotos(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := photosRequest{
		ID:   urlParam(r, "id"),
		Size: getIntParam(r, "size", DefaultPhotoSize),
	}
	if !validateRequest(w, r, &req) {
		return
	}

	photos, ok := h.deps.Journey.GetActivityPhotos(r.Context(), req.ID, req.Size, getBoolParam(r, "skipCache"))
	if !ok {
		respondNotFound(w, r, "photos")
		return
	}
	respondData(w, r, photos, start)
}

// JourneyRoute returns one route.
func (h *Handler) JourneyRoute(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := activityRequest{ID: urlParam(r, "id")}
	if !validateRequest(w, r, &req) {
		return
	}

	route, ok := h.deps.Journey.GetRouteByID(r.Context(), req.ID, getBoolParam(r, "skipCache"))
	if !ok {
		respondNotFound(w, r, "route")
		return
	}
	respondData(w, r, route, start)
}

// JourneyPlannedRoute returns the planned route, or the mock route.
func (h *Handler) JourneyPlannedRoute(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	w.Header().Set("Cache-Control", "public, max-age=300")
	respondData(w, r, h.deps.Journey.GetPlannedRoute(r.Context(), getBoolParam(r, "skipCache")), start)
}

// JourneyStream upgrades to a websocket that streams the
// stale-while-revalidate state of the journey snapshot for startDate.
func (h *Handler) JourneyStream(w http.ResponseWriter, r *http.Request) {
	if h.deps.Hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Live updates are disabled", nil, nil)
		return
	}
	req := activitiesRequest{StartDate: r.URL.Query().Get("startDate")}
	if !validateRequest(w, r, &req) {
		return
	}
	startDate, _ := journey.ParseStartDate(req.StartDate)
	key := h.deps.Journey.StartKey(startDate)

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Websocket upgrade failed")
		return
	}

	coord, release, err := h.deps.Hub.Acquire(key)
	if err != nil {
		_ = conn.Close()
		return
	}
	defer release()

	client := websocket.NewClient(conn, coord)
	logging.Ctx(r.Context()).Debug().Uint64("client_id", client.ID()).Str("key", key).Msg("Journey stream opened")
	if err := client.Run(); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Journey stream ended")
	}
}
