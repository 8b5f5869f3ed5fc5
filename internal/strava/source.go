// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

// Package strava reads ride data from the activity-tracking service.
//
// Two Source implementations exist. LiveClient talks to the Strava v3 API
// with OAuth2 credentials, a request budget and a circuit breaker.
// StaticClient reads pre-generated JSON snapshots from a directory or a base
// URL. Both rewrite relative photo URLs against the configured media base.
//
// Sources report failures as errors; deciding what to show instead is the
// caller's job.
package strava

import (
	"context"
	"time"

	"github.com/jaspercycles/journeycache/internal/upstream"
)

// DefaultPlannedRouteID is the route shown on the planned route page.
const DefaultPlannedRouteID = "3398297883408418150"

// Sentinel errors shared with the upstream package.
var (
	ErrNotFound    = upstream.ErrNotFound
	ErrRateLimited = upstream.ErrRateLimited
)

// Source is the capability set of an activity data source.
type Source interface {
	// ListActivities returns activities starting at or after after, in
	// the order the source returns them.
	ListActivities(ctx context.Context, after time.Time) ([]SummaryActivity, error)
	GetDetailedActivity(ctx context.Context, id string) (*DetailedActivity, error)
	// GetActivityPhotos returns photos with URLs for the requested size.
	// Static sources ignore size and return every size they hold.
	GetActivityPhotos(ctx context.Context, id string, size int) ([]Photo, error)
	GetRoute(ctx context.Context, id string) (*Route, error)
	GetPlannedRoute(ctx context.Context) (*Route, error)
}
