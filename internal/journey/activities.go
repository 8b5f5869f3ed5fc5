// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package journey

import (
	"context"
	"strconv"
	"time"

	"github.com/jaspercycles/journeycache/internal/cache"
	"github.com/jaspercycles/journeycache/internal/strava"
)

// Accessor names used in outcomes, logs and metrics.
const (
	AccessorJourneyActivities = "journey_activities"
	AccessorDetailedActivity  = "detailed_activity"
	AccessorActivityPhotos    = "activity_photos"
	AccessorRoute             = "route"
	AccessorPlannedRoute      = "planned_route"
)

// GetJourneyActivities returns the rides starting at or after startDate.
// A zero startDate means the configured journey start. The filtered list is
// what gets cached, so hits and fresh fetches return the same activities.
// On remote failure the bundled mock rides, filtered the same way, are
// returned instead.
func (s *Service) GetJourneyActivities(ctx context.Context, startDate time.Time, skipCache bool) Snapshot {
	snap, _ := s.getJourneyActivities(ctx, startDate, skipCache)
	return snap
}

// getJourneyActivities also reports how the list was served. A fallback
// outcome carries the remote error next to the mock snapshot.
func (s *Service) getJourneyActivities(ctx context.Context, startDate time.Time, skipCache bool) (Snapshot, Outcome) {
	if startDate.IsZero() {
		startDate = s.opts.DefaultStartDate
	}
	startDate = startDate.UTC()

	if s.opts.UseMocks {
		out := s.skipped(ctx, AccessorJourneyActivities, true)
		return s.mockSnapshot(startDate), out
	}

	key := cache.GenerateKey(cache.DomainActivities, startDate)
	snap, out := fetch(ctx, s, AccessorJourneyActivities, key, s.opts.TTL.Activities, skipCache,
		func(ctx context.Context) (Snapshot, error) {
			all, err := s.strava.ListActivities(ctx, startDate)
			if err != nil {
				return Snapshot{}, err
			}
			return Snapshot{
				Activities: FilterActivities(all, startDate),
				StartDate:  startDate.Format(time.RFC3339Nano),
				Timestamp:  s.opts.Now().UnixMilli(),
			}, nil
		})
	if out.Err != nil {
		out.Fallback = true
		snap = s.mockSnapshot(startDate)
	}
	s.observe(ctx, out)
	return snap, out
}

func (s *Service) mockSnapshot(startDate time.Time) Snapshot {
	return Snapshot{
		Activities: FilterActivities(strava.MockActivities(), startDate),
		StartDate:  startDate.Format(time.RFC3339Nano),
		Timestamp:  s.opts.Now().UnixMilli(),
	}
}

// GetDetailedActivity returns one activity. ok is false for an empty id or
// when the activity cannot be loaded.
func (s *Service) GetDetailedActivity(ctx context.Context, id string, skipCache bool) (*strava.DetailedActivity, bool) {
	if id == "" {
		s.skipped(ctx, AccessorDetailedActivity, false)
		return nil, false
	}
	if s.opts.UseMocks {
		s.skipped(ctx, AccessorDetailedActivity, true)
		for _, a := range strava.MockActivities() {
			if strconv.FormatInt(a.ID, 10) == id {
				return &strava.DetailedActivity{SummaryActivity: a}, true
			}
		}
		return nil, false
	}

	key := cache.GenerateKey(cache.DomainActivity, id)
	a, out := fetch(ctx, s, AccessorDetailedActivity, key, s.opts.TTL.Activity, skipCache,
		func(ctx context.Context) (*strava.DetailedActivity, error) {
			return s.strava.GetDetailedActivity(ctx, id)
		})
	s.observe(ctx, out)
	if out.Err != nil || a == nil {
		return nil, false
	}
	return a, true
}

// GetActivityPhotos returns the photos of one activity at the requested
// size. ok is false for an empty id or when the photos cannot be loaded.
func (s *Service) GetActivityPhotos(ctx context.Context, id string, size int, skipCache bool) ([]strava.Photo, bool) {
	if id == "" {
		s.skipped(ctx, AccessorActivityPhotos, false)
		return nil, false
	}
	if s.opts.UseMocks {
		s.skipped(ctx, AccessorActivityPhotos, true)
		return []strava.Photo{}, true
	}

	key := cache.GenerateKey(cache.DomainPhotos, id, size)
	photos, out := fetch(ctx, s, AccessorActivityPhotos, key, s.opts.TTL.Photos, skipCache,
		func(ctx context.Context) ([]strava.Photo, error) {
			return s.strava.GetActivityPhotos(ctx, id, size)
		})
	s.observe(ctx, out)
	if out.Err != nil {
		return nil, false
	}
	if photos == nil {
		photos = []strava.Photo{}
	}
	return photos, true
}

// GetRouteByID returns one route. ok is false for an empty id or when the
// route cannot be loaded.
func (s *Service) GetRouteByID(ctx context.Context, id string, skipCache bool) (*strava.Route, bool) {
	if id == "" {
		s.skipped(ctx, AccessorRoute, false)
		return nil, false
	}
	if s.opts.UseMocks {
		s.skipped(ctx, AccessorRoute, true)
		if id == s.plannedRouteID() {
			return strava.MockPlannedRoute(), true
		}
		return nil, false
	}

	key := cache.GenerateKey(cache.DomainRoute, id)
	r, out := fetch(ctx, s, AccessorRoute, key, s.opts.TTL.Route, skipCache,
		func(ctx context.Context) (*strava.Route, error) {
			return s.strava.GetRoute(ctx, id)
		})
	s.observe(ctx, out)
	if out.Err != nil || r == nil {
		return nil, false
	}
	return r, true
}

// GetPlannedRoute returns the designated planned route, or the bundled
// mock route when it cannot be loaded. The result is never nil.
func (s *Service) GetPlannedRoute(ctx context.Context, skipCache bool) *strava.Route {
	if s.opts.UseMocks {
		s.skipped(ctx, AccessorPlannedRoute, true)
		return strava.MockPlannedRoute()
	}

	key := cache.GenerateKey(cache.DomainPlannedRoute, s.plannedRouteID())
	r, out := fetch(ctx, s, AccessorPlannedRoute, key, s.opts.TTL.Route, skipCache, s.strava.GetPlannedRoute)
	if out.Err != nil || r == nil {
		out.Fallback = true
		r = strava.MockPlannedRoute()
	}
	s.observe(ctx, out)
	return r
}

func (s *Service) plannedRouteID() string {
	if s.opts.PlannedRouteID != "" {
		return s.opts.PlannedRouteID
	}
	return strava.DefaultPlannedRouteID
}
