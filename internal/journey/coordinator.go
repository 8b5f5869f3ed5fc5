// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package journey

import (
	"context"
	"time"

	"github.com/jaspercycles/journeycache/internal/revalidate"
)

// StartKey normalizes a start date into a coordinator key. A zero start
// resolves to the configured journey start.
func (s *Service) StartKey(start time.Time) string {
	if start.IsZero() {
		start = s.opts.DefaultStartDate
	}
	return start.UTC().Format(time.RFC3339Nano)
}

// NewCoordinator returns a stale-while-revalidate coordinator over
// GetJourneyActivities. Keys are start dates as produced by StartKey.
// The caller starts it and closes it.
//
// A remote failure reaches the coordinator as an error together with the
// mock snapshot, so a failed refresh keeps the rides already on display
// and a failed first load still has something to show.
func (s *Service) NewCoordinator(opts ...revalidate.Option) *revalidate.Coordinator[Snapshot] {
	fetch := func(ctx context.Context, key string, skipCache bool) (Snapshot, error) {
		start, err := ParseStartDate(key)
		if err != nil {
			return Snapshot{}, err
		}
		snap, out := s.getJourneyActivities(ctx, start, skipCache)
		if out.Fallback && out.Err != nil {
			return snap, out.Err
		}
		return snap, nil
	}
	return revalidate.New(fetch, Snapshot.Count, opts...)
}
