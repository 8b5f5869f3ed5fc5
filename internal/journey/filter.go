// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package journey

import (
	"fmt"
	"time"

	"github.com/jaspercycles/journeycache/internal/strava"
)

// DefaultStartDate is the first day of the journey.
var DefaultStartDate = time.Date(2025, 5, 24, 0, 0, 0, 0, time.UTC)

// Snapshot is the journey activity list as served to readers.
type Snapshot struct {
	Activities []strava.SummaryActivity `json:"activities"`
	StartDate  string                   `json:"startDate"`
	// Timestamp is when the list was fetched, in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// Count returns the number of activities.
func (s Snapshot) Count() int {
	return len(s.Activities)
}

// FilterActivities keeps rides starting at or after start, preserving order.
// Activities without a parseable start date are dropped.
func FilterActivities(activities []strava.SummaryActivity, start time.Time) []strava.SummaryActivity {
	out := make([]strava.SummaryActivity, 0, len(activities))
	for _, a := range activities {
		if a.Type != strava.RideType {
			continue
		}
		if t, ok := a.StartTime(); ok && !t.Before(start) {
			out = append(out, a)
		}
	}
	return out
}

// ParseStartDate parses an RFC 3339 timestamp or a plain YYYY-MM-DD date.
// An empty string yields the zero time, which accessors replace with the
// configured default.
func ParseStartDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid start date %q: want RFC 3339 or YYYY-MM-DD", s)
}
