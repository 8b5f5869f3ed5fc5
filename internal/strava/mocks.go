// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package strava

// mockPolyline traces Dover, Calais, Paris, Bordeaux, San Sebastian,
// Barcelona and Lisbon.
const mockPolyline = "oiawHocsF~cb@_etBnewK_t`B~cpWng{PnyiHnpuHn}wJ_tnYnnhO~_~cA"

// MockActivities returns the bundled activities served when the activity
// source is unreachable or mocks are switched on. They are dated from the
// default journey start so the fallback list is never empty for it. Each
// call returns a fresh slice.
func MockActivities() []SummaryActivity {
	ride := func(id int64, name, start, local string, distance float64, elapsed int64, gain float64, lat, lng float64) SummaryActivity {
		return SummaryActivity{
			ID:                 id,
			Name:               name,
			Type:               RideType,
			SportType:          RideType,
			StartDate:          start,
			StartDateLocal:     local,
			Distance:           distance,
			ElapsedTime:        elapsed,
			TotalElevationGain: gain,
			StartLatLng:        []float64{lat, lng},
			EndLatLng:          []float64{lat, lng},
			Map:                &PolylineMap{SummaryPolyline: "mock_polyline_data"},
		}
	}

	return []SummaryActivity{
		ride(1, "Dover to Calais", "2025-05-24T08:00:00Z", "2025-05-24T09:00:00Z", 42000, 9000, 310, 51.1279, 1.3134),
		ride(2, "Calais to Amiens", "2025-05-29T07:30:00Z", "2025-05-29T09:30:00Z", 151000, 30600, 1240, 50.9513, 1.8587),
		ride(3, "Amiens to Paris", "2025-06-03T07:00:00Z", "2025-06-03T09:00:00Z", 138000, 28800, 980, 49.8941, 2.2958),
	}
}

// MockPlannedRoute returns the route shown when the planned route cannot be
// loaded.
func MockPlannedRoute() *Route {
	return &Route{
		IDStr:               "mock",
		Name:                "Planned Route (Mock Data)",
		Description:         "Mock planned route for testing",
		Distance:            5000000,
		ElevationGain:       50000,
		EstimatedMovingTime: 360000,
		Map:                 &PolylineMap{ID: "mock", Polyline: mockPolyline, SummaryPolyline: mockPolyline},
		Waypoints: []Waypoint{
			{Title: "Dover, UK", LatLng: []float64{51.13, 1.25}},
			{Title: "Paris, France", LatLng: []float64{48.86, 2.35}},
			{Title: "Barcelona, Spain", LatLng: []float64{41.38, 2.17}},
			{Title: "Lisbon, Portugal", LatLng: []float64{38.71, -9.13}},
		},
	}
}
