// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package strava

import "time"

// RideType is the activity type kept on the journey.
const RideType = "Ride"

// PolylineMap carries an encoded route line.
type PolylineMap struct {
	ID              string `json:"id,omitempty"`
	Polyline        string `json:"polyline,omitempty"`
	SummaryPolyline string `json:"summary_polyline,omitempty"`
}

// SummaryActivity is an activity as listed by the athlete activities
// endpoint. Only StartDate and Type are interpreted; everything else is
// passed through.
type SummaryActivity struct {
	ID                 int64        `json:"id"`
	Name               string       `json:"name,omitempty"`
	Type               string       `json:"type,omitempty"`
	SportType          string       `json:"sport_type,omitempty"`
	StartDate          string       `json:"start_date,omitempty"`
	StartDateLocal     string       `json:"start_date_local,omitempty"`
	Timezone           string       `json:"timezone,omitempty"`
	Distance           float64      `json:"distance,omitempty"`
	MovingTime         int64        `json:"moving_time,omitempty"`
	ElapsedTime        int64        `json:"elapsed_time,omitempty"`
	TotalElevationGain float64      `json:"total_elevation_gain,omitempty"`
	AverageSpeed       float64      `json:"average_speed,omitempty"`
	MaxSpeed           float64      `json:"max_speed,omitempty"`
	StartLatLng        []float64    `json:"start_latlng,omitempty"`
	EndLatLng          []float64    `json:"end_latlng,omitempty"`
	Map                *PolylineMap `json:"map,omitempty"`
	KudosCount         int          `json:"kudos_count,omitempty"`
	PhotoCount         int          `json:"photo_count,omitempty"`
	TotalPhotoCount    int          `json:"total_photo_count,omitempty"`
}

// StartTime parses StartDate. ok is false when the field is empty or not
// RFC 3339.
func (a SummaryActivity) StartTime() (time.Time, bool) {
	if a.StartDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, a.StartDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// PhotoSummary is the photo block embedded in a detailed activity.
type PhotoSummary struct {
	Count   int    `json:"count"`
	Primary *Photo `json:"primary,omitempty"`
}

// DetailedActivity adds the fields returned by the single-activity endpoint.
type DetailedActivity struct {
	SummaryActivity

	Description string        `json:"description,omitempty"`
	Calories    float64       `json:"calories,omitempty"`
	DeviceName  string        `json:"device_name,omitempty"`
	ElevHigh    float64       `json:"elev_high,omitempty"`
	ElevLow     float64       `json:"elev_low,omitempty"`
	Photos      *PhotoSummary `json:"photos,omitempty"`
}

// Photo is one activity photo or video. URLs maps a size label ("100",
// "600", "5000") to a URL.
type Photo struct {
	UniqueID   string            `json:"unique_id,omitempty"`
	ActivityID int64             `json:"activity_id,omitempty"`
	Caption    string            `json:"caption,omitempty"`
	Source     int               `json:"source,omitempty"`
	URLs       map[string]string `json:"urls,omitempty"`
	Sizes      map[string][]int  `json:"sizes,omitempty"`
	Location   []float64         `json:"location,omitempty"`
	CreatedAt  string            `json:"created_at,omitempty"`
	VideoURL   string            `json:"video_url,omitempty"`
}

// Waypoint is a named point along a route.
type Waypoint struct {
	LatLng            []float64 `json:"latlng,omitempty"`
	Title             string    `json:"title,omitempty"`
	Description       string    `json:"description,omitempty"`
	DistanceIntoRoute float64   `json:"distance_into_route,omitempty"`
}

// Route is a planned route.
type Route struct {
	ID                  int64        `json:"id,omitempty"`
	IDStr               string       `json:"id_str,omitempty"`
	Name                string       `json:"name,omitempty"`
	Description         string       `json:"description,omitempty"`
	Distance            float64      `json:"distance,omitempty"`
	ElevationGain       float64      `json:"elevation_gain,omitempty"`
	EstimatedMovingTime int64        `json:"estimated_moving_time,omitempty"`
	Type                int          `json:"type,omitempty"`
	SubType             int          `json:"sub_type,omitempty"`
	Map                 *PolylineMap `json:"map,omitempty"`
	Waypoints           []Waypoint   `json:"waypoints,omitempty"`
	CreatedAt           string       `json:"created_at,omitempty"`
	UpdatedAt           string       `json:"updated_at,omitempty"`
}
