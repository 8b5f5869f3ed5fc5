// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package strava

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/upstream"
)

// Snapshot document names.
const (
	SummaryDocument  = "activities_summary.json"
	DetailedDocument = "activities_detailed.json"
	PhotosDocument   = "photos_all.json"
)

// StaticConfig configures StaticClient.
type StaticConfig struct {
	// Location is a directory or an http(s) base URL holding the snapshot.
	Location       string
	PhotoBaseURL   string
	PlannedRouteID string
	Timeout        time.Duration
}

// StaticClient serves activity data from pre-generated JSON documents.
// Bulk documents are consulted first; an id missing from them is looked up
// in its per-id document (activities/{id}.json, photos/{id}.json,
// routes/{id}.json).
type StaticClient struct {
	read           func(ctx context.Context, name string) ([]byte, error)
	photoBaseURL   string
	plannedRouteID string
}

// NewStaticClient picks an HTTP or filesystem reader from cfg.Location.
func NewStaticClient(cfg StaticConfig) (*StaticClient, error) {
	if cfg.Location == "" {
		return nil, errors.New("strava: static data location is required")
	}

	var s *StaticClient
	if strings.HasPrefix(cfg.Location, "http://") || strings.HasPrefix(cfg.Location, "https://") {
		s = newStaticHTTP(upstream.NewClient("strava-static", cfg.Location, cfg.Timeout))
	} else {
		info, err := os.Stat(cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("strava: static data location: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("strava: static data location %s is not a directory", cfg.Location)
		}
		s = NewStaticFS(os.DirFS(cfg.Location))
	}

	if cfg.PhotoBaseURL != "" {
		s.photoBaseURL = cfg.PhotoBaseURL
	}
	if cfg.PlannedRouteID != "" {
		s.plannedRouteID = cfg.PlannedRouteID
	}
	return s, nil
}

// NewStaticFS reads snapshot documents from fsys.
func NewStaticFS(fsys fs.FS) *StaticClient {
	return &StaticClient{
		read: func(_ context.Context, name string) ([]byte, error) {
			data, err := fs.ReadFile(fsys, name)
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%s: %w", name, upstream.ErrNotFound)
			}
			return data, err
		},
		photoBaseURL:   DefaultPhotoBaseURL,
		plannedRouteID: DefaultPlannedRouteID,
	}
}

func newStaticHTTP(c *upstream.Client) *StaticClient {
	return &StaticClient{
		read: func(ctx context.Context, name string) ([]byte, error) {
			body, err := c.Get(ctx, snapshotEndpoint(name), name, nil)
			if err != nil {
				return nil, err
			}
			defer body.Close()
			return io.ReadAll(body)
		},
		photoBaseURL:   DefaultPhotoBaseURL,
		plannedRouteID: DefaultPlannedRouteID,
	}
}

func loadDocument[T any](ctx context.Context, s *StaticClient, name string) (T, error) {
	var out T
	data, err := s.read(ctx, name)
	if err != nil {
		return out, fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}

// ListActivities loads the summary document and keeps activities starting
// at or after after.
func (s *StaticClient) ListActivities(ctx context.Context, after time.Time) ([]SummaryActivity, error) {
	all, err := loadDocument[[]SummaryActivity](ctx, s, SummaryDocument)
	if err != nil {
		return nil, err
	}

	out := make([]SummaryActivity, 0, len(all))
	for _, a := range all {
		if t, ok := a.StartTime(); ok && !t.Before(after) {
			out = append(out, a)
		}
	}
	logging.Debug().Int("total", len(all)).Int("kept", len(out)).Msg("Static activities loaded")
	return out, nil
}

func (s *StaticClient) GetDetailedActivity(ctx context.Context, id string) (*DetailedActivity, error) {
	all, err := loadDocument[map[string]DetailedActivity](ctx, s, DetailedDocument)
	if err == nil {
		if a, ok := all[id]; ok {
			return &a, nil
		}
	} else {
		logging.Debug().Err(err).Str("activity_id", id).Msg("Bulk detail document unavailable, trying per-id document")
	}

	a, err := loadDocument[DetailedActivity](ctx, s, "activities/"+id+".json")
	if err != nil {
		return nil, fmt.Errorf("detailed activity %s: %w", id, err)
	}
	return &a, nil
}

// GetActivityPhotos ignores size: snapshots carry every size.
func (s *StaticClient) GetActivityPhotos(ctx context.Context, id string, _ int) ([]Photo, error) {
	all, err := loadDocument[map[string][]Photo](ctx, s, PhotosDocument)
	if err == nil {
		if photos, ok := all[id]; ok {
			return RewritePhotoURLs(nonNilPhotos(photos), s.photoBaseURL), nil
		}
	} else {
		logging.Debug().Err(err).Str("activity_id", id).Msg("Bulk photo document unavailable, trying per-id document")
	}

	photos, err := loadDocument[[]Photo](ctx, s, "photos/"+id+".json")
	if err != nil {
		return nil, fmt.Errorf("photos for activity %s: %w", id, err)
	}
	return RewritePhotoURLs(nonNilPhotos(photos), s.photoBaseURL), nil
}

func (s *StaticClient) GetRoute(ctx context.Context, id string) (*Route, error) {
	r, err := loadDocument[Route](ctx, s, "routes/"+id+".json")
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", id, err)
	}
	return &r, nil
}

func (s *StaticClient) GetPlannedRoute(ctx context.Context) (*Route, error) {
	return s.GetRoute(ctx, s.plannedRouteID)
}

// snapshotEndpoint is the metrics label for a document: the bulk document
// name or the per-id directory.
func snapshotEndpoint(name string) string {
	if dir := path.Dir(name); dir != "." {
		return dir
	}
	return strings.TrimSuffix(name, ".json")
}

func nonNilPhotos(p []Photo) []Photo {
	if p == nil {
		return []Photo{}
	}
	return p
}
