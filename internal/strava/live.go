// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package strava

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/upstream"
)

const (
	DefaultAPIBaseURL = "https://www.strava.com/api/v3"

	authURL  = "https://www.strava.com/oauth/authorize"
	tokenURL = "https://www.strava.com/oauth/token"

	defaultPerPage = 100
	// maxActivityPages stops runaway paging if the API never returns a
	// short page.
	maxActivityPages = 50
)

// LiveConfig configures LiveClient.
type LiveConfig struct {
	BaseURL        string
	PhotoBaseURL   string
	PlannedRouteID string
	PerPage        int
	Timeout        time.Duration

	// RequestsPer15Min is the short-term request budget. Strava allows
	// 100 by default.
	RequestsPer15Min int
	Burst            int

	Breaker upstream.BreakerConfig
}

// Credentials identify the athlete for the refresh-token flow.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// AccessToken, when set without a refresh token, is used as is.
	AccessToken string
	// TokenURL overrides the token endpoint. Tests point it at a fake.
	TokenURL string
}

// NewTokenSource returns an oauth2.TokenSource that refreshes the access
// token whenever it expires.
func NewTokenSource(ctx context.Context, creds Credentials) (oauth2.TokenSource, error) {
	if creds.RefreshToken == "" {
		if creds.AccessToken == "" {
			return nil, errors.New("strava: a refresh token or an access token is required")
		}
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken, TokenType: "Bearer"}), nil
	}

	endpoint := oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams}
	if creds.TokenURL != "" {
		endpoint.TokenURL = creds.TokenURL
	}
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     endpoint,
	}
	return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}), nil
}

// LiveClient reads from the Strava v3 API.
type LiveClient struct {
	http           *upstream.Client
	photoBaseURL   string
	plannedRouteID string
	perPage        int
}

// NewLiveClient builds a client authorized by tokens.
func NewLiveClient(cfg LiveConfig, tokens oauth2.TokenSource) *LiveClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAPIBaseURL
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = defaultPerPage
	}
	if cfg.PlannedRouteID == "" {
		cfg.PlannedRouteID = DefaultPlannedRouteID
	}
	if cfg.PhotoBaseURL == "" {
		cfg.PhotoBaseURL = DefaultPhotoBaseURL
	}

	c := upstream.NewClient("strava", cfg.BaseURL, cfg.Timeout)
	c.Breaker = upstream.NewBreaker("strava-api", cfg.Breaker)
	if cfg.RequestsPer15Min > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 10
		}
		c.Limiter = rate.NewLimiter(rate.Every(15*time.Minute/time.Duration(cfg.RequestsPer15Min)), burst)
	}
	c.Authorize = func(_ context.Context, req *http.Request) error {
		tok, err := tokens.Token()
		if err != nil {
			return err
		}
		tok.SetAuthHeader(req)
		return nil
	}

	return &LiveClient{
		http:           c,
		photoBaseURL:   cfg.PhotoBaseURL,
		plannedRouteID: cfg.PlannedRouteID,
		perPage:        cfg.PerPage,
	}
}

// ListActivities pages through the athlete's activities. The API's after
// filter is exclusive, so one second is subtracted to keep activities that
// start exactly at after.
func (c *LiveClient) ListActivities(ctx context.Context, after time.Time) ([]SummaryActivity, error) {
	var all []SummaryActivity
	for page := 1; page <= maxActivityPages; page++ {
		query := url.Values{
			"after":    {strconv.FormatInt(after.Unix()-1, 10)},
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(c.perPage)},
		}

		var batch []SummaryActivity
		if err := c.http.GetJSON(ctx, "athlete_activities", "/athlete/activities", query, &batch); err != nil {
			return nil, fmt.Errorf("list activities page %d: %w", page, err)
		}
		all = append(all, batch...)
		if len(batch) < c.perPage {
			break
		}
	}

	logging.Debug().Int("count", len(all)).Time("after", after).Msg("Strava activities listed")
	if all == nil {
		all = []SummaryActivity{}
	}
	return all, nil
}

func (c *LiveClient) GetDetailedActivity(ctx context.Context, id string) (*DetailedActivity, error) {
	var out DetailedActivity
	if err := c.http.GetJSON(ctx, "activity", "/activities/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get activity %s: %w", id, err)
	}
	return &out, nil
}

func (c *LiveClient) GetActivityPhotos(ctx context.Context, id string, size int) ([]Photo, error) {
	query := url.Values{"photo_sources": {"true"}}
	if size > 0 {
		query.Set("size", strconv.Itoa(size))
	}

	var photos []Photo
	if err := c.http.GetJSON(ctx, "activity_photos", "/activities/"+url.PathEscape(id)+"/photos", query, &photos); err != nil {
		return nil, fmt.Errorf("get photos for activity %s: %w", id, err)
	}
	if photos == nil {
		photos = []Photo{}
	}
	return RewritePhotoURLs(photos, c.photoBaseURL), nil
}

func (c *LiveClient) GetRoute(ctx context.Context, id string) (*Route, error) {
	var out Route
	if err := c.http.GetJSON(ctx, "route", "/routes/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get route %s: %w", id, err)
	}
	return &out, nil
}

func (c *LiveClient) GetPlannedRoute(ctx context.Context) (*Route, error) {
	return c.GetRoute(ctx, c.plannedRouteID)
}

// BreakerState exposes the circuit state for health reporting.
func (c *LiveClient) BreakerState() string {
	return c.http.Breaker.State()
}
