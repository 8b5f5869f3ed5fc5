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
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func newTestLiveClient(t *testing.T, handler http.Handler, cfg LiveConfig) *LiveClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.BaseURL = server.URL
	cfg.Timeout = time.Second
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"})
	return NewLiveClient(cfg, tokens)
}

func TestLiveListActivitiesPaging(t *testing.T) {
	after := time.Date(2025, 5, 24, 0, 0, 0, 0, time.UTC)
	var pages atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/athlete/activities", func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		q := r.URL.Query()
		if want := strconv.FormatInt(after.Unix()-1, 10); q.Get("after") != want {
			t.Errorf("after = %s, want %s", q.Get("after"), want)
		}
		if q.Get("per_page") != "2" {
			t.Errorf("per_page = %s", q.Get("per_page"))
		}
		w.Header().Set("Content-Type", "application/json")
		switch q.Get("page") {
		case "1":
			fmt.Fprint(w, `[{"id":1,"type":"Ride","start_date":"2025-05-24T08:00:00Z"},{"id":2,"type":"Walk","start_date":"2025-05-25T08:00:00Z"}]`)
		case "2":
			fmt.Fprint(w, `[{"id":3,"type":"Ride","start_date":"2025-05-26T08:00:00Z"}]`)
		default:
			t.Errorf("unexpected page %s", q.Get("page"))
			fmt.Fprint(w, `[]`)
		}
	})

	c := newTestLiveClient(t, mux, LiveConfig{PerPage: 2})
	got, err := c.ListActivities(context.Background(), after)
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(got))
	}
	if got[2].ID != 3 {
		t.Errorf("expected source order to be kept, got %+v", got)
	}
	if pages.Load() != 2 {
		t.Errorf("expected 2 page requests, got %d", pages.Load())
	}
}

func TestLiveListActivitiesEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/athlete/activities", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	c := newTestLiveClient(t, mux, LiveConfig{})
	got, err := c.ListActivities(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestLiveActivityPhotos(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/activities/42/photos", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("size") != "600" || q.Get("photo_sources") != "true" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `[
			{"unique_id":"a","urls":{"600":"photos/a.jpg"}},
			{"unique_id":"b","urls":{"600":"https://cdn.example.com/b.jpg"}}
		]`)
	})

	c := newTestLiveClient(t, mux, LiveConfig{PhotoBaseURL: "https://media.example.com/"})
	photos, err := c.GetActivityPhotos(context.Background(), "42", 600)
	if err != nil {
		t.Fatalf("GetActivityPhotos: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(photos))
	}
	if got := photos[0].URLs["600"]; got != "https://media.example.com/photos/a.jpg" {
		t.Errorf("relative URL not rewritten: %s", got)
	}
	if got := photos[1].URLs["600"]; got != "https://cdn.example.com/b.jpg" {
		t.Errorf("absolute URL changed: %s", got)
	}
}

func TestLiveNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/activities/404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Record Not Found"}`)
	})

	c := newTestLiveClient(t, mux, LiveConfig{})
	_, err := c.GetDetailedActivity(context.Background(), "404")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if c.BreakerState() != "closed" {
		t.Errorf("not-found must not trip the breaker, state %s", c.BreakerState())
	}
}

func TestLivePlannedRoute(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/routes/"+DefaultPlannedRouteID, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id_str":"`+DefaultPlannedRouteID+`","name":"Dover to Lisbon","distance":2600000,"map":{"polyline":"abc"}}`)
	})

	c := newTestLiveClient(t, mux, LiveConfig{})
	route, err := c.GetPlannedRoute(context.Background())
	if err != nil {
		t.Fatalf("GetPlannedRoute: %v", err)
	}
	if route.Name != "Dover to Lisbon" || route.Map == nil || route.Map.Polyline != "abc" {
		t.Errorf("unexpected route %+v", route)
	}
}

func TestRefreshTokenSource(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if r.Form.Get("grant_type") != "refresh_token" || r.Form.Get("refresh_token") != "refresh-me" {
			t.Errorf("unexpected token request %v", r.Form)
		}
		if r.Form.Get("client_id") != "123" {
			t.Errorf("client credentials must be sent in params, got %v", r.Form)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh","token_type":"Bearer","expires_in":21600,"refresh_token":"refresh-me"}`)
	})
	mux.HandleFunc("/athlete/activities", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer fresh" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `[]`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens, err := NewTokenSource(context.Background(), Credentials{
		ClientID:     "123",
		ClientSecret: "secret",
		RefreshToken: "refresh-me",
		TokenURL:     server.URL + "/oauth/token",
	})
	if err != nil {
		t.Fatalf("NewTokenSource: %v", err)
	}

	c := NewLiveClient(LiveConfig{BaseURL: server.URL, Timeout: time.Second}, tokens)
	for i := 0; i < 2; i++ {
		if _, err := c.ListActivities(context.Background(), time.Now()); err != nil {
			t.Fatalf("ListActivities: %v", err)
		}
	}
	if refreshes.Load() != 1 {
		t.Errorf("expected one refresh for an unexpired token, got %d", refreshes.Load())
	}
}

func TestNewTokenSourceRequiresCredentials(t *testing.T) {
	if _, err := NewTokenSource(context.Background(), Credentials{}); err == nil {
		t.Error("expected error without tokens")
	}

	ts, err := NewTokenSource(context.Background(), Credentials{AccessToken: "static"})
	if err != nil {
		t.Fatalf("NewTokenSource: %v", err)
	}
	tok, err := ts.Token()
	if err != nil || tok.AccessToken != "static" {
		t.Errorf("unexpected token %v, %v", tok, err)
	}
}
