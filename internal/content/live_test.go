// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jaspercycles/journeycache/internal/upstream"
)

func newTestLiveClient(t *testing.T, mux *http.ServeMux) *LiveClient {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return NewLiveClient(server.URL, time.Second, upstream.BreakerConfig{})
}

func TestLiveListPosts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/posts", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("per_page") != "5" || q.Get("tag") != "spain" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"posts":[{"slug":"barcelona","title":"Barcelona","tags":["spain"]}],"total":6,"page":2,"per_page":5,"total_pages":2}`)
	})

	c := newTestLiveClient(t, mux)
	page, err := c.ListPosts(context.Background(), Query{Page: 2, PerPage: 5, Tag: "spain"})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if page.Total != 6 || page.TotalPages != 2 || len(page.Posts) != 1 || page.Posts[0].Slug != "barcelona" {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestLiveLookups(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/posts/hello", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"slug":"hello","title":"Hello","content":"<p>hi</p>","author":{"id":"a","name":"A","picture":""}}`)
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `["coast","spain"]`)
	})
	mux.HandleFunc("/api/authors", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"a","name":"A","picture":"/a.jpg"}]`)
	})
	mux.HandleFunc("/api/authors/a", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"a","name":"A","picture":"/a.jpg","bio":"rides"}`)
	})

	c := newTestLiveClient(t, mux)
	ctx := context.Background()

	p, err := c.GetPost(ctx, "hello")
	if err != nil || p.Content != "<p>hi</p>" {
		t.Errorf("GetPost: %+v, %v", p, err)
	}
	tags, err := c.ListTags(ctx)
	if err != nil || len(tags) != 2 {
		t.Errorf("ListTags: %v, %v", tags, err)
	}
	authors, err := c.ListAuthors(ctx)
	if err != nil || len(authors) != 1 {
		t.Errorf("ListAuthors: %v, %v", authors, err)
	}
	a, err := c.GetAuthor(ctx, "a")
	if err != nil || a.Bio == nil || *a.Bio != "rides" {
		t.Errorf("GetAuthor: %+v, %v", a, err)
	}

	if _, err := c.GetPost(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if c.BreakerState() != "closed" {
		t.Errorf("breaker = %s", c.BreakerState())
	}
}
