// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package content

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jaspercycles/journeycache/internal/upstream"
)

// DefaultAPIBaseURL is where the content API listens in development.
const DefaultAPIBaseURL = "http://localhost:8000"

// LiveClient reads from the content API.
type LiveClient struct {
	http *upstream.Client
}

// NewLiveClient builds a client for the API at baseURL.
func NewLiveClient(baseURL string, timeout time.Duration, breaker upstream.BreakerConfig) *LiveClient {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	c := upstream.NewClient("content", baseURL, timeout)
	c.Breaker = upstream.NewBreaker("content-api", breaker)
	return &LiveClient{http: c}
}

func (c *LiveClient) ListPosts(ctx context.Context, q Query) (*PostPage, error) {
	q = q.Normalize()
	query := url.Values{
		"page":     {strconv.Itoa(q.Page)},
		"per_page": {strconv.Itoa(q.PerPage)},
	}
	if q.Tag != "" {
		query.Set("tag", q.Tag)
	}

	var page PostPage
	if err := c.http.GetJSON(ctx, "posts", "/api/posts", query, &page); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if page.Posts == nil {
		page.Posts = []Post{}
	}
	return &page, nil
}

func (c *LiveClient) GetPost(ctx context.Context, slug string) (*Post, error) {
	var p Post
	if err := c.http.GetJSON(ctx, "post", "/api/posts/"+url.PathEscape(slug), nil, &p); err != nil {
		return nil, fmt.Errorf("get post %s: %w", slug, err)
	}
	return &p, nil
}

func (c *LiveClient) ListTags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := c.http.GetJSON(ctx, "tags", "/api/tags", nil, &tags); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func (c *LiveClient) ListAuthors(ctx context.Context) ([]Author, error) {
	var authors []Author
	if err := c.http.GetJSON(ctx, "authors", "/api/authors", nil, &authors); err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	if authors == nil {
		authors = []Author{}
	}
	return authors, nil
}

func (c *LiveClient) GetAuthor(ctx context.Context, id string) (*Author, error) {
	var a Author
	if err := c.http.GetJSON(ctx, "author", "/api/authors/"+url.PathEscape(id), nil, &a); err != nil {
		return nil, fmt.Errorf("get author %s: %w", id, err)
	}
	return &a, nil
}

// BreakerState exposes the circuit state for health reporting.
func (c *LiveClient) BreakerState() string {
	return c.http.Breaker.State()
}
