// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

// Package upstream holds the HTTP plumbing shared by the activity and
// content clients: request execution, status classification, JSON decoding,
// rate limiting and circuit breaking.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/jaspercycles/journeycache/internal/metrics"
)

// maxErrorBodySize bounds how much of a failed response is kept for errors.
const maxErrorBodySize = 64 * 1024

var (
	// ErrNotFound is returned for HTTP 404 and for ids missing from a
	// snapshot.
	ErrNotFound = errors.New("upstream: not found")

	// ErrRateLimited is returned for HTTP 429.
	ErrRateLimited = errors.New("upstream: rate limited")
)

// StatusError describes a non-2xx response.
type StatusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Code, e.Body)
}

// Unwrap maps well-known statuses onto sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

// Authorizer decorates a request with credentials. It may fail, in which
// case the request is not sent.
type Authorizer func(ctx context.Context, req *http.Request) error

// Client issues GET requests against one base URL.
type Client struct {
	Name      string
	BaseURL   string
	HTTP      *http.Client
	Authorize Authorizer
	Limiter   *rate.Limiter
	Breaker   *Breaker
	UserAgent string
}

// NewClient builds a client with a bounded-timeout http.Client.
func NewClient(name, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		Name:      name,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: "journeycache/1.0",
	}
}

// GetJSON requests path (relative to BaseURL) with query and decodes the
// JSON body into out. endpoint is a low-cardinality label for metrics.
func (c *Client) GetJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	body, err := c.Get(ctx, endpoint, path, query)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", c.Name, endpoint, err)
	}
	return nil
}

// Get performs the request and returns the open body of a 2xx response.
// The caller must close it.
func (c *Client) Get(ctx context.Context, endpoint, path string, query url.Values) (io.ReadCloser, error) {
	return Call(c.Breaker, func() (io.ReadCloser, error) {
		return c.do(ctx, endpoint, path, query)
	})
}

func (c *Client) do(ctx context.Context, endpoint, path string, query url.Values) (io.ReadCloser, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s %s: rate limiter: %w", c.Name, endpoint, err)
		}
	}

	reqURL := c.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Authorize != nil {
		if err := c.Authorize(ctx, req); err != nil {
			return nil, fmt.Errorf("%s %s: credentials: %w", c.Name, endpoint, err)
		}
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(c.Name, endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("%s %s: request failed: %w", c.Name, endpoint, err)
	}
	metrics.RecordUpstreamRequest(c.Name, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &StatusError{
			Code:       resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return resp.Body, nil
}

// readBodyForError reads at most maxErrorBodySize bytes for diagnostics.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize+1))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) > maxErrorBodySize {
		return append(body[:maxErrorBodySize], "...(truncated)"...)
	}
	return body
}

// parseRetryAfter understands the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// IsRetryable reports whether a failed call may succeed if repeated.
// Missing resources and an open circuit are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCircuitOpen) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}
