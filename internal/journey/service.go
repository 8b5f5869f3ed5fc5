// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

// Package journey serves the travel blog's data through the cache.
//
// Every accessor follows the same path: check the cache unless asked to
// skip it, otherwise fetch from the remote source, write the result through
// and return it. Concurrent fetches of one key share a single remote call.
// Retryable remote errors are retried with exponential backoff. When the
// remote source fails, list accessors return bundled mock data and
// single-item accessors report absence; no accessor returns an error.
package journey

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jaspercycles/journeycache/internal/cache"
	"github.com/jaspercycles/journeycache/internal/content"
	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/metrics"
	"github.com/jaspercycles/journeycache/internal/strava"
	"github.com/jaspercycles/journeycache/internal/upstream"
)

// TTLs are the read-time freshness bars per data type.
type TTLs struct {
	Activities time.Duration
	Activity   time.Duration
	Photos     time.Duration
	Route      time.Duration
	Content    time.Duration
}

// RetryPolicy bounds the retries of one remote fetch.
type RetryPolicy struct {
	// MaxAttempts includes the first call. 1 disables retries.
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

// DefaultRetryPolicy returns three attempts within five seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsed:      5 * time.Second,
	}
}

// Options configure a Service. Zero values take defaults.
type Options struct {
	TTL              TTLs
	DefaultStartDate time.Time
	PlannedRouteID   string
	// UseMocks serves bundled data without touching the cache or network.
	UseMocks bool
	// Timeout bounds one remote fetch including retries. Zero means none.
	Timeout time.Duration
	Retry   RetryPolicy
	// Now stamps snapshots. Defaults to time.Now.
	Now func() time.Time
	// OnOutcome, when set, receives every call outcome.
	OnOutcome func(Outcome)
}

// Service is the fetch orchestrator.
type Service struct {
	cache   *cache.Service
	strava  strava.Source
	content content.Source
	opts    Options
	group   singleflight.Group
}

// New creates a Service. contentSource may be nil, in which case content
// accessors serve mock data.
func New(c *cache.Service, stravaSource strava.Source, contentSource content.Source, opts Options) *Service {
	if opts.TTL.Activities <= 0 {
		opts.TTL.Activities = cache.DefaultTTL
	}
	if opts.TTL.Activity <= 0 {
		opts.TTL.Activity = cache.DefaultTTL
	}
	if opts.TTL.Photos <= 0 {
		opts.TTL.Photos = cache.DefaultTTL
	}
	if opts.TTL.Route <= 0 {
		opts.TTL.Route = cache.DefaultTTL
	}
	if opts.TTL.Content <= 0 {
		opts.TTL.Content = time.Hour
	}
	if opts.DefaultStartDate.IsZero() {
		opts.DefaultStartDate = DefaultStartDate
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		cache:   c,
		strava:  stravaSource,
		content: contentSource,
		opts:    opts,
	}
}

// Cache returns the underlying cache service.
func (s *Service) Cache() *cache.Service {
	return s.cache
}

// DefaultStart returns the start date used when callers pass none.
func (s *Service) DefaultStart() time.Time {
	return s.opts.DefaultStartDate
}

// fetch runs the cache-then-remote path for one key. The returned Outcome
// has Err set when the remote fetch failed; the caller picks the fallback.
func fetch[T any](ctx context.Context, s *Service, accessor, key string, ttl time.Duration, skipCache bool, remote func(context.Context) (T, error)) (T, Outcome) {
	start := time.Now()
	out := newOutcome(accessor, key)

	if !skipCache {
		out.step(StateCacheCheck)
		if v, ok := cache.GetItem[T](s.cache, key, ttl); ok {
			out.step(StateCacheHit)
			out.Duration = time.Since(start)
			return v, out
		}
		out.step(StateCacheMiss)
	}

	out.step(StateRemoteFetch)
	ch := s.group.DoChan(key, func() (any, error) {
		v, err := callRemote(ctx, s, accessor, remote)
		if err != nil {
			return v, err
		}
		cache.SetItem(s.cache, key, v, ttl)
		return v, nil
	})

	var zero T
	select {
	case res := <-ch:
		out.Shared = res.Shared
		if res.Err != nil {
			out.step(StateRemoteFailure)
			out.Err = res.Err
			out.Duration = time.Since(start)
			return zero, out
		}
		v, _ := res.Val.(T)
		out.step(StateRemoteSuccess)
		out.Duration = time.Since(start)
		return v, out
	case <-ctx.Done():
		out.step(StateRemoteFailure)
		out.Err = ctx.Err()
		out.Duration = time.Since(start)
		return zero, out
	}
}

// callRemote runs remote with the retry policy. The call is detached from
// the caller's cancellation because other callers may be waiting on it;
// Options.Timeout bounds it instead.
func callRemote[T any](ctx context.Context, s *Service, accessor string, remote func(context.Context) (T, error)) (T, error) {
	ctx = context.WithoutCancel(ctx)
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	policy := s.opts.Retry
	b := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		b.InitialInterval = policy.InitialInterval
	}
	if policy.MaxInterval > 0 {
		b.MaxInterval = policy.MaxInterval
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(policy.MaxAttempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logging.Ctx(ctx).Debug().Err(err).Str("accessor", accessor).Dur("wait", wait).Msg("Retrying remote fetch")
		}),
	}
	if policy.MaxElapsed > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(policy.MaxElapsed))
	}

	return backoff.Retry(ctx, func() (T, error) {
		v, err := remote(ctx)
		if err != nil && !upstream.IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, opts...)
}

// skipped reports a call answered without I/O.
func (s *Service) skipped(ctx context.Context, accessor string, fallback bool) Outcome {
	out := newOutcome(accessor, "")
	out.Skipped = true
	out.Fallback = fallback
	s.observe(ctx, out)
	return out
}

func (s *Service) observe(ctx context.Context, out Outcome) {
	metrics.RecordFetchOutcome(out.Accessor, string(out.Final()))
	if out.Fallback {
		metrics.RecordFallback(out.Accessor)
	}

	log := logging.Ctx(ctx)
	var event *zerolog.Event
	if out.Err != nil {
		event = log.Warn().Err(out.Err)
	} else {
		event = log.Debug()
	}
	event.
		Str("component", "journey").
		Str("accessor", out.Accessor).
		Str("key", out.Key).
		Str("path", out.String()).
		Bool("shared", out.Shared).
		Bool("fallback", out.Fallback).
		Dur("duration", out.Duration).
		Msg("Fetch completed")

	if s.opts.OnOutcome != nil {
		s.opts.OnOutcome(out)
	}
}
