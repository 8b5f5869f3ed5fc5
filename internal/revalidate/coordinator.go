// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

// Package revalidate implements stale-while-revalidate loading for one
// query key at a time.
//
// A Coordinator first loads through the cache, then, shortly after the
// first result settles and only if it holds any records, reloads with the
// cache skipped. Observers follow progress through State snapshots:
// Loading covers the first load only, Refreshing covers every later one.
package revalidate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/metrics"
)

// DefaultRefreshDelay separates the first load from the background refresh.
const DefaultRefreshDelay = time.Second

// Refresh triggers, used in metrics.
const (
	TriggerAuto   = "auto"
	TriggerManual = "manual"
)

// ErrClosed is returned by Subscribe on a closed coordinator.
var ErrClosed = errors.New("revalidate: coordinator closed")

// FetchFunc loads the data for key. skipCache is false for the first load
// and true for refreshes. A fetch may return fallback data together with
// its error.
type FetchFunc[T any] func(ctx context.Context, key string, skipCache bool) (T, error)

// State is an observable snapshot of a coordinator.
type State[T any] struct {
	Key         string    `json:"key"`
	Data        T         `json:"data"`
	HasData     bool      `json:"hasData"`
	Loading     bool      `json:"loading"`
	Refreshing  bool      `json:"refreshing"`
	Error       string    `json:"error,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
	Err         error     `json:"-"`
}

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	delay time.Duration
	now   func() time.Time
	name  string
}

// WithRefreshDelay overrides DefaultRefreshDelay.
func WithRefreshDelay(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

// WithClock replaces time.Now for LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithName labels log lines.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// Coordinator runs the load-then-refresh cycle for the current key.
// Results that arrive after the key changed or after Close are dropped.
type Coordinator[T any] struct {
	fetch FetchFunc[T]
	count func(T) int
	opts  options

	ctx    context.Context
	cancel context.CancelFunc

	mu               sync.Mutex
	state            State[T]
	started          bool
	generation       uint64
	timer            *time.Timer
	refreshRequested bool
	closed           bool
	subs             map[chan State[T]]struct{}
}

// New creates a coordinator. count reports how many records a result
// holds; an empty first result schedules no refresh.
func New[T any](fetch FetchFunc[T], count func(T) int, opts ...Option) *Coordinator[T] {
	o := options{delay: DefaultRefreshDelay, now: time.Now, name: "coordinator"}
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator[T]{
		fetch:  fetch,
		count:  count,
		opts:   o,
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[chan State[T]]struct{}),
	}
}

// Start discards any state and begins loading key.
func (c *Coordinator[T]) Start(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.generation++
	c.stopTimerLocked()
	c.started = true
	c.refreshRequested = false
	c.state = State[T]{Key: key, Loading: true}
	c.publishLocked()

	go c.load(c.generation, key)
}

// Refresh reloads the current key with the cache skipped, replacing any
// scheduled refresh. A refresh requested during the first load runs once
// that load settles. It is a no-op while a refresh is already running.
func (c *Coordinator[T]) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.started {
		return
	}
	if c.state.Loading {
		c.refreshRequested = true
		return
	}
	if c.state.Refreshing {
		return
	}
	c.stopTimerLocked()
	c.beginRefreshLocked(c.generation, TriggerManual)
}

// State returns the current snapshot.
func (c *Coordinator[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel of state snapshots, starting with the
// current one, and a function that ends the subscription. The channel
// holds only the latest snapshot: a slow reader skips intermediate ones.
func (c *Coordinator[T]) Subscribe() (<-chan State[T], func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, nil, ErrClosed
	}

	ch := make(chan State[T], 1)
	ch <- c.state
	c.subs[ch] = struct{}{}
	metrics.RevalidationSubscribers.Inc()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subs[ch]; ok {
				delete(c.subs, ch)
				close(ch)
				metrics.RevalidationSubscribers.Dec()
			}
		})
	}
	return ch, unsubscribe, nil
}

// Close stops pending work and closes every subscription. In-flight
// fetches finish in the background and their results are dropped.
func (c *Coordinator[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.generation++
	c.stopTimerLocked()
	c.cancel()
	for ch := range c.subs {
		delete(c.subs, ch)
		close(ch)
		metrics.RevalidationSubscribers.Dec()
	}
}

func (c *Coordinator[T]) load(gen uint64, key string) {
	data, err := c.fetch(c.ctx, key, false)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		return
	}

	c.state.Loading = false
	c.state.LastUpdated = c.opts.now()
	c.setResultLocked(data, err)
	c.publishLocked()

	if err != nil {
		logging.Warn().Err(err).Str("coordinator", c.opts.name).Str("key", key).Msg("Initial load failed")
	}

	switch {
	case c.refreshRequested:
		c.refreshRequested = false
		c.beginRefreshLocked(gen, TriggerManual)
	case err == nil && c.count(data) > 0:
		c.timer = time.AfterFunc(c.opts.delay, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.closed || gen != c.generation || c.state.Refreshing {
				return
			}
			c.timer = nil
			c.beginRefreshLocked(gen, TriggerAuto)
		})
	}
}

func (c *Coordinator[T]) beginRefreshLocked(gen uint64, trigger string) {
	c.state.Refreshing = true
	c.publishLocked()
	go c.refresh(gen, c.state.Key, trigger)
}

func (c *Coordinator[T]) refresh(gen uint64, key, trigger string) {
	data, err := c.fetch(c.ctx, key, true)
	metrics.RecordRevalidation(trigger, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		return
	}

	c.state.Refreshing = false
	c.state.LastUpdated = c.opts.now()
	c.setResultLocked(data, err)
	c.publishLocked()

	if err != nil {
		logging.Warn().Err(err).Str("coordinator", c.opts.name).Str("key", key).Str("trigger", trigger).Msg("Refresh failed, keeping previous data")
	}
}

// setResultLocked records a settled fetch. A failure keeps existing data.
// Without existing data, a non-empty result returned next to the error is
// shown as a fallback.
func (c *Coordinator[T]) setResultLocked(data T, err error) {
	if err != nil {
		c.state.Err = err
		c.state.Error = err.Error()
		if !c.state.HasData && c.count(data) > 0 {
			c.state.Data = data
			c.state.HasData = true
		}
		return
	}
	c.state.Data = data
	c.state.HasData = true
	c.state.Err = nil
	c.state.Error = ""
}

func (c *Coordinator[T]) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// publishLocked delivers the current state to every subscriber, replacing
// any snapshot the subscriber has not read yet.
func (c *Coordinator[T]) publishLocked() {
	s := c.state
	for ch := range c.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}
