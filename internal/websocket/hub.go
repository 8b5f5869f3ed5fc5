// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

// Package websocket streams stale-while-revalidate state to browsers.
//
// A Hub keeps one revalidate.Coordinator per query key and shares it between
// every connection asking for that key, so ten open tabs cause one load and
// one background refresh. A Client pumps the coordinator's snapshots to a
// single gorilla/websocket connection and forwards "refresh" requests back.
//
// Wire format, both directions, is JSON Message values:
//
//	{"type":"state","data":{"key":"2025-05-24","loading":false,...}}
//	{"type":"refresh"}
//	{"type":"ping"} / {"type":"pong"}
package websocket

import (
	"errors"
	"sync"

	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/revalidate"
)

// ErrHubClosed is returned by Acquire after Close.
var ErrHubClosed = errors.New("websocket: hub closed")

// Factory builds and starts a coordinator for key.
type Factory[T any] func(key string) *revalidate.Coordinator[T]

type hubEntry[T any] struct {
	coord *revalidate.Coordinator[T]
	refs  int
}

// Hub reference-counts coordinators by key.
type Hub[T any] struct {
	factory Factory[T]

	mu      sync.Mutex
	entries map[string]*hubEntry[T]
	closed  bool
}

// NewHub creates a hub that builds coordinators with factory.
func NewHub[T any](factory Factory[T]) *Hub[T] {
	return &Hub[T]{
		factory: factory,
		entries: make(map[string]*hubEntry[T]),
	}
}

// Acquire returns the coordinator for key, creating it on first use. The
// returned release must be called exactly once; the last release closes
// the coordinator.
func (h *Hub[T]) Acquire(key string) (*revalidate.Coordinator[T], func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, nil, ErrHubClosed
	}

	e, ok := h.entries[key]
	if !ok {
		e = &hubEntry[T]{coord: h.factory(key)}
		h.entries[key] = e
		logging.Debug().Str("key", key).Msg("Coordinator created")
	}
	e.refs++

	var once sync.Once
	release := func() {
		once.Do(func() { h.release(key, e) })
	}
	return e.coord, release, nil
}

func (h *Hub[T]) release(key string, e *hubEntry[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e.refs--
	if e.refs > 0 {
		return
	}
	if cur, ok := h.entries[key]; ok && cur == e {
		delete(h.entries, key)
	}
	e.coord.Close()
	logging.Debug().Str("key", key).Msg("Coordinator released")
}

// Streams returns the number of live coordinators.
func (h *Hub[T]) Streams() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Close closes every coordinator, which ends all client streams.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for key, e := range h.entries {
		e.coord.Close()
		delete(h.entries, key)
	}
}
