// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package services

import (
	"context"
	"time"

	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/revalidate"
)

// CacheWarmerService keeps one key hot: it starts a coordinator on key and
// asks it to revalidate every interval, so readers hit a fresh cache entry
// instead of paying for the upstream round trip.
type CacheWarmerService[T any] struct {
	newCoordinator func() *revalidate.Coordinator[T]
	key            string
	interval       time.Duration
	name           string
}

// NewCacheWarmerService creates a warmer. newCoordinator is called once per
// run; the service closes the coordinator when the run ends.
func NewCacheWarmerService[T any](key string, interval time.Duration, newCoordinator func() *revalidate.Coordinator[T]) *CacheWarmerService[T] {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &CacheWarmerService[T]{
		newCoordinator: newCoordinator,
		key:            key,
		interval:       interval,
		name:           "cache-warmer",
	}
}

// Serve implements suture.Service.
func (s *CacheWarmerService[T]) Serve(ctx context.Context) error {
	coord := s.newCoordinator()
	defer coord.Close()

	states, unsubscribe, err := coord.Subscribe()
	if err != nil {
		return err
	}
	defer unsubscribe()

	log := logging.WithComponent("cache-warmer")
	coord.Start(s.key)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			log.Debug().Str("key", s.key).Msg("Revalidating")
			coord.Refresh()
		case st, ok := <-states:
			if !ok {
				return revalidate.ErrClosed
			}
			if st.Loading || st.Refreshing {
				continue
			}
			if st.Err != nil {
				log.Warn().Err(st.Err).Str("key", s.key).Msg("Warm-up failed")
				continue
			}
			log.Debug().Str("key", s.key).Time("last_updated", st.LastUpdated).Msg("Cache warm")
		}
	}
}

// String names the service in supervisor logs.
func (s *CacheWarmerService[T]) String() string {
	return s.name
}

// ClosableHub is satisfied by *websocket.Hub.
type ClosableHub interface {
	Close()
}

// HubService ties the lifetime of the live stream hub to the supervisor:
// the hub is closed, disconnecting every stream, when the tree stops.
type HubService struct {
	hub  ClosableHub
	name string
}

// NewHubService wraps hub.
func NewHubService(hub ClosableHub) *HubService {
	return &HubService{hub: hub, name: "websocket-hub"}
}

// Serve implements suture.Service.
func (h *HubService) Serve(ctx context.Context) error {
	<-ctx.Done()
	h.hub.Close()
	return ctx.Err()
}

// String names the service in supervisor logs.
func (h *HubService) String() string {
	return h.name
}
