// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/jaspercycles/journeycache/internal/revalidate"
)

var (
	_ suture.Service = (*CacheWarmerService[int])(nil)
	_ suture.Service = (*HubService)(nil)
)

func TestCacheWarmerRevalidatesOnInterval(t *testing.T) {
	var loads, refreshes atomic.Int32
	var coord *revalidate.Coordinator[int]
	factory := func() *revalidate.Coordinator[int] {
		fetch := func(_ context.Context, key string, skipCache bool) (int, error) {
			if key != "2025-05-24T00:00:00Z" {
				return 0, errors.New("unexpected key " + key)
			}
			if skipCache {
				return int(refreshes.Add(1)), nil
			}
			loads.Add(1)
			return 0, nil
		}
		coord = revalidate.New(fetch, func(n int) int { return n }, revalidate.WithRefreshDelay(time.Hour))
		return coord
	}

	svc := NewCacheWarmerService("2025-05-24T00:00:00Z", 20*time.Millisecond, factory)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for refreshes.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected periodic refreshes, got %d", refreshes.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v", err)
	}
	if loads.Load() != 1 {
		t.Errorf("initial loads = %d", loads.Load())
	}
	if _, _, err := coord.Subscribe(); !errors.Is(err, revalidate.ErrClosed) {
		t.Errorf("coordinator must be closed after the run, got %v", err)
	}
}

func TestNewCacheWarmerServiceDefaultInterval(t *testing.T) {
	svc := NewCacheWarmerService[int]("k", 0, nil)
	if svc.interval != 6*time.Hour || svc.String() != "cache-warmer" {
		t.Errorf("got %v %q", svc.interval, svc.String())
	}
}

type closeCounter struct{ closes atomic.Int32 }

func (c *closeCounter) Close() { c.closes.Add(1) }

func TestHubServiceClosesOnShutdown(t *testing.T) {
	hub := &closeCounter{}
	svc := NewHubService(hub)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(10 * time.Millisecond)
	if hub.closes.Load() != 0 {
		t.Fatal("hub closed before shutdown")
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v", err)
	}
	if hub.closes.Load() != 1 {
		t.Errorf("closes = %d", hub.closes.Load())
	}
}
