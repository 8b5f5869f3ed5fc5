// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package cache

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jaspercycles/journeycache/internal/kvstore"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 5, 24, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type ride struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func TestSetAndGetItem(t *testing.T) {
	svc := New(kvstore.NewMemoryStore(0))

	rides := []ride{{ID: 1, Name: "London loop", Type: "Ride"}}
	SetItem(svc, "cache:strava:activities:x", rides, time.Hour)

	got, ok := GetItem[[]ride](svc, "cache:strava:activities:x", time.Hour)
	if !ok {
		t.Fatal("Expected entry to exist")
	}
	if len(got) != 1 || got[0].Name != "London loop" {
		t.Errorf("unexpected payload: %+v", got)
	}

	if _, ok := GetItem[[]ride](svc, "cache:strava:activities:y", time.Hour); ok {
		t.Error("Expected unknown key to be absent")
	}
}

func TestStoredEnvelopeShape(t *testing.T) {
	store := kvstore.NewMemoryStore(0)
	clock := newFakeClock()
	svc := New(store, WithClock(clock.Now))

	SetItem(svc, "cache:strava:route:1", map[string]string{"name": "Dover"}, time.Hour)

	raw, ok := store.Get("cache:strava:route:1")
	if !ok {
		t.Fatal("nothing written")
	}
	want := `{"data":{"name":"Dover"},"timestamp":1748088000000,"version":"1.0.0"}`
	if raw != want {
		t.Errorf("stored %s\nwant   %s", raw, want)
	}
}

func TestTTLBoundary(t *testing.T) {
	clock := newFakeClock()
	svc := New(kvstore.NewMemoryStore(0), WithClock(clock.Now))
	const ttl = 10 * time.Minute
	const eps = time.Millisecond

	SetItem(svc, "cache:strava:activity:7", "detail", ttl)

	clock.Advance(ttl - eps)
	if _, ok := GetItem[string](svc, "cache:strava:activity:7", ttl); !ok {
		t.Fatal("expected hit just before expiry")
	}

	clock.Advance(2 * eps)
	if _, ok := GetItem[string](svc, "cache:strava:activity:7", ttl); ok {
		t.Fatal("expected miss just after expiry")
	}

	// expired entries are deleted on the read that finds them
	if _, ok := svc.store.Get("cache:strava:activity:7"); ok {
		t.Error("expired entry was not evicted")
	}
	if svc.Stats().Evictions != 1 {
		t.Errorf("expected 1 eviction, got %d", svc.Stats().Evictions)
	}
}

func TestTTLIsReadTimeParameter(t *testing.T) {
	clock := newFakeClock()
	svc := New(kvstore.NewMemoryStore(0), WithClock(clock.Now))

	SetItem(svc, "cache:strava:activities:k", []int{1, 2}, time.Minute)
	clock.Advance(30 * time.Minute)

	// a longer bar still accepts the entry written with a short ttl
	if _, ok := GetItem[[]int](svc, "cache:strava:activities:k", time.Hour); !ok {
		t.Error("expected hit with a one hour bar")
	}
	// a short bar rejects it
	if _, ok := GetItem[[]int](svc, "cache:strava:activities:k", 5*time.Minute); ok {
		t.Error("expected miss with a five minute bar")
	}
}

func TestSchemaVersionInvalidation(t *testing.T) {
	store := kvstore.NewMemoryStore(0)
	v1 := New(store, WithVersion("1.0.0"))
	SetItem(v1, "cache:strava:photos:1:1000", []string{"a.jpg"}, DefaultTTL)

	v2 := New(store, WithVersion("2.0.0"))
	if _, ok := GetItem[[]string](v2, "cache:strava:photos:1:1000", 365*24*time.Hour); ok {
		t.Fatal("expected entry from older schema to be rejected")
	}
	if _, ok := store.Get("cache:strava:photos:1:1000"); ok {
		t.Error("expected entry from older schema to be evicted")
	}
}

func TestMalformedEntriesAreAbsent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{oops"},
		{"missing data", `{"timestamp":1748088000000,"version":"1.0.0"}`},
		{"missing timestamp", `{"data":1,"version":"1.0.0"}`},
		{"missing version", `{"data":1,"timestamp":1748088000000}`},
		{"wrong payload type", `{"data":"text","timestamp":1748088000000,"version":"1.0.0"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := kvstore.NewMemoryStore(0)
			clock := newFakeClock()
			svc := New(store, WithClock(clock.Now))

			_ = store.Set("cache:strava:activity:1", tt.raw)
			if _, ok := GetItem[int](svc, "cache:strava:activity:1", time.Hour); ok {
				t.Error("expected absent")
			}
			if _, ok := store.Get("cache:strava:activity:1"); ok {
				t.Error("expected malformed entry to be evicted")
			}
		})
	}
}

func TestWriteFailureIsSwallowed(t *testing.T) {
	svc := New(kvstore.Disabled{})

	SetItem(svc, "cache:strava:activities:x", []int{1}, time.Hour)

	if _, ok := GetItem[[]int](svc, "cache:strava:activities:x", time.Hour); ok {
		t.Error("disabled store should always miss")
	}
	if svc.Stats().WriteFailures != 1 {
		t.Errorf("expected 1 write failure, got %d", svc.Stats().WriteFailures)
	}
}

func TestQuotaExceededIsSwallowed(t *testing.T) {
	svc := New(kvstore.NewMemoryStore(64))

	SetItem(svc, "cache:strava:activities:big", strings.Repeat("x", 200), time.Hour)

	if _, ok := GetItem[string](svc, "cache:strava:activities:big", time.Hour); ok {
		t.Error("entry over quota should not be readable")
	}
	if svc.Stats().WriteFailures != 1 {
		t.Errorf("expected 1 write failure, got %d", svc.Stats().WriteFailures)
	}
}

func TestUnencodableValueIsSwallowed(t *testing.T) {
	svc := New(kvstore.NewMemoryStore(0))
	SetItem(svc, "cache:strava:activity:ch", make(chan int), time.Hour)
	if svc.Stats().WriteFailures != 1 {
		t.Errorf("expected 1 write failure, got %d", svc.Stats().WriteFailures)
	}
}

func TestRemoveItem(t *testing.T) {
	svc := New(kvstore.NewMemoryStore(0))
	SetItem(svc, "cache:strava:route:9", "r", time.Hour)
	svc.RemoveItem("cache:strava:route:9")
	if _, ok := GetItem[string](svc, "cache:strava:route:9", time.Hour); ok {
		t.Error("expected removed entry to be absent")
	}
}

func TestClearCacheScoping(t *testing.T) {
	store := kvstore.NewMemoryStore(0)
	svc := New(store)

	SetItem(svc, "cache:strava:activities:X", []int{1}, time.Hour)
	SetItem(svc, "cache:content:posts:1:10:", "p", time.Hour)
	_ = store.Set("unrelated:key:Y", "keep me")

	if n := svc.ClearCache(); n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}

	if _, ok := store.Get("cache:strava:activities:X"); ok {
		t.Error("expected cache key removed")
	}
	if v, ok := store.Get("unrelated:key:Y"); !ok || v != "keep me" {
		t.Error("expected unrelated key intact")
	}
	if svc.Stats().Clears != 1 {
		t.Errorf("expected 1 clear, got %d", svc.Stats().Clears)
	}
}

func TestAge(t *testing.T) {
	clock := newFakeClock()
	svc := New(kvstore.NewMemoryStore(0), WithClock(clock.Now))

	if _, ok := svc.Age("cache:strava:activities:a"); ok {
		t.Error("expected no age for missing key")
	}
	SetItem(svc, "cache:strava:activities:a", 1, time.Hour)
	clock.Advance(90 * time.Second)
	if age, ok := svc.Age("cache:strava:activities:a"); !ok || age != 90*time.Second {
		t.Errorf("expected 90s, got %v %v", age, ok)
	}
}

func TestStatsHitRate(t *testing.T) {
	svc := New(kvstore.NewMemoryStore(0))
	SetItem(svc, "cache:strava:route:1", 1, time.Hour)

	GetItem[int](svc, "cache:strava:route:1", time.Hour)
	GetItem[int](svc, "cache:strava:route:1", time.Hour)
	GetItem[int](svc, "cache:strava:route:2", time.Hour)
	GetItem[int](svc, "cache:strava:route:3", time.Hour)

	stats := svc.Stats()
	if stats.Hits != 2 || stats.Misses != 2 {
		t.Errorf("expected 2 hits / 2 misses, got %+v", stats)
	}
	if stats.HitRate() != 50 {
		t.Errorf("expected 50%% hit rate, got %v", stats.HitRate())
	}
	if (Stats{}).HitRate() != 0 {
		t.Error("expected 0 hit rate with no reads")
	}
}

func TestConcurrentAccess(t *testing.T) {
	svc := New(kvstore.NewMemoryStore(0))
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := GenerateKey(DomainActivity, i%5)
			SetItem(svc, key, i, time.Hour)
			GetItem[int](svc, key, time.Hour)
		}(i)
	}
	wg.Wait()

	if got := svc.Stats().Hits + svc.Stats().Misses; got != 50 {
		t.Errorf("expected 50 reads recorded, got %d", got)
	}
}
