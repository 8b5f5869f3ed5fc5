// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package journey

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaspercycles/journeycache/internal/cache"
	"github.com/jaspercycles/journeycache/internal/kvstore"
	"github.com/jaspercycles/journeycache/internal/strava"
	"github.com/jaspercycles/journeycache/internal/upstream"
)

// fakeStrava is a scripted strava.Source.
type fakeStrava struct {
	mu         sync.Mutex
	activities []strava.SummaryActivity
	route      *strava.Route
	err        error
	queued     []error
	calls      map[string]int

	// When block is set, ListActivities signals started and waits for
	// block to close or ctx to end.
	block   chan struct{}
	started chan struct{}
}

func newFakeStrava(activities ...strava.SummaryActivity) *fakeStrava {
	return &fakeStrava{activities: activities, calls: map[string]int{}}
}

func (f *fakeStrava) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	if len(f.queued) > 0 {
		err := f.queued[0]
		f.queued = f.queued[1:]
		return err
	}
	return f.err
}

func (f *fakeStrava) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeStrava) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeStrava) ListActivities(ctx context.Context, _ time.Time) ([]strava.SummaryActivity, error) {
	err := f.record("list")
	if f.block != nil {
		f.started <- struct{}{}
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return append([]strava.SummaryActivity(nil), f.activities...), nil
}

func (f *fakeStrava) GetDetailedActivity(_ context.Context, id string) (*strava.DetailedActivity, error) {
	if err := f.record("detail"); err != nil {
		return nil, err
	}
	return &strava.DetailedActivity{SummaryActivity: strava.SummaryActivity{ID: 7, Name: "detail " + id}}, nil
}

func (f *fakeStrava) GetActivityPhotos(_ context.Context, id string, size int) ([]strava.Photo, error) {
	if err := f.record("photos"); err != nil {
		return nil, err
	}
	return []strava.Photo{{UniqueID: id, URLs: map[string]string{"600": "x.jpg"}}}, nil
}

func (f *fakeStrava) GetRoute(_ context.Context, id string) (*strava.Route, error) {
	if err := f.record("route"); err != nil {
		return nil, err
	}
	if f.route != nil {
		return f.route, nil
	}
	return &strava.Route{IDStr: id, Name: "route " + id}, nil
}

func (f *fakeStrava) GetPlannedRoute(ctx context.Context) (*strava.Route, error) {
	return f.GetRoute(ctx, strava.DefaultPlannedRouteID)
}

// countingStore counts writes to the wrapped store.
type countingStore struct {
	kvstore.Store
	sets atomic.Int32
}

func (c *countingStore) Set(key, value string) error {
	c.sets.Add(1)
	return c.Store.Set(key, value)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

type harness struct {
	svc      *Service
	strava   *fakeStrava
	store    *countingStore
	clock    *fakeClock
	mu       sync.Mutex
	outcomes []Outcome
}

func (h *harness) last() Outcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outcomes[len(h.outcomes)-1]
}

func newHarness(t *testing.T, src *fakeStrava, opts Options) *harness {
	t.Helper()
	h := &harness{
		strava: src,
		store:  &countingStore{Store: kvstore.NewMemoryStore(kvstore.DefaultMemoryQuota)},
		clock:  &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
	}
	opts.Now = h.clock.Now
	opts.OnOutcome = func(o Outcome) {
		h.mu.Lock()
		h.outcomes = append(h.outcomes, o)
		h.mu.Unlock()
	}
	c := cache.New(h.store, cache.WithClock(h.clock.Now))
	h.svc = New(c, src, nil, opts)
	return h
}

func ride(id int64, typ, start string) strava.SummaryActivity {
	return strava.SummaryActivity{ID: id, Type: typ, StartDate: start}
}

func assertPath(t *testing.T, o Outcome, want ...State) {
	t.Helper()
	if !reflect.DeepEqual(o.Path, want) {
		t.Errorf("path = %s, want %v", o, want)
	}
}

func TestFilterActivities(t *testing.T) {
	acts := []strava.SummaryActivity{
		ride(1, "Ride", "2024-01-01T00:00:00Z"),
		ride(2, "Run", "2024-06-01T00:00:00Z"),
		ride(3, "Ride", "2025-01-01T00:00:00Z"),
	}
	got := FilterActivities(acts, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("expected only the 2025 ride, got %+v", got)
	}

	boundary := FilterActivities([]strava.SummaryActivity{ride(4, "Ride", "2024-06-01T00:00:00Z")},
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if len(boundary) != 1 {
		t.Error("a ride starting exactly at startDate must be kept")
	}

	if got := FilterActivities(nil, time.Time{}); got == nil {
		t.Error("expected empty non-nil slice")
	}
}

func TestColdCacheThenHit(t *testing.T) {
	src := newFakeStrava(ride(1, "Ride", "2025-06-02T08:00:00Z"), ride(2, "Walk", "2025-06-03T08:00:00Z"))
	h := newHarness(t, src, Options{})
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	first := h.svc.GetJourneyActivities(ctx, start, false)
	assertPath(t, h.last(), StateCold, StateCacheCheck, StateCacheMiss, StateRemoteFetch, StateRemoteSuccess)
	if src.count("list") != 1 || h.store.sets.Load() != 1 {
		t.Fatalf("cold cache: %d remote calls, %d writes; want 1 and 1", src.count("list"), h.store.sets.Load())
	}
	if len(first.Activities) != 1 || first.StartDate != "2025-06-01T00:00:00Z" {
		t.Errorf("unexpected snapshot %+v", first)
	}

	second := h.svc.GetJourneyActivities(ctx, start, false)
	assertPath(t, h.last(), StateCold, StateCacheCheck, StateCacheHit)
	if src.count("list") != 1 {
		t.Errorf("second call reached the source")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cache hit differs from fetch:\n%+v\n%+v", first, second)
	}
}

func TestSubSecondStartDatesCachedApart(t *testing.T) {
	src := newFakeStrava(ride(1, "Ride", "2025-06-01T00:00:00Z"))
	h := newHarness(t, src, Options{})
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	late := h.svc.GetJourneyActivities(ctx, start.Add(500*time.Millisecond), false)
	if len(late.Activities) != 0 {
		t.Fatalf("ride before the start was kept: %+v", late.Activities)
	}
	exact := h.svc.GetJourneyActivities(ctx, start, false)
	if len(exact.Activities) != 1 {
		t.Errorf("expected the ride at the exact start, got %+v", exact.Activities)
	}
	if src.count("list") != 2 {
		t.Errorf("expected a separate fetch per start date, got %d", src.count("list"))
	}
}

func TestSkipCacheBypassesRead(t *testing.T) {
	src := newFakeStrava(ride(1, "Ride", "2025-06-02T08:00:00Z"))
	h := newHarness(t, src, Options{})
	ctx := context.Background()

	h.svc.GetJourneyActivities(ctx, time.Time{}, false)
	h.svc.GetJourneyActivities(ctx, time.Time{}, true)
	assertPath(t, h.last(), StateCold, StateRemoteFetch, StateRemoteSuccess)
	if src.count("list") != 2 {
		t.Errorf("expected 2 remote calls, got %d", src.count("list"))
	}
	if h.store.sets.Load() != 2 {
		t.Errorf("refresh must write through, got %d writes", h.store.sets.Load())
	}
}

func TestTTLExpiryRefetches(t *testing.T) {
	src := newFakeStrava(ride(1, "Ride", "2025-06-02T08:00:00Z"))
	h := newHarness(t, src, Options{TTL: TTLs{Activities: time.Hour}})
	ctx := context.Background()

	h.svc.GetJourneyActivities(ctx, time.Time{}, false)
	h.clock.Advance(time.Hour - time.Millisecond)
	h.svc.GetJourneyActivities(ctx, time.Time{}, false)
	if h.last().Final() != StateCacheHit {
		t.Errorf("expected hit just inside the TTL, got %s", h.last())
	}

	h.clock.Advance(2 * time.Millisecond)
	h.svc.GetJourneyActivities(ctx, time.Time{}, false)
	if h.last().Final() != StateRemoteSuccess {
		t.Errorf("expected refetch just past the TTL, got %s", h.last())
	}
}

func TestJourneyFallbackOnFailure(t *testing.T) {
	src := newFakeStrava()
	src.err = errors.New("connection refused")
	h := newHarness(t, src, Options{})
	start := time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC)

	snap := h.svc.GetJourneyActivities(context.Background(), start, false)
	out := h.last()
	if out.Final() != StateRemoteFailure || !out.Fallback {
		t.Errorf("unexpected outcome %s fallback=%v", out, out.Fallback)
	}
	// Mock rides on 24 May, 29 May and 3 June; the filter keeps the last two.
	if len(snap.Activities) != 2 || snap.Activities[0].ID != 2 {
		t.Errorf("expected filtered mock rides, got %+v", snap.Activities)
	}
	if len(h.store.Keys()) != 0 {
		t.Error("fallback data must not be cached")
	}
	if src.count("list") != 3 {
		t.Errorf("expected 3 attempts for a retryable error, got %d", src.count("list"))
	}
}

func TestJourneyFallbackWithDefaultStart(t *testing.T) {
	src := newFakeStrava()
	src.err = errors.New("connection refused")
	h := newHarness(t, src, Options{Retry: RetryPolicy{MaxAttempts: 1}})

	snap := h.svc.GetJourneyActivities(context.Background(), time.Time{}, false)
	if !h.last().Fallback {
		t.Fatalf("expected a fallback, got %s", h.last())
	}
	if len(snap.Activities) != len(strava.MockActivities()) {
		t.Errorf("fallback for the default start must list every mock ride, got %d", len(snap.Activities))
	}
	if snap.StartDate != DefaultStartDate.Format(time.RFC3339) {
		t.Errorf("start date = %q", snap.StartDate)
	}
}

func TestRetryRecovers(t *testing.T) {
	src := newFakeStrava(ride(1, "Ride", "2025-06-02T08:00:00Z"))
	src.queued = []error{
		&upstream.StatusError{Code: 503},
		&upstream.StatusError{Code: 502},
	}
	h := newHarness(t, src, Options{})

	snap := h.svc.GetJourneyActivities(context.Background(), time.Time{}, false)
	if h.last().Final() != StateRemoteSuccess || len(snap.Activities) != 1 {
		t.Errorf("expected success after retries, got %s", h.last())
	}
	if src.count("list") != 3 {
		t.Errorf("expected 3 attempts, got %d", src.count("list"))
	}
}

func TestNotFoundIsNotRetried(t *testing.T) {
	src := newFakeStrava()
	src.err = &upstream.StatusError{Code: 404}
	h := newHarness(t, src, Options{})

	a, ok := h.svc.GetDetailedActivity(context.Background(), "99", false)
	if ok || a != nil {
		t.Errorf("expected absent, got %+v", a)
	}
	if src.count("detail") != 1 {
		t.Errorf("not found must not be retried, got %d calls", src.count("detail"))
	}
	if !errors.Is(h.last().Err, upstream.ErrNotFound) {
		t.Errorf("outcome error = %v", h.last().Err)
	}
}

func TestSingleItemAccessors(t *testing.T) {
	src := newFakeStrava()
	h := newHarness(t, src, Options{})
	ctx := context.Background()

	a, ok := h.svc.GetDetailedActivity(ctx, "7", false)
	if !ok || a.Name != "detail 7" {
		t.Errorf("GetDetailedActivity: %+v %v", a, ok)
	}
	photos, ok := h.svc.GetActivityPhotos(ctx, "7", 600, false)
	if !ok || len(photos) != 1 {
		t.Errorf("GetActivityPhotos: %+v %v", photos, ok)
	}
	r, ok := h.svc.GetRouteByID(ctx, "55", false)
	if !ok || r.Name != "route 55" {
		t.Errorf("GetRouteByID: %+v %v", r, ok)
	}

	// Different sizes are different keys.
	h.svc.GetActivityPhotos(ctx, "7", 600, false)
	h.svc.GetActivityPhotos(ctx, "7", 100, false)
	if src.count("photos") != 2 {
		t.Errorf("expected one fetch per size, got %d", src.count("photos"))
	}
}

func TestSingleItemFailureIsAbsent(t *testing.T) {
	src := newFakeStrava()
	src.err = errors.New("token refresh failed")
	h := newHarness(t, src, Options{Retry: RetryPolicy{MaxAttempts: 1}})
	ctx := context.Background()

	if _, ok := h.svc.GetDetailedActivity(ctx, "1", false); ok {
		t.Error("detail: expected absent")
	}
	if _, ok := h.svc.GetActivityPhotos(ctx, "1", 600, false); ok {
		t.Error("photos: expected absent")
	}
	if _, ok := h.svc.GetRouteByID(ctx, "1", false); ok {
		t.Error("route: expected absent")
	}
	r := h.svc.GetPlannedRoute(ctx, false)
	if r == nil || r.Name != "Planned Route (Mock Data)" || !h.last().Fallback {
		t.Errorf("planned route: expected mock fallback, got %+v", r)
	}
}

func TestEmptyIDShortCircuits(t *testing.T) {
	src := newFakeStrava()
	h := newHarness(t, src, Options{})
	ctx := context.Background()

	if _, ok := h.svc.GetDetailedActivity(ctx, "", false); ok {
		t.Error("detail")
	}
	if _, ok := h.svc.GetActivityPhotos(ctx, "", 600, false); ok {
		t.Error("photos")
	}
	if _, ok := h.svc.GetRouteByID(ctx, "", false); ok {
		t.Error("route")
	}
	if len(src.calls) != 0 {
		t.Errorf("expected no I/O, got %v", src.calls)
	}
	if !h.last().Skipped {
		t.Error("outcome must be marked skipped")
	}
}

func TestUseMocks(t *testing.T) {
	src := newFakeStrava()
	h := newHarness(t, src, Options{UseMocks: true, DefaultStartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})
	ctx := context.Background()

	snap := h.svc.GetJourneyActivities(ctx, time.Time{}, false)
	if len(snap.Activities) != 3 {
		t.Errorf("expected all mock rides, got %d", len(snap.Activities))
	}
	if a, ok := h.svc.GetDetailedActivity(ctx, "2", false); !ok || a.Name != "Calais to Amiens" {
		t.Errorf("mock detail: %+v %v", a, ok)
	}
	if r := h.svc.GetPlannedRoute(ctx, false); r.Name != "Planned Route (Mock Data)" {
		t.Errorf("mock planned route: %+v", r)
	}
	if len(src.calls) != 0 || len(h.store.Keys()) != 0 {
		t.Error("mocks must not touch the source or the cache")
	}
}

func TestConcurrentFetchesShareOneCall(t *testing.T) {
	src := newFakeStrava(ride(1, "Ride", "2025-06-02T08:00:00Z"))
	src.block = make(chan struct{})
	src.started = make(chan struct{}, 1)
	h := newHarness(t, src, Options{})
	ctx := context.Background()

	const callers = 5
	var wg sync.WaitGroup
	results := make([]Snapshot, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = h.svc.GetJourneyActivities(ctx, time.Time{}, false)
	}()
	<-src.started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = h.svc.GetJourneyActivities(ctx, time.Time{}, false)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(src.block)
	wg.Wait()

	if src.count("list") != 1 {
		t.Errorf("expected a single remote call, got %d", src.count("list"))
	}
	if h.store.sets.Load() != 1 {
		t.Errorf("expected a single cache write, got %d", h.store.sets.Load())
	}
	for i, r := range results {
		if len(r.Activities) != 1 {
			t.Errorf("caller %d got %+v", i, r)
		}
	}
}

func TestTimeoutFallsBack(t *testing.T) {
	src := newFakeStrava(ride(1, "Ride", "2025-06-02T08:00:00Z"))
	src.block = make(chan struct{})
	src.started = make(chan struct{}, 10)
	defer close(src.block)
	h := newHarness(t, src, Options{Timeout: 30 * time.Millisecond, Retry: RetryPolicy{MaxAttempts: 1}})

	start := time.Now()
	snap := h.svc.GetJourneyActivities(context.Background(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), false)
	if time.Since(start) > 2*time.Second {
		t.Fatal("timeout not applied")
	}
	out := h.last()
	if out.Final() != StateRemoteFailure || !errors.Is(out.Err, context.DeadlineExceeded) {
		t.Errorf("unexpected outcome %s: %v", out, out.Err)
	}
	if len(snap.Activities) != 3 {
		t.Errorf("expected mock fallback, got %+v", snap.Activities)
	}
}

func TestParseStartDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"", time.Time{}, false},
		{"2025-05-24T00:00:00Z", time.Date(2025, 5, 24, 0, 0, 0, 0, time.UTC), false},
		{"2025-05-24T02:00:00+02:00", time.Date(2025, 5, 24, 0, 0, 0, 0, time.UTC), false},
		{"2025-05-24", time.Date(2025, 5, 24, 0, 0, 0, 0, time.UTC), false},
		{"2025-05-024T00:00:00Z", time.Time{}, true},
		{"yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := ParseStartDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStartDate(%q) err = %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseStartDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
