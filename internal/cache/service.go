// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package cache

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/jaspercycles/journeycache/internal/kvstore"
	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/metrics"
)

const (
	// SchemaVersion tags the shape of every cached payload. Bump it after a
	// breaking change to any cached type.
	SchemaVersion = "1.0.0"

	// DefaultTTL is the freshness bar used when callers have no better one.
	DefaultTTL = 24 * time.Hour
)

// Eviction reasons.
const (
	EvictExpired = "expired"
	EvictVersion = "version"
	EvictCorrupt = "corrupt"
)

var errMissingField = errors.New("entry is missing data, timestamp or version")

// Entry is the stored envelope.
type Entry[T any] struct {
	Data      T      `json:"data"`
	Timestamp int64  `json:"timestamp"`
	Version   string `json:"version"`
}

// rawEntry is used on read so that missing fields can be told apart from
// zero values.
type rawEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp *int64          `json:"timestamp"`
	Version   *string         `json:"version"`
}

// Stats is a point-in-time copy of the service counters.
type Stats struct {
	Hits          int64     `json:"hits"`
	Misses        int64     `json:"misses"`
	Evictions     int64     `json:"evictions"`
	WriteFailures int64     `json:"write_failures"`
	Clears        int64     `json:"clears"`
	LastClear     time.Time `json:"last_clear"`
}

// HitRate returns hits as a percentage of reads.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Service is the versioned, read-time TTL cache. Construct one per process
// and pass it to the components that need it.
type Service struct {
	store   kvstore.Store
	now     func() time.Time
	version string
	log     zerolog.Logger

	mu    sync.Mutex
	stats Stats
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now. Tests use it to step over TTL boundaries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithVersion overrides SchemaVersion.
func WithVersion(version string) Option {
	return func(s *Service) { s.version = version }
}

// New creates a Service over store.
func New(store kvstore.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		now:     time.Now,
		version: SchemaVersion,
		log:     logging.WithComponent("cache"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Version returns the running schema version.
func (s *Service) Version() string {
	return s.version
}

// SetItem stores data under key with the current time and schema version.
// Encoding and storage faults are logged and swallowed. ttl does not affect
// what is stored; it is recorded in the debug log for tracing which
// freshness bar the writer expects.
func SetItem[T any](s *Service, key string, data T, ttl time.Duration) {
	raw, err := json.Marshal(Entry[T]{
		Data:      data,
		Timestamp: s.now().UnixMilli(),
		Version:   s.version,
	})
	if err != nil {
		s.recordWriteFailure(key)
		s.log.Warn().Err(err).Str("key", key).Msg("Cache entry could not be encoded")
		return
	}

	if err := s.store.Set(key, string(raw)); err != nil {
		s.recordWriteFailure(key)
		s.log.Warn().Err(err).Str("key", key).Msg("Cache write dropped")
		return
	}
	s.log.Debug().Str("key", key).Dur("ttl", ttl).Int("bytes", len(raw)).Msg("Cache entry stored")
}

// GetItem returns the payload under key if it was written under the running
// schema version and is no older than ttl. Anything else is deleted and
// reported absent.
func GetItem[T any](s *Service, key string, ttl time.Duration) (T, bool) {
	var zero T

	raw, ok := s.store.Get(key)
	if !ok {
		s.recordRead(key, false)
		return zero, false
	}

	var entry rawEntry
	err := json.Unmarshal([]byte(raw), &entry)
	if err == nil && (len(entry.Data) == 0 || entry.Timestamp == nil || entry.Version == nil) {
		err = errMissingField
	}
	if err != nil {
		s.evict(key, EvictCorrupt, err)
		return zero, false
	}

	if *entry.Version != s.version {
		s.evict(key, EvictVersion, nil)
		return zero, false
	}

	age := s.now().Sub(time.UnixMilli(*entry.Timestamp))
	if age > ttl {
		s.evict(key, EvictExpired, nil)
		return zero, false
	}

	var data T
	if err := json.Unmarshal(entry.Data, &data); err != nil {
		s.evict(key, EvictCorrupt, err)
		return zero, false
	}

	s.recordRead(key, true)
	return data, true
}

// Age reports how long ago the entry under key was written, regardless of
// TTL. It does not evict.
func (s *Service) Age(key string) (time.Duration, bool) {
	raw, ok := s.store.Get(key)
	if !ok {
		return 0, false
	}
	var entry rawEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.Timestamp == nil {
		return 0, false
	}
	return s.now().Sub(time.UnixMilli(*entry.Timestamp)), true
}

// RemoveItem deletes one entry.
func (s *Service) RemoveItem(key string) {
	s.store.Remove(key)
}

// ClearCache deletes every key carrying Prefix and returns how many were
// removed. Keys outside the prefix are left alone.
func (s *Service) ClearCache() int {
	removed := 0
	for _, key := range s.store.Keys() {
		if strings.HasPrefix(key, Prefix) {
			s.store.Remove(key)
			removed++
		}
	}

	s.mu.Lock()
	s.stats.Clears++
	s.stats.LastClear = s.now()
	s.mu.Unlock()
	metrics.CacheClears.Inc()

	s.log.Info().Int("removed", removed).Msg("Cache cleared")
	return removed
}

// Stats returns a copy of the counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Service) evict(key, reason string, err error) {
	s.store.Remove(key)

	s.mu.Lock()
	s.stats.Evictions++
	s.stats.Misses++
	s.mu.Unlock()

	domain := domainOf(key)
	metrics.RecordCacheEviction(domain, reason)
	metrics.RecordCacheRead(domain, false)

	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Str("reason", reason).Msg("Unreadable cache entry evicted")
		return
	}
	s.log.Debug().Str("key", key).Str("reason", reason).Msg("Cache entry evicted")
}

func (s *Service) recordRead(key string, hit bool) {
	s.mu.Lock()
	if hit {
		s.stats.Hits++
	} else {
		s.stats.Misses++
	}
	s.mu.Unlock()
	metrics.RecordCacheRead(domainOf(key), hit)
}

func (s *Service) recordWriteFailure(key string) {
	s.mu.Lock()
	s.stats.WriteFailures++
	s.mu.Unlock()
	metrics.RecordCacheWriteFailure(domainOf(key))
}
