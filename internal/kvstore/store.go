// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package kvstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/metrics"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendBolt     = "bbolt"
	BackendRedis    = "redis"
	BackendDisabled = "disabled"
)

var (
	// ErrQuotaExceeded is returned by Set when the write would exceed the
	// store's capacity.
	ErrQuotaExceeded = errors.New("kvstore: quota exceeded")

	// ErrDisabled is returned by every write to a disabled store.
	ErrDisabled = errors.New("kvstore: storage disabled")
)

// Store is a synchronous string-keyed store.
//
// Get reports absence with ok=false; a backend read fault is also reported
// as absent. Set returns the write fault so callers can log it, but callers
// must treat a failed write as a cache miss later on and continue. Remove
// never fails from the caller's point of view. Keys returns a snapshot.
//
// Implementations are safe for concurrent use. Concurrent writes to the same
// key are last-write-wins.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string)
	Keys() []string
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend string

	// MemoryQuotaBytes caps the memory backend. Zero means unlimited.
	MemoryQuotaBytes int64

	// Path is the directory (badger) or file (bbolt) for durable backends.
	Path string

	// Bucket is the bbolt bucket name.
	Bucket string

	// RedisAddr, RedisPassword, RedisDB and RedisNamespace configure the
	// redis backend. RedisNamespace is prepended to every key on the wire.
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisNamespace string
}

// Open builds the configured backend wrapped with logging and metrics.
func Open(cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)

	backend := strings.ToLower(cfg.Backend)
	switch backend {
	case "", BackendMemory:
		backend = BackendMemory
		s = NewMemoryStore(cfg.MemoryQuotaBytes)
	case BackendBadger:
		s, err = OpenBadgerStore(cfg.Path)
	case BackendBolt:
		s, err = OpenBoltStore(cfg.Path, cfg.Bucket)
	case BackendRedis:
		s, err = OpenRedisStore(RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: cfg.RedisNamespace,
		})
	case BackendDisabled:
		s = Disabled{}
	default:
		return nil, fmt.Errorf("kvstore: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("kvstore: open %s: %w", backend, err)
	}

	logging.Info().Str("backend", backend).Msg("Key-value store opened")
	return Observe(backend, s), nil
}

// observed logs and counts store faults for any backend.
type observed struct {
	backend string
	next    Store
	log     zerolog.Logger
}

// Observe wraps s so that write faults are logged and every operation is
// counted under the given backend label.
func Observe(backend string, s Store) Store {
	return &observed{
		backend: backend,
		next:    s,
		log:     logging.WithComponent("kvstore").With().Str("backend", backend).Logger(),
	}
}

func (o *observed) Get(key string) (string, bool) {
	v, ok := o.next.Get(key)
	metrics.RecordStoreOperation(o.backend, "get", nil)
	return v, ok
}

func (o *observed) Set(key, value string) error {
	err := o.next.Set(key, value)
	metrics.RecordStoreOperation(o.backend, "set", err)
	if err != nil {
		o.log.Warn().Err(err).Str("key", key).Int("bytes", len(value)).Msg("Store write failed")
	}
	return err
}

func (o *observed) Remove(key string) {
	o.next.Remove(key)
	metrics.RecordStoreOperation(o.backend, "remove", nil)
}

func (o *observed) Keys() []string {
	keys := o.next.Keys()
	metrics.RecordStoreOperation(o.backend, "keys", nil)
	return keys
}

func (o *observed) Close() error {
	return o.next.Close()
}

// Disabled is a store that never holds data. It gives an always-cold cache.
type Disabled struct{}

func (Disabled) Get(string) (string, bool) { return "", false }
func (Disabled) Set(string, string) error  { return ErrDisabled }
func (Disabled) Remove(string)             {}
func (Disabled) Keys() []string            { return nil }
func (Disabled) Close() error              { return nil }
