// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jaspercycles/journeycache/internal/logging"
)

// redisOpTimeout bounds every round trip so the synchronous Store contract
// cannot hang on a stalled server.
const redisOpTimeout = 2 * time.Second

// RedisOptions configures OpenRedisStore.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

// RedisStore keeps entries in redis, namespaced so several deployments can
// share one server. Keys are reported without the namespace.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
}

// OpenRedisStore connects and pings the server.
func OpenRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Addr, err)
	}

	return NewRedisStore(client, opts.Namespace), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) namespaced(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

func (s *RedisStore) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, s.namespaced(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Redis read failed, treating as absent")
		return "", false
	}
	return val, true
}

func (s *RedisStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.client.Set(ctx, s.namespaced(key), value, 0).Err()
}

func (s *RedisStore) Remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Del(ctx, s.namespaced(key)).Err(); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Redis delete failed")
	}
}

func (s *RedisStore) Keys() []string {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	match := "*"
	prefix := ""
	if s.namespace != "" {
		prefix = s.namespace + ":"
		match = prefix + "*"
	}

	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			logging.Warn().Err(err).Msg("Redis key scan failed")
			return keys
		}
		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, prefix))
		}
		if next == 0 {
			return keys
		}
		cursor = next
	}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
