// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package kvstore

import (
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/jaspercycles/journeycache/internal/logging"
)

// DefaultBoltBucket is used when no bucket name is configured.
const DefaultBoltBucket = "journeycache"

// BoltStore persists entries in a single bbolt file under one bucket.
type BoltStore struct {
	db     *bbolt.DB
	bucket []byte
}

// OpenBoltStore opens (or creates) the bbolt file and bucket.
func OpenBoltStore(file, bucket string) (*BoltStore, error) {
	if file == "" {
		return nil, errors.New("bbolt path is required")
	}
	if bucket == "" {
		bucket = DefaultBoltBucket
	}

	db, err := bbolt.Open(file, 0o644, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt at %s: %w", file, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
	}

	return &BoltStore{db: db, bucket: []byte(bucket)}, nil
}

func (s *BoltStore) Get(key string) (string, bool) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		// bytes returned by Get are only valid inside the transaction
		if data := tx.Bucket(s.bucket).Get([]byte(key)); data != nil {
			value, found = string(data), true
		}
		return nil
	})
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("bbolt read failed, treating as absent")
		return "", false
	}
	return value, found
}

func (s *BoltStore) Set(key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), []byte(value))
	})
}

func (s *BoltStore) Remove(key string) {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("bbolt delete failed")
	}
}

func (s *BoltStore) Keys() []string {
	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		logging.Warn().Err(err).Msg("bbolt key scan failed")
	}
	return keys
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
