// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

/*
Package cache provides a versioned cache on top of a kvstore.Store.

Every value is stored as a JSON envelope:

	{"data": <payload>, "timestamp": <epoch ms>, "version": "1.0.0"}

Freshness is decided when reading. GetItem takes the TTL as an argument, so
one stored payload can answer both a short "good enough to show" check and a
longer "good enough to skip a refresh" check. An entry whose version differs
from the running schema version, whose age exceeds the TTL, or which cannot
be decoded is deleted on the read that finds it and reported absent. There
is no background sweep.

Bumping SchemaVersion (or passing WithVersion) invalidates everything written
under the old version without a migration.

# Keys

All keys start with Prefix ("cache:"), followed by a domain such as
"strava:activities" and the discriminating parameters:

	cache.GenerateKey(cache.DomainActivities, "2025-05-24T00:00:00Z")
	// cache:strava:activities:2025-05-24T00:00:00Z

ClearCache only touches keys carrying Prefix, so other data kept in the same
store survives.

# Faults

Storage and encoding faults never reach callers. A failed write is logged and
counted; the next read simply misses.

# Usage

	svc := cache.New(store)
	cache.SetItem(svc, key, snapshot, cache.DefaultTTL)
	if snap, ok := cache.GetItem[journey.Snapshot](svc, key, 10*time.Minute); ok {
	    return snap
	}
*/
package cache
