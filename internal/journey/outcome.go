// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package journey

import (
	"strings"
	"time"
)

// State is one step of an accessor call.
type State string

// Accessor call states, in the order a call can visit them.
const (
	StateCold          State = "COLD"
	StateCacheCheck    State = "CACHE_CHECK"
	StateCacheHit      State = "CACHE_HIT"
	StateCacheMiss     State = "CACHE_MISS"
	StateRemoteFetch   State = "REMOTE_FETCH"
	StateRemoteSuccess State = "REMOTE_SUCCESS"
	StateRemoteFailure State = "REMOTE_FAILURE"
)

// Outcome describes how an accessor call was served.
type Outcome struct {
	Accessor string
	Key      string
	Path     []State
	// Shared is set when the remote fetch was joined from a concurrent
	// call for the same key.
	Shared bool
	// Fallback is set when bundled mock data was returned.
	Fallback bool
	// Skipped is set when the call returned without I/O, either because
	// the input was empty or because mocks are switched on.
	Skipped  bool
	Err      error
	Duration time.Duration
}

func newOutcome(accessor, key string) Outcome {
	return Outcome{Accessor: accessor, Key: key, Path: []State{StateCold}}
}

func (o *Outcome) step(s State) {
	o.Path = append(o.Path, s)
}

// Final returns the last state reached.
func (o Outcome) Final() State {
	return o.Path[len(o.Path)-1]
}

// String renders the path, e.g. "COLD>CACHE_CHECK>CACHE_HIT".
func (o Outcome) String() string {
	parts := make([]string, len(o.Path))
	for i, s := range o.Path {
		parts[i] = string(s)
	}
	return strings.Join(parts, ">")
}
