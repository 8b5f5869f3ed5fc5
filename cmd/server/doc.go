// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

/*
Command server runs journeycache, the data service behind the Jasper Cycles
travel blog. It serves the ride journey (activities, photos, routes) and the
blog content (posts, tags, authors) from a versioned key-value cache,
refreshing from Strava and the content API in the background and falling
back to bundled data when either is unavailable.

# Process Layout

	root ("journeycache")
	├── cache-layer
	│   ├── websocket-hub   live stale-while-revalidate streams
	│   └── cache-warmer    keeps the default journey snapshot fresh
	└── api-layer
	    └── http-server     chi router on :3857

Startup order:

 1. Configuration: koanf (defaults, config.yaml, .env, environment)
 2. Logging: zerolog, optionally rotated through lumberjack
 3. Key-value store: memory, badger, bbolt or redis
 4. Sources: Strava live or static snapshot, content API or markdown files
 5. Journey service, websocket hub, HTTP router
 6. Supervisor tree until SIGINT or SIGTERM

# Configuration

	PORT=3857
	LOG_LEVEL=info                 # trace, debug, info, warn, error
	STORE_BACKEND=memory           # memory, badger, bbolt, redis, disabled
	STRAVA_MODE=static             # static or live
	STRAVA_STATIC_LOCATION=data/strava
	CONTENT_MODE=api               # api, files or mock
	CONTENT_API_URL=http://localhost:8000
	JOURNEY_START_DATE=2025-05-24
	USE_MOCKS=false

The frontend-era names VITE_API_URL, VITE_USE_MOCKS,
VITE_STRAVA_PHOTOS_BASE_URL and VITE_JOURNEY_START_DATE are still honored.
*/
package main
