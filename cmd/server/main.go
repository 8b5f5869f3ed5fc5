// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jaspercycles/journeycache/internal/api"
	"github.com/jaspercycles/journeycache/internal/cache"
	"github.com/jaspercycles/journeycache/internal/config"
	"github.com/jaspercycles/journeycache/internal/content"
	"github.com/jaspercycles/journeycache/internal/journey"
	"github.com/jaspercycles/journeycache/internal/kvstore"
	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/middleware"
	"github.com/jaspercycles/journeycache/internal/revalidate"
	"github.com/jaspercycles/journeycache/internal/strava"
	"github.com/jaspercycles/journeycache/internal/supervisor"
	"github.com/jaspercycles/journeycache/internal/supervisor/services"
	"github.com/jaspercycles/journeycache/internal/upstream"
	ws "github.com/jaspercycles/journeycache/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggingOptions())
	logging.Info().
		Str("version", version).
		Str("store", cfg.Store.Backend).
		Str("strava_mode", cfg.Strava.Mode).
		Str("content_mode", cfg.Content.Mode).
		Bool("use_mocks", cfg.Journey.UseMocks).
		Msg("Starting journeycache")

	store, err := kvstore.Open(cfg.StoreOptions())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open key-value store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing key-value store")
		}
	}()

	var cacheOpts []cache.Option
	if cfg.Cache.Version != "" {
		cacheOpts = append(cacheOpts, cache.WithVersion(cfg.Cache.Version))
	}
	cacheSvc := cache.New(store, cacheOpts...)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	breakers := map[string]api.BreakerReporter{}
	journeyOpts := cfg.JourneyOptions()

	stravaSource, err := newStravaSource(ctx, cfg, breakers)
	if err != nil {
		// Without a source the journey is served from the bundled rides.
		logging.Error().Err(err).Msg("Strava source unavailable, serving mock data")
		journeyOpts.UseMocks = true
	}
	contentSource, err := newContentSource(cfg, breakers)
	if err != nil {
		logging.Error().Err(err).Msg("Content source unavailable, serving mock content")
	}

	journeySvc := journey.New(cacheSvc, stravaSource, contentSource, journeyOpts)

	coordinatorOpts := []revalidate.Option{revalidate.WithName("journey")}
	if cfg.Revalidate.RefreshDelay > 0 {
		coordinatorOpts = append(coordinatorOpts, revalidate.WithRefreshDelay(cfg.Revalidate.RefreshDelay))
	}
	newCoordinator := func() *revalidate.Coordinator[journey.Snapshot] {
		return journeySvc.NewCoordinator(coordinatorOpts...)
	}
	hub := ws.NewHub(func(key string) *revalidate.Coordinator[journey.Snapshot] {
		c := newCoordinator()
		c.Start(key)
		return c
	})

	handler := api.NewHandler(api.Deps{
		Journey:        journeySvc,
		Hub:            hub,
		Performance:    middleware.NewPerformanceMonitor(0),
		Breakers:       breakers,
		StoreBackend:   cfg.Store.Backend,
		Version:        version,
		AllowedOrigins: cfg.Security.CORSOrigins,
	})
	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwConfig.RateLimitDisabled = cfg.Security.RateLimitDisabled
	mwConfig.RateLimitRequests = cfg.Security.RateLimitRequests
	mwConfig.RateLimitWindow = cfg.Security.RateLimitWindow
	router := api.NewRouter(handler, mwConfig)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddCacheService(services.NewHubService(hub))
	if cfg.Revalidate.WarmEnabled && !journeyOpts.UseMocks {
		key := journeySvc.StartKey(time.Time{})
		tree.AddCacheService(services.NewCacheWarmerService(key, cfg.Revalidate.WarmInterval, newCoordinator))
		logging.Info().Str("key", key).Dur("interval", cfg.Revalidate.WarmInterval).Msg("Cache warmer enabled")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, stopping services")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	logging.Info().Msg("journeycache stopped")
}

// newStravaSource builds the configured activity source and registers its
// circuit breaker for health reporting.
func newStravaSource(ctx context.Context, cfg *config.Config, breakers map[string]api.BreakerReporter) (strava.Source, error) {
	switch cfg.Strava.Mode {
	case config.StravaModeLive:
		liveCfg, creds := cfg.StravaLive()
		tokens, err := strava.NewTokenSource(ctx, creds)
		if err != nil {
			return nil, fmt.Errorf("strava credentials: %w", err)
		}
		client := strava.NewLiveClient(liveCfg, tokens)
		breakers["strava"] = client
		return client, nil
	default:
		client, err := strava.NewStaticClient(cfg.StravaStatic())
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// newContentSource returns nil, which serves mock content, in mock mode.
func newContentSource(cfg *config.Config, breakers map[string]api.BreakerReporter) (content.Source, error) {
	switch cfg.Content.Mode {
	case config.ContentModeFiles:
		info, err := os.Stat(cfg.Content.Dir)
		if err != nil {
			return nil, fmt.Errorf("content directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("content directory %s is not a directory", cfg.Content.Dir)
		}
		return content.NewFileSource(os.DirFS(cfg.Content.Dir)), nil
	case config.ContentModeMock:
		return nil, nil
	default:
		client := content.NewLiveClient(cfg.ContentAPIBaseURL(), cfg.Content.Timeout, upstream.DefaultBreakerConfig())
		breakers["content"] = client
		return client, nil
	}
}
