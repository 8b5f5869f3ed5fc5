// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

/*
Package config loads the service configuration.

Values are layered with koanf, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. A YAML file: CONFIG_PATH, else the first of DefaultConfigPaths
 3. A .env file in the working directory, if present
 4. Environment variables, mapped explicitly by envTransformFunc

Unmapped environment variables are ignored. The frontend-era names
VITE_API_URL, VITE_USE_MOCKS, VITE_STRAVA_PHOTOS_BASE_URL and
VITE_JOURNEY_START_DATE are still honoured so existing deployments keep
working.

Example config.yaml:

	server:
	  port: 3857
	store:
	  backend: badger
	  path: /var/lib/journeycache
	strava:
	  mode: static
	  static_location: https://cdn.example.com/strava
	journey:
	  start_date: "2025-05-24"
*/
package config

import (
	"time"

	"github.com/jaspercycles/journeycache/internal/content"
	"github.com/jaspercycles/journeycache/internal/journey"
	"github.com/jaspercycles/journeycache/internal/kvstore"
	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/strava"
	"github.com/jaspercycles/journeycache/internal/upstream"
)

// Strava source modes.
const (
	StravaModeLive   = "live"
	StravaModeStatic = "static"
)

// Content source modes.
const (
	ContentModeAPI   = "api"
	ContentModeFiles = "files"
	ContentModeMock  = "mock"
)

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Store      StoreConfig      `koanf:"store"`
	Cache      CacheConfig      `koanf:"cache"`
	Strava     StravaConfig     `koanf:"strava"`
	Content    ContentConfig    `koanf:"content"`
	Journey    JourneyConfig    `koanf:"journey"`
	Revalidate RevalidateConfig `koanf:"revalidate"`
	Security   SecurityConfig   `koanf:"security"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig mirrors logging.Config with file rotation flattened.
type LoggingConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	Caller     bool   `koanf:"caller"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// StoreConfig selects the key-value backend behind the cache.
type StoreConfig struct {
	Backend          string `koanf:"backend"`
	MemoryQuotaBytes int64  `koanf:"memory_quota_bytes"`
	Path             string `koanf:"path"`
	Bucket           string `koanf:"bucket"`
	RedisAddr        string `koanf:"redis_addr"`
	RedisPassword    string `koanf:"redis_password"`
	RedisDB          int    `koanf:"redis_db"`
	RedisNamespace   string `koanf:"redis_namespace"`
}

// CacheConfig holds the schema version and per-domain freshness bars.
type CacheConfig struct {
	Version       string        `koanf:"version"`
	ActivitiesTTL time.Duration `koanf:"activities_ttl"`
	ActivityTTL   time.Duration `koanf:"activity_ttl"`
	PhotosTTL     time.Duration `koanf:"photos_ttl"`
	RouteTTL      time.Duration `koanf:"route_ttl"`
	ContentTTL    time.Duration `koanf:"content_ttl"`
}

// StravaConfig configures the activity source.
type StravaConfig struct {
	Mode             string        `koanf:"mode"`
	APIBaseURL       string        `koanf:"api_base_url"`
	ClientID         string        `koanf:"client_id"`
	ClientSecret     string        `koanf:"client_secret"`
	RefreshToken     string        `koanf:"refresh_token"`
	AccessToken      string        `koanf:"access_token"`
	StaticLocation   string        `koanf:"static_location"`
	PhotoBaseURL     string        `koanf:"photo_base_url"`
	PlannedRouteID   string        `koanf:"planned_route_id"`
	RequestsPer15Min int           `koanf:"requests_per_15min"`
	PerPage          int           `koanf:"per_page"`
	Timeout          time.Duration `koanf:"timeout"`
}

// ContentConfig configures the posts and authors source.
type ContentConfig struct {
	Mode    string        `koanf:"mode"`
	APIURL  string        `koanf:"api_url"`
	Dir     string        `koanf:"dir"`
	Timeout time.Duration `koanf:"timeout"`
}

// JourneyConfig tunes fetch orchestration.
type JourneyConfig struct {
	// StartDate is an RFC 3339 timestamp or a YYYY-MM-DD date.
	StartDate            string        `koanf:"start_date"`
	UseMocks             bool          `koanf:"use_mocks"`
	Timeout              time.Duration `koanf:"timeout"`
	RetryMaxAttempts     uint          `koanf:"retry_max_attempts"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
	RetryMaxElapsed      time.Duration `koanf:"retry_max_elapsed"`
}

// RevalidateConfig controls background refreshing of the journey snapshot.
type RevalidateConfig struct {
	RefreshDelay time.Duration `koanf:"refresh_delay"`
	// WarmEnabled runs a coordinator for the default start date at startup
	// and again every WarmInterval.
	WarmEnabled  bool          `koanf:"warm_enabled"`
	WarmInterval time.Duration `koanf:"warm_interval"`
}

// SecurityConfig holds the HTTP edge policies.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// LoggingOptions converts the logging section for logging.Init.
func (c *Config) LoggingOptions() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.Caller = c.Logging.Caller
	lc.File = logging.FileConfig{
		Path:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
		Compress:   c.Logging.Compress,
	}
	return lc
}

// StoreOptions converts the store section for kvstore.Open.
func (c *Config) StoreOptions() kvstore.Config {
	return kvstore.Config{
		Backend:          c.Store.Backend,
		MemoryQuotaBytes: c.Store.MemoryQuotaBytes,
		Path:             c.Store.Path,
		Bucket:           c.Store.Bucket,
		RedisAddr:        c.Store.RedisAddr,
		RedisPassword:    c.Store.RedisPassword,
		RedisDB:          c.Store.RedisDB,
		RedisNamespace:   c.Store.RedisNamespace,
	}
}

// StravaLive converts the strava section for strava.NewLiveClient.
func (c *Config) StravaLive() (strava.LiveConfig, strava.Credentials) {
	return strava.LiveConfig{
			BaseURL:          c.Strava.APIBaseURL,
			PhotoBaseURL:     c.Strava.PhotoBaseURL,
			PlannedRouteID:   c.Strava.PlannedRouteID,
			PerPage:          c.Strava.PerPage,
			Timeout:          c.Strava.Timeout,
			RequestsPer15Min: c.Strava.RequestsPer15Min,
			Breaker:          upstream.DefaultBreakerConfig(),
		}, strava.Credentials{
			ClientID:     c.Strava.ClientID,
			ClientSecret: c.Strava.ClientSecret,
			RefreshToken: c.Strava.RefreshToken,
			AccessToken:  c.Strava.AccessToken,
		}
}

// StravaStatic converts the strava section for strava.NewStaticClient.
func (c *Config) StravaStatic() strava.StaticConfig {
	return strava.StaticConfig{
		Location:       c.Strava.StaticLocation,
		PhotoBaseURL:   c.Strava.PhotoBaseURL,
		PlannedRouteID: c.Strava.PlannedRouteID,
		Timeout:        c.Strava.Timeout,
	}
}

// JourneyOptions converts the journey and cache sections for journey.New.
// The start date has already been checked by Validate.
func (c *Config) JourneyOptions() journey.Options {
	start, _ := journey.ParseStartDate(c.Journey.StartDate)
	return journey.Options{
		TTL: journey.TTLs{
			Activities: c.Cache.ActivitiesTTL,
			Activity:   c.Cache.ActivityTTL,
			Photos:     c.Cache.PhotosTTL,
			Route:      c.Cache.RouteTTL,
			Content:    c.Cache.ContentTTL,
		},
		DefaultStartDate: start,
		PlannedRouteID:   c.Strava.PlannedRouteID,
		UseMocks:         c.Journey.UseMocks,
		Timeout:          c.Journey.Timeout,
		Retry: journey.RetryPolicy{
			MaxAttempts:     c.Journey.RetryMaxAttempts,
			InitialInterval: c.Journey.RetryInitialInterval,
			MaxInterval:     c.Journey.RetryMaxInterval,
			MaxElapsed:      c.Journey.RetryMaxElapsed,
		},
	}
}

// ContentAPIBaseURL returns the content API base, defaulting to the local
// development server.
func (c *Config) ContentAPIBaseURL() string {
	if c.Content.APIURL == "" {
		return content.DefaultAPIBaseURL
	}
	return c.Content.APIURL
}
