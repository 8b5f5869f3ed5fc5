// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/jaspercycles/journeycache/internal/cache"
	"github.com/jaspercycles/journeycache/internal/content"
	"github.com/jaspercycles/journeycache/internal/kvstore"
	"github.com/jaspercycles/journeycache/internal/revalidate"
	"github.com/jaspercycles/journeycache/internal/strava"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/journeycache/config.yaml",
	"/etc/journeycache/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvFile is loaded into the process environment when present.
// Variables already set in the environment win.
const DotEnvFile = ".env"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3857,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Store: StoreConfig{
			Backend:          kvstore.BackendMemory,
			MemoryQuotaBytes: kvstore.DefaultMemoryQuota,
			Path:             "data/journeycache",
			Bucket:           "journeycache",
			RedisAddr:        "localhost:6379",
			RedisNamespace:   "journeycache",
		},
		Cache: CacheConfig{
			Version:       cache.SchemaVersion,
			ActivitiesTTL: cache.DefaultTTL,
			ActivityTTL:   cache.DefaultTTL,
			PhotosTTL:     cache.DefaultTTL,
			RouteTTL:      cache.DefaultTTL,
			ContentTTL:    time.Hour,
		},
		Strava: StravaConfig{
			Mode:             StravaModeStatic,
			APIBaseURL:       strava.DefaultAPIBaseURL,
			StaticLocation:   "data/strava",
			RequestsPer15Min: 100,
			PerPage:          100,
			Timeout:          10 * time.Second,
		},
		Content: ContentConfig{
			Mode:    ContentModeAPI,
			APIURL:  content.DefaultAPIBaseURL,
			Dir:     "content",
			Timeout: 10 * time.Second,
		},
		Journey: JourneyConfig{
			StartDate:            "2025-05-24",
			Timeout:              30 * time.Second,
			RetryMaxAttempts:     3,
			RetryInitialInterval: 200 * time.Millisecond,
			RetryMaxInterval:     2 * time.Second,
			RetryMaxElapsed:      5 * time.Second,
		},
		Revalidate: RevalidateConfig{
			RefreshDelay: revalidate.DefaultRefreshDelay,
			WarmEnabled:  true,
			WarmInterval: 6 * time.Hour,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
	}
}

// LoadWithKoanf loads, merges and validates the configuration.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadDotEnv merges path into the process environment. A missing file is
// not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
// Values from YAML are already slices and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"port":             "server.port",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"idle_timeout":     "server.idle_timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	// Logging
	"log_level":       "logging.level",
	"log_format":      "logging.format",
	"log_caller":      "logging.caller",
	"log_file":        "logging.file",
	"log_max_size_mb": "logging.max_size_mb",
	"log_max_backups": "logging.max_backups",
	"log_max_age":     "logging.max_age_days",
	"log_compress":    "logging.compress",

	// Store
	"store_backend":      "store.backend",
	"store_memory_quota": "store.memory_quota_bytes",
	"store_path":         "store.path",
	"store_bucket":       "store.bucket",
	"redis_addr":         "store.redis_addr",
	"redis_password":     "store.redis_password",
	"redis_db":           "store.redis_db",
	"redis_namespace":    "store.redis_namespace",

	// Cache
	"cache_version":        "cache.version",
	"cache_activities_ttl": "cache.activities_ttl",
	"cache_activity_ttl":   "cache.activity_ttl",
	"cache_photos_ttl":     "cache.photos_ttl",
	"cache_route_ttl":      "cache.route_ttl",
	"cache_content_ttl":    "cache.content_ttl",

	// Strava
	"strava_mode":               "strava.mode",
	"strava_api_base_url":       "strava.api_base_url",
	"strava_client_id":          "strava.client_id",
	"strava_client_secret":      "strava.client_secret",
	"strava_refresh_token":      "strava.refresh_token",
	"strava_access_token":       "strava.access_token",
	"strava_static_location":    "strava.static_location",
	"strava_photos_base_url":    "strava.photo_base_url",
	"strava_planned_route_id":   "strava.planned_route_id",
	"strava_requests_per_15min": "strava.requests_per_15min",
	"strava_per_page":           "strava.per_page",
	"strava_timeout":            "strava.timeout",

	// Content
	"content_mode":    "content.mode",
	"content_api_url": "content.api_url",
	"content_dir":     "content.dir",
	"content_timeout": "content.timeout",

	// Journey
	"journey_start_date":             "journey.start_date",
	"use_mocks":                      "journey.use_mocks",
	"journey_timeout":                "journey.timeout",
	"journey_retry_max_attempts":     "journey.retry_max_attempts",
	"journey_retry_initial_interval": "journey.retry_initial_interval",
	"journey_retry_max_interval":     "journey.retry_max_interval",
	"journey_retry_max_elapsed":      "journey.retry_max_elapsed",

	// Revalidation
	"revalidate_refresh_delay": "revalidate.refresh_delay",
	"cache_warm_enabled":       "revalidate.warm_enabled",
	"cache_warm_interval":      "revalidate.warm_interval",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_disabled": "security.rate_limit_disabled",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",

	// Frontend-era names
	"vite_api_url":                "content.api_url",
	"vite_use_mocks":              "journey.use_mocks",
	"vite_strava_photos_base_url": "strava.photo_base_url",
	"vite_journey_start_date":     "journey.start_date",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped names return "" and are skipped.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - STRAVA_CLIENT_ID -> strava.client_id
//   - VITE_USE_MOCKS -> journey.use_mocks
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
