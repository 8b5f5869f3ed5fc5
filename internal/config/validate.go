// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jaspercycles/journeycache/internal/journey"
	"github.com/jaspercycles/journeycache/internal/kvstore"
	"github.com/jaspercycles/journeycache/internal/logging"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateStrava(); err != nil {
		return err
	}
	if err := c.validateContent(); err != nil {
		return err
	}
	if err := c.validateJourney(); err != nil {
		return err
	}
	if err := c.validateRevalidate(); err != nil {
		return err
	}
	return c.validateSecurity()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case kvstore.BackendMemory:
		if c.Store.MemoryQuotaBytes <= 0 {
			return fmt.Errorf("store.memory_quota_bytes must be positive")
		}
	case kvstore.BackendBadger, kvstore.BackendBolt:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %s backend", c.Store.Backend)
		}
	case kvstore.BackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis backend")
		}
	case kvstore.BackendDisabled:
	default:
		return fmt.Errorf("store.backend %q is not one of memory, badger, bbolt, redis, disabled", c.Store.Backend)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Version == "" {
		return fmt.Errorf("cache.version is required")
	}
	ttls := map[string]time.Duration{
		"cache.activities_ttl": c.Cache.ActivitiesTTL,
		"cache.activity_ttl":   c.Cache.ActivityTTL,
		"cache.photos_ttl":     c.Cache.PhotosTTL,
		"cache.route_ttl":      c.Cache.RouteTTL,
		"cache.content_ttl":    c.Cache.ContentTTL,
	}
	for name, ttl := range ttls {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, ttl)
		}
	}
	return nil
}

func (c *Config) validateStrava() error {
	switch c.Strava.Mode {
	case StravaModeLive:
		if err := validateHTTPURL(c.Strava.APIBaseURL, "strava.api_base_url"); err != nil {
			return err
		}
		if c.Strava.AccessToken == "" && (c.Strava.ClientID == "" || c.Strava.ClientSecret == "" || c.Strava.RefreshToken == "") {
			return fmt.Errorf("strava live mode needs client_id, client_secret and refresh_token, or an access_token")
		}
		if c.Strava.RequestsPer15Min < 0 {
			return fmt.Errorf("strava.requests_per_15min must not be negative")
		}
	case StravaModeStatic:
		if c.Strava.StaticLocation == "" {
			return fmt.Errorf("strava.static_location is required in static mode")
		}
		if isRemote(c.Strava.StaticLocation) {
			if err := validateHTTPURL(c.Strava.StaticLocation, "strava.static_location"); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("strava.mode must be live or static, got %q", c.Strava.Mode)
	}
	if c.Strava.PhotoBaseURL != "" {
		if err := validateHTTPURL(c.Strava.PhotoBaseURL, "strava.photo_base_url"); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateContent() error {
	switch c.Content.Mode {
	case ContentModeAPI:
		if c.Content.APIURL != "" {
			return validateHTTPURL(c.Content.APIURL, "content.api_url")
		}
	case ContentModeFiles:
		if c.Content.Dir == "" {
			return fmt.Errorf("content.dir is required in files mode")
		}
	case ContentModeMock:
	default:
		return fmt.Errorf("content.mode must be api, files or mock, got %q", c.Content.Mode)
	}
	return nil
}

func (c *Config) validateJourney() error {
	if _, err := journey.ParseStartDate(c.Journey.StartDate); err != nil {
		return fmt.Errorf("journey.start_date: %w", err)
	}
	if c.Journey.Timeout < 0 {
		return fmt.Errorf("journey.timeout must not be negative")
	}
	if c.Journey.RetryMaxAttempts == 0 {
		return fmt.Errorf("journey.retry_max_attempts must be at least 1")
	}
	return nil
}

func (c *Config) validateRevalidate() error {
	if c.Revalidate.RefreshDelay < 0 {
		return fmt.Errorf("revalidate.refresh_delay must not be negative")
	}
	if c.Revalidate.WarmEnabled && c.Revalidate.WarmInterval <= 0 {
		return fmt.Errorf("revalidate.warm_interval must be positive when warming is enabled")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitRequests <= 0 {
		return fmt.Errorf("security.rate_limit_requests must be positive")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("security.rate_limit_window must be positive")
	}
	return nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// validateHTTPURL checks that rawURL is an absolute http(s) URL without a
// query string or fragment. A path is allowed.
func validateHTTPURL(rawURL, fieldName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", fieldName)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("%s must not include a query string or fragment", fieldName)
	}
	return nil
}
