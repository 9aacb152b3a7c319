// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the tickersync daemon.
type Config struct {
	Upstream UpstreamConfig `koanf:"upstream"`
	Push     PushConfig     `koanf:"push"`
	Poll     PollConfig     `koanf:"poll"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Cache    CacheConfig    `koanf:"cache"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// UpstreamConfig points at the backend broadcast service.
type UpstreamConfig struct {
	// URL is the base URL of the broadcast service, e.g. https://api.example.com/broadcast
	URL     string        `koanf:"url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	// Lang is the requested display language (en, hi, gu).
	Lang string `koanf:"lang"`
}

// PushConfig controls the push (streaming) channel.
type PushConfig struct {
	Enabled bool `koanf:"enabled"`
	// Transport selects the stream flavor the upstream exposes.
	Transport string `koanf:"transport" validate:"oneof=sse websocket"`
	// Path is the stream path appended to the upstream base URL.
	Path string `koanf:"path"`
}

// PollConfig controls the pull (polling) channel.
type PollConfig struct {
	Interval time.Duration `koanf:"interval" validate:"gte=1s"`
}

// BreakerConfig tunes the pull-transport circuit breaker.
type BreakerConfig struct {
	Enabled bool `koanf:"enabled"`
	// MaxRequests allowed through while half-open.
	MaxRequests uint32 `koanf:"max_requests"`
	// Interval resets counts while closed.
	Interval time.Duration `koanf:"interval"`
	// Timeout before an open breaker transitions to half-open.
	Timeout time.Duration `koanf:"timeout"`
	// FailureRatio at or above which the breaker opens.
	FailureRatio float64 `koanf:"failure_ratio" validate:"gt=0,lte=1"`
	// MinRequests before the ratio is considered meaningful.
	MinRequests uint32 `koanf:"min_requests"`
}

// CacheConfig tunes the settings cache.
type CacheConfig struct {
	SettingsTTL time.Duration `koanf:"settings_ttl" validate:"gt=0"`
}

// ServerConfig configures the snapshot API server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gt=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// Default returns a Config with all defaults applied. These are layered
// below the config file and environment overrides.
func Default() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			URL:     "",
			Timeout: 10 * time.Second,
			Lang:    "en",
		},
		Push: PushConfig{
			Enabled:   true,
			Transport: "sse",
			Path:      "/stream",
		},
		Poll: PollConfig{
			Interval: 30 * time.Second,
		},
		Breaker: BreakerConfig{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      2 * time.Minute,
			FailureRatio: 0.6,
			MinRequests:  10,
		},
		Cache: CacheConfig{
			SettingsTTL: time.Minute,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8377,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var validate = validator.New()

// Validate checks that required configuration is present and well-formed.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			first := fieldErrors[0]
			return fmt.Errorf("config field %s failed %q validation (value %v)",
				first.Namespace(), first.Tag(), first.Value())
		}
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}
