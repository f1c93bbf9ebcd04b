// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables and an optional .env file. It provides a centralized Config
// struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"mailcraft/internal/ai"
	"mailcraft/internal/storage"
)

// Provider names accepted by AI_PROVIDER.
var providerNames = []string{"gemini", "openai", "mistral", "claude"}

// ProviderConfig holds the settings of one AI provider. Fields are read
// with the provider's prefix, e.g. GEMINI_API_KEY or OPENAI_MODEL_IMAGE.
type ProviderConfig struct {
	APIKey     string `env:"API_KEY"`
	Model      string `env:"MODEL"`
	ImageModel string `env:"MODEL_IMAGE"`
	BaseURL    string `env:"BASE_URL"`
}

// StorageConfig holds the optional S3-compatible bucket for hosted hero
// images, read with the S3_ prefix.
type StorageConfig struct {
	Endpoint   string `env:"ENDPOINT"`
	Region     string `env:"REGION" envDefault:"us-east-1"`
	AccessKey  string `env:"ACCESS_KEY"`
	SecretKey  string `env:"SECRET_KEY"`
	Bucket     string `env:"BUCKET"`
	PublicURL  string `env:"PUBLIC_URL"`
	Prefix     string `env:"PREFIX" envDefault:"hero"`
	PublicRead bool   `env:"PUBLIC_READ" envDefault:"true"`
}

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port     string `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"` // "development", "production", "testing"
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// AI provider settings
	AIProvider string         `env:"AI_PROVIDER" envDefault:"gemini"`
	Gemini     ProviderConfig `envPrefix:"GEMINI_"`
	OpenAI     ProviderConfig `envPrefix:"OPENAI_"`
	Mistral    ProviderConfig `envPrefix:"MISTRAL_"`
	Claude     ProviderConfig `envPrefix:"CLAUDE_"`
	// LegacyAPIKey is the bare API_KEY name older deployments used for Gemini.
	LegacyAPIKey    string        `env:"API_KEY"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"60s"`
	ImageTimeout    time.Duration `env:"IMAGE_TIMEOUT" envDefault:"120s"`
	StrictColors    bool          `env:"STRICT_COLORS" envDefault:"false"`

	// Lead capture (Brevo). Lenient capture answers provider outages with
	// success; set it to false to surface them as 500.
	BrevoAPIKey        string `env:"BREVO_API_KEY"`
	BrevoBaseURL       string `env:"BREVO_BASE_URL"`
	LenientLeadCapture bool   `env:"LENIENT_LEAD_CAPTURE" envDefault:"true"`

	// Optional backing services. Empty means in-memory sessions and no
	// generation log.
	ValkeyURL   string `env:"VALKEY_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Hero image hosting. Without it images are embedded as data URIs.
	Storage StorageConfig `envPrefix:"S3_"`

	// Abuse protection and sessions
	RateLimit     int           `env:"RATE_LIMIT" envDefault:"10"`
	RateWindow    time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SecureCookies bool          `env:"SECURE_COOKIES" envDefault:"false"`
	// TrustProxy keys rate limiting on X-Forwarded-For. Set it only behind a
	// reverse proxy that overwrites the header.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying development defaults. Returns an error if values are
// malformed or critical values are missing in production mode.
func Load() (*Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()
	return LoadFrom(env.ToMap(os.Environ()))
}

// LoadFrom parses configuration from the given variables instead of the
// process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = cfg.LegacyAPIKey
	}
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	known := false
	for _, n := range providerNames {
		if c.AIProvider == n {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("AI_PROVIDER must be one of %s, got %q", strings.Join(providerNames, ", "), c.AIProvider))
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if c.ProviderTimeout <= 0 {
		errs = append(errs, errors.New("PROVIDER_TIMEOUT must be positive"))
	}
	if c.ImageTimeout <= 0 {
		errs = append(errs, errors.New("IMAGE_TIMEOUT must be positive"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("RATE_LIMIT must not be negative"))
	}
	if c.RateLimit > 0 && c.RateWindow <= 0 {
		errs = append(errs, errors.New("RATE_WINDOW must be positive when RATE_LIMIT is set"))
	}

	if c.storagePartial() {
		errs = append(errs, errors.New("S3 storage is partially configured: S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY and S3_BUCKET are all required"))
	}

	if c.Env == "production" {
		if !c.SecureCookies {
			errs = append(errs, errors.New("SECURE_COOKIES must be true in production"))
		}
		if c.RateLimit == 0 {
			errs = append(errs, errors.New("RATE_LIMIT must be set in production"))
		}
	}

	return errors.Join(errs...)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SlogLevel returns the parsed LOG_LEVEL. Load has already validated it.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl
}

// ProviderConfigs returns the per-provider settings keyed by provider name,
// with the shared timeouts applied.
func (c *Config) ProviderConfigs() map[string]ai.ProviderConfig {
	conv := func(p ProviderConfig) ai.ProviderConfig {
		return ai.ProviderConfig{
			APIKey:       p.APIKey,
			Model:        p.Model,
			ImageModel:   p.ImageModel,
			BaseURL:      p.BaseURL,
			Timeout:      c.ProviderTimeout,
			ImageTimeout: c.ImageTimeout,
		}
	}
	return map[string]ai.ProviderConfig{
		"gemini":  conv(c.Gemini),
		"openai":  conv(c.OpenAI),
		"mistral": conv(c.Mistral),
		"claude":  conv(c.Claude),
	}
}

// storagePartial reports whether some bucket settings are present but not
// enough to host images. Region, Prefix and PublicRead have defaults and do
// not count.
func (c *Config) storagePartial() bool {
	s := c.Storage
	set := s.Endpoint != "" || s.AccessKey != "" || s.SecretKey != "" || s.Bucket != "" || s.PublicURL != ""
	return set && !c.StorageConfig().Configured()
}

// StorageConfig returns the hero image bucket settings.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Endpoint:   c.Storage.Endpoint,
		Region:     c.Storage.Region,
		AccessKey:  c.Storage.AccessKey,
		SecretKey:  c.Storage.SecretKey,
		Bucket:     c.Storage.Bucket,
		PublicURL:  c.Storage.PublicURL,
		Prefix:     c.Storage.Prefix,
		PublicRead: c.Storage.PublicRead,
	}
}
