// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mailcraft/internal/ai"
	"mailcraft/internal/cache"
	"mailcraft/internal/config"
	"mailcraft/internal/database"
	"mailcraft/internal/generation"
	"mailcraft/internal/handlers"
	"mailcraft/internal/lead"
	"mailcraft/internal/metrics"
	"mailcraft/internal/middleware"
	"mailcraft/internal/router"
	"mailcraft/internal/session"
	"mailcraft/internal/storage"
	"mailcraft/internal/store"
)

// memorySessions bounds the in-memory session store used without Valkey.
const memorySessions = 10_000

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Sessions live in Valkey when configured, otherwise in process memory.
	var sessions session.Store
	if cfg.ValkeyURL != "" {
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyURL)
		if err != nil {
			return fmt.Errorf("connect valkey: %w", err)
		}
		defer client.Close()
		sessions = session.NewValkeyStore(client, cfg.SessionTTL)
		slog.Info("session store", "backend", "valkey")
	} else {
		sessions = session.NewMemoryStore(memorySessions, cfg.SessionTTL)
		slog.Warn("VALKEY_URL not set, sessions are kept in memory")
	}

	// The generation log is optional.
	var genLog handlers.GenerationLogger
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		genLog = store.NewGenerationLogStore(db)
	} else {
		slog.Warn("DATABASE_URL not set, generation log disabled")
	}

	registry := newRegistry(cfg)
	gateway, err := newGateway(cfg, registry, m)
	if err != nil {
		return err
	}
	leads := lead.NewGateway(lead.Config{
		APIKey:  cfg.BrevoAPIKey,
		BaseURL: cfg.BrevoBaseURL,
		Lenient: cfg.LenientLeadCapture,
	}, m)
	if !leads.Configured() {
		slog.Warn("BREVO_API_KEY not set, lead capture will fail")
	}

	api := handlers.NewAPI(handlers.Deps{
		Generator:    gateway,
		Leads:        leads,
		Sessions:     sessions,
		Cookies:      session.NewCookies(cfg.SessionTTL, cfg.SecureCookies),
		Log:          genLog,
		Metrics:      m,
		StrictColors: cfg.StrictColors,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow).TrustProxy(cfg.TrustProxy)
	defer limiter.Stop()

	// WriteTimeout must cover a text call plus an image call.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(api, limiter, m),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.ProviderTimeout + cfg.ImageTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active generations time to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newRegistry initializes the AI provider registry with every configured
// provider.
func newRegistry(cfg *config.Config) *ai.Registry {
	registry := ai.NewRegistry(cfg.AIProvider, cfg.ProviderConfigs())
	slog.Info("ai providers initialized",
		"active", registry.ActiveName(),
		"available", registry.Available(),
		"images", registry.SupportsImageGeneration(),
	)
	if !registry.HasProvider(cfg.AIProvider) {
		slog.Warn("active AI provider has no API key, generation will fail", "provider", cfg.AIProvider)
	}
	return registry
}

// newGateway builds the generation gateway, hosting hero images on object
// storage when a bucket is configured.
func newGateway(cfg *config.Config, registry *ai.Registry, m *metrics.Metrics) (*generation.Gateway, error) {
	gateway := generation.NewGateway(registry, registry, generation.Config{
		TextTimeout:  cfg.ProviderTimeout,
		ImageTimeout: cfg.ImageTimeout,
	}, m)

	host, err := storage.New(cfg.StorageConfig())
	if err != nil {
		return nil, err
	}
	if host == nil {
		slog.Info("hero images will be embedded as data URIs")
		return gateway, nil
	}
	slog.Info("hero images hosted on object storage", "bucket", host.Bucket())
	return gateway.WithImageHost(host), nil
}
