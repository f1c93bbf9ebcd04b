// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package generation turns a built prompt into a GeneratedArtifact: it calls
// the text provider, decodes the structured reply, and resolves the hero
// image token either with a generated image or a fixed fallback URL.
package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mailcraft/internal/ai"
	"mailcraft/internal/metrics"
	"mailcraft/internal/models"
	"mailcraft/internal/prompt"
)

const (
	// DefaultStockImageURL is used when no image generation was requested.
	DefaultStockImageURL = "https://images.unsplash.com/photo-1557804506-669a67965ba0?auto=format&fit=crop&w=1200&q=80"

	// DefaultFallbackImageURL is a neutral placeholder used when image
	// generation was requested but failed.
	DefaultFallbackImageURL = "https://placehold.co/1200x675/e2e8f0/64748b?text=+"
)

// Hero image sources, as recorded in metrics and the generation log.
const (
	ImageGenerated = "generated"
	ImageHosted    = "hosted"
	ImageFallback  = "fallback"
	ImageStock     = "stock"
)

// TextGenerator produces a JSON document matching a schema.
// *ai.Registry satisfies it.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema ai.Schema) (string, error)
}

// ImageGenerator produces one image for a prompt. *ai.Registry satisfies it.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, string, error)
}

// ImageHost stores a generated image and returns a URL for it.
// *storage.Client satisfies it.
type ImageHost interface {
	HostImage(ctx context.Context, name string, data []byte, mime string) (string, error)
}

// providerNamer is implemented by generators that can report which backend
// served the call.
type providerNamer interface {
	ActiveName() string
}

// Config holds the gateway's fixed URLs and timeouts. Zero values fall back
// to the package defaults.
type Config struct {
	StockImageURL    string
	FallbackImageURL string
	TextTimeout      time.Duration
	ImageTimeout     time.Duration
}

// Result is a generated artifact plus how its hero image was resolved.
type Result struct {
	Artifact    *models.GeneratedArtifact
	Provider    string
	ImageSource string
	Duration    time.Duration
}

// Gateway runs generation requests against the configured providers.
type Gateway struct {
	text    TextGenerator
	images  ImageGenerator
	host    ImageHost
	cfg     Config
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewGateway creates a gateway. text may be nil, in which case every call
// fails with ai.ErrConfiguration; images may be nil, in which case image
// requests always use the fallback URL. m may be nil.
func NewGateway(text TextGenerator, images ImageGenerator, cfg Config, m *metrics.Metrics) *Gateway {
	if cfg.StockImageURL == "" {
		cfg.StockImageURL = DefaultStockImageURL
	}
	if cfg.FallbackImageURL == "" {
		cfg.FallbackImageURL = DefaultFallbackImageURL
	}
	if cfg.TextTimeout <= 0 {
		cfg.TextTimeout = ai.DefaultTimeout
	}
	if cfg.ImageTimeout <= 0 {
		cfg.ImageTimeout = ai.DefaultImageTimeout
	}
	return &Gateway{
		text:    text,
		images:  images,
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default(),
	}
}

// WithLogger returns the gateway using logger for image-step diagnostics.
func (g *Gateway) WithLogger(logger *slog.Logger) *Gateway {
	g.logger = logger
	return g
}

// WithImageHost makes the gateway reference generated images by a hosted
// URL instead of embedding them. Upload failures fall back to a data URI.
func (g *Gateway) WithImageHost(host ImageHost) *Gateway {
	g.host = host
	return g
}

// Generate runs the text step and then the image step. Only HTML is ever
// rewritten after decoding. Image failures are logged and never returned.
func (g *Gateway) Generate(ctx context.Context, req prompt.Request) (*Result, error) {
	providerName := g.providerName()

	if g.text == nil {
		g.metrics.ObserveGeneration(providerName, metrics.OutcomeConfig, 0)
		return nil, fmt.Errorf("generate: %w", ai.ErrConfiguration)
	}

	start := time.Now()
	artifact, err := g.generateText(ctx, req)
	elapsed := time.Since(start)
	g.metrics.ObserveGeneration(providerName, Outcome(err), elapsed)
	if err != nil {
		return nil, err
	}

	src, source := g.heroImage(ctx, req)
	g.metrics.IncImage(source)

	html := strings.ReplaceAll(artifact.HTML, prompt.HeroImageToken, src)
	final := artifact.WithHTML(html)

	return &Result{
		Artifact:    &final,
		Provider:    providerName,
		ImageSource: source,
		Duration:    elapsed,
	}, nil
}

func (g *Gateway) generateText(ctx context.Context, req prompt.Request) (*models.GeneratedArtifact, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.TextTimeout)
	defer cancel()

	raw, err := g.text.GenerateJSON(ctx, req.Prompt, req.Schema)
	if err != nil {
		return nil, fmt.Errorf("generate text: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("generate text: %w", ai.ErrEmptyResponse)
	}

	artifact, err := decodeArtifact(raw)
	if err != nil {
		return nil, fmt.Errorf("generate text: %w", err)
	}
	return artifact, nil
}

// heroImage resolves the URL that replaces the hero token and reports
// where it came from.
func (g *Gateway) heroImage(ctx context.Context, req prompt.Request) (string, string) {
	if !req.GenerateImage {
		return g.cfg.StockImageURL, ImageStock
	}
	if g.images == nil {
		g.logger.Warn("hero image requested but no image provider configured")
		return g.cfg.FallbackImageURL, ImageFallback
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.ImageTimeout)
	defer cancel()

	data, mime, err := g.images.GenerateImage(ctx, req.ImagePrompt, prompt.ImageAspectRatio)
	if err == nil && len(data) == 0 {
		err = ai.ErrNoImage
	}
	if err != nil {
		g.logger.Warn("hero image generation failed, using fallback", "error", err)
		return g.cfg.FallbackImageURL, ImageFallback
	}

	if mime == "" {
		mime = "image/png"
	}
	if g.host != nil {
		url, err := g.host.HostImage(ctx, req.Topic, data, mime)
		if err == nil {
			return url, ImageHosted
		}
		g.logger.Warn("hero image upload failed, embedding instead", "error", err)
	}
	return DataURI(mime, data), ImageGenerated
}

func (g *Gateway) providerName() string {
	if n, ok := g.text.(providerNamer); ok {
		return n.ActiveName()
	}
	return "unknown"
}

// DataURI encodes data as an inline data: URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Outcome classifies a text-step error for metrics and the generation log.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ai.ErrConfiguration):
		return metrics.OutcomeConfig
	case errors.Is(err, ai.ErrMalformedResponse):
		return metrics.OutcomeMalformed
	case errors.Is(err, ai.ErrEmptyResponse):
		return metrics.OutcomeEmpty
	default:
		return metrics.OutcomeProvider
	}
}
