// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package lead records visitor email addresses in the Brevo contact list.
// A successful (or leniently tolerated) subscription is what unlocks the
// generated code for a visitor.
package lead

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"mailcraft/internal/metrics"
	"mailcraft/internal/models"
)

// ErrConfiguration means no Brevo API key is configured. It is never
// tolerated by the lenient policy.
var ErrConfiguration = errors.New("lead: contact provider not configured")

// ProviderError wraps a transport or API failure from Brevo.
// StatusCode is 0 when no HTTP response was received.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		msg := e.Message
		if msg == "" {
			msg = e.Code
		}
		return fmt.Sprintf("brevo API error (status %d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("brevo: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// maxEmailLen is the RFC 5321 path limit.
const maxEmailLen = 254

// ValidateEmail reports whether email looks like a deliverable address.
func ValidateEmail(email string) error {
	switch {
	case email == "":
		return &models.ValidationError{Field: "email", Message: "Email is required"}
	case len(email) > maxEmailLen || !emailPattern.MatchString(email):
		return &models.ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	return nil
}

// Fingerprint returns a short stable digest of email for logs, so that
// addresses never appear in clear text.
func Fingerprint(email string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:8])
}

// Result describes a subscription that the caller should treat as success.
type Result struct {
	// Duplicate is set when the address was already on the list.
	Duplicate bool
	// Tolerated is set when the provider failed but the lenient policy
	// accepted the subscription anyway.
	Tolerated bool
}

// Config holds the Brevo credentials and the failure policy.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// Lenient turns provider failures into successes so that a contact-list
	// outage never blocks a visitor from unlocking their email.
	Lenient bool
}

// Gateway validates addresses and forwards them to Brevo.
type Gateway struct {
	cfg     Config
	brevo   *brevoClient
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewGateway creates a lead gateway. m may be nil.
func NewGateway(cfg Config, m *metrics.Metrics) *Gateway {
	return &Gateway{
		cfg:     cfg,
		brevo:   newBrevoClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		metrics: m,
		logger:  slog.Default(),
	}
}

// Configured reports whether a Brevo API key is set.
func (g *Gateway) Configured() bool {
	return g.cfg.APIKey != ""
}

// Subscribe validates email and adds it to the contact list. Invalid input
// returns a *models.ValidationError without any network call. A missing key
// returns ErrConfiguration. Other failures return a *ProviderError unless
// the lenient policy is on.
func (g *Gateway) Subscribe(ctx context.Context, email string) (Result, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		g.metrics.IncLead(metrics.OutcomeValidation)
		return Result{}, err
	}

	if !g.Configured() {
		g.metrics.IncLead(metrics.OutcomeConfig)
		return Result{}, fmt.Errorf("subscribe: %w", ErrConfiguration)
	}

	fp := Fingerprint(email)
	duplicate, err := g.brevo.createContact(ctx, email)
	if err != nil {
		if g.cfg.Lenient && ctx.Err() == nil {
			g.logger.Warn("lead capture failed, accepting leniently", "email_fp", fp, "error", err)
			g.metrics.IncLead(metrics.OutcomeLenient)
			return Result{Tolerated: true}, nil
		}
		g.logger.Error("lead capture failed", "email_fp", fp, "error", err)
		g.metrics.IncLead(metrics.OutcomeProvider)
		return Result{}, fmt.Errorf("subscribe: %w", err)
	}

	if duplicate {
		g.logger.Info("lead already subscribed", "email_fp", fp)
		g.metrics.IncLead(metrics.OutcomeDuplicate)
		return Result{Duplicate: true}, nil
	}

	g.logger.Info("lead captured", "email_fp", fp)
	g.metrics.IncLead(metrics.OutcomeSuccess)
	return Result{}, nil
}
