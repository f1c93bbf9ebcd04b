// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session keeps per-visitor state: the latest generated artifact,
// the unlocked flag, and the generation sequence counter used to discard
// stale results. Visitors are identified by an anonymous cookie.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mailcraft/internal/models"
)

const (
	// CookieName is the name of the visitor cookie sent to the browser.
	CookieName = "mc_session"

	// DefaultTTL is how long an idle visitor session is kept.
	DefaultTTL = 24 * time.Hour
)

// State is a snapshot of one visitor's session.
type State struct {
	Sequence uint64                    `json:"sequence"`
	Unlocked bool                      `json:"unlocked"`
	Artifact *models.GeneratedArtifact `json:"artifact,omitempty"`
}

// Store persists visitor state. Implementations must make Begin and Commit
// atomic per session so that concurrent generations for one visitor resolve
// to the result of the most recently started call.
type Store interface {
	// Begin issues the next sequence id for the session, starting at 1.
	Begin(ctx context.Context, id string) (uint64, error)

	// Commit stores artifact as the session's latest result if seq is still
	// the most recently issued id. It reports whether the commit happened.
	Commit(ctx context.Context, id string, seq uint64, artifact *models.GeneratedArtifact) (bool, error)

	// Unlock marks the session as having completed lead capture.
	Unlock(ctx context.Context, id string) error

	// State returns the session's current state. Unknown sessions yield a
	// zero State, not an error.
	State(ctx context.Context, id string) (*State, error)
}

// Cookies issues and reads the anonymous visitor cookie.
type Cookies struct {
	ttl    time.Duration
	secure bool
}

// NewCookies creates a cookie manager. Set secure when served over HTTPS.
func NewCookies(ttl time.Duration, secure bool) *Cookies {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cookies{ttl: ttl, secure: secure}
}

// ID returns the visitor id from the request cookie, or issues a new one
// and sets the cookie on w.
func (c *Cookies) ID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := c.Existing(r); ok {
		return id
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		// The configurator runs inside third-party iframes.
		SameSite: c.sameSite(),
		MaxAge:   int(c.ttl.Seconds()),
	})
	return id
}

// Existing returns the visitor id from the request cookie, if valid.
func (c *Cookies) Existing(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return "", false
	}
	return cookie.Value, true
}

func (c *Cookies) sameSite() http.SameSite {
	if c.secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
