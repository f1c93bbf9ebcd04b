// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON endpoints consumed by the email
// configurator: generation, lead capture, and the visitor's session view.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"mailcraft/internal/generation"
	"mailcraft/internal/lead"
	"mailcraft/internal/metrics"
	"mailcraft/internal/prompt"
	"mailcraft/internal/session"
	"mailcraft/internal/store"
)

// Generator runs a built request through the providers.
// *generation.Gateway satisfies it.
type Generator interface {
	Generate(ctx context.Context, req prompt.Request) (*generation.Result, error)
}

// Subscriber adds an address to the contact list. *lead.Gateway satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, email string) (lead.Result, error)
}

// GenerationLogger records generation calls. *store.GenerationLogStore
// satisfies it.
type GenerationLogger interface {
	Log(ctx context.Context, e store.GenerationLogEntry)
}

// Deps groups the collaborators of the API handlers. Log and Metrics may
// be nil.
type Deps struct {
	Generator    Generator
	Leads        Subscriber
	Sessions     session.Store
	Cookies      *session.Cookies
	Log          GenerationLogger
	Metrics      *metrics.Metrics
	StrictColors bool
}

// API groups the configurator's HTTP handlers.
type API struct {
	gen          Generator
	leads        Subscriber
	sessions     session.Store
	cookies      *session.Cookies
	log          GenerationLogger
	metrics      *metrics.Metrics
	strictColors bool
}

// NewAPI creates the handler group. Generator, Leads, Sessions and Cookies
// are required.
func NewAPI(d Deps) *API {
	return &API{
		gen:          d.Generator,
		leads:        d.Leads,
		sessions:     d.Sessions,
		cookies:      d.Cookies,
		log:          d.Log,
		metrics:      d.Metrics,
		strictColors: d.StrictColors,
	}
}

// Health reports that the process is serving requests.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requirePost answers 405 for anything but POST and reports whether the
// handler should continue. Preflights never reach the handlers.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", "POST, OPTIONS")
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
