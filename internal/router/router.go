// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// MailCraft API. Everything under /api is CORS-enabled for embedding.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mailcraft/internal/handlers"
	"mailcraft/internal/metrics"
	"mailcraft/internal/middleware"
)

// New creates and returns the configured Chi router. limiter guards the
// endpoints that call paid upstream APIs; m may be nil to disable metrics.
func New(api *handlers.API, limiter *middleware.RateLimiter, m *metrics.Metrics) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(m.Middleware)

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/health", handlers.Health)
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS)
		r.NotFound(notFound)
		r.MethodNotAllowed(methodNotAllowed)

		// Any method reaches these so the handlers can answer 405 as JSON.
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}
			r.HandleFunc("/generate", api.Generate)
			r.HandleFunc("/subscribe", api.Subscribe)
		})

		r.Get("/session", api.Session)
		r.Get("/artifact", api.Artifact)
		r.Get("/templates", handlers.Templates)
	})

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
