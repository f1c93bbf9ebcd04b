// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus collectors for MailCraft. All
// recording methods are safe to call on a nil *Metrics, which records
// nothing; this lets the gateways run without a registry in tests and in
// the CLI.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeConfig      = "config_error"
	OutcomeProvider    = "provider_error"
	OutcomeEmpty       = "empty_response"
	OutcomeMalformed   = "malformed_response"
	OutcomeValidation  = "validation_error"
	OutcomeDuplicate   = "duplicate"
	OutcomeLenient     = "lenient"
	OutcomeUnavailable = "unavailable"
)

// Metrics holds all Prometheus metrics for MailCraft.
type Metrics struct {
	GenerationsTotal          *prometheus.CounterVec
	GenerationDurationSeconds *prometheus.HistogramVec
	ImagesTotal               *prometheus.CounterVec
	StaleGenerationsTotal     prometheus.Counter
	LeadsTotal                *prometheus.CounterVec

	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with every collector registered on a
// private registry, plus the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailcraft_generations_total",
				Help: "Total number of email generation calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		GenerationDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mailcraft_generation_duration_seconds",
				Help:    "Time spent in the text generation call",
				Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 45, 60, 90},
			},
			[]string{"provider"},
		),
		ImagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailcraft_hero_images_total",
				Help: "Hero image substitutions by source (generated, hosted, fallback, stock)",
			},
			[]string{"source"},
		),
		StaleGenerationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mailcraft_stale_generations_total",
				Help: "Generation results discarded because a newer request was issued",
			},
		),
		LeadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailcraft_leads_total",
				Help: "Lead capture attempts by outcome",
			},
			[]string{"outcome"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailcraft_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mailcraft_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "path"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.GenerationsTotal,
		m.GenerationDurationSeconds,
		m.ImagesTotal,
		m.StaleGenerationsTotal,
		m.LeadsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveGeneration records one text generation call.
func (m *Metrics) ObserveGeneration(provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(provider, outcome).Inc()
	m.GenerationDurationSeconds.WithLabelValues(provider).Observe(d.Seconds())
}

// IncImage records how the hero image token was resolved.
func (m *Metrics) IncImage(source string) {
	if m == nil {
		return
	}
	m.ImagesTotal.WithLabelValues(source).Inc()
}

// IncStale records a generation result that lost the sequence race.
func (m *Metrics) IncStale() {
	if m == nil {
		return
	}
	m.StaleGenerationsTotal.Inc()
}

// IncLead records a lead capture outcome.
func (m *Metrics) IncLead(outcome string) {
	if m == nil {
		return
	}
	m.LeadsTotal.WithLabelValues(outcome).Inc()
}
