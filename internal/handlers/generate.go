// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"mailcraft/internal/ai"
	"mailcraft/internal/generation"
	"mailcraft/internal/metrics"
	"mailcraft/internal/middleware"
	"mailcraft/internal/models"
	"mailcraft/internal/prompt"
	"mailcraft/internal/store"
)

// Response headers describing where a generation sits in the visitor's
// sequence. A stale response was superseded by a newer call and should be
// dropped by the client.
const (
	HeaderGenerationSeq   = "X-Generation-Seq"
	HeaderGenerationStale = "X-Generation-Stale"
)

// Client-facing generation failures. Details go to the server log only.
const (
	msgMissingConfig    = "Missing brand or content configuration"
	msgNotConfigured    = "Server configuration error: content generation is not available"
	msgGenerationFailed = "Failed to generate email content. Please try again."
)

// Generate handles POST /api/generate. It validates the brief, runs the
// generation pipeline and commits the artifact to the visitor's session
// unless a newer call was started in the meantime. Request validation runs
// before the provider is consulted, so a bad request is a 400 even when no
// provider key is configured.
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	ctx := r.Context()

	var body generateRequest
	if err := decodeJSON(w, r, maxGenerateBody, &body); err != nil {
		status, msg := bodyError(err)
		writeError(w, status, msg)
		return
	}
	if body.Brand == nil || body.Content == nil {
		writeError(w, http.StatusBadRequest, msgMissingConfig)
		return
	}
	brand, content := *body.Brand, *body.Content

	if err := prompt.Validate(brand, content, a.strictColors); err != nil {
		a.metrics.ObserveGeneration("none", metrics.OutcomeValidation, 0)
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Message)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sid := a.cookies.ID(w, r)
	seq, err := a.sessions.Begin(ctx, sid)
	if err != nil {
		// Generation still works without sequencing; the result is just
		// not kept in the session.
		slog.Warn("session begin failed", "error", err, "request_id", middleware.GetRequestID(ctx))
		seq = 0
	}

	req := prompt.Build(brand, content)
	start := time.Now()
	res, genErr := a.gen.Generate(ctx, req)

	entry := store.GenerationLogEntry{
		SessionID:     parseSessionID(sid),
		Sequence:      seq,
		TemplateID:    string(req.TemplateID),
		Language:      string(req.Language),
		Tone:          string(content.Tone.Normalize()),
		GenerateImage: req.GenerateImage,
		Outcome:       generation.Outcome(genErr),
		DurationMS:    time.Since(start).Milliseconds(),
	}

	if genErr != nil {
		a.record(r, entry)
		a.writeGenerationError(w, r, genErr)
		return
	}

	stale := false
	if seq > 0 {
		committed, err := a.sessions.Commit(ctx, sid, seq, res.Artifact)
		if err != nil {
			slog.Warn("session commit failed", "error", err, "seq", seq)
		}
		stale = err == nil && !committed
		w.Header().Set(HeaderGenerationSeq, strconv.FormatUint(seq, 10))
	}
	w.Header().Set(HeaderGenerationStale, strconv.FormatBool(stale))
	if stale {
		a.metrics.IncStale()
		slog.Info("stale generation discarded", "seq", seq, "request_id", middleware.GetRequestID(ctx))
	}

	entry.Provider = res.Provider
	entry.ImageSource = res.ImageSource
	entry.Stale = stale
	entry.SubjectLine = res.Artifact.SubjectLine
	a.record(r, entry)

	writeJSON(w, http.StatusOK, res.Artifact)
}

// writeGenerationError logs err in full and answers with a generic message,
// except for restricted keys whose remediation text is actionable.
func (a *API) writeGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())

	if errors.Is(err, ai.ErrConfiguration) {
		slog.Error("generation not configured", "error", err, "request_id", reqID)
		writeError(w, http.StatusInternalServerError, msgNotConfigured)
		return
	}

	slog.Error("generation failed", "error", err, "request_id", reqID)

	var pe *ai.ProviderError
	if errors.As(err, &pe) && pe.KeyRestricted() {
		writeError(w, http.StatusInternalServerError, pe.Remediation())
		return
	}
	writeError(w, http.StatusInternalServerError, msgGenerationFailed)
}

// record writes entry to the generation log when one is configured. The
// write is detached from client cancellation.
func (a *API) record(r *http.Request, entry store.GenerationLogEntry) {
	if a.log == nil {
		return
	}
	a.log.Log(context.WithoutCancel(r.Context()), entry)
}

func parseSessionID(sid string) uuid.UUID {
	id, err := uuid.Parse(sid)
	if err != nil {
		return uuid.Nil
	}
	return id
}
