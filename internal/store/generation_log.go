// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// generation_log.go records one row per generation call for audit and
// debugging: which provider served it, how the hero image was resolved,
// and whether the result was discarded as stale. Generated markup and
// visitor emails are never stored.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// GenerationLogStore handles generation log operations.
type GenerationLogStore struct {
	db *sql.DB
}

// NewGenerationLogStore creates a new GenerationLogStore.
func NewGenerationLogStore(db *sql.DB) *GenerationLogStore {
	return &GenerationLogStore{db: db}
}

// GenerationLogEntry represents a single generation call.
type GenerationLogEntry struct {
	ID            uuid.UUID `json:"id"`
	SessionID     uuid.UUID `json:"sessionId"`
	Sequence      uint64    `json:"sequence"`
	Provider      string    `json:"provider"`
	TemplateID    string    `json:"templateId"`
	Language      string    `json:"language"`
	Tone          string    `json:"tone"`
	GenerateImage bool      `json:"generateImage"`
	ImageSource   string    `json:"imageSource"`
	Outcome       string    `json:"outcome"`
	Stale         bool      `json:"stale"`
	SubjectLine   string    `json:"subjectLine"`
	DurationMS    int64     `json:"durationMs"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Log records a generation call. A zero ID is replaced with a new UUID.
// Failures are logged and swallowed: the audit log is best-effort and never
// fails a generation.
func (s *GenerationLogStore) Log(ctx context.Context, e GenerationLogEntry) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	var sessionID any
	if e.SessionID != uuid.Nil {
		sessionID = e.SessionID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_log
			(id, session_id, sequence, provider, template_id, language, tone,
			 generate_image, image_source, outcome, stale, subject_line, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, e.ID, sessionID, int64(e.Sequence), e.Provider, e.TemplateID, e.Language, e.Tone,
		e.GenerateImage, e.ImageSource, e.Outcome, e.Stale, e.SubjectLine, e.DurationMS)
	if err != nil {
		slog.Warn("failed to log generation",
			"id", e.ID,
			"outcome", e.Outcome,
			"error", err,
		)
		return
	}
	slog.Debug("generation logged", "id", e.ID, "outcome", e.Outcome)
}

// RecentEntries returns the most recent generation calls, newest first.
func (s *GenerationLogStore) RecentEntries(ctx context.Context, limit int) ([]GenerationLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, sequence, provider, template_id, language, tone,
		       generate_image, image_source, outcome, stale, subject_line, duration_ms, created_at
		FROM generation_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query generation log: %w", err)
	}
	defer rows.Close()

	var entries []GenerationLogEntry
	for rows.Next() {
		var (
			e         GenerationLogEntry
			sessionID uuid.NullUUID
			seq       int64
		)
		if err := rows.Scan(&e.ID, &sessionID, &seq, &e.Provider, &e.TemplateID, &e.Language, &e.Tone,
			&e.GenerateImage, &e.ImageSource, &e.Outcome, &e.Stale, &e.SubjectLine, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generation log: %w", err)
		}
		if sessionID.Valid {
			e.SessionID = sessionID.UUID
		}
		e.Sequence = uint64(seq)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// OutcomeCount is the number of calls with one outcome.
type OutcomeCount struct {
	Outcome string `json:"outcome"`
	Count   int64  `json:"count"`
}

// OutcomeCounts groups calls made since the given time by outcome.
func (s *GenerationLogStore) OutcomeCounts(ctx context.Context, since time.Time) ([]OutcomeCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*)
		FROM generation_log
		WHERE created_at >= $1
		GROUP BY outcome
		ORDER BY outcome
	`, since)
	if err != nil {
		return nil, fmt.Errorf("query outcome counts: %w", err)
	}
	defer rows.Close()

	var out []OutcomeCount
	for rows.Next() {
		var c OutcomeCount
		if err := rows.Scan(&c.Outcome, &c.Count); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
