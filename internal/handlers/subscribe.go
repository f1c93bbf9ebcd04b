// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"mailcraft/internal/lead"
	"mailcraft/internal/middleware"
	"mailcraft/internal/models"
)

const (
	msgEmailRequired     = "Email is required"
	msgAlreadySubscribed = "User already subscribed"
	msgSubscribeNotReady = "Server configuration error: lead capture is not available"
	msgSubscribeFailed   = "Failed to subscribe. Please try again."
)

type subscribeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Subscribe handles POST /api/subscribe. A successful subscription unlocks
// the visitor's latest artifact.
func (a *API) Subscribe(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	ctx := r.Context()

	var body subscribeRequest
	if err := decodeJSON(w, r, maxSubscribeBody, &body); err != nil {
		status, msg := bodyError(err)
		writeError(w, status, msg)
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" {
		writeError(w, http.StatusBadRequest, msgEmailRequired)
		return
	}

	res, err := a.leads.Subscribe(ctx, email)
	if err != nil {
		var ve *models.ValidationError
		switch {
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, ve.Message)
		case errors.Is(err, lead.ErrConfiguration):
			slog.Error("lead capture not configured", "request_id", middleware.GetRequestID(ctx))
			writeError(w, http.StatusInternalServerError, msgSubscribeNotReady)
		default:
			slog.Error("subscribe failed",
				"email_fp", lead.Fingerprint(email),
				"error", err,
				"request_id", middleware.GetRequestID(ctx),
			)
			writeError(w, http.StatusInternalServerError, msgSubscribeFailed)
		}
		return
	}

	sid := a.cookies.ID(w, r)
	if err := a.sessions.Unlock(ctx, sid); err != nil {
		slog.Warn("session unlock failed", "error", err)
	}

	resp := subscribeResponse{Success: true}
	if res.Duplicate {
		resp.Message = msgAlreadySubscribed
	}
	writeJSON(w, http.StatusOK, resp)
}
