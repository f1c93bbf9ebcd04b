// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"mailcraft/internal/models"
	"mailcraft/internal/session"
)

type sessionResponse struct {
	Sequence    uint64 `json:"sequence"`
	Unlocked    bool   `json:"unlocked"`
	HasArtifact bool   `json:"hasArtifact"`
}

// Session handles GET /api/session.
func (a *API) Session(w http.ResponseWriter, r *http.Request) {
	st, ok := a.state(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Sequence:    st.Sequence,
		Unlocked:    st.Unlocked,
		HasArtifact: st.Artifact != nil,
	})
}

// Artifact handles GET /api/artifact. The latest artifact is only released
// after lead capture.
func (a *API) Artifact(w http.ResponseWriter, r *http.Request) {
	st, ok := a.state(w, r)
	if !ok {
		return
	}
	switch {
	case !st.Unlocked:
		writeError(w, http.StatusForbidden, "Subscribe to unlock this email")
	case st.Artifact == nil:
		writeError(w, http.StatusNotFound, "No email generated yet")
	default:
		writeJSON(w, http.StatusOK, st.Artifact)
	}
}

// state loads the caller's session. Visitors without a cookie get a zero
// state and no cookie is issued.
func (a *API) state(w http.ResponseWriter, r *http.Request) (*session.State, bool) {
	sid, ok := a.cookies.Existing(r)
	if !ok {
		return &session.State{}, true
	}
	st, err := a.sessions.State(r.Context(), sid)
	if err != nil {
		slog.Error("load session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return nil, false
	}
	return st, true
}

type templatesResponse struct {
	Language  models.Language         `json:"language"`
	Templates []models.TemplateOption `json:"templates"`
}

// Templates handles GET /api/templates. The language comes from the lang
// query parameter, else from Accept-Language.
func Templates(w http.ResponseWriter, r *http.Request) {
	lang := models.MatchLanguage(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
	w.Header().Set("Content-Language", string(lang))
	w.Header().Set("Vary", "Accept-Language")
	writeJSON(w, http.StatusOK, templatesResponse{
		Language:  lang,
		Templates: models.Catalog(lang),
	})
}
