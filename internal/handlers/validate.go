// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mailcraft/internal/models"
)

// Request body limits. A brief plus brand config is a few kilobytes; logos
// are referenced by URL, never inlined.
const (
	maxGenerateBody  = 64 << 10
	maxSubscribeBody = 4 << 10
)

var errBodyTooLarge = errors.New("request body too large")

// decodeJSON reads a single JSON value from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("decode body: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("decode body: unexpected data after JSON value")
	}
	return nil
}

// generateRequest is the body of POST /api/generate. Both parts are
// pointers so that an absent section is distinguishable from an empty one.
type generateRequest struct {
	Brand   *models.BrandConfig  `json:"brand"`
	Content *models.ContentBrief `json:"content"`
}

// subscribeRequest is the body of POST /api/subscribe.
type subscribeRequest struct {
	Email string `json:"email"`
}

// bodyError maps a decodeJSON failure to a status and message.
func bodyError(err error) (int, string) {
	if errors.Is(err, errBodyTooLarge) {
		return http.StatusRequestEntityTooLarge, "Request body too large"
	}
	return http.StatusBadRequest, "Invalid JSON body"
}
