// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"mailcraft/internal/ai"
	"mailcraft/internal/models"
)

// stripFence removes exactly one Markdown code fence around raw, such as
// ```json ... ``` or ``` ... ```, including a fence written on one line.
// Anything else is returned trimmed.
func stripFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}

	// Drop the opening fence line, including any language tag.
	nl := strings.Index(raw, "\n")
	if nl == -1 {
		return stripInlineFence(raw)
	}
	body := raw[nl+1:]

	body = strings.TrimRight(body, " \t\r\n")
	if !strings.HasSuffix(body, "```") {
		return raw
	}
	return strings.TrimSpace(strings.TrimSuffix(body, "```"))
}

// stripInlineFence handles ```json{...}``` with no line breaks. The
// language tag is the run of letters right after the opening fence.
func stripInlineFence(raw string) string {
	body := raw[3:]
	if len(body) < 3 || !strings.HasSuffix(body, "```") {
		return raw
	}
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimLeftFunc(body, unicode.IsLetter)
	return strings.TrimSpace(body)
}

// wireArtifact mirrors models.GeneratedArtifact with pointer fields so that
// a missing property can be told apart from an empty string.
type wireArtifact struct {
	SubjectLine *string `json:"subjectLine"`
	PreviewText *string `json:"previewText"`
	HTML        *string `json:"html"`
	PlainText   *string `json:"plainText"`
}

// decodeArtifact strictly decodes a provider response. Unknown properties,
// missing properties, trailing data and non-string values all fail with
// ai.ErrMalformedResponse.
func decodeArtifact(raw string) (*models.GeneratedArtifact, error) {
	body := stripFence(raw)
	if body == "" {
		return nil, fmt.Errorf("decode artifact: %w", ai.ErrEmptyResponse)
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()

	var w wireArtifact
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ai.ErrMalformedResponse)
	}

	var missing []string
	check := func(name string, v *string) {
		if v == nil {
			missing = append(missing, name)
		}
	}
	check("subjectLine", w.SubjectLine)
	check("previewText", w.PreviewText)
	check("html", w.HTML)
	check("plainText", w.PlainText)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ai.ErrMalformedResponse, strings.Join(missing, ", "))
	}

	if strings.TrimSpace(*w.HTML) == "" {
		return nil, fmt.Errorf("%w: html is empty", ai.ErrMalformedResponse)
	}

	return &models.GeneratedArtifact{
		SubjectLine: *w.SubjectLine,
		PreviewText: *w.PreviewText,
		HTML:        *w.HTML,
		PlainText:   *w.PlainText,
	}, nil
}
