// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// GeneratedArtifact is the output of one generation call. A new value is
// produced per call; holders replace, never mutate, the previous one.
type GeneratedArtifact struct {
	SubjectLine string `json:"subjectLine"`
	PreviewText string `json:"previewText"`
	HTML        string `json:"html"`
	PlainText   string `json:"plainText"`
}

// WithHTML returns a copy of the artifact carrying the given markup.
func (a GeneratedArtifact) WithHTML(html string) GeneratedArtifact {
	a.HTML = html
	return a
}
