// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

// Schema describes a flat JSON object whose properties are all required
// strings. Providers translate it into their own structured-output format.
type Schema struct {
	Name       string
	Properties []string
}

// JSONSchema renders the schema as standard JSON Schema with no additional
// properties allowed.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Properties))
	for _, p := range s.Properties {
		props[p] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             s.required(),
		"additionalProperties": false,
	}
}

// geminiSchema renders the schema in Gemini's OpenAPI subset, which uses
// upper-case type names and has no additionalProperties keyword.
func (s Schema) geminiSchema() map[string]any {
	props := make(map[string]any, len(s.Properties))
	for _, p := range s.Properties {
		props[p] = map[string]any{"type": "STRING"}
	}
	return map[string]any{
		"type":             "OBJECT",
		"properties":       props,
		"required":         s.required(),
		"propertyOrdering": s.required(),
	}
}

func (s Schema) required() []string {
	out := make([]string, len(s.Properties))
	copy(out, s.Properties)
	return out
}
