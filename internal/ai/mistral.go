// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"net/http"
)

// mistralProvider implements the Provider interface using Mistral's
// chat completions API, which is OpenAI-compatible including json_schema
// response formats. It does not generate images.
type mistralProvider struct {
	inner *openAIProvider
}

// newMistral creates a new Mistral provider.
func newMistral(cfg ProviderConfig) *mistralProvider {
	cfg = cfg.withDefaults("https://api.mistral.ai/v1", "mistral-medium-latest")
	return &mistralProvider{
		inner: &openAIProvider{
			name:   "mistral",
			config: cfg,
			client: &http.Client{Timeout: cfg.Timeout},
		},
	}
}

func (p *mistralProvider) Name() string { return "mistral" }

// GenerateJSON sends a schema-constrained chat completion request.
func (p *mistralProvider) GenerateJSON(ctx context.Context, prompt string, schema Schema) (string, error) {
	body := openAIRequest{
		Model: p.inner.config.Model,
		Messages: []openAIMessage{
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &openAIResponseFormat{
			Type: "json_schema",
			JSONSchema: &openAIJSONSchema{
				Name:   schema.Name,
				Strict: true,
				Schema: schema.JSONSchema(),
			},
		},
	}

	return p.inner.doChat(ctx, body)
}
