// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// claudeProvider implements the Provider interface using the Anthropic
// Messages API (POST /v1/messages). The schema is enforced only through the
// system prompt, so replies may arrive wrapped in a Markdown code fence.
type claudeProvider struct {
	config ProviderConfig
	client *http.Client
}

// newClaude creates a new Anthropic Claude provider.
func newClaude(cfg ProviderConfig) *claudeProvider {
	cfg = cfg.withDefaults("https://api.anthropic.com", "claude-sonnet-4-5")
	return &claudeProvider{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *claudeProvider) Name() string { return "claude" }

// GenerateJSON asks for a JSON object with exactly the schema's properties.
func (p *claudeProvider) GenerateJSON(ctx context.Context, prompt string, schema Schema) (string, error) {
	body := claudeRequest{
		Model:     p.config.Model,
		MaxTokens: 16384,
		System:    claudeSchemaInstruction(schema),
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	headers := map[string]string{
		"x-api-key":         p.config.APIKey,
		"anthropic-version": "2023-06-01",
	}

	var result claudeResponse
	if err := postJSON(ctx, p.client, "claude", p.config.BaseURL+"/v1/messages", headers, body, &result); err != nil {
		return "", err
	}

	for _, block := range result.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("claude: no text content: %w", ErrEmptyResponse)
}

func claudeSchemaInstruction(schema Schema) string {
	return fmt.Sprintf(
		"Respond with a single JSON object and nothing else. The object must have exactly "+
			"these string properties, all required: %s. Do not add commentary.",
		strings.Join(schema.Properties, ", "),
	)
}

// --- Anthropic Messages API types ---

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeResponse struct {
	Content []claudeContentBlock `json:"content"`
}
