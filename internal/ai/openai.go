// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// openAIProvider implements Provider using the OpenAI chat completions API
// (POST /v1/chat/completions) with json_schema structured outputs, and
// ImageGenerator using POST /v1/images/generations.
type openAIProvider struct {
	name      string
	config    ProviderConfig
	client    *http.Client
	imgClient *http.Client
}

// newOpenAI creates a new OpenAI provider.
func newOpenAI(cfg ProviderConfig) *openAIProvider {
	cfg = cfg.withDefaults("https://api.openai.com/v1", "gpt-4o-mini")
	if cfg.ImageModel == "" {
		cfg.ImageModel = "gpt-image-1"
	}
	return &openAIProvider{
		name:      "openai",
		config:    cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		imgClient: &http.Client{Timeout: cfg.ImageTimeout},
	}
}

func (p *openAIProvider) Name() string { return p.name }

func (p *openAIProvider) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.config.APIKey}
}

// GenerateJSON sends a chat completion request constrained to schema and
// returns the assistant's message content.
func (p *openAIProvider) GenerateJSON(ctx context.Context, prompt string, schema Schema) (string, error) {
	body := openAIRequest{
		Model: p.config.Model,
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

	return p.doChat(ctx, body)
}

// doChat performs the HTTP call to the chat completions endpoint.
// Shared between OpenAI and Mistral (same API format).
func (p *openAIProvider) doChat(ctx context.Context, body openAIRequest) (string, error) {
	var result openAIResponse
	if err := postJSON(ctx, p.client, p.name, p.config.BaseURL+"/chat/completions", p.headers(), body, &result); err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned: %w", p.name, ErrEmptyResponse)
	}

	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}
	return content, nil
}

// GenerateImage creates one image and returns it decoded from b64_json.
func (p *openAIProvider) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, string, error) {
	model := p.config.ImageModel
	body := openAIImageRequest{
		Model:  model,
		Prompt: prompt,
		N:      1,
		Size:   openAIImageSize(model, aspectRatio),
	}
	// The dall-e models return URLs unless asked for base64.
	if strings.HasPrefix(model, "dall-e") {
		body.ResponseFormat = "b64_json"
	}

	var result openAIImageResponse
	if err := postJSON(ctx, p.imgClient, p.name+" image", p.config.BaseURL+"/images/generations", p.headers(), body, &result); err != nil {
		return nil, "", err
	}

	for _, d := range result.Data {
		if d.B64JSON == "" {
			continue
		}
		img, err := base64.StdEncoding.DecodeString(d.B64JSON)
		if err != nil {
			return nil, "", fmt.Errorf("%s image decode base64: %w", p.name, err)
		}
		return img, "image/png", nil
	}

	return nil, "", fmt.Errorf("%s image: %w", p.name, ErrNoImage)
}

// openAIImageSize maps an aspect ratio to the closest size the model accepts.
func openAIImageSize(model, aspectRatio string) string {
	landscape := aspectRatio == "16:9" || aspectRatio == "3:2" || aspectRatio == "4:3"
	switch {
	case !landscape:
		return "1024x1024"
	case strings.HasPrefix(model, "dall-e-3"):
		return "1792x1024"
	default:
		return "1536x1024"
	}
}

// --- OpenAI-compatible request/response types ---
// Used by both OpenAI and Mistral providers.

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIJSONSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type openAIResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *openAIJSONSchema `json:"json_schema,omitempty"`
}

type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
}

type openAIChoice struct {
	Message openAIMessage `json:"message"`
}

type openAIImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type openAIImageData struct {
	B64JSON string `json:"b64_json"`
}

type openAIImageResponse struct {
	Data []openAIImageData `json:"data"`
}
