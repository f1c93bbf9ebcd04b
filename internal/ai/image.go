// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
)

// ImageGenerator is an optional interface that AI providers can implement
// to support image generation. Claude and Mistral are text-only.
type ImageGenerator interface {
	// GenerateImage creates an image from a text prompt at the given aspect
	// ratio (e.g. "16:9"). Returns the raw image bytes and the MIME type.
	GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, string, error)
}

// GenerateImage calls the active provider's image generation if supported.
// The error wraps ErrImageUnsupported if the active provider cannot.
func (r *Registry) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, string, error) {
	p, err := r.Active()
	if err != nil {
		return nil, "", err
	}

	ig, ok := p.(ImageGenerator)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrImageUnsupported, p.Name())
	}

	return ig.GenerateImage(ctx, prompt, aspectRatio)
}

// SupportsImageGeneration returns true if the active provider can generate images.
func (r *Registry) SupportsImageGeneration() bool {
	p, err := r.Active()
	if err != nil {
		return false
	}
	_, ok := p.(ImageGenerator)
	return ok
}
