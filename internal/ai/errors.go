// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration means no provider credential is configured. It is an
	// operator problem and is never retried.
	ErrConfiguration = errors.New("ai: provider not configured")

	// ErrEmptyResponse means the provider answered without any content.
	ErrEmptyResponse = errors.New("ai: empty response from provider")

	// ErrMalformedResponse means the provider content could not be decoded
	// into the requested schema.
	ErrMalformedResponse = errors.New("ai: malformed response from provider")

	// ErrNoImage means an image response carried no inline image payload.
	ErrNoImage = errors.New("ai: no image data in response")

	// ErrImageUnsupported means the active provider cannot generate images.
	ErrImageUnsupported = errors.New("ai: provider does not support image generation")
)

// ProviderError wraps a transport or API failure from an upstream provider.
// StatusCode is 0 when the request never got an HTTP response.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// keyRestrictionMarkers are substrings that identify an API key that is
// restricted to other referrers, IPs or services.
var keyRestrictionMarkers = []string{
	"API_KEY_HTTP_REFERRER_BLOCKED",
	"API_KEY_IP_ADDRESS_BLOCKED",
	"API_KEY_SERVICE_BLOCKED",
	"referer <empty> are blocked",
	"requests from referer",
}

// KeyRestricted reports whether the provider rejected the request because
// the API key is restricted (e.g. to browser referrers).
func (e *ProviderError) KeyRestricted() bool {
	if e.StatusCode != 403 && e.StatusCode != 400 {
		return false
	}
	body := strings.ToLower(e.Body)
	for _, m := range keyRestrictionMarkers {
		if strings.Contains(body, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// Remediation returns operator-facing advice for recognizable failures, or
// an empty string.
func (e *ProviderError) Remediation() string {
	if e.KeyRestricted() {
		return "The AI provider rejected the API key because it is restricted to specific " +
			"HTTP referrers, IP addresses or APIs. Server-side calls send no referrer: " +
			"create a key without application restrictions (or allow this server's IP) " +
			"and make sure the Generative Language API is enabled for it."
	}
	return ""
}
