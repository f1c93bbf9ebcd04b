// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package lead

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Brevo v3 REST API root.
	DefaultBaseURL = "https://api.brevo.com/v3"

	// DefaultTimeout bounds one contact-creation call.
	DefaultTimeout = 15 * time.Second

	// codeDuplicate is returned by Brevo when the contact already exists.
	codeDuplicate = "duplicate_parameter"

	maxErrorBody = 64 << 10
)

// brevoClient creates contacts through POST /v3/contacts.
type brevoClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newBrevoClient(apiKey, baseURL string, timeout time.Duration) *brevoClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &brevoClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type brevoContactRequest struct {
	Email         string `json:"email"`
	UpdateEnabled bool   `json:"updateEnabled"`
}

type brevoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// createContact adds email to the contact list. It reports duplicate=true
// when Brevo says the contact already exists.
func (c *brevoClient) createContact(ctx context.Context, email string) (duplicate bool, err error) {
	payload, err := json.Marshal(brevoContactRequest{Email: email, UpdateEnabled: true})
	if err != nil {
		return false, fmt.Errorf("brevo marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contacts", bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("brevo request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, &ProviderError{Err: fmt.Errorf("http: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return false, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var be brevoError
	_ = json.Unmarshal(body, &be)
	if be.Code == codeDuplicate {
		return true, nil
	}

	return false, &ProviderError{
		StatusCode: resp.StatusCode,
		Code:       be.Code,
		Message:    be.Message,
		Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
	}
}
