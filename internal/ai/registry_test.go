package ai

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider is a test double that implements Provider.
type mockProvider struct {
	name   string
	result string
	err    error
	calls  int
}

func (m *mockProvider) GenerateJSON(_ context.Context, _ string, _ Schema) (string, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockProvider) Name() string { return m.name }

// mockImager adds image generation to mockProvider.
type mockImager struct {
	mockProvider
	img  []byte
	mime string
}

func (m *mockImager) GenerateImage(_ context.Context, _, _ string) ([]byte, string, error) {
	return m.img, m.mime, nil
}

func TestNewRegistry_SkipsProvidersWithoutKeys(t *testing.T) {
	r := NewRegistry("gemini", map[string]ProviderConfig{
		"gemini":  {APIKey: "g"},
		"openai":  {APIKey: ""},
		"mistral": {APIKey: "m"},
		"claude":  {APIKey: "c"},
		"unknown": {APIKey: "u"},
	})

	assert.Equal(t, []string{"claude", "gemini", "mistral"}, r.Available())
	assert.True(t, r.HasProvider("gemini"))
	assert.False(t, r.HasProvider("openai"))
	assert.False(t, r.HasProvider("unknown"))
	assert.Equal(t, "gemini", r.ActiveName())
}

func TestRegistry_MissingActiveIsConfigurationError(t *testing.T) {
	r := NewRegistry("gemini", nil)

	_, err := r.Active()
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = r.GenerateJSON(context.Background(), "x", testSchema)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, _, err = r.GenerateImage(context.Background(), "x", "16:9")
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.False(t, r.SupportsImageGeneration())
}

func TestRegistry_GenerateJSONDelegates(t *testing.T) {
	mock := &mockProvider{name: "mock", result: `{"ok":"1"}`}
	r := NewRegistry("mock", nil)
	r.Register("mock", mock)

	out, err := r.GenerateJSON(context.Background(), "x", testSchema)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":"1"}`, out)
	assert.Equal(t, 1, mock.calls)
}

func TestRegistry_GenerateJSONPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry("mock", nil)
	r.Register("mock", &mockProvider{name: "mock", err: boom})

	_, err := r.GenerateJSON(context.Background(), "x", testSchema)
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_SetActive(t *testing.T) {
	r := NewRegistry("a", nil)
	r.Register("a", &mockProvider{name: "a"})
	r.Register("b", &mockProvider{name: "b"})

	require.NoError(t, r.SetActive("b"))
	assert.Equal(t, "b", r.ActiveName())

	err := r.SetActive("missing")
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, "b", r.ActiveName(), "failed switch must not change the active provider")
}

func TestRegistry_GenerateImage(t *testing.T) {
	r := NewRegistry("img", nil)
	r.Register("img", &mockImager{mockProvider: mockProvider{name: "img"}, img: []byte{1, 2}, mime: "image/webp"})
	r.Register("text", &mockProvider{name: "text"})

	assert.True(t, r.SupportsImageGeneration())
	data, mime, err := r.GenerateImage(context.Background(), "p", "16:9")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, data)
	assert.Equal(t, "image/webp", mime)

	require.NoError(t, r.SetActive("text"))
	assert.False(t, r.SupportsImageGeneration())
	_, _, err = r.GenerateImage(context.Background(), "p", "16:9")
	assert.ErrorIs(t, err, ErrImageUnsupported)
}

func TestRegistry_BuiltInImageSupport(t *testing.T) {
	r := NewRegistry("claude", map[string]ProviderConfig{
		"claude": {APIKey: "c"},
		"gemini": {APIKey: "g"},
		"openai": {APIKey: "o"},
	})
	assert.False(t, r.SupportsImageGeneration())

	require.NoError(t, r.SetActive("gemini"))
	assert.True(t, r.SupportsImageGeneration())

	require.NoError(t, r.SetActive("openai"))
	assert.True(t, r.SupportsImageGeneration())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry("a", nil)
	r.Register("a", &mockProvider{name: "a"})
	r.Register("b", &mockProvider{name: "b"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = r.SetActive("a")
			} else {
				_ = r.SetActive("b")
			}
		}(i)
		go func() {
			defer wg.Done()
			_ = r.ActiveName()
			_ = r.Available()
			_ = r.HasProvider("a")
		}()
	}
	wg.Wait()

	assert.Contains(t, []string{"a", "b"}, r.ActiveName())
}

func TestProviderError(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	e := &ProviderError{Provider: "gemini", Err: inner}
	assert.Equal(t, "gemini: dial tcp: refused", e.Error())
	assert.ErrorIs(t, e, inner)
	assert.False(t, e.KeyRestricted())
	assert.Empty(t, e.Remediation())

	e = &ProviderError{Provider: "gemini", StatusCode: 400, Body: `{"reason":"API_KEY_SERVICE_BLOCKED"}`}
	assert.Equal(t, `gemini API error (status 400): {"reason":"API_KEY_SERVICE_BLOCKED"}`, e.Error())
	assert.True(t, e.KeyRestricted())

	// The marker only counts on auth-style statuses.
	e = &ProviderError{Provider: "gemini", StatusCode: 500, Body: "API_KEY_SERVICE_BLOCKED"}
	assert.False(t, e.KeyRestricted())
}

func TestSchema(t *testing.T) {
	js := testSchema.JSONSchema()
	assert.Equal(t, "object", js["type"])
	assert.Equal(t, false, js["additionalProperties"])
	assert.Equal(t, []string{"subjectLine", "previewText", "html", "plainText"}, js["required"])

	gs := testSchema.geminiSchema()
	assert.Equal(t, "OBJECT", gs["type"])
	assert.Equal(t, gs["required"], gs["propertyOrdering"])
	props := gs["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "STRING"}, props["html"])
}
