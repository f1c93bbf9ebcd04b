package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailcraft/internal/ai"
	"mailcraft/internal/generation"
	"mailcraft/internal/lead"
	"mailcraft/internal/models"
	"mailcraft/internal/prompt"
	"mailcraft/internal/session"
	"mailcraft/internal/store"
)

// fakeGenerator returns a canned result and records the requests it saw.
type fakeGenerator struct {
	mu     sync.Mutex
	calls  []prompt.Request
	result *generation.Result
	err    error
	// during runs inside Generate, before returning.
	during func(ctx context.Context)
}

func (f *fakeGenerator) Generate(ctx context.Context, req prompt.Request) (*generation.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.during != nil {
		f.during(ctx)
	}
	return f.result, f.err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSubscriber struct {
	result lead.Result
	err    error
	emails []string
}

func (f *fakeSubscriber) Subscribe(_ context.Context, email string) (lead.Result, error) {
	f.emails = append(f.emails, email)
	return f.result, f.err
}

type fakeLog struct {
	mu      sync.Mutex
	entries []store.GenerationLogEntry
}

func (f *fakeLog) Log(_ context.Context, e store.GenerationLogEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
}

type testEnv struct {
	api      *API
	gen      *fakeGenerator
	leads    *fakeSubscriber
	sessions *session.MemoryStore
	log      *fakeLog
	sid      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		gen: &fakeGenerator{result: &generation.Result{
			Artifact: &models.GeneratedArtifact{
				SubjectLine: "Spring sale",
				PreviewText: "Everything 20% off",
				HTML:        "<html><body>sale</body></html>",
				PlainText:   "sale",
			},
			Provider:    "gemini",
			ImageSource: generation.ImageStock,
		}},
		leads:    &fakeSubscriber{},
		sessions: session.NewMemoryStore(100, time.Hour),
		log:      &fakeLog{},
		sid:      uuid.NewString(),
	}
	env.api = NewAPI(Deps{
		Generator: env.gen,
		Leads:     env.leads,
		Sessions:  env.sessions,
		Cookies:   session.NewCookies(time.Hour, false),
		Log:       env.log,
	})
	return env
}

func (e *testEnv) do(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: e.sid})
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

const validBrief = `{
	"brand": {"brandName": "Acme", "primaryColor": "#27bea5", "websiteUrl": "https://acme.test"},
	"content": {"campaignTopic": "Spring sale", "templateId": "promo", "language": "es", "tone": "urgent"}
}`

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestGenerateSuccess(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(env.api.Generate, http.MethodPost, "/api/generate", validBrief)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got models.GeneratedArtifact
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Spring sale", got.SubjectLine)
	assert.Equal(t, "1", rr.Header().Get(HeaderGenerationSeq))
	assert.Equal(t, "false", rr.Header().Get(HeaderGenerationStale))

	require.Equal(t, 1, env.gen.callCount())
	req := env.gen.calls[0]
	assert.Equal(t, models.TemplatePromo, req.TemplateID)
	assert.Equal(t, models.LanguageSpanish, req.Language)

	st, err := env.sessions.State(context.Background(), env.sid)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), st.Sequence)
	require.NotNil(t, st.Artifact)
	assert.Equal(t, "Spring sale", st.Artifact.SubjectLine)

	require.Len(t, env.log.entries, 1)
	entry := env.log.entries[0]
	assert.Equal(t, env.sid, entry.SessionID.String())
	assert.Equal(t, uint64(1), entry.Sequence)
	assert.Equal(t, "gemini", entry.Provider)
	assert.Equal(t, "promo", entry.TemplateID)
	assert.Equal(t, "urgent", entry.Tone)
	assert.Equal(t, "success", entry.Outcome)
	assert.Equal(t, generation.ImageStock, entry.ImageSource)
	assert.False(t, entry.Stale)
}

func TestGenerateIssuesCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(validBrief))
	rr := httptest.NewRecorder()
	env.api.Generate(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Equal(t, 1, env.sessions.Len())
}

func TestGenerateStale(t *testing.T) {
	env := newTestEnv(t)
	// A second call for the same visitor starts while the first is in flight.
	env.gen.during = func(ctx context.Context) {
		_, err := env.sessions.Begin(ctx, env.sid)
		require.NoError(t, err)
	}

	rr := env.do(env.api.Generate, http.MethodPost, "/api/generate", validBrief)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1", rr.Header().Get(HeaderGenerationSeq))
	assert.Equal(t, "true", rr.Header().Get(HeaderGenerationStale))

	st, err := env.sessions.State(context.Background(), env.sid)
	require.NoError(t, err)
	assert.Nil(t, st.Artifact, "stale result must not be committed")
	assert.Equal(t, uint64(2), st.Sequence)

	require.Len(t, env.log.entries, 1)
	assert.True(t, env.log.entries[0].Stale)
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		body    string
		status  int
		message string
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed, "Method not allowed"},
		{"invalid json", http.MethodPost, `{"brand":`, http.StatusBadRequest, "Invalid JSON body"},
		{"missing brand", http.MethodPost, `{"content":{"campaignTopic":"x"}}`, http.StatusBadRequest, msgMissingConfig},
		{"missing content", http.MethodPost, `{"brand":{}}`, http.StatusBadRequest, msgMissingConfig},
		{"blank topic", http.MethodPost, `{"brand":{},"content":{"campaignTopic":"   "}}`, http.StatusBadRequest, "Please enter a campaign topic to start."},
		{"trailing data", http.MethodPost, validBrief + `{}`, http.StatusBadRequest, "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := env.do(env.api.Generate, tt.method, "/api/generate", tt.body)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, errorBody(t, rr))
			assert.Zero(t, env.gen.callCount(), "provider must not be called")
			assert.Empty(t, env.log.entries)
		})
	}
}

func TestGenerateValidatesBeforeProviderConfiguration(t *testing.T) {
	env := newTestEnv(t)
	env.gen.result, env.gen.err = nil, fmt.Errorf("generate: %w", ai.ErrConfiguration)

	rr := env.do(env.api.Generate, http.MethodPost, "/api/generate", `{"content":{"campaignTopic":"x"}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, msgMissingConfig, errorBody(t, rr))

	rr = env.do(env.api.Generate, http.MethodPost, "/api/generate", `{"brand":{},"content":{"campaignTopic":" "}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(env.api.Generate, http.MethodPost, "/api/generate", validBrief)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, msgNotConfigured, errorBody(t, rr))
	assert.Equal(t, 1, env.gen.callCount())
}

func TestGenerateMethodNotAllowedHeader(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(env.api.Generate, http.MethodPut, "/api/generate", "")
	assert.Equal(t, "POST, OPTIONS", rr.Header().Get("Allow"))
}

func TestGenerateStrictColors(t *testing.T) {
	env := newTestEnv(t)
	env.api.strictColors = true

	body := `{"brand":{"primaryColor":"red"},"content":{"campaignTopic":"Launch"}}`
	rr := env.do(env.api.Generate, http.MethodPost, "/api/generate", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, env.gen.callCount())

	env.api.strictColors = false
	rr = env.do(env.api.Generate, http.MethodPost, "/api/generate", body)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGenerateBodyTooLarge(t *testing.T) {
	env := newTestEnv(t)
	body := `{"brand":{},"content":{"campaignTopic":"` + strings.Repeat("a", maxGenerateBody) + `"}}`
	rr := env.do(env.api.Generate, http.MethodPost, "/api/generate", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestGenerateErrors(t *testing.T) {
	restricted := &ai.ProviderError{
		Provider:   "gemini",
		StatusCode: http.StatusForbidden,
		Body:       `{"error":{"status":"PERMISSION_DENIED","details":[{"reason":"API_KEY_HTTP_REFERRER_BLOCKED"}]}}`,
	}

	tests := []struct {
		name    string
		err     error
		message string
		outcome string
	}{
		{"not configured", fmt.Errorf("generate: %w", ai.ErrConfiguration), msgNotConfigured, "config_error"},
		{"key restricted", fmt.Errorf("generate text: %w", restricted), restricted.Remediation(), "provider_error"},
		{"provider failure", &ai.ProviderError{Provider: "gemini", StatusCode: 500, Body: "boom"}, msgGenerationFailed, "provider_error"},
		{"malformed", fmt.Errorf("generate text: %w", ai.ErrMalformedResponse), msgGenerationFailed, "malformed_response"},
		{"empty", fmt.Errorf("generate text: %w", ai.ErrEmptyResponse), msgGenerationFailed, "empty_response"},
		{"timeout", &ai.ProviderError{Provider: "gemini", Err: context.DeadlineExceeded}, msgGenerationFailed, "provider_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.gen.result, env.gen.err = nil, tt.err

			rr := env.do(env.api.Generate, http.MethodPost, "/api/generate", validBrief)
			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.Equal(t, tt.message, errorBody(t, rr))
			assert.NotContains(t, rr.Body.String(), "boom", "provider details stay server-side")

			require.Len(t, env.log.entries, 1)
			assert.Equal(t, tt.outcome, env.log.entries[0].Outcome)

			st, err := env.sessions.State(context.Background(), env.sid)
			require.NoError(t, err)
			assert.Nil(t, st.Artifact)
		})
	}
}

func TestSubscribe(t *testing.T) {
	t.Run("success unlocks session", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.do(env.api.Subscribe, http.MethodPost, "/api/subscribe", `{"email":" ada@example.com "}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true}`, rr.Body.String())
		assert.Equal(t, []string{"ada@example.com"}, env.leads.emails)

		st, err := env.sessions.State(context.Background(), env.sid)
		require.NoError(t, err)
		assert.True(t, st.Unlocked)
	})

	t.Run("duplicate", func(t *testing.T) {
		env := newTestEnv(t)
		env.leads.result = lead.Result{Duplicate: true}

		rr := env.do(env.api.Subscribe, http.MethodPost, "/api/subscribe", `{"email":"ada@example.com"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true,"message":"User already subscribed"}`, rr.Body.String())
	})

	t.Run("tolerated failure is a success", func(t *testing.T) {
		env := newTestEnv(t)
		env.leads.result = lead.Result{Tolerated: true}

		rr := env.do(env.api.Subscribe, http.MethodPost, "/api/subscribe", `{"email":"ada@example.com"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	})
}

func TestSubscribeErrors(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		body    string
		err     error
		status  int
		message string
	}{
		{"wrong method", http.MethodGet, "", nil, http.StatusMethodNotAllowed, "Method not allowed"},
		{"missing email", http.MethodPost, `{}`, nil, http.StatusBadRequest, msgEmailRequired},
		{"blank email", http.MethodPost, `{"email":"  "}`, nil, http.StatusBadRequest, msgEmailRequired},
		{"invalid email", http.MethodPost, `{"email":"nope"}`,
			&models.ValidationError{Field: "email", Message: "Please enter a valid email address"},
			http.StatusBadRequest, "Please enter a valid email address"},
		{"not configured", http.MethodPost, `{"email":"ada@example.com"}`,
			fmt.Errorf("subscribe: %w", lead.ErrConfiguration), http.StatusInternalServerError, msgSubscribeNotReady},
		{"provider failure", http.MethodPost, `{"email":"ada@example.com"}`,
			&lead.ProviderError{StatusCode: 500, Message: "boom"}, http.StatusInternalServerError, msgSubscribeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.leads.err = tt.err

			rr := env.do(env.api.Subscribe, tt.method, "/api/subscribe", tt.body)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, errorBody(t, rr))

			st, err := env.sessions.State(context.Background(), env.sid)
			require.NoError(t, err)
			assert.False(t, st.Unlocked)
		})
	}
}

// TestSubscribeWithBrevo runs the real lead gateway against a fake Brevo.
func TestSubscribeWithBrevo(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contacts", r.URL.Path)
		assert.Equal(t, "brevo-key", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"duplicate_parameter","message":"Contact already exist"}`))
	}))
	defer srv.Close()

	env := newTestEnv(t)
	env.api.leads = lead.NewGateway(lead.Config{APIKey: "brevo-key", BaseURL: srv.URL, Timeout: time.Second}, nil)

	rr := env.do(env.api.Subscribe, http.MethodPost, "/api/subscribe", `{"email":"ada@example.com"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"User already subscribed"}`, rr.Body.String())
	assert.Equal(t, "ada@example.com", got["email"])
	assert.Equal(t, true, got["updateEnabled"])
}

func TestSessionAndArtifact(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(env.api.Session, http.MethodGet, "/api/session", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"sequence":0,"unlocked":false,"hasArtifact":false}`, rr.Body.String())

	rr = env.do(env.api.Artifact, http.MethodGet, "/api/artifact", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	require.Equal(t, http.StatusOK, env.do(env.api.Subscribe, http.MethodPost, "/api/subscribe", `{"email":"ada@example.com"}`).Code)

	rr = env.do(env.api.Artifact, http.MethodGet, "/api/artifact", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	require.Equal(t, http.StatusOK, env.do(env.api.Generate, http.MethodPost, "/api/generate", validBrief).Code)

	rr = env.do(env.api.Session, http.MethodGet, "/api/session", "")
	assert.JSONEq(t, `{"sequence":1,"unlocked":true,"hasArtifact":true}`, rr.Body.String())

	rr = env.do(env.api.Artifact, http.MethodGet, "/api/artifact", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got models.GeneratedArtifact
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "sale", got.PlainText)
}

func TestSessionWithoutCookie(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.api.Session(rr, httptest.NewRequest(http.MethodGet, "/api/session", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"sequence":0,"unlocked":false,"hasArtifact":false}`, rr.Body.String())
	assert.Empty(t, rr.Result().Cookies())
	assert.Zero(t, env.sessions.Len())
}

type failingStore struct{ session.Store }

func (failingStore) State(context.Context, string) (*session.State, error) {
	return nil, errors.New("valkey down")
}

func TestSessionStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.api.sessions = failingStore{env.sessions}

	rr := env.do(env.api.Session, http.MethodGet, "/api/session", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "valkey")
}

func TestTemplates(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		accept string
		lang   models.Language
		first  string
	}{
		{"default", "", "", models.LanguageEnglish, "Modern Card"},
		{"query", "?lang=es", "pt-BR", models.LanguageSpanish, "Tarjeta Moderna"},
		{"accept-language", "", "pt-BR,pt;q=0.9,en;q=0.5", models.LanguagePortuguese, "Cartão Moderno"},
		{"unsupported", "", "de-DE", models.LanguageEnglish, "Modern Card"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/templates"+tt.query, nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			rr := httptest.NewRecorder()
			Templates(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			var body templatesResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.lang, body.Language)
			require.Len(t, body.Templates, 4)
			assert.Equal(t, tt.first, body.Templates[0].Name)
			assert.Equal(t, models.TemplateModern, body.Templates[0].ID)
			assert.Equal(t, string(tt.lang), rr.Header().Get("Content-Language"))
		})
	}
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
