package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailcraft/internal/ai"
	"mailcraft/internal/metrics"
	"mailcraft/internal/models"
	"mailcraft/internal/prompt"
)

// fakeText is a TextGenerator returning a canned reply.
type fakeText struct {
	reply  string
	err    error
	calls  int
	prompt string
	schema ai.Schema
}

func (f *fakeText) GenerateJSON(_ context.Context, p string, s ai.Schema) (string, error) {
	f.calls++
	f.prompt = p
	f.schema = s
	return f.reply, f.err
}

func (f *fakeText) ActiveName() string { return "fake" }

// fakeImages is an ImageGenerator returning a canned image.
type fakeImages struct {
	data   []byte
	mime   string
	err    error
	calls  int
	prompt string
	aspect string
}

func (f *fakeImages) GenerateImage(_ context.Context, p, aspect string) ([]byte, string, error) {
	f.calls++
	f.prompt = p
	f.aspect = aspect
	return f.data, f.mime, f.err
}

func artifactJSON(t *testing.T, html string) string {
	t.Helper()
	b, err := json.Marshal(map[string]string{
		"subjectLine": "Spring Sale",
		"previewText": "Save 20% this week",
		"html":        html,
		"plainText":   "Spring Sale - save 20%",
	})
	require.NoError(t, err)
	return string(b)
}

func twoTokenHTML() string {
	return `<table><tr><td><img src="` + prompt.HeroImageToken + `"></td></tr>` +
		`<tr><td style="background:url(` + prompt.HeroImageToken + `)">x</td></tr></table>`
}

func buildRequest(generateImage bool) prompt.Request {
	return prompt.Build(
		models.BrandConfig{BrandName: "Acme", WebsiteURL: "https://acme.test"},
		models.ContentBrief{CampaignTopic: "Spring sale", GenerateImage: generateImage},
	)
}

func TestGenerate_StockImageWhenNotRequested(t *testing.T) {
	text := &fakeText{reply: artifactJSON(t, twoTokenHTML())}
	images := &fakeImages{data: []byte("x"), mime: "image/png"}
	g := NewGateway(text, images, Config{}, nil)

	res, err := g.Generate(context.Background(), buildRequest(false))
	require.NoError(t, err)

	html := res.Artifact.HTML
	assert.NotContains(t, html, prompt.HeroImageToken)
	assert.Equal(t, 2, strings.Count(html, DefaultStockImageURL))
	assert.Equal(t, ImageStock, res.ImageSource)
	assert.Zero(t, images.calls, "no image call without generateImage")
	assert.Equal(t, "fake", res.Provider)
}

func TestGenerate_SendsPromptAndSchema(t *testing.T) {
	text := &fakeText{reply: artifactJSON(t, "<p>hi</p>")}
	g := NewGateway(text, nil, Config{}, nil)
	req := buildRequest(false)

	_, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req.Prompt, text.prompt)
	assert.Equal(t, prompt.ArtifactSchema, text.schema)
}

func TestGenerate_GeneratedImageDataURI(t *testing.T) {
	text := &fakeText{reply: artifactJSON(t, twoTokenHTML())}
	images := &fakeImages{data: []byte{0xff, 0xd8, 0xff}, mime: "image/jpeg"}
	g := NewGateway(text, images, Config{}, nil)

	req := buildRequest(true)
	res, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	uri := DataURI("image/jpeg", images.data)
	assert.Equal(t, "data:image/jpeg;base64,/9j/", uri)
	assert.Equal(t, 2, strings.Count(res.Artifact.HTML, uri))
	assert.NotContains(t, res.Artifact.HTML, prompt.HeroImageToken)
	assert.Equal(t, ImageGenerated, res.ImageSource)
	assert.Equal(t, prompt.ImageAspectRatio, images.aspect)
	assert.Equal(t, req.ImagePrompt, images.prompt)
}

func TestGenerate_ImageFailureFallsBack(t *testing.T) {
	text := &fakeText{reply: artifactJSON(t, twoTokenHTML())}
	images := &fakeImages{err: errors.New("image provider exploded")}
	m := metrics.New()
	g := NewGateway(text, images, Config{FallbackImageURL: "https://fallback.test/img.png"}, m)

	res, err := g.Generate(context.Background(), buildRequest(true))
	require.NoError(t, err, "image failure must never fail the call")

	assert.Equal(t, 2, strings.Count(res.Artifact.HTML, "https://fallback.test/img.png"))
	assert.Equal(t, ImageFallback, res.ImageSource)
	assert.Equal(t, "Spring Sale", res.Artifact.SubjectLine)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImagesTotal.WithLabelValues(ImageFallback)))
}

func TestGenerate_EmptyImageFallsBack(t *testing.T) {
	text := &fakeText{reply: artifactJSON(t, twoTokenHTML())}
	g := NewGateway(text, &fakeImages{}, Config{}, nil)

	res, err := g.Generate(context.Background(), buildRequest(true))
	require.NoError(t, err)
	assert.Contains(t, res.Artifact.HTML, DefaultFallbackImageURL)
}

func TestGenerate_NoImageProviderFallsBack(t *testing.T) {
	text := &fakeText{reply: artifactJSON(t, twoTokenHTML())}
	g := NewGateway(text, nil, Config{}, nil)

	res, err := g.Generate(context.Background(), buildRequest(true))
	require.NoError(t, err)
	assert.Contains(t, res.Artifact.HTML, DefaultFallbackImageURL)
}

func TestGenerate_OnlyHTMLIsRewritten(t *testing.T) {
	reply, _ := json.Marshal(map[string]string{
		"subjectLine": "Subject " + prompt.HeroImageToken,
		"previewText": "Preview",
		"html":        "<img src=\"" + prompt.HeroImageToken + "\">",
		"plainText":   "Plain " + prompt.HeroImageToken,
	})
	g := NewGateway(&fakeText{reply: string(reply)}, nil, Config{}, nil)

	res, err := g.Generate(context.Background(), buildRequest(false))
	require.NoError(t, err)
	assert.Equal(t, "Subject "+prompt.HeroImageToken, res.Artifact.SubjectLine)
	assert.Equal(t, "Plain "+prompt.HeroImageToken, res.Artifact.PlainText)
	assert.NotContains(t, res.Artifact.HTML, prompt.HeroImageToken)
}

func TestGenerate_VariableTokensPreserved(t *testing.T) {
	html := `<p>Hi {{first_name}}, see {{step_title}}</p>`
	g := NewGateway(&fakeText{reply: artifactJSON(t, html)}, nil, Config{}, nil)

	res, err := g.Generate(context.Background(), buildRequest(false))
	require.NoError(t, err)
	assert.Equal(t, html, res.Artifact.HTML)
}

func TestGenerate_FencedEqualsUnfenced(t *testing.T) {
	raw := artifactJSON(t, twoTokenHTML())

	plain, err := NewGateway(&fakeText{reply: raw}, nil, Config{}, nil).
		Generate(context.Background(), buildRequest(false))
	require.NoError(t, err)

	fenced, err := NewGateway(&fakeText{reply: "```json\n" + raw + "\n```"}, nil, Config{}, nil).
		Generate(context.Background(), buildRequest(false))
	require.NoError(t, err)

	assert.Equal(t, plain.Artifact, fenced.Artifact)
}

func TestGenerate_NoTextProvider(t *testing.T) {
	g := NewGateway(nil, nil, Config{}, nil)

	_, err := g.Generate(context.Background(), buildRequest(false))
	assert.ErrorIs(t, err, ai.ErrConfiguration)
}

func TestGenerate_ErrorClassification(t *testing.T) {
	perr := &ai.ProviderError{Provider: "fake", StatusCode: 503, Body: "down"}

	tests := []struct {
		name    string
		reply   string
		err     error
		target  error
		outcome string
	}{
		{"empty reply", "  ", nil, ai.ErrEmptyResponse, metrics.OutcomeEmpty},
		{"not json", "Sure! Here is your email.", nil, ai.ErrMalformedResponse, metrics.OutcomeMalformed},
		{"missing field", `{"subjectLine":"a","previewText":"b","html":"<p/>"}`, nil, ai.ErrMalformedResponse, metrics.OutcomeMalformed},
		{"unknown field", `{"subjectLine":"a","previewText":"b","html":"<p/>","plainText":"c","extra":"d"}`, nil, ai.ErrMalformedResponse, metrics.OutcomeMalformed},
		{"provider empty", "", ai.ErrEmptyResponse, ai.ErrEmptyResponse, metrics.OutcomeEmpty},
		{"not configured", "", ai.ErrConfiguration, ai.ErrConfiguration, metrics.OutcomeConfig},
		{"provider error", "", perr, perr, metrics.OutcomeProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New()
			g := NewGateway(&fakeText{reply: tt.reply, err: tt.err}, nil, Config{}, m)

			res, err := g.Generate(context.Background(), buildRequest(false))
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("fake", tt.outcome)))
		})
	}
}

// slowText blocks until its context is done.
type slowText struct{}

func (slowText) GenerateJSON(ctx context.Context, _ string, _ ai.Schema) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGenerate_TextTimeout(t *testing.T) {
	g := NewGateway(slowText{}, nil, Config{TextTimeout: 20 * time.Millisecond}, nil)

	start := time.Now()
	_, err := g.Generate(context.Background(), buildRequest(false))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

// fakeHost is an ImageHost returning a fixed URL.
type fakeHost struct {
	url  string
	err  error
	name string
	mime string
}

func (f *fakeHost) HostImage(_ context.Context, name string, _ []byte, mime string) (string, error) {
	f.name = name
	f.mime = mime
	return f.url, f.err
}

func TestGenerate_HostedImage(t *testing.T) {
	text := &fakeText{reply: artifactJSON(t, twoTokenHTML())}
	images := &fakeImages{data: []byte("img"), mime: "image/webp"}
	host := &fakeHost{url: "https://cdn.test/hero/spring-sale.webp"}
	m := metrics.New()
	g := NewGateway(text, images, Config{}, m).WithImageHost(host)

	res, err := g.Generate(context.Background(), buildRequest(true))
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(res.Artifact.HTML, host.url))
	assert.NotContains(t, res.Artifact.HTML, "data:")
	assert.Equal(t, ImageHosted, res.ImageSource)
	assert.Equal(t, "Spring sale", host.name)
	assert.Equal(t, "image/webp", host.mime)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImagesTotal.WithLabelValues(ImageHosted)))
}

func TestGenerate_HostFailureEmbeds(t *testing.T) {
	text := &fakeText{reply: artifactJSON(t, twoTokenHTML())}
	images := &fakeImages{data: []byte("img"), mime: "image/png"}
	host := &fakeHost{err: errors.New("bucket gone")}
	g := NewGateway(text, images, Config{}, nil).WithImageHost(host)

	res, err := g.Generate(context.Background(), buildRequest(true))
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(res.Artifact.HTML, DataURI("image/png", images.data)))
	assert.Equal(t, ImageGenerated, res.ImageSource)
}

func TestGenerate_HostUnusedForStock(t *testing.T) {
	text := &fakeText{reply: artifactJSON(t, twoTokenHTML())}
	host := &fakeHost{url: "https://cdn.test/x.png"}
	g := NewGateway(text, &fakeImages{}, Config{}, nil).WithImageHost(host)

	res, err := g.Generate(context.Background(), buildRequest(false))
	require.NoError(t, err)
	assert.Equal(t, ImageStock, res.ImageSource)
	assert.Empty(t, host.name)
}
