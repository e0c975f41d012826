package explain_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nordlys-media/veracity/internal/domain"
	"github.com/nordlys-media/veracity/internal/explain"
	"github.com/nordlys-media/veracity/internal/httpx"
	"github.com/nordlys-media/veracity/internal/logging"
)

type fakeProvider struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testInput() explain.PromptInput {
	return explain.PromptInput{
		Text: "Scientists confirmed the moon is made of cheese, sources say.",
		Classification: domain.ClassificationResult{
			Label:       domain.LabelFake,
			Probability: 0.94,
			Features: []domain.FeatureWeight{
				{Token: "moon", Weight: 0.42},
				{Token: "cheese", Weight: 0.31},
			},
		},
		Headlines: domain.Present(domain.HeadlineMatch{
			{Title: "Moon cheese claim debunked", Source: "Wire", Similarity: 0.81},
		}),
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Helper()

	prompt := explain.BuildPrompt(testInput(), 0)

	for _, want := range []string{
		"Classifier verdict: fake (probability 0.94)",
		"moon (0.420)",
		"Moon cheese claim debunked (similarity 0.81)",
		"Scientists confirmed the moon",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("BuildPrompt() missing %q in:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptOmitsAbsentHeadlines(t *testing.T) {
	in := testInput()
	in.Headlines = domain.Absent[domain.HeadlineMatch](domain.AbsenceNoCredentials)

	prompt := explain.BuildPrompt(in, 0)
	if strings.Contains(prompt, "Recent headlines") {
		t.Errorf("BuildPrompt() included headline section for absent signal:\n%s", prompt)
	}
}

func TestBuildPromptCapsLength(t *testing.T) {
	in := testInput()
	in.Text = strings.Repeat("suspiciously long article body text ", 400)

	const maxChars = 600
	prompt := explain.BuildPrompt(in, maxChars)
	if n := len([]rune(prompt)); n > maxChars {
		t.Errorf("BuildPrompt() length = %d runes, want <= %d", n, maxChars)
	}
	if !strings.Contains(prompt, "suspiciously long article") {
		t.Error("BuildPrompt() dropped the article excerpt entirely")
	}
	if !strings.HasSuffix(prompt, "Respond in plain text.") {
		t.Error("BuildPrompt() lost the closing instruction")
	}
}

func TestValidateRationale(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "plain text passes trimmed",
			raw:  "  The claim contradicts recent reporting.  ",
			want: "The claim contradicts recent reporting.",
		},
		{
			name: "newlines and tabs are ordinary whitespace",
			raw:  "First line.\n\tSecond line.",
			want: "First line.\n\tSecond line.",
		},
		{
			name:    "empty response rejected",
			raw:     "   \n  ",
			wantErr: true,
		},
		{
			name:    "control characters rejected",
			raw:     "Looks fine\x00until it does not",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := explain.ValidateRationale(tt.raw, 0)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRationale() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ValidateRationale() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateRationaleTruncates(t *testing.T) {
	raw := strings.Repeat("word ", 100)
	got, err := explain.ValidateRationale(raw, 40)
	if err != nil {
		t.Fatalf("ValidateRationale() error = %v", err)
	}
	if n := len([]rune(got)); n > 40 {
		t.Errorf("ValidateRationale() length = %d runes, want <= 40", n)
	}
}

func TestGeneratorPresent(t *testing.T) {
	provider := &fakeProvider{response: "The claim is inconsistent with recent reporting. Multiple outlets covered a debunking."}
	gen := explain.New(provider, nil, logging.NewNop(), explain.Config{})

	sig := gen.Generate(context.Background(), testInput())

	result, ok := sig.Value()
	if !ok {
		t.Fatalf("Generate() absent with reason %q, want present", sig.Reason())
	}
	if result.Provider != "fake" {
		t.Errorf("Provider = %q, want %q", result.Provider, "fake")
	}
	if !strings.HasPrefix(result.Summary, "likely fake: ") {
		t.Errorf("Summary = %q, want %q prefix", result.Summary, "likely fake: ")
	}
	if !strings.Contains(result.Summary, "inconsistent with recent reporting") {
		t.Errorf("Summary = %q, want first sentence of rationale", result.Summary)
	}
	if len(provider.prompts) != 1 {
		t.Fatalf("provider called %d times, want 1", len(provider.prompts))
	}
	if !strings.Contains(provider.prompts[0], "Classifier verdict: fake") {
		t.Errorf("prompt missing verdict line:\n%s", provider.prompts[0])
	}
}

func TestGeneratorAbsence(t *testing.T) {
	tests := []struct {
		name     string
		provider explain.Provider
		want     domain.AbsenceReason
	}{
		{
			name:     "nil provider means no credentials",
			provider: nil,
			want:     domain.AbsenceNoCredentials,
		},
		{
			name:     "provider failure",
			provider: &fakeProvider{err: &httpx.StatusError{StatusCode: http.StatusInternalServerError}},
			want:     domain.AbsenceProviderError,
		},
		{
			name:     "deadline exceeded",
			provider: &fakeProvider{err: fmt.Errorf("generate: %w", context.DeadlineExceeded)},
			want:     domain.AbsenceTimeout,
		},
		{
			name:     "undecodable response body",
			provider: &fakeProvider{err: fmt.Errorf("generate: %w", httpx.ErrDecode)},
			want:     domain.AbsenceMalformedResponse,
		},
		{
			name:     "control characters in rationale",
			provider: &fakeProvider{response: "corrupted\x00output"},
			want:     domain.AbsenceMalformedResponse,
		},
		{
			name:     "empty rationale",
			provider: &fakeProvider{response: "   "},
			want:     domain.AbsenceMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := explain.New(tt.provider, nil, logging.NewNop(), explain.Config{})

			sig := gen.Generate(context.Background(), testInput())
			if sig.Present() {
				t.Fatal("Generate() present, want absent")
			}
			if sig.Reason() != tt.want {
				t.Errorf("Reason() = %q, want %q", sig.Reason(), tt.want)
			}
		})
	}
}

func TestGeneratorTruncatesRationale(t *testing.T) {
	provider := &fakeProvider{response: strings.Repeat("evidence ", 300)}
	gen := explain.New(provider, nil, logging.NewNop(), explain.Config{MaxRationaleChars: 120})

	sig := gen.Generate(context.Background(), testInput())

	result, ok := sig.Value()
	if !ok {
		t.Fatalf("Generate() absent with reason %q, want present", sig.Reason())
	}
	if n := len([]rune(result.Rationale)); n > 120 {
		t.Errorf("Rationale length = %d runes, want <= 120", n)
	}
}

func TestGemini(t *testing.T) {
	var gotPath, gotKey string
	var gotBody struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		GenerationConfig struct {
			MaxOutputTokens int `json:"maxOutputTokens"`
		} `json:"generationConfig"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"The verdict holds up."}]}}]}`)
	}))
	defer srv.Close()

	provider := explain.NewGemini("test-key", "gemini-2.0-flash", 512, srv.Client())
	provider.BaseURL = srv.URL

	got, err := provider.Generate(context.Background(), "why is this fake?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "The verdict holds up." {
		t.Errorf("Generate() = %q, want %q", got, "The verdict holds up.")
	}
	if want := "/v1beta/models/gemini-2.0-flash:generateContent"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q, want %q", gotKey, "test-key")
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 {
		t.Fatalf("request contents = %+v, want one part", gotBody.Contents)
	}
	if gotBody.Contents[0].Parts[0].Text != "why is this fake?" {
		t.Errorf("prompt = %q, want %q", gotBody.Contents[0].Parts[0].Text, "why is this fake?")
	}
	if gotBody.GenerationConfig.MaxOutputTokens != 512 {
		t.Errorf("maxOutputTokens = %d, want 512", gotBody.GenerationConfig.MaxOutputTokens)
	}
}

func TestGeminiNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	provider := explain.NewGemini("test-key", "gemini-2.0-flash", 0, srv.Client())
	provider.BaseURL = srv.URL

	_, err := provider.Generate(context.Background(), "prompt")
	if !errors.Is(err, httpx.ErrDecode) {
		t.Errorf("Generate() error = %v, want ErrDecode", err)
	}
}

func TestGeminiStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	provider := explain.NewGemini("test-key", "gemini-2.0-flash", 0, srv.Client())
	provider.BaseURL = srv.URL

	_, err := provider.Generate(context.Background(), "prompt")
	var statusErr *httpx.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Generate() error = %v, want StatusError", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusTooManyRequests)
	}
}

func TestAnthropic(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "msg_test",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "The evidence contradicts the claim."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 12}
		}`)
	}))
	defer srv.Close()

	provider := explain.NewAnthropic("test-key", "claude-3-5-haiku-latest", 512,
		option.WithBaseURL(srv.URL),
		option.WithHTTPClient(srv.Client()),
	)

	got, err := provider.Generate(context.Background(), "why is this fake?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "The evidence contradicts the claim." {
		t.Errorf("Generate() = %q, want %q", got, "The evidence contradicts the claim.")
	}
	if gotKey != "test-key" {
		t.Errorf("X-Api-Key = %q, want %q", gotKey, "test-key")
	}
}
