package explain

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nordlys-media/veracity/internal/httpx"
)

const geminiBase = "https://generativelanguage.googleapis.com"

// Gemini generates rationales through the Google Generative Language
// REST API.
type Gemini struct {
	// BaseURL is overridable for tests.
	BaseURL string

	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGemini creates a provider for the given model, e.g. "gemini-2.0-flash".
func NewGemini(apiKey, model string, maxTokens int, client *http.Client) *Gemini {
	return &Gemini{
		BaseURL:   geminiBase,
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		client:    client,
	}
}

// Name implements Provider.
func (g *Gemini) Name() string { return "gemini" }

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.BaseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))

	req := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if g.maxTokens > 0 {
		req.GenerationConfig = &geminiGenerationConfig{MaxOutputTokens: g.maxTokens}
	}

	var resp geminiResponse
	if err := httpx.PostJSON(ctx, g.client, endpoint, nil, req, &resp); err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini response has no candidates", httpx.ErrDecode)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
