package normalize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nordlys-media/veracity/internal/httpx"
)

// LibreTranslate is a Translator backed by a LibreTranslate-compatible
// HTTP endpoint.
type LibreTranslate struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// NewLibreTranslate points the client at an endpoint hosting POST /translate.
func NewLibreTranslate(endpoint, apiKey string, client *http.Client) *LibreTranslate {
	return &LibreTranslate{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   client,
	}
}

// Translate implements Translator.
func (t *LibreTranslate) Translate(ctx context.Context, text, source, target string) (string, error) {
	req := translateRequest{Q: text, Source: source, Target: target, Format: "text", APIKey: t.apiKey}
	var resp translateResponse
	if err := httpx.PostJSON(ctx, t.client, t.endpoint+"/translate", nil, req, &resp); err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if resp.TranslatedText == "" {
		return "", errors.New("translate: empty response")
	}
	return resp.TranslatedText, nil
}
