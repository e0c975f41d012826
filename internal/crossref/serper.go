package crossref

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nordlys-media/veracity/internal/httpx"
)

const serperBase = "https://google.serper.dev"

// Serper searches news results through serper.dev.
type Serper struct {
	// BaseURL is overridable for tests.
	BaseURL string

	apiKey string
	client *http.Client
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	News []struct {
		Title   string `json:"title"`
		Source  string `json:"source"`
		Snippet string `json:"snippet"`
		Date    string `json:"date"`
	} `json:"news"`
}

// NewSerper builds the provider. The key travels in the X-API-KEY header.
func NewSerper(apiKey string, client *http.Client) *Serper {
	return &Serper{BaseURL: serperBase, apiKey: apiKey, client: client}
}

// Name implements Provider.
func (s *Serper) Name() string { return "serper" }

// Search implements Provider.
func (s *Serper) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	headers := map[string]string{"X-API-KEY": s.apiKey}

	var resp serperResponse
	if err := httpx.PostJSON(ctx, s.client, s.BaseURL+"/news", headers, serperRequest{Q: query, Num: maxResults}, &resp); err != nil {
		return nil, fmt.Errorf("serper search: %w", err)
	}

	results := make([]Result, 0, len(resp.News))
	for _, r := range resp.News {
		results = append(results, Result{
			Title:       r.Title,
			Source:      r.Source,
			Snippet:     r.Snippet,
			PublishedAt: r.Date,
		})
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}
