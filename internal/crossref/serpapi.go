package crossref

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nordlys-media/veracity/internal/httpx"
)

const serpAPIBase = "https://serpapi.com"

// SerpAPI searches Google News results through serpapi.com.
type SerpAPI struct {
	// BaseURL is overridable for tests.
	BaseURL string

	apiKey string
	client *http.Client
}

type serpAPIResponse struct {
	NewsResults []struct {
		Title   string `json:"title"`
		Source  string `json:"source"`
		Snippet string `json:"snippet"`
		Date    string `json:"date"`
	} `json:"news_results"`
}

// NewSerpAPI builds the provider. The key is required by the remote API.
func NewSerpAPI(apiKey string, client *http.Client) *SerpAPI {
	return &SerpAPI{BaseURL: serpAPIBase, apiKey: apiKey, client: client}
}

// Name implements Provider.
func (s *SerpAPI) Name() string { return "serpapi" }

// Search implements Provider.
func (s *SerpAPI) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("tbm", "nws")
	params.Set("num", strconv.Itoa(maxResults))
	params.Set("api_key", s.apiKey)

	var resp serpAPIResponse
	if err := httpx.GetJSON(ctx, s.client, s.BaseURL+"/search.json?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("serpapi search: %w", err)
	}

	results := make([]Result, 0, len(resp.NewsResults))
	for _, r := range resp.NewsResults {
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
