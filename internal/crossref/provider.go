package crossref

import "context"

// Result is one raw search hit before similarity scoring.
type Result struct {
	Title       string
	Source      string
	Snippet     string
	PublishedAt string
}

// Provider fetches recent news results for a query.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}
