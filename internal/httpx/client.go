// Package httpx builds the tuned HTTP client the provider integrations
// share and the JSON request helpers they call it with.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the per-request ceiling when a caller passes zero.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxIdleConns is the idle connection pool size across hosts.
	DefaultMaxIdleConns = 100

	// DefaultMaxIdleConnsPerHost keeps connections warm to the few
	// provider hosts this service talks to.
	DefaultMaxIdleConnsPerHost = 10

	// DefaultIdleConnTimeout closes idle connections after this long.
	DefaultIdleConnTimeout = 90 * time.Second

	// DefaultTLSHandshakeTimeout bounds the TLS handshake.
	DefaultTLSHandshakeTimeout = 10 * time.Second

	// errorBodyLimit caps how much of an error response body is kept.
	errorBodyLimit = 512
)

// ErrDecode marks a response that arrived but could not be parsed.
var ErrDecode = errors.New("decode response")

// StatusError reports a non-2xx provider response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// NewClient returns an HTTP client with pooling suited to calling the same
// few provider hosts repeatedly. A zero timeout means DefaultTimeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        DefaultMaxIdleConns,
			MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
			IdleConnTimeout:     DefaultIdleConnTimeout,
			TLSHandshakeTimeout: DefaultTLSHandshakeTimeout,
		},
	}
}

// PostJSON sends body as JSON to url and decodes a 2xx response into out.
// Extra headers are applied to the request, one value per name.
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	return do(client, req, out)
}

// GetJSON fetches url and decodes a 2xx response into out. Extra headers
// are applied to the request, one value per name.
func GetJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	return do(client, req, out)
}

// Do sends a caller-built request and decodes a 2xx response into out.
func Do(client *http.Client, req *http.Request, out any) error {
	return do(client, req, out)
}

func do(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
