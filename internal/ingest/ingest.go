// Package ingest turns a bare article URL into analyzable text. Extraction
// failure is a request error: there is no verdict without text.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/nordlys-media/veracity/internal/logging"
)

// Defaults applied by New when Config fields are zero.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultMaxChars  = 8000
	DefaultUserAgent = "veracity/1.0"
)

// maxBodyBytes bounds how much of a page is downloaded before parsing.
const maxBodyBytes = 2 << 20

// ErrExtraction means the page could not be fetched or yielded no
// readable article text.
var ErrExtraction = errors.New("could not extract article text")

// Config controls fetching and output size.
type Config struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxChars  int           `yaml:"max_chars"`
	UserAgent string        `yaml:"user_agent"`
}

// IsURL reports whether the submitted text is a single absolute http(s)
// URL and nothing else.
func IsURL(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, " \t\n\r") {
		return false
	}
	u, err := url.Parse(text)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Extractor fetches pages and extracts readable article text.
type Extractor struct {
	client *http.Client
	logger logging.Logger
	cfg    Config
}

// New creates an Extractor sharing the service HTTP client.
func New(client *http.Client, logger logging.Logger, cfg Config) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{client: client, logger: logger, cfg: cfg}
}

// Extract fetches the page and returns its article text, trying
// readability first and falling back to title plus paragraphs.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	body, err := e.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: parse url: %v", ErrExtraction, err)
	}

	text, method := extractReadable(body, pageURL)
	if text == "" {
		text, method = extractFallback(body)
	}
	if text == "" {
		return "", fmt.Errorf("%w: no article content at %s", ErrExtraction, pageURL.Host)
	}

	text = capRunes(text, e.cfg.MaxChars)
	e.logger.Debug("Extracted article text",
		logging.String("url", rawURL),
		logging.String("method", method),
		logging.Int("chars", len(text)),
	)
	return text, nil
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	req.Header.Set("User-Agent", e.cfg.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", ErrExtraction, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: fetch returned status %d", ErrExtraction, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrExtraction, err)
	}
	return body, nil
}

func extractReadable(body []byte, pageURL *url.URL) (string, string) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", ""
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", ""
	}
	if title := strings.TrimSpace(article.Title); title != "" {
		text = title + "\n\n" + text
	}
	return text, "readability"
}

func extractFallback(body []byte) (string, string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", ""
	}

	var parts []string
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		return "", ""
	}
	return strings.Join(parts, "\n\n"), "fallback"
}

func capRunes(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return strings.TrimSpace(string(runes[:maxChars]))
}
