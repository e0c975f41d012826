package crossref

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nordlys-media/veracity/internal/domain"
	"github.com/nordlys-media/veracity/internal/httpx"
	"github.com/nordlys-media/veracity/internal/logging"
	"github.com/nordlys-media/veracity/internal/model"
	"github.com/nordlys-media/veracity/internal/telemetry"
)

// Stage defaults.
const (
	DefaultTimeout    = 8 * time.Second
	DefaultMaxResults = 10
	DefaultTopMatches = 5
	DefaultRPS        = 5
)

// Config tunes the cross-reference stage.
type Config struct {
	Timeout    time.Duration
	MaxResults int // results requested from the provider
	TopMatches int // matches kept after similarity ranking
	RPS        float64
}

// CrossReferencer turns classified text into a headline corroboration
// signal. It never fails a request: every failure mode collapses into an
// absent signal with a reason.
type CrossReferencer struct {
	provider   Provider
	builder    *QueryBuilder
	vectorizer *model.Vectorizer
	limiter    *rate.Limiter
	telemetry  *telemetry.Provider
	logger     logging.Logger
	cfg        Config
}

// New wires the stage together. A nil provider means no credentials were
// configured; Fetch then reports the signal absent without calling out.
func New(provider Provider, builder *QueryBuilder, vectorizer *model.Vectorizer, tp *telemetry.Provider, logger logging.Logger, cfg Config) *CrossReferencer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.TopMatches <= 0 {
		cfg.TopMatches = DefaultTopMatches
	}
	if cfg.RPS <= 0 {
		cfg.RPS = DefaultRPS
	}
	return &CrossReferencer{
		provider:   provider,
		builder:    builder,
		vectorizer: vectorizer,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		telemetry:  tp,
		logger:     logger,
		cfg:        cfg,
	}
}

// Fetch searches for recent headlines related to the text and scores each
// against it. The stage is time-boxed by its own deadline under the
// request context.
func (c *CrossReferencer) Fetch(ctx context.Context, text string) domain.Signal[domain.HeadlineMatch] {
	if c.provider == nil {
		return c.absent(domain.AbsenceNoCredentials, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	query := c.builder.Build(text)
	if err := c.limiter.Wait(ctx); err != nil {
		return c.absent(domain.AbsenceTimeout, err)
	}

	start := time.Now()
	var results []Result
	err := httpx.RetryOnce(ctx, func() error {
		var searchErr error
		results, searchErr = c.provider.Search(ctx, query, c.cfg.MaxResults)
		return searchErr
	})
	latency := time.Since(start)

	if err != nil {
		if c.telemetry != nil {
			c.telemetry.RecordProviderCall(c.provider.Name(), "error", latency)
		}
		c.logger.Warn("Headline search failed",
			logging.String("provider", c.provider.Name()),
			logging.String("query", query),
			logging.Error(err),
		)
		return c.absent(absenceFor(err), nil)
	}
	if c.telemetry != nil {
		c.telemetry.RecordProviderCall(c.provider.Name(), "ok", latency)
	}

	matches := c.score(text, results)
	c.logger.Debug("Headline search complete",
		logging.String("provider", c.provider.Name()),
		logging.String("query", query),
		logging.Int("results", len(results)),
		logging.Int("matches", len(matches)),
	)
	return domain.Present(matches)
}

// score ranks results by tf-idf cosine similarity between the input text
// and each result's title plus snippet, computed in the model's feature
// space so shared salient terms drive the score.
func (c *CrossReferencer) score(text string, results []Result) domain.HeadlineMatch {
	doc := c.vectorizer.Vectorize(text)

	matches := make(domain.HeadlineMatch, 0, len(results))
	for _, r := range results {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		sim := model.Cosine(doc, c.vectorizer.Vectorize(r.Title+" "+r.Snippet))
		matches = append(matches, domain.Headline{
			Title:       r.Title,
			Source:      r.Source,
			Similarity:  sim,
			PublishedAt: r.PublishedAt,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > c.cfg.TopMatches {
		matches = matches[:c.cfg.TopMatches]
	}
	return matches
}

func (c *CrossReferencer) absent(reason domain.AbsenceReason, err error) domain.Signal[domain.HeadlineMatch] {
	if c.telemetry != nil {
		c.telemetry.RecordAbsentSignal("headlines", string(reason))
	}
	if err != nil {
		c.logger.Debug("Headline signal absent",
			logging.String("reason", string(reason)),
			logging.Error(err),
		)
	}
	return domain.Absent[domain.HeadlineMatch](reason)
}

func absenceFor(err error) domain.AbsenceReason {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return domain.AbsenceTimeout
	case errors.Is(err, httpx.ErrDecode):
		return domain.AbsenceMalformedResponse
	default:
		return domain.AbsenceProviderError
	}
}
