package explain

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/nordlys-media/veracity/internal/domain"
	"github.com/nordlys-media/veracity/internal/httpx"
	"github.com/nordlys-media/veracity/internal/logging"
	"github.com/nordlys-media/veracity/internal/telemetry"
)

// Defaults applied by New when Config fields are zero.
const (
	DefaultTimeout = 10 * time.Second
	DefaultRPS     = 2
)

// Config controls prompt size, output size, and provider pacing.
type Config struct {
	Timeout           time.Duration
	MaxPromptChars    int
	MaxRationaleChars int
	RPS               float64
}

// Generator produces the explanation signal. Failures never propagate:
// every fault collapses into an absent signal with a reason.
type Generator struct {
	provider  Provider
	limiter   *rate.Limiter
	telemetry *telemetry.Provider
	logger    logging.Logger
	cfg       Config
}

// New creates a Generator. A nil provider is valid and means no explainer
// is configured; Generate then reports the signal absent without calling
// out.
func New(provider Provider, tp *telemetry.Provider, logger logging.Logger, cfg Config) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxPromptChars <= 0 {
		cfg.MaxPromptChars = DefaultMaxPromptChars
	}
	if cfg.MaxRationaleChars <= 0 {
		cfg.MaxRationaleChars = DefaultMaxRationaleChars
	}
	if cfg.RPS <= 0 {
		cfg.RPS = DefaultRPS
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{
		provider:  provider,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		telemetry: tp,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate builds the prompt, submits it, and validates the response.
// The rationale is a single provider attempt: explanations are advisory,
// so a failed call is reported absent rather than retried.
func (g *Generator) Generate(ctx context.Context, in PromptInput) domain.Signal[domain.ExplanationResult] {
	if g.provider == nil {
		return g.absent(domain.AbsenceNoCredentials, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return g.absent(domain.AbsenceTimeout, err)
	}

	prompt := BuildPrompt(in, g.cfg.MaxPromptChars)

	start := time.Now()
	raw, err := g.provider.Generate(ctx, prompt)
	latency := time.Since(start)

	if err != nil {
		if g.telemetry != nil {
			g.telemetry.RecordProviderCall(g.provider.Name(), "error", latency)
		}
		g.logger.Warn("Explanation generation failed",
			logging.String("provider", g.provider.Name()),
			logging.Error(err),
		)
		return g.absent(absenceFor(err), nil)
	}
	if g.telemetry != nil {
		g.telemetry.RecordProviderCall(g.provider.Name(), "ok", latency)
	}

	rationale, err := ValidateRationale(raw, g.cfg.MaxRationaleChars)
	if err != nil {
		g.logger.Warn("Explanation response rejected",
			logging.String("provider", g.provider.Name()),
			logging.Error(err),
		)
		return g.absent(domain.AbsenceMalformedResponse, nil)
	}

	result := domain.ExplanationResult{
		Rationale: rationale,
		Summary:   deriveSummary(in.Classification.Label, rationale),
		Provider:  g.provider.Name(),
	}
	g.logger.Debug("Explanation generated",
		logging.String("provider", g.provider.Name()),
		logging.Int("rationale_chars", len(rationale)),
	)
	return domain.Present(result)
}

func (g *Generator) absent(reason domain.AbsenceReason, err error) domain.Signal[domain.ExplanationResult] {
	if g.telemetry != nil {
		g.telemetry.RecordAbsentSignal("explanation", string(reason))
	}
	if err != nil {
		g.logger.Debug("Explanation signal absent",
			logging.String("reason", string(reason)),
			logging.Error(err),
		)
	}
	return domain.Absent[domain.ExplanationResult](reason)
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
