// Package engine orchestrates the analysis pipeline: validate, resolve
// URLs, fingerprint, consult the cache, normalize, classify, gather the
// enrichment signals concurrently, and aggregate the verdict.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/nordlys-media/veracity/internal/cache"
	"github.com/nordlys-media/veracity/internal/classify"
	"github.com/nordlys-media/veracity/internal/crossref"
	"github.com/nordlys-media/veracity/internal/domain"
	"github.com/nordlys-media/veracity/internal/explain"
	"github.com/nordlys-media/veracity/internal/fingerprint"
	"github.com/nordlys-media/veracity/internal/ingest"
	"github.com/nordlys-media/veracity/internal/logging"
	"github.com/nordlys-media/veracity/internal/normalize"
	"github.com/nordlys-media/veracity/internal/telemetry"
	"github.com/nordlys-media/veracity/internal/verdict"
)

// Deps collects the pipeline components. Extractor, Cache, Telemetry, and
// Logger may be nil; the rest are required.
type Deps struct {
	Extractor       *ingest.Extractor
	Normalizer      *normalize.Normalizer
	Classifier      *classify.Classifier
	CrossReferencer *crossref.CrossReferencer
	Explainer       *explain.Generator
	Aggregator      *verdict.Aggregator
	Cache           *cache.VerdictCache
	Telemetry       *telemetry.Provider
	Logger          logging.Logger
}

// Engine runs the analysis pipeline. Classification is the only stage
// whose failure fails a request; enrichment signals degrade to absent.
type Engine struct {
	extractor  *ingest.Extractor
	normalizer *normalize.Normalizer
	classifier *classify.Classifier
	crossref   *crossref.CrossReferencer
	explainer  *explain.Generator
	aggregator *verdict.Aggregator
	cache      *cache.VerdictCache
	telemetry  *telemetry.Provider
	logger     logging.Logger
}

// New creates an Engine after checking required dependencies.
func New(deps Deps) (*Engine, error) {
	switch {
	case deps.Normalizer == nil:
		return nil, fmt.Errorf("engine: normalizer is required")
	case deps.Classifier == nil:
		return nil, fmt.Errorf("engine: classifier is required")
	case deps.CrossReferencer == nil:
		return nil, fmt.Errorf("engine: cross-referencer is required")
	case deps.Explainer == nil:
		return nil, fmt.Errorf("engine: explainer is required")
	case deps.Aggregator == nil:
		return nil, fmt.Errorf("engine: aggregator is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	return &Engine{
		extractor:  deps.Extractor,
		normalizer: deps.Normalizer,
		classifier: deps.Classifier,
		crossref:   deps.CrossReferencer,
		explainer:  deps.Explainer,
		aggregator: deps.Aggregator,
		cache:      deps.Cache,
		telemetry:  deps.Telemetry,
		logger:     deps.Logger,
	}, nil
}

// Analyze runs one request through the pipeline and returns its verdict.
// Validation and URL extraction failures reject the request before any
// pipeline work; a fingerprint cache hit skips the pipeline entirely.
func (e *Engine) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.Verdict, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		e.record(telemetry.OutcomeRejected, start)
		return domain.Verdict{}, err
	}

	if e.extractor != nil && ingest.IsURL(req.Text) {
		text, err := e.extractor.Extract(ctx, strings.TrimSpace(req.Text))
		if err != nil {
			e.record(telemetry.OutcomeRejected, start)
			return domain.Verdict{}, err
		}
		req.Text = text
	}

	fp := fingerprint.Compute(req.Text, fingerprint.Flags{
		CrossReference: req.CrossReference,
		Explain:        req.Explain,
	})

	if v, ok := e.cache.Get(fp); ok {
		e.logger.Debug("Verdict served from cache", logging.String("fingerprint", fp))
		e.record(telemetry.OutcomeCacheHit, start)
		return v, nil
	}

	v, err := e.run(ctx, req, fp)
	if err != nil {
		e.record(telemetry.OutcomeFailed, start)
		return domain.Verdict{}, err
	}

	// A canceled caller still gets the assembled verdict, but a verdict
	// degraded by its own cancellation must not be memoized for others.
	if ctx.Err() == nil {
		e.cache.Put(v)
	}
	if e.telemetry != nil {
		e.telemetry.RecordVerdictLabel(string(v.Classification.Label))
	}
	e.record(telemetry.OutcomeDone, start)

	e.logger.Info("Analysis complete",
		logging.String("fingerprint", fp),
		logging.String("label", string(v.Classification.Label)),
		logging.Float64("confidence", v.Confidence),
		logging.Bool("headlines", v.Completeness.Headlines),
		logging.Bool("explanation", v.Completeness.Explanation),
		logging.Duration("duration", time.Since(start)),
	)
	return v, nil
}

func (e *Engine) run(ctx context.Context, req domain.AnalysisRequest, fp string) (domain.Verdict, error) {
	nctx, finish := e.stage(ctx, telemetry.StageNormalize)
	norm := e.normalizer.Normalize(nctx, req.Text, req.LanguageHint)
	finish()

	cctx, finish := e.stage(ctx, telemetry.StageClassify)
	cls, err := e.classifier.Classify(cctx, norm.Text)
	finish()
	if err != nil {
		e.logger.Warn("Classification failed",
			logging.String("fingerprint", fp),
			logging.Error(err),
		)
		return domain.Verdict{}, fmt.Errorf("classify: %w", err)
	}

	var (
		wg          sync.WaitGroup
		headlines   domain.Signal[domain.HeadlineMatch]
		explanation domain.Signal[domain.ExplanationResult]
	)

	if req.CrossReference {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sctx, finish := e.stage(ctx, telemetry.StageCrossref)
			headlines = e.crossref.Fetch(sctx, norm.Text)
			finish()
		}()
	} else {
		headlines = disabledSignal[domain.HeadlineMatch](e.telemetry, "headlines")
	}

	if req.Explain {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sctx, finish := e.stage(ctx, telemetry.StageExplain)
			explanation = e.explainer.Generate(sctx, explain.PromptInput{
				Text:           norm.Text,
				Classification: cls,
			})
			finish()
		}()
	} else {
		explanation = disabledSignal[domain.ExplanationResult](e.telemetry, "explanation")
	}

	wg.Wait()

	_, finish = e.stage(ctx, telemetry.StageAggregate)
	v := e.aggregator.Aggregate(verdict.Input{
		Fingerprint:    fp,
		Classification: cls,
		Headlines:      headlines,
		Explanation:    explanation,
		Language:       norm.Language,
	})
	finish()

	return v, nil
}

// stage opens a span and returns a finish func that records the stage
// duration and ends the span.
func (e *Engine) stage(ctx context.Context, name string) (context.Context, func()) {
	start := time.Now()
	var span trace.Span
	if e.telemetry != nil {
		ctx, span = e.telemetry.StartSpan(ctx, "analyze."+name)
	}
	return ctx, func() {
		if e.telemetry != nil {
			e.telemetry.RecordStage(name, time.Since(start))
			span.End()
		}
	}
}

// disabledSignal builds the absent signal for a stage the request turned
// off, counting it without invoking the stage.
func disabledSignal[T any](tp *telemetry.Provider, signal string) domain.Signal[T] {
	if tp != nil {
		tp.RecordAbsentSignal(signal, string(domain.AbsenceDisabled))
	}
	return domain.Absent[T](domain.AbsenceDisabled)
}

func (e *Engine) record(outcome string, start time.Time) {
	if e.telemetry != nil {
		e.telemetry.RecordRequest(outcome, time.Since(start))
	}
}
