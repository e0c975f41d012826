// Package bootstrap assembles the analysis pipeline and HTTP server from
// configuration.
package bootstrap

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/nordlys-media/veracity/internal/api"
	"github.com/nordlys-media/veracity/internal/cache"
	"github.com/nordlys-media/veracity/internal/classify"
	"github.com/nordlys-media/veracity/internal/config"
	"github.com/nordlys-media/veracity/internal/crossref"
	"github.com/nordlys-media/veracity/internal/engine"
	"github.com/nordlys-media/veracity/internal/explain"
	"github.com/nordlys-media/veracity/internal/httpx"
	"github.com/nordlys-media/veracity/internal/ingest"
	"github.com/nordlys-media/veracity/internal/logging"
	"github.com/nordlys-media/veracity/internal/model"
	"github.com/nordlys-media/veracity/internal/normalize"
	"github.com/nordlys-media/veracity/internal/telemetry"
	"github.com/nordlys-media/veracity/internal/verdict"
)

// Components holds the assembled analysis pipeline.
type Components struct {
	Config    *config.Config
	Logger    logging.Logger
	Telemetry *telemetry.Provider
	Engine    *engine.Engine
	Cache     *cache.VerdictCache

	searchProvider  string
	explainProvider string
}

// HTTPComponents adds the HTTP server on top of the pipeline.
type HTTPComponents struct {
	*Components
	Server *api.Server
}

// NewComponents assembles the pipeline from configuration. A nil telemetry
// provider disables metrics and tracing; one-shot invocations pass nil.
func NewComponents(cfg *config.Config, logger logging.Logger, tp *telemetry.Provider) (*Components, error) {
	m, err := model.Load(cfg.Classifier.ArtifactPath)
	if err != nil {
		return nil, fmt.Errorf("load model artifact: %w", err)
	}
	neg, pos := m.Classes()
	logger.Info("Classification model loaded",
		logging.String("path", cfg.Classifier.ArtifactPath),
		logging.Strings("classes", []string{neg, pos}),
	)

	clf, err := classify.New(m, logger, cfg.Classifier.TopFeatures)
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	normalizer := normalize.New(normalize.Config{
		CanonicalLanguage: cfg.Classifier.CanonicalLanguage,
		DetectConfidence:  cfg.Normalization.DetectConfidence,
	}, translator(cfg.Normalization, logger), logger)

	search, err := searchProvider(cfg.CrossReference, logger)
	if err != nil {
		return nil, err
	}
	builder := crossref.NewQueryBuilder(m.Vectorizer(), crossref.QueryConfig{
		MaxTerms:  cfg.CrossReference.QueryTerms,
		MaxLength: cfg.CrossReference.QueryMaxLength,
	})
	crossReferencer := crossref.New(search, builder, m.Vectorizer(), tp, logger, crossref.Config{
		Timeout:    cfg.CrossReference.Timeout,
		MaxResults: cfg.CrossReference.MaxResults,
		TopMatches: cfg.CrossReference.TopMatches,
		RPS:        float64(cfg.CrossReference.RequestsPerSecond),
	})

	expl, err := explainProvider(cfg.Explanation, logger)
	if err != nil {
		return nil, err
	}
	explainer := explain.New(expl, tp, logger, explain.Config{
		Timeout:           cfg.Explanation.Timeout,
		MaxPromptChars:    cfg.Explanation.MaxPromptChars,
		MaxRationaleChars: cfg.Explanation.MaxRationaleChars,
		RPS:               float64(cfg.Explanation.RequestsPerSecond),
	})

	verdictCache := cache.New(cache.Config{
		Disabled:   cfg.Cache.Disabled,
		TTL:        cfg.Cache.TTL,
		MaxEntries: cfg.Cache.MaxEntries,
	}, tp)
	if verdictCache == nil {
		logger.Info("Verdict cache disabled")
	}

	var extractor *ingest.Extractor
	if cfg.Ingest.Disabled {
		logger.Info("URL ingestion disabled, URLs are analyzed as plain text")
	} else {
		extractor = ingest.New(httpx.NewClient(cfg.Ingest.Timeout), logger, ingest.Config{
			Timeout:   cfg.Ingest.Timeout,
			MaxChars:  cfg.Ingest.MaxChars,
			UserAgent: cfg.Ingest.UserAgent,
		})
	}

	eng, err := engine.New(engine.Deps{
		Extractor:       extractor,
		Normalizer:      normalizer,
		Classifier:      clf,
		CrossReferencer: crossReferencer,
		Explainer:       explainer,
		Aggregator: verdict.New(verdict.Weights{
			HeadlineWeight: cfg.Aggregation.HeadlineWeight,
			UncertainBelow: cfg.Aggregation.UncertainBelow,
		}),
		Cache:     verdictCache,
		Telemetry: tp,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	comps := &Components{
		Config:    cfg,
		Logger:    logger,
		Telemetry: tp,
		Engine:    eng,
		Cache:     verdictCache,
	}
	if search != nil {
		comps.searchProvider = search.Name()
	}
	if expl != nil {
		comps.explainProvider = expl.Name()
	}
	logger.Info("Analysis pipeline assembled",
		logging.String("search_provider", orNone(comps.searchProvider)),
		logging.String("explain_provider", orNone(comps.explainProvider)),
		logging.Bool("cache", verdictCache != nil),
		logging.Bool("ingest", extractor != nil),
	)
	return comps, nil
}

// NewHTTPComponents assembles the pipeline plus the HTTP server and routes.
func NewHTTPComponents(cfg *config.Config, logger logging.Logger) (*HTTPComponents, error) {
	tp := telemetry.NewProvider()

	comps, err := NewComponents(cfg, logger, tp)
	if err != nil {
		return nil, err
	}

	handler := api.NewHandler(comps.Engine, logger)
	health := api.HealthOptions{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Checks: map[string]api.HealthChecker{
			"model":                   api.ModelHealthChecker(true),
			"search_credentials":      api.CredentialsHealthChecker(cfg.CrossReference.Provider, comps.searchProvider != ""),
			"explanation_credentials": api.CredentialsHealthChecker(cfg.Explanation.Provider, comps.explainProvider != ""),
		},
	}

	server := api.NewServer(api.Config{
		Port:           cfg.Service.Port,
		Debug:          cfg.Service.Debug,
		ReadTimeout:    cfg.Service.ReadTimeout,
		WriteTimeout:   cfg.Service.WriteTimeout,
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
	}, logger, func(router *gin.Engine) {
		api.SetupRoutes(router, handler, health, tp.Handler())
	})

	return &HTTPComponents{Components: comps, Server: server}, nil
}

func orNone(name string) string {
	if name == "" {
		return "none"
	}
	return name
}
