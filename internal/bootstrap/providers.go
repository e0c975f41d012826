package bootstrap

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nordlys-media/veracity/internal/config"
	"github.com/nordlys-media/veracity/internal/crossref"
	"github.com/nordlys-media/veracity/internal/explain"
	"github.com/nordlys-media/veracity/internal/httpx"
	"github.com/nordlys-media/veracity/internal/logging"
	"github.com/nordlys-media/veracity/internal/normalize"
)

// searchProvider selects the headline search backend. Returns nil when no
// API key is configured; the service still runs and reports the headline
// signal absent with reason no_credentials.
func searchProvider(cfg config.CrossReferenceConfig, logger logging.Logger) (crossref.Provider, error) {
	if cfg.APIKey == "" {
		logger.Warn("Search API key not configured",
			logging.String("provider", cfg.Provider),
		)
		logger.Info("Cross-reference signal will be reported absent")
		return nil, nil
	}

	client := httpx.NewClient(cfg.Timeout)
	switch cfg.Provider {
	case "serpapi":
		p := crossref.NewSerpAPI(cfg.APIKey, client)
		if cfg.Endpoint != "" {
			p.BaseURL = cfg.Endpoint
		}
		return p, nil
	case "serper":
		p := crossref.NewSerper(cfg.APIKey, client)
		if cfg.Endpoint != "" {
			p.BaseURL = cfg.Endpoint
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}
}

// explainProvider selects the generative explanation backend. Returns nil
// when no API key is configured; the explanation signal is then reported
// absent with reason no_credentials.
func explainProvider(cfg config.ExplanationConfig, logger logging.Logger) (explain.Provider, error) {
	if cfg.APIKey == "" {
		logger.Warn("Explanation API key not configured",
			logging.String("provider", cfg.Provider),
		)
		logger.Info("Explanation signal will be reported absent")
		return nil, nil
	}

	switch cfg.Provider {
	case "gemini":
		p := explain.NewGemini(cfg.APIKey, cfg.GeminiModel, cfg.MaxTokens, httpx.NewClient(cfg.Timeout))
		if cfg.Endpoint != "" {
			p.BaseURL = cfg.Endpoint
		}
		return p, nil
	case "anthropic":
		var opts []option.RequestOption
		if cfg.Endpoint != "" {
			opts = append(opts, option.WithBaseURL(cfg.Endpoint))
		}
		return explain.NewAnthropic(cfg.APIKey, cfg.AnthropicModel, int64(cfg.MaxTokens), opts...), nil
	default:
		return nil, fmt.Errorf("unknown explanation provider %q", cfg.Provider)
	}
}

// translator builds the optional LibreTranslate client. Returns nil when no
// endpoint is configured; the normalizer is then detect-only.
func translator(cfg config.NormalizationConfig, logger logging.Logger) normalize.Translator {
	if cfg.TranslateURL == "" {
		logger.Info("Translation endpoint not configured, normalizer is detect-only")
		return nil
	}
	return normalize.NewLibreTranslate(cfg.TranslateURL, cfg.TranslateAPIKey, httpx.NewClient(cfg.Timeout))
}
