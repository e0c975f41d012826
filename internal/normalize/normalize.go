// Package normalize brings submitted text into the canonical analysis
// language before classification.
package normalize

import (
	"context"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/nordlys-media/veracity/internal/domain"
	"github.com/nordlys-media/veracity/internal/logging"
)

// Translator turns text from a source language into the target language.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Config tunes detection and the canonical language.
type Config struct {
	CanonicalLanguage string  // ISO 639-1
	DetectConfidence  float64 // below this, detection is not trusted
}

// Result is the normalizer's output. This stage never fails a request; at
// worst the text passes through untouched.
type Result struct {
	Text     string
	Language domain.Language
}

// Normalizer detects the submission language and translates into the
// canonical one when it confidently differs.
type Normalizer struct {
	cfg        Config
	translator Translator
	logger     logging.Logger
}

// New builds a Normalizer. A nil translator makes it detect-only.
func New(cfg Config, translator Translator, logger logging.Logger) *Normalizer {
	if cfg.CanonicalLanguage == "" {
		cfg.CanonicalLanguage = "en"
	}
	if cfg.DetectConfidence <= 0 {
		cfg.DetectConfidence = 0.80
	}
	return &Normalizer{cfg: cfg, translator: translator, logger: logger}
}

// Normalize returns text in the canonical language where possible. A hint
// overrides detection.
func (n *Normalizer) Normalize(ctx context.Context, text, hint string) Result {
	lang, confidence := n.detect(text, hint)
	res := Result{
		Text:     text,
		Language: domain.Language{Detected: lang, Confidence: confidence},
	}

	if lang == "" || lang == n.cfg.CanonicalLanguage {
		return res
	}
	if confidence < n.cfg.DetectConfidence {
		n.logger.Debug("Language detection below threshold, passing through",
			logging.String("language", lang),
			logging.Float64("confidence", confidence),
		)
		return res
	}
	if n.translator == nil {
		n.logger.Debug("No translator configured, passing through",
			logging.String("language", lang),
		)
		return res
	}

	translated, err := n.translator.Translate(ctx, text, lang, n.cfg.CanonicalLanguage)
	if err != nil {
		n.logger.Warn("Translation failed, passing original text through",
			logging.String("language", lang),
			logging.Error(err),
		)
		return res
	}
	if strings.TrimSpace(translated) == "" {
		n.logger.Warn("Translator returned empty text, passing original through",
			logging.String("language", lang),
		)
		return res
	}

	res.Text = translated
	res.Language.Translated = true
	return res
}

func (n *Normalizer) detect(text, hint string) (string, float64) {
	if hint != "" {
		return hint, 1
	}
	info := whatlanggo.Detect(text)
	return info.Lang.Iso6391(), info.Confidence
}
