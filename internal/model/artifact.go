// Package model loads the trained fake-news artifact and scores documents
// with it. The artifact is a versioned JSON export of a tf-idf vectorizer
// and a binary linear classifier; it is read once at startup and shared
// read-only afterwards.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// SupportedFormatVersion is the artifact schema this build understands.
const SupportedFormatVersion = 1

// Artifact load errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported artifact format version")
	ErrDimensionMismatch = errors.New("artifact dimension mismatch")
)

// Artifact is the on-disk JSON schema of a trained model export.
type Artifact struct {
	FormatVersion int            `json:"format_version"`
	Classes       []string       `json:"classes"` // [negative, positive]
	Vocabulary    map[string]int `json:"vocabulary"`
	IDF           []float64      `json:"idf"`
	StopWords     []string       `json:"stop_words"`
	Coef          []float64      `json:"coef"`
	Intercept     float64        `json:"intercept"`
	Lowercase     bool           `json:"lowercase"`
	SublinearTF   bool           `json:"sublinear_tf"`
	Norm          string         `json:"norm"` // "l2" or empty
}

// Model is a loaded artifact ready to score documents. Safe for concurrent
// use without locks.
type Model struct {
	classes    [2]string
	coef       []float64
	intercept  float64
	terms      []string // index -> term
	vectorizer *Vectorizer
	version    int
}

// Load reads and validates an artifact file. Any failure here means the
// process must not start.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}
	return New(a)
}

// New validates an artifact and builds a Model from it.
func New(a Artifact) (*Model, error) {
	if a.FormatVersion != SupportedFormatVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedFormat, a.FormatVersion, SupportedFormatVersion)
	}
	if len(a.Classes) != 2 || a.Classes[0] == "" || a.Classes[1] == "" || a.Classes[0] == a.Classes[1] {
		return nil, fmt.Errorf("%w: need two distinct classes, got %v", ErrDimensionMismatch, a.Classes)
	}
	n := len(a.Vocabulary)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrDimensionMismatch)
	}
	if len(a.IDF) != n {
		return nil, fmt.Errorf("%w: %d idf weights for %d terms", ErrDimensionMismatch, len(a.IDF), n)
	}
	if len(a.Coef) != n {
		return nil, fmt.Errorf("%w: %d coefficients for %d terms", ErrDimensionMismatch, len(a.Coef), n)
	}

	terms := make([]string, n)
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: term %q has index %d outside [0,%d)", ErrDimensionMismatch, term, idx, n)
		}
		if terms[idx] != "" {
			return nil, fmt.Errorf("%w: terms %q and %q share index %d", ErrDimensionMismatch, terms[idx], term, idx)
		}
		terms[idx] = term
	}

	vec, err := newVectorizer(a)
	if err != nil {
		return nil, err
	}

	return &Model{
		classes:    [2]string{a.Classes[0], a.Classes[1]},
		coef:       a.Coef,
		intercept:  a.Intercept,
		terms:      terms,
		vectorizer: vec,
		version:    a.FormatVersion,
	}, nil
}

// Classes returns the (negative, positive) class labels.
func (m *Model) Classes() (string, string) {
	return m.classes[0], m.classes[1]
}

// Vectorizer exposes the artifact's tf-idf vectorizer so callers can score
// text similarity in the same feature space the model was trained in.
func (m *Model) Vectorizer() *Vectorizer {
	return m.vectorizer
}

// Term returns the vocabulary term at the given feature index.
func (m *Model) Term(idx int) string {
	if idx < 0 || idx >= len(m.terms) {
		return ""
	}
	return m.terms[idx]
}
