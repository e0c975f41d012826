package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxTextChars bounds the analyzable input size in characters.
const MaxTextChars = 20000

// Validation errors for incoming analysis requests.
var (
	ErrEmptyText   = errors.New("text is empty")
	ErrTextTooLong = errors.New("text exceeds maximum length")
)

// AnalysisRequest represents a single analysis submission.
type AnalysisRequest struct {
	Text           string `json:"text"`
	CrossReference bool   `json:"cross_reference"`          // fetch corroborating headlines
	Explain        bool   `json:"explain"`                  // generate a rationale
	LanguageHint   string `json:"language_hint,omitempty"`  // ISO 639-1, optional
}

// NewAnalysisRequest builds a request with both enrichment signals enabled.
func NewAnalysisRequest(text string) AnalysisRequest {
	return AnalysisRequest{Text: text, CrossReference: true, Explain: true}
}

// Validate rejects requests the pipeline must never see. Rejected requests
// produce no verdict and no cache entry.
func (r AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	if utf8.RuneCountInString(r.Text) > MaxTextChars {
		return ErrTextTooLong
	}
	return nil
}
