package domain

// Label is the classifier's verdict on a text.
type Label string

// Label constants
const (
	LabelReal Label = "real"
	LabelFake Label = "fake"
)

// FeatureWeight is one influential term and its contribution toward the
// predicted label. Weights are always positive; terms pushing away from
// the prediction are never surfaced.
type FeatureWeight struct {
	Token  string  `json:"token"`
	Weight float64 `json:"weight"`
}

// ClassificationResult represents the local model's verdict on a text.
type ClassificationResult struct {
	Label       Label           `json:"label"`
	Probability float64         `json:"probability"` // 0.0-1.0, for the predicted label
	Features    []FeatureWeight `json:"features,omitempty"`
}

// Headline is a single corroborating news result.
type Headline struct {
	Title       string  `json:"title"`
	Source      string  `json:"source,omitempty"`
	Similarity  float64 `json:"similarity"`             // 0.0-1.0, against the input text
	PublishedAt string  `json:"published_at,omitempty"` // provider-reported, verbatim
}

// HeadlineMatch is the corroboration signal: recent headlines ordered by
// descending similarity. Empty means the search ran and found nothing,
// which is distinct from the signal being absent.
type HeadlineMatch []Headline

// Top returns the strongest match.
func (m HeadlineMatch) Top() (Headline, bool) {
	if len(m) == 0 {
		return Headline{}, false
	}
	return m[0], true
}

// ExplanationResult represents the generated rationale for a verdict.
type ExplanationResult struct {
	Rationale string `json:"rationale"`
	Summary   string `json:"summary,omitempty"`
	Provider  string `json:"provider,omitempty"`
}

// Completeness enumerates which signals contributed to a verdict.
type Completeness struct {
	Classification bool `json:"classification"`
	Headlines      bool `json:"headlines"`
	Explanation    bool `json:"explanation"`
}

// Language captures what the normalizer detected and did.
type Language struct {
	Detected   string  `json:"detected,omitempty"` // ISO 639-1
	Confidence float64 `json:"confidence,omitempty"`
	Translated bool    `json:"translated"`
}

// Verdict is the complete analysis outcome, returned to callers and stored
// in the fingerprint cache. Immutable once constructed.
type Verdict struct {
	Fingerprint    string                    `json:"fingerprint"`
	Classification ClassificationResult      `json:"classification"`
	Headlines      Signal[HeadlineMatch]     `json:"headlines"`
	Explanation    Signal[ExplanationResult] `json:"explanation"`
	Confidence     float64                   `json:"confidence"` // 0.0-1.0
	Summary        string                    `json:"summary"`
	Completeness   Completeness              `json:"completeness"`
	Language       Language                  `json:"language"`
	CacheHit       bool                      `json:"cache_hit"`
}

// WithCacheHit returns a copy of the verdict flagged as served from cache.
func (v Verdict) WithCacheHit() Verdict {
	v.CacheHit = true
	return v
}
