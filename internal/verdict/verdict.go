// Package verdict folds stage outputs into the final confidence-scored
// verdict. Aggregation is pure: no I/O, no clock, no randomness.
package verdict

import (
	"fmt"

	"github.com/nordlys-media/veracity/internal/domain"
)

// Default policy values.
const (
	DefaultHeadlineWeight = 0.15
	DefaultUncertainBelow = 0.60
)

// Weights is the aggregation policy.
type Weights struct {
	// HeadlineWeight scales how far corroboration can move the base
	// confidence, in either direction.
	HeadlineWeight float64

	// UncertainBelow is the confidence floor below which the summary
	// refuses to commit to a label.
	UncertainBelow float64
}

// Aggregator renders verdicts under a fixed policy.
type Aggregator struct {
	weights Weights
}

// New creates an Aggregator, applying defaults for zero fields.
func New(w Weights) *Aggregator {
	if w.HeadlineWeight <= 0 {
		w.HeadlineWeight = DefaultHeadlineWeight
	}
	if w.UncertainBelow <= 0 {
		w.UncertainBelow = DefaultUncertainBelow
	}
	return &Aggregator{weights: w}
}

// Input collects everything a verdict is assembled from.
type Input struct {
	Fingerprint    string
	Classification domain.ClassificationResult
	Headlines      domain.Signal[domain.HeadlineMatch]
	Explanation    domain.Signal[domain.ExplanationResult]
	Language       domain.Language
}

// Aggregate assembles the verdict. Base confidence is the classifier
// probability; a present, non-empty headline signal nudges it toward or
// away from the label, and the explanation never moves the number.
func (a *Aggregator) Aggregate(in Input) domain.Verdict {
	confidence := clamp01(in.Classification.Probability + a.nudge(in.Classification.Label, in.Headlines))

	return domain.Verdict{
		Fingerprint:    in.Fingerprint,
		Classification: in.Classification,
		Headlines:      in.Headlines,
		Explanation:    in.Explanation,
		Confidence:     confidence,
		Summary:        a.summary(in.Classification.Label, confidence),
		Completeness: domain.Completeness{
			Classification: true,
			Headlines:      in.Headlines.Present(),
			Explanation:    in.Explanation.Present(),
		},
		Language: in.Language,
	}
}

// nudge computes the headline adjustment HeadlineWeight * (2c - 1), where
// corroboration c is the top similarity for label real and its complement
// for label fake. An absent or empty signal is neutral, as is a top
// similarity of exactly 0.5.
func (a *Aggregator) nudge(label domain.Label, headlines domain.Signal[domain.HeadlineMatch]) float64 {
	matches, ok := headlines.Value()
	if !ok {
		return 0
	}
	top, ok := matches.Top()
	if !ok {
		return 0
	}

	c := top.Similarity
	if label == domain.LabelFake {
		c = 1 - c
	}
	return a.weights.HeadlineWeight * (2*c - 1)
}

func (a *Aggregator) summary(label domain.Label, confidence float64) string {
	if confidence < a.weights.UncertainBelow {
		return "uncertain"
	}
	return fmt.Sprintf("likely %s", label)
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
