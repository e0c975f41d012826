package model

import (
	"errors"
	"math"
	"sort"
)

// ErrNoTokens means vectorization recognized nothing in the input, so the
// model cannot score it.
var ErrNoTokens = errors.New("no recognizable tokens in input")

// DefaultTopFeatures is how many influential terms a prediction carries
// when the caller does not say otherwise.
const DefaultTopFeatures = 10

// Contribution is one vocabulary term's pull toward the predicted class.
type Contribution struct {
	Token  string
	Weight float64
}

// Prediction is the raw model output for one document.
type Prediction struct {
	Label       string  // one of the artifact's two classes
	Score       float64 // signed decision score, positive favors the positive class
	Probability float64 // of the predicted label
	Features    []Contribution
}

// Decision returns the signed linear score for a document vector.
func (m *Model) Decision(vec Vector) float64 {
	score := m.intercept
	for idx, val := range vec {
		score += val * m.coef[idx]
	}
	return score
}

// Predict scores a document end to end: vectorize, decide, convert the
// score magnitude to a probability, and rank the topK terms that pushed
// the decision toward the predicted class.
func (m *Model) Predict(text string, topK int) (Prediction, error) {
	vec := m.vectorizer.Vectorize(text)
	if len(vec) == 0 {
		return Prediction{}, ErrNoTokens
	}
	score := m.Decision(vec)

	label := m.classes[1]
	if score <= 0 {
		label = m.classes[0]
	}

	if topK <= 0 {
		topK = DefaultTopFeatures
	}
	return Prediction{
		Label:       label,
		Score:       score,
		Probability: sigmoid(math.Abs(score)),
		Features:    m.contributions(vec, score, topK),
	}, nil
}

// contributions ranks per-term pulls toward the predicted class. A term's
// raw contribution is its tf-idf value times its coefficient; when the
// negative class won, the sign flips so that positive always means toward
// the prediction. Terms pulling the other way are dropped.
func (m *Model) contributions(vec Vector, score float64, topK int) []Contribution {
	sign := 1.0
	if score <= 0 {
		sign = -1.0
	}
	contribs := make([]Contribution, 0, len(vec))
	for idx, val := range vec {
		w := sign * val * m.coef[idx]
		if w <= 0 {
			continue
		}
		contribs = append(contribs, Contribution{Token: m.terms[idx], Weight: w})
	}
	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].Weight != contribs[j].Weight {
			return contribs[i].Weight > contribs[j].Weight
		}
		return contribs[i].Token < contribs[j].Token
	})
	if len(contribs) > topK {
		contribs = contribs[:topK]
	}
	return contribs
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
