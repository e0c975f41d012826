// Package classify adapts the loaded model into the verdict pipeline's
// classification stage.
package classify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nordlys-media/veracity/internal/domain"
	"github.com/nordlys-media/veracity/internal/logging"
	"github.com/nordlys-media/veracity/internal/model"
)

// ErrUnclassifiable means the input yielded nothing the model recognizes.
// Unlike the optional enrichment signals, this fails the whole request.
var ErrUnclassifiable = errors.New("text cannot be classified")

// Classifier turns raw model predictions into domain classification results.
type Classifier struct {
	model  *model.Model
	logger logging.Logger
	topK   int
}

// New builds the adapter. The artifact's class pair must be exactly the
// labels the rest of the pipeline understands.
func New(m *model.Model, logger logging.Logger, topK int) (*Classifier, error) {
	neg, pos := m.Classes()
	if !validLabels(neg, pos) {
		return nil, fmt.Errorf("artifact classes %q/%q are not the known labels", neg, pos)
	}
	if topK <= 0 {
		topK = model.DefaultTopFeatures
	}
	return &Classifier{model: m, logger: logger, topK: topK}, nil
}

func validLabels(neg, pos string) bool {
	a, b := domain.Label(neg), domain.Label(pos)
	return (a == domain.LabelFake && b == domain.LabelReal) ||
		(a == domain.LabelReal && b == domain.LabelFake)
}

// Classify scores normalized text and returns the labeled result with its
// most influential terms.
func (c *Classifier) Classify(ctx context.Context, text string) (domain.ClassificationResult, error) {
	start := time.Now()

	pred, err := c.model.Predict(text, c.topK)
	if err != nil {
		if errors.Is(err, model.ErrNoTokens) {
			return domain.ClassificationResult{}, fmt.Errorf("%w: %v", ErrUnclassifiable, err)
		}
		return domain.ClassificationResult{}, fmt.Errorf("classify text: %w", err)
	}

	features := make([]domain.FeatureWeight, len(pred.Features))
	for i, f := range pred.Features {
		features[i] = domain.FeatureWeight{Token: f.Token, Weight: f.Weight}
	}

	result := domain.ClassificationResult{
		Label:       domain.Label(pred.Label),
		Probability: pred.Probability,
		Features:    features,
	}

	c.logger.Debug("Classified text",
		logging.String("label", string(result.Label)),
		logging.Float64("probability", result.Probability),
		logging.Int("features", len(features)),
		logging.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}
