package classify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nordlys-media/veracity/internal/classify"
	"github.com/nordlys-media/veracity/internal/domain"
	"github.com/nordlys-media/veracity/internal/logging"
	"github.com/nordlys-media/veracity/internal/model"
)

func testModel(t *testing.T, classes []string) *model.Model {
	t.Helper()
	m, err := model.New(model.Artifact{
		FormatVersion: model.SupportedFormatVersion,
		Classes:       classes,
		Vocabulary:    map[string]int{"moon": 0, "cheese": 1, "vaccines": 2},
		IDF:           []float64{1, 1, 1},
		StopWords:     []string{"the", "is", "of", "made"},
		Coef:          []float64{-1.5, -1.0, 2.0},
		Lowercase:     true,
		Norm:          "l2",
	})
	if err != nil {
		t.Fatalf("model.New() error = %v", err)
	}
	return m
}

func TestNew_RejectsUnknownLabels(t *testing.T) {
	m := testModel(t, []string{"spam", "ham"})
	if _, err := classify.New(m, logging.NewNop(), 10); err == nil {
		t.Error("New() accepted an artifact with unknown class labels")
	}
}

func TestClassifier_Classify(t *testing.T) {
	m := testModel(t, []string{"fake", "real"})
	c, err := classify.New(m, logging.NewNop(), 10)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := c.Classify(context.Background(), "The Moon is made of cheese")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Label != domain.LabelFake {
		t.Errorf("Label = %q, want fake", got.Label)
	}
	if got.Probability < 0.5 || got.Probability > 1 {
		t.Errorf("Probability = %v outside [0.5,1]", got.Probability)
	}
	if len(got.Features) == 0 {
		t.Error("Features empty, want influential terms")
	}
	for _, f := range got.Features {
		if f.Weight <= 0 {
			t.Errorf("feature %q weight = %v, want strictly positive", f.Token, f.Weight)
		}
	}
}

func TestClassifier_Classify_Deterministic(t *testing.T) {
	m := testModel(t, []string{"fake", "real"})
	c, err := classify.New(m, logging.NewNop(), 10)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first, err := c.Classify(context.Background(), "vaccines and the moon")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	second, err := c.Classify(context.Background(), "vaccines and the moon")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if first.Label != second.Label || first.Probability != second.Probability {
		t.Errorf("repeat classification differs: %+v vs %+v", first, second)
	}
}

func TestClassifier_Classify_Unclassifiable(t *testing.T) {
	m := testModel(t, []string{"fake", "real"})
	c, err := classify.New(m, logging.NewNop(), 10)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.Classify(context.Background(), "zzz qqq nothing known")
	if !errors.Is(err, classify.ErrUnclassifiable) {
		t.Errorf("Classify() error = %v, want ErrUnclassifiable", err)
	}
}
