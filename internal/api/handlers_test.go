package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nordlys-media/veracity/internal/api"
	"github.com/nordlys-media/veracity/internal/cache"
	"github.com/nordlys-media/veracity/internal/classify"
	"github.com/nordlys-media/veracity/internal/crossref"
	"github.com/nordlys-media/veracity/internal/domain"
	"github.com/nordlys-media/veracity/internal/engine"
	"github.com/nordlys-media/veracity/internal/explain"
	"github.com/nordlys-media/veracity/internal/logging"
	"github.com/nordlys-media/veracity/internal/model"
	"github.com/nordlys-media/veracity/internal/normalize"
	"github.com/nordlys-media/veracity/internal/verdict"
)

type fakeSearch struct {
	results []crossref.Result
	calls   int
}

func (f *fakeSearch) Name() string { return "fake-search" }

func (f *fakeSearch) Search(context.Context, string, int) ([]crossref.Result, error) {
	f.calls++
	return f.results, nil
}

type fakeExplain struct {
	response string
	calls    int
}

func (f *fakeExplain) Name() string { return "fake-explain" }

func (f *fakeExplain) Generate(context.Context, string) (string, error) {
	f.calls++
	return f.response, nil
}

func newTestHandler(t *testing.T, search *fakeSearch, expl *fakeExplain) *api.Handler {
	t.Helper()

	m, err := model.New(model.Artifact{
		FormatVersion: model.SupportedFormatVersion,
		Classes:       []string{"fake", "real"},
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
	clf, err := classify.New(m, logging.NewNop(), 10)
	if err != nil {
		t.Fatalf("classify.New() error = %v", err)
	}

	eng, err := engine.New(engine.Deps{
		Normalizer:      normalize.New(normalize.Config{}, nil, logging.NewNop()),
		Classifier:      clf,
		CrossReferencer: crossref.New(search, crossref.NewQueryBuilder(m.Vectorizer(), crossref.QueryConfig{}), m.Vectorizer(), nil, logging.NewNop(), crossref.Config{RPS: 1000}),
		Explainer:       explain.New(expl, nil, logging.NewNop(), explain.Config{RPS: 1000}),
		Aggregator:      verdict.New(verdict.Weights{}),
		Cache:           cache.New(cache.Config{}, nil),
	})
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}

	return api.NewHandler(eng, logging.NewNop())
}

func newTestRouter(t *testing.T, search *fakeSearch, expl *fakeExplain) *gin.Engine {
	t.Helper()

	handler := newTestHandler(t, search, expl)
	health := api.HealthOptions{
		ServiceName:    "veracity",
		ServiceVersion: "test",
		Checks: map[string]api.HealthChecker{
			"model": api.ModelHealthChecker(true),
		},
	}

	srv := api.NewServer(api.Config{}, logging.NewNop(), func(r *gin.Engine) {
		api.SetupRoutes(r, handler, health, nil)
	})
	return srv.Router()
}

func postAnalyze(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeEndpoint(t *testing.T) {
	search := &fakeSearch{results: []crossref.Result{
		{Title: "Moon cheese claim debunked", Source: "Wire", Snippet: "moon cheese story false"},
	}}
	expl := &fakeExplain{response: "No reputable outlet reports lunar dairy."}
	router := newTestRouter(t, search, expl)

	w := postAnalyze(t, router, `{"text": "The moon is made of cheese"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var v domain.Verdict
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if v.Classification.Label != domain.LabelFake {
		t.Errorf("Label = %q, want fake", v.Classification.Label)
	}
	if !v.Headlines.Present() || !v.Explanation.Present() {
		t.Errorf("signals = (%v, %v), want both present: flags default on", v.Headlines.Present(), v.Explanation.Present())
	}
	if search.calls != 1 || expl.calls != 1 {
		t.Errorf("provider calls = (%d, %d), want (1, 1)", search.calls, expl.calls)
	}
	if v.Summary == "" {
		t.Error("Summary empty")
	}
}

func TestAnalyzeEndpointFlagsOff(t *testing.T) {
	search := &fakeSearch{}
	expl := &fakeExplain{}
	router := newTestRouter(t, search, expl)

	w := postAnalyze(t, router, `{"text": "The moon is made of cheese", "cross_reference": false, "explain": false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var v domain.Verdict
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if v.Headlines.Reason() != domain.AbsenceDisabled || v.Explanation.Reason() != domain.AbsenceDisabled {
		t.Errorf("reasons = (%q, %q), want disabled", v.Headlines.Reason(), v.Explanation.Reason())
	}
	if search.calls != 0 || expl.calls != 0 {
		t.Errorf("provider calls = (%d, %d), want (0, 0)", search.calls, expl.calls)
	}
}

func TestAnalyzeEndpointRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "missing text field", body: `{}`, want: http.StatusBadRequest},
		{name: "malformed json", body: `{"text": `, want: http.StatusBadRequest},
		{name: "whitespace text", body: `{"text": "   "}`, want: http.StatusBadRequest},
		{name: "unclassifiable text", body: `{"text": "zzz qqq unknown words"}`, want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &fakeSearch{}, &fakeExplain{response: "x"})

			w := postAnalyze(t, router, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", w.Code, tt.want, w.Body.String())
			}

			var resp api.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message empty")
			}
		})
	}
}

func TestAnalyzeEndpointOversized(t *testing.T) {
	router := newTestRouter(t, &fakeSearch{}, &fakeExplain{})

	text := strings.Repeat("a", domain.MaxTextChars+1)
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	w := postAnalyze(t, router, string(body))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
