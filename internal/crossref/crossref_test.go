package crossref_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nordlys-media/veracity/internal/crossref"
	"github.com/nordlys-media/veracity/internal/domain"
	"github.com/nordlys-media/veracity/internal/httpx"
	"github.com/nordlys-media/veracity/internal/logging"
	"github.com/nordlys-media/veracity/internal/model"
)

type fakeProvider struct {
	results []crossref.Result
	errs    []error // consumed per call, nil entries mean success
	calls   int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(_ context.Context, _ string, _ int) ([]crossref.Result, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.results, nil
}

func testVectorizer(t *testing.T) *model.Vectorizer {
	t.Helper()
	m, err := model.New(model.Artifact{
		FormatVersion: model.SupportedFormatVersion,
		Classes:       []string{"fake", "real"},
		Vocabulary: map[string]int{
			"moon": 0, "cheese": 1, "vaccines": 2, "budget": 3, "mayor": 4,
		},
		IDF:       []float64{1, 1, 1, 1, 1},
		StopWords: []string{"the", "is", "of", "made"},
		Coef:      []float64{-1.5, -1, 2, 0.5, 0.3},
		Lowercase: true,
		Norm:      "l2",
	})
	if err != nil {
		t.Fatalf("model.New() error = %v", err)
	}
	return m.Vectorizer()
}

func newCrossReferencer(t *testing.T, p crossref.Provider, cfg crossref.Config) *crossref.CrossReferencer {
	t.Helper()
	vec := testVectorizer(t)
	builder := crossref.NewQueryBuilder(vec, crossref.QueryConfig{})
	return crossref.New(p, builder, vec, nil, logging.NewNop(), cfg)
}

func TestFetch_RanksBySimilarityAndTruncates(t *testing.T) {
	p := &fakeProvider{results: []crossref.Result{
		{Title: "Budget debate continues", Source: "wire"},
		{Title: "Moon cheese claim debunked", Source: "paper"},
		{Title: "Entirely unrelated story", Source: "blog"},
	}}
	c := newCrossReferencer(t, p, crossref.Config{TopMatches: 2})

	sig := c.Fetch(context.Background(), "the moon is made of cheese")
	matches, ok := sig.Value()
	if !ok {
		t.Fatalf("Fetch() absent: %s", sig.Reason())
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2 after truncation", len(matches))
	}
	if matches[0].Title != "Moon cheese claim debunked" {
		t.Errorf("top match = %q, want the overlapping headline", matches[0].Title)
	}
	if matches[0].Similarity <= matches[1].Similarity {
		t.Errorf("similarities not descending: %v then %v", matches[0].Similarity, matches[1].Similarity)
	}
	for _, m := range matches {
		if m.Similarity < 0 || m.Similarity > 1 {
			t.Errorf("similarity %v outside [0,1]", m.Similarity)
		}
	}
}

func TestFetch_EmptyResultsArePresent(t *testing.T) {
	c := newCrossReferencer(t, &fakeProvider{}, crossref.Config{})

	sig := c.Fetch(context.Background(), "moon cheese")
	matches, ok := sig.Value()
	if !ok {
		t.Fatalf("Fetch() absent: %s", sig.Reason())
	}
	if len(matches) != 0 {
		t.Errorf("matches = %v, want empty list", matches)
	}
}

func TestFetch_NoProviderMeansNoCredentials(t *testing.T) {
	c := newCrossReferencer(t, nil, crossref.Config{})

	sig := c.Fetch(context.Background(), "moon cheese")
	if sig.Present() {
		t.Fatal("Fetch() present without a provider")
	}
	if sig.Reason() != domain.AbsenceNoCredentials {
		t.Errorf("Reason() = %q, want no_credentials", sig.Reason())
	}
}

func TestFetch_ProviderErrorAbsent(t *testing.T) {
	p := &fakeProvider{errs: []error{
		&httpx.StatusError{StatusCode: http.StatusForbidden},
	}}
	c := newCrossReferencer(t, p, crossref.Config{})

	sig := c.Fetch(context.Background(), "moon cheese")
	if sig.Present() {
		t.Fatal("Fetch() present despite provider failure")
	}
	if sig.Reason() != domain.AbsenceProviderError {
		t.Errorf("Reason() = %q, want provider_error", sig.Reason())
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (403 is not transient)", p.calls)
	}
}

func TestFetch_RetriesTransientOnce(t *testing.T) {
	p := &fakeProvider{
		errs:    []error{&httpx.StatusError{StatusCode: http.StatusServiceUnavailable}, nil},
		results: []crossref.Result{{Title: "Moon cheese claim debunked"}},
	}
	c := newCrossReferencer(t, p, crossref.Config{})

	sig := c.Fetch(context.Background(), "moon cheese")
	if !sig.Present() {
		t.Fatalf("Fetch() absent after recoverable failure: %s", sig.Reason())
	}
	if p.calls != 2 {
		t.Errorf("provider called %d times, want 2", p.calls)
	}
}

func TestFetch_TimeoutAbsent(t *testing.T) {
	p := &fakeProvider{errs: []error{context.DeadlineExceeded}}
	c := newCrossReferencer(t, p, crossref.Config{Timeout: 50 * time.Millisecond})

	sig := c.Fetch(context.Background(), "moon cheese")
	if sig.Present() {
		t.Fatal("Fetch() present despite timeout")
	}
	if sig.Reason() != domain.AbsenceTimeout {
		t.Errorf("Reason() = %q, want timeout", sig.Reason())
	}
}

func TestSerpAPI_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "moon cheese" || q.Get("tbm") != "nws" || q.Get("api_key") != "k123" {
			t.Errorf("query params = %v", q)
		}
		if _, err := w.Write([]byte(`{"news_results":[
			{"title":"Moon rock study","source":"Science Daily","snippet":"geology","date":"2 days ago"},
			{"title":"Cheese prices fall","source":"Biz Wire","snippet":"markets","date":"1 day ago"}
		]}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	p := crossref.NewSerpAPI("k123", srv.Client())
	p.BaseURL = srv.URL

	got, err := p.Search(context.Background(), "moon cheese", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2", len(got))
	}
	if got[0].Title != "Moon rock study" || got[0].Source != "Science Daily" || got[0].PublishedAt != "2 days ago" {
		t.Errorf("first result = %+v", got[0])
	}
}

func TestSerper_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news" {
			t.Errorf("path = %s, want /news", r.URL.Path)
		}
		if key := r.Header.Get("X-API-KEY"); key != "k456" {
			t.Errorf("X-API-KEY = %q", key)
		}
		var req struct {
			Q   string `json:"q"`
			Num int    `json:"num"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Q != "moon cheese" || req.Num != 3 {
			t.Errorf("request = %+v", req)
		}
		if _, err := w.Write([]byte(`{"news":[{"title":"Lunar dairy hoax spreads","source":"Fact Desk","date":"3 hours ago"}]}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	p := crossref.NewSerper("k456", srv.Client())
	p.BaseURL = srv.URL

	got, err := p.Search(context.Background(), "moon cheese", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "Lunar dairy hoax spreads" {
		t.Errorf("results = %+v", got)
	}
}
