package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nordlys-media/veracity/internal/api"
	"github.com/nordlys-media/veracity/internal/logging"
)

func newHealthRouter(t *testing.T, checks map[string]api.HealthChecker) *gin.Engine {
	t.Helper()

	handler := newTestHandler(t, &fakeSearch{}, &fakeExplain{response: "unused"})
	srv := api.NewServer(api.Config{}, logging.NewNop(), func(r *gin.Engine) {
		api.SetupRoutes(r, handler, api.HealthOptions{
			ServiceName:    "veracity",
			ServiceVersion: "test",
			Checks:         checks,
		}, nil)
	})
	return srv.Router()
}

func getHealth(t *testing.T, router *gin.Engine) (*httptest.ResponseRecorder, api.HealthResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	var resp api.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	return w, resp
}

func TestHealthHealthy(t *testing.T) {
	router := newHealthRouter(t, map[string]api.HealthChecker{
		"model":              api.ModelHealthChecker(true),
		"search_credentials": api.CredentialsHealthChecker("serpapi", true),
	})

	w, resp := getHealth(t, router)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if resp.Status != api.HealthStatusHealthy {
		t.Errorf("Status = %q, want healthy", resp.Status)
	}
	if resp.Service != "veracity" || resp.Version != "test" {
		t.Errorf("service/version = %q/%q, want veracity/test", resp.Service, resp.Version)
	}
	if resp.Uptime == "" {
		t.Error("Uptime empty")
	}
	if len(resp.Checks) != 2 {
		t.Errorf("Checks = %d entries, want 2", len(resp.Checks))
	}
}

func TestHealthDegradedOnMissingCredentials(t *testing.T) {
	router := newHealthRouter(t, map[string]api.HealthChecker{
		"model":              api.ModelHealthChecker(true),
		"search_credentials": api.CredentialsHealthChecker("serpapi", false),
	})

	w, resp := getHealth(t, router)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: degraded service still serves", w.Code)
	}
	if resp.Status != api.HealthStatusDegraded {
		t.Errorf("Status = %q, want degraded", resp.Status)
	}
	check, ok := resp.Checks["search_credentials"]
	if !ok {
		t.Fatal("search_credentials check missing from response")
	}
	if check.Status != api.HealthStatusDegraded || check.Message == "" {
		t.Errorf("check = %+v, want degraded with a message", check)
	}
}

func TestHealthUnhealthyWithoutModel(t *testing.T) {
	router := newHealthRouter(t, map[string]api.HealthChecker{
		"model":              api.ModelHealthChecker(false),
		"search_credentials": api.CredentialsHealthChecker("serpapi", false),
	})

	w, resp := getHealth(t, router)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if resp.Status != api.HealthStatusUnhealthy {
		t.Errorf("Status = %q, want unhealthy: unhealthy outranks degraded", resp.Status)
	}
}

func TestHealthHead(t *testing.T) {
	router := newHealthRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodHead, "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestReady(t *testing.T) {
	router := newHealthRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode ready response: %v", err)
	}
	if resp["status"] != "ready" {
		t.Errorf("status field = %q, want ready", resp["status"])
	}
}
