package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus represents the status of a health check.
type HealthStatus string

// Health states, ordered from best to worst.
const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResponse is the health check response format.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one named health check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// HealthChecker performs one health check.
type HealthChecker func() CheckResult

// HealthOptions configures the health endpoints.
type HealthOptions struct {
	ServiceName    string
	ServiceVersion string
	Checks         map[string]HealthChecker
}

// ModelHealthChecker reports whether the classification artifact loaded.
// The model is the one component the service cannot run without.
func ModelHealthChecker(loaded bool) HealthChecker {
	return func() CheckResult {
		if !loaded {
			return CheckResult{
				Status:  HealthStatusUnhealthy,
				Message: "classification model not loaded",
			}
		}
		return CheckResult{Status: HealthStatusHealthy}
	}
}

// CredentialsHealthChecker reports whether credentials for an optional
// provider are configured. It checks presence only, never reachability;
// a missing credential degrades the service rather than failing it.
func CredentialsHealthChecker(provider string, configured bool) HealthChecker {
	return func() CheckResult {
		if !configured {
			return CheckResult{
				Status:  HealthStatusDegraded,
				Message: provider + " credentials not configured; signal reported absent",
			}
		}
		return CheckResult{Status: HealthStatusHealthy}
	}
}

func healthHandler(opts HealthOptions, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:  HealthStatusHealthy,
			Service: opts.ServiceName,
			Version: opts.ServiceVersion,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
		}

		if len(opts.Checks) > 0 {
			response.Checks = make(map[string]CheckResult, len(opts.Checks))
			for name, check := range opts.Checks {
				result := check()
				response.Checks[name] = result

				switch result.Status {
				case HealthStatusUnhealthy:
					response.Status = HealthStatusUnhealthy
				case HealthStatusDegraded:
					if response.Status == HealthStatusHealthy {
						response.Status = HealthStatusDegraded
					}
				}
			}
		}

		code := http.StatusOK
		if response.Status == HealthStatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, response)
	}
}

func headHealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Status(http.StatusOK)
	}
}

func readyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
