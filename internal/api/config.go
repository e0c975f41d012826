// Package api is the HTTP boundary of the veracity service: one analysis
// endpoint plus health, readiness, and metrics.
package api

import (
	"time"
)

// Default server values.
const (
	DefaultPort            = 8085
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultCORSMaxAge      = 12 * time.Hour
)

// Config holds the HTTP server configuration.
type Config struct {
	// Port is the port number to listen on.
	Port int `yaml:"port"`

	// Debug enables gin debug mode and verbose logging.
	Debug bool `yaml:"debug"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response writes.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds how long graceful shutdown waits for active
	// connections.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// CORS holds the CORS middleware configuration.
	CORS CORSConfig `yaml:"cors"`

	// ServiceName appears in health responses.
	ServiceName string `yaml:"-"`

	// ServiceVersion appears in health responses.
	ServiceVersion string `yaml:"-"`
}

// CORSConfig holds the CORS middleware configuration.
type CORSConfig struct {
	// Enabled determines whether CORS middleware is applied.
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists origins a cross-domain request may come from.
	// "*" allows all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists methods the client is allowed to use.
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists non-simple headers the client is allowed to use.
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is how long a preflight response may be cached.
	MaxAge time.Duration `yaml:"max_age"`
}

// SetDefaults applies default values where fields are unset.
func (c *Config) SetDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.ServiceName == "" {
		c.ServiceName = "veracity"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
	c.CORS.SetDefaults()
}

// SetDefaults applies default values to the CORS config where unset.
func (c *CORSConfig) SetDefaults() {
	if !c.Enabled && len(c.AllowedOrigins) == 0 {
		c.Enabled = true
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "HEAD", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{
			"Origin",
			"Content-Type",
			"Content-Length",
			"Accept",
			"Accept-Encoding",
			"Cache-Control",
			"X-Requested-With",
			"X-Request-ID",
		}
	}
	if c.MaxAge == 0 {
		c.MaxAge = DefaultCORSMaxAge
	}
}
