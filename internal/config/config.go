package config

import (
	"time"
)

// Default configuration values.
const (
	defaultServiceName        = "veracity"
	defaultServiceVersion     = "1.0.0"
	defaultServicePort        = 8085
	defaultArtifactPath       = "models/veracity_linear.json"
	defaultTopFeatures        = 10
	defaultCanonicalLanguage  = "en"
	defaultDetectConfidence   = 0.80
	defaultTranslateTimeout   = 5 * time.Second
	defaultSearchProvider     = "serpapi"
	defaultSearchTimeout      = 8 * time.Second
	defaultSearchMaxResults   = 10
	defaultSearchTopMatches   = 5
	defaultQueryTerms         = 8
	defaultQueryMaxLength     = 256
	defaultSearchRPS          = 5
	defaultExplainProvider    = "gemini"
	defaultExplainTimeout     = 10 * time.Second
	defaultGeminiModel        = "gemini-2.0-flash"
	defaultAnthropicModel     = "claude-3-5-haiku-latest"
	defaultExplainMaxTokens   = 512
	defaultMaxRationaleChars  = 1200
	defaultMaxPromptChars     = 4000
	defaultExplainRPS         = 2
	defaultHeadlineWeight     = 0.15
	defaultUncertainBelow     = 0.60
	defaultCacheTTL           = time.Hour
	defaultCacheMaxEntries    = 1024
	defaultIngestTimeout      = 10 * time.Second
	defaultIngestMaxChars     = 8000
	defaultIngestUserAgent    = "veracity/1.0"
	defaultLogLevel           = "info"
	defaultLogFormat          = "json"
	defaultHTTPReadTimeoutSec = 30
)

// Config holds all configuration for the veracity service.
type Config struct {
	Service        ServiceConfig        `yaml:"service"`
	Logging        LoggingConfig        `yaml:"logging"`
	Classifier     ClassifierConfig     `yaml:"classifier"`
	Normalization  NormalizationConfig  `yaml:"normalization"`
	CrossReference CrossReferenceConfig `yaml:"cross_reference"`
	Explanation    ExplanationConfig    `yaml:"explanation"`
	Aggregation    AggregationConfig    `yaml:"aggregation"`
	Cache          CacheConfig          `yaml:"cache"`
	Ingest         IngestConfig         `yaml:"ingest"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Port         int           `env:"VERACITY_PORT" yaml:"port"`
	Debug        bool          `env:"APP_DEBUG"     yaml:"debug"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// ClassifierConfig holds the local classifier settings.
type ClassifierConfig struct {
	ArtifactPath      string `env:"MODEL_ARTIFACT_PATH" yaml:"artifact_path"`
	TopFeatures       int    `yaml:"top_features"`
	CanonicalLanguage string `yaml:"canonical_language"`
}

// NormalizationConfig holds language detection and translation settings.
// Translation is optional: with no endpoint configured the normalizer is
// detect-only and passes text through unchanged.
type NormalizationConfig struct {
	DetectConfidence float64       `yaml:"detect_confidence"`
	TranslateURL     string        `env:"TRANSLATE_URL"     yaml:"translate_url"`
	TranslateAPIKey  string        `env:"TRANSLATE_API_KEY" yaml:"translate_api_key"`
	Timeout          time.Duration `yaml:"timeout"`
}

// CrossReferenceConfig holds headline search settings.
type CrossReferenceConfig struct {
	Provider          string        `env:"SEARCH_PROVIDER" yaml:"provider"`
	APIKey            string        `env:"SEARCH_API_KEY"  yaml:"api_key"`
	Endpoint          string        `yaml:"endpoint"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxResults        int           `yaml:"max_results"`
	TopMatches        int           `yaml:"top_matches"`
	QueryTerms        int           `yaml:"query_terms"`
	QueryMaxLength    int           `yaml:"query_max_length"`
	RequestsPerSecond int           `yaml:"requests_per_second"`
}

// ExplanationConfig holds generative explanation settings.
type ExplanationConfig struct {
	Provider          string        `env:"EXPLAIN_PROVIDER" yaml:"provider"`
	APIKey            string        `env:"EXPLAIN_API_KEY"  yaml:"api_key"`
	Endpoint          string        `yaml:"endpoint"`
	GeminiModel       string        `yaml:"gemini_model"`
	AnthropicModel    string        `yaml:"anthropic_model"`
	MaxTokens         int           `yaml:"max_tokens"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRationaleChars int           `yaml:"max_rationale_chars"`
	MaxPromptChars    int           `yaml:"max_prompt_chars"`
	RequestsPerSecond int           `yaml:"requests_per_second"`
}

// AggregationConfig holds the confidence weighting policy.
type AggregationConfig struct {
	HeadlineWeight float64 `yaml:"headline_weight"`
	UncertainBelow float64 `yaml:"uncertain_below"`
}

// CacheConfig holds verdict cache settings. The zero value is an enabled
// cache with defaults applied.
type CacheConfig struct {
	Disabled   bool          `yaml:"disabled"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// IngestConfig holds URL article extraction settings. The zero value is an
// enabled extractor with defaults applied.
type IngestConfig struct {
	Disabled  bool          `yaml:"disabled"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxChars  int           `yaml:"max_chars"`
	UserAgent string        `yaml:"user_agent"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return loadWithDefaults[Config](path, setDefaults)
}

// Default returns the configuration with defaults and environment overrides
// applied, for running without a config file.
func Default() *Config {
	var cfg Config
	_ = loadEnvFiles()
	setDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setLoggingDefaults(&cfg.Logging)
	setClassifierDefaults(&cfg.Classifier)
	setNormalizationDefaults(&cfg.Normalization)
	setCrossReferenceDefaults(&cfg.CrossReference)
	setExplanationDefaults(&cfg.Explanation)
	setAggregationDefaults(&cfg.Aggregation)
	setCacheDefaults(&cfg.Cache)
	setIngestDefaults(&cfg.Ingest)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = defaultHTTPReadTimeoutSec * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = defaultHTTPReadTimeoutSec * time.Second
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

func setClassifierDefaults(c *ClassifierConfig) {
	if c.ArtifactPath == "" {
		c.ArtifactPath = defaultArtifactPath
	}
	if c.TopFeatures == 0 {
		c.TopFeatures = defaultTopFeatures
	}
	if c.CanonicalLanguage == "" {
		c.CanonicalLanguage = defaultCanonicalLanguage
	}
}

func setNormalizationDefaults(n *NormalizationConfig) {
	if n.DetectConfidence == 0 {
		n.DetectConfidence = defaultDetectConfidence
	}
	if n.Timeout == 0 {
		n.Timeout = defaultTranslateTimeout
	}
}

func setCrossReferenceDefaults(c *CrossReferenceConfig) {
	if c.Provider == "" {
		c.Provider = defaultSearchProvider
	}
	if c.Timeout == 0 {
		c.Timeout = defaultSearchTimeout
	}
	if c.MaxResults == 0 {
		c.MaxResults = defaultSearchMaxResults
	}
	if c.TopMatches == 0 {
		c.TopMatches = defaultSearchTopMatches
	}
	if c.QueryTerms == 0 {
		c.QueryTerms = defaultQueryTerms
	}
	if c.QueryMaxLength == 0 {
		c.QueryMaxLength = defaultQueryMaxLength
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = defaultSearchRPS
	}
}

func setExplanationDefaults(e *ExplanationConfig) {
	if e.Provider == "" {
		e.Provider = defaultExplainProvider
	}
	if e.GeminiModel == "" {
		e.GeminiModel = defaultGeminiModel
	}
	if e.AnthropicModel == "" {
		e.AnthropicModel = defaultAnthropicModel
	}
	if e.MaxTokens == 0 {
		e.MaxTokens = defaultExplainMaxTokens
	}
	if e.Timeout == 0 {
		e.Timeout = defaultExplainTimeout
	}
	if e.MaxRationaleChars == 0 {
		e.MaxRationaleChars = defaultMaxRationaleChars
	}
	if e.MaxPromptChars == 0 {
		e.MaxPromptChars = defaultMaxPromptChars
	}
	if e.RequestsPerSecond == 0 {
		e.RequestsPerSecond = defaultExplainRPS
	}
}

func setAggregationDefaults(a *AggregationConfig) {
	if a.HeadlineWeight == 0 {
		a.HeadlineWeight = defaultHeadlineWeight
	}
	if a.UncertainBelow == 0 {
		a.UncertainBelow = defaultUncertainBelow
	}
}

func setCacheDefaults(c *CacheConfig) {
	if c.TTL == 0 {
		c.TTL = defaultCacheTTL
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = defaultCacheMaxEntries
	}
}

func setIngestDefaults(i *IngestConfig) {
	if i.Timeout == 0 {
		i.Timeout = defaultIngestTimeout
	}
	if i.MaxChars == 0 {
		i.MaxChars = defaultIngestMaxChars
	}
	if i.UserAgent == "" {
		i.UserAgent = defaultIngestUserAgent
	}
}
