// Package cache memoizes verdicts by fingerprint so repeated analyses of
// the same text and flags skip the pipeline entirely.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/nordlys-media/veracity/internal/domain"
	"github.com/nordlys-media/veracity/internal/telemetry"
)

// Defaults applied by New when Config fields are zero.
const (
	DefaultTTL        = time.Hour
	DefaultMaxEntries = 1024
)

// Config controls cache retention.
type Config struct {
	Disabled   bool          `yaml:"disabled"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// VerdictCache stores immutable verdicts keyed by fingerprint, evicting
// by recency and TTL. A nil *VerdictCache is valid and never hits, which
// is how a disabled cache degrades.
type VerdictCache struct {
	lru       *expirable.LRU[string, domain.Verdict]
	telemetry *telemetry.Provider
}

// New creates a VerdictCache, or nil when the config disables caching.
func New(cfg Config, tp *telemetry.Provider) *VerdictCache {
	if cfg.Disabled {
		return nil
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}

	onEvict := func(string, domain.Verdict) {
		if tp != nil {
			tp.RecordCacheEviction()
		}
	}
	return &VerdictCache{
		lru:       expirable.NewLRU[string, domain.Verdict](cfg.MaxEntries, onEvict, cfg.TTL),
		telemetry: tp,
	}
}

// Get looks up a verdict by fingerprint. A hit returns a copy with only
// the CacheHit flag flipped true; the stored entry is never mutated.
func (c *VerdictCache) Get(fingerprint string) (domain.Verdict, bool) {
	if c == nil {
		return domain.Verdict{}, false
	}

	v, ok := c.lru.Get(fingerprint)
	if c.telemetry != nil {
		if ok {
			c.telemetry.RecordCacheHit()
		} else {
			c.telemetry.RecordCacheMiss()
		}
	}
	if !ok {
		return domain.Verdict{}, false
	}
	return v.WithCacheHit(), true
}

// Put stores a freshly aggregated verdict under its fingerprint.
func (c *VerdictCache) Put(v domain.Verdict) {
	if c == nil {
		return
	}
	c.lru.Add(v.Fingerprint, v)
	if c.telemetry != nil {
		c.telemetry.SetCacheEntries(c.lru.Len())
	}
}

// Len reports the number of live entries.
func (c *VerdictCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge drops every entry.
func (c *VerdictCache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
	if c.telemetry != nil {
		c.telemetry.SetCacheEntries(0)
	}
}
