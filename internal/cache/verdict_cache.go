package cache

import (
	"time"

	"filewarden/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

// VerdictCache keeps recent verdicts keyed by fingerprint so repeated
// analyses of identical content skip scoring and remote lookups entirely.
// Entries are dropped after the configured TTL or when capacity forces the
// least recently used entry out.
type VerdictCache struct {
	lru    *expirable.LRU[string, models.Verdict]
	ttl    time.Duration
	logger zerolog.Logger
}

// NewVerdictCache creates a verdict cache with the given capacity and TTL.
func NewVerdictCache(capacity int, ttl time.Duration, log zerolog.Logger) *VerdictCache {
	if capacity <= 0 {
		capacity = 1024
	}
	return &VerdictCache{
		lru:    expirable.NewLRU[string, models.Verdict](capacity, nil, ttl),
		ttl:    ttl,
		logger: log.With().Str("component", "VerdictCache").Logger(),
	}
}

// Get returns the cached verdict for a fingerprint, if a live entry exists.
// A stored zero-value verdict is treated as corrupt and evicted so the
// caller re-analyzes instead of serving an empty result.
func (c *VerdictCache) Get(fp models.Fingerprint) (models.Verdict, bool) {
	key := fp.Key()
	verdict, ok := c.lru.Get(key)
	if !ok {
		return models.Verdict{}, false
	}
	if verdict.Fingerprint.IsZero() {
		c.lru.Remove(key)
		c.logger.Warn().Str("key", key).Msg("Evicted corrupt cache entry")
		return models.Verdict{}, false
	}
	return verdict, true
}

// Put stores a verdict under its fingerprint. Unknown verdicts are never
// cached: a transient failure must not suppress a fresh analysis later.
func (c *VerdictCache) Put(verdict models.Verdict) {
	if verdict.Fingerprint.IsZero() || verdict.Level == models.RiskUnknown {
		return
	}
	c.lru.Add(verdict.Fingerprint.Key(), verdict)
}

// Invalidate removes a single fingerprint's entry.
func (c *VerdictCache) Invalidate(fp models.Fingerprint) {
	c.lru.Remove(fp.Key())
}

// Purge removes all entries.
func (c *VerdictCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of live entries.
func (c *VerdictCache) Len() int {
	return c.lru.Len()
}
