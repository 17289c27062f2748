package config

import "time"

// CacheConfig defines configuration for the verdict cache. The TTL also caps
// how often a given digest or URL is disclosed to reputation providers.
type CacheConfig struct {
	Capacity   int `json:"capacity,omitempty" yaml:"capacity,omitempty" validate:"omitempty,min=1"`
	TTLSeconds int `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultCacheConfig creates default cache configuration
func NewDefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Capacity:   1024,
		TTLSeconds: 3600,
	}
}

// TTL returns the entry time-to-live as a duration.
func (cc CacheConfig) TTL() time.Duration {
	if cc.TTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(cc.TTLSeconds) * time.Second
}
