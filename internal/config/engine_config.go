package config

import "time"

// EngineConfig defines configuration for the risk engine.
type EngineConfig struct {
	// MaxConcurrentAnalyses bounds the worker pool consuming watcher events.
	MaxConcurrentAnalyses int `json:"max_concurrent_analyses,omitempty" yaml:"max_concurrent_analyses,omitempty" validate:"omitempty,min=1"`
	// EnableRemote allows reputation-provider lookups. When false the engine
	// produces local-only verdicts.
	EnableRemote bool `json:"enable_remote" yaml:"enable_remote"`
	// RemoteTimeoutSeconds bounds the total time spent waiting for all
	// providers within a single analysis.
	RemoteTimeoutSeconds int `json:"remote_timeout_seconds,omitempty" yaml:"remote_timeout_seconds,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultEngineConfig creates default engine configuration
func NewDefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxConcurrentAnalyses: 4,
		EnableRemote:          true,
		RemoteTimeoutSeconds:  15,
	}
}

// RemoteTimeout returns the remote lookup budget as a duration.
func (ec EngineConfig) RemoteTimeout() time.Duration {
	if ec.RemoteTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(ec.RemoteTimeoutSeconds) * time.Second
}
