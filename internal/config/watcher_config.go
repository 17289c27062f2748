package config

import "time"

// Browser temp extensions created while a download is still in progress.
var defaultTempExtensions = []string{".crdownload", ".part", ".partial", ".download", ".tmp"}

// WatcherConfig defines configuration for directory watching.
type WatcherConfig struct {
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Directories []string `json:"directories,omitempty" yaml:"directories,omitempty"`
	// PollIntervalMS is how often a detected file's size and mtime are
	// re-checked while stabilizing.
	PollIntervalMS int `json:"poll_interval_ms,omitempty" yaml:"poll_interval_ms,omitempty" validate:"omitempty,min=50"`
	// StableChecks is the number of consecutive unchanged polls required
	// before a file is considered fully written.
	StableChecks int `json:"stable_checks,omitempty" yaml:"stable_checks,omitempty" validate:"omitempty,min=1"`
	// StabilizeTimeoutSeconds abandons a file that never stops changing.
	StabilizeTimeoutSeconds int `json:"stabilize_timeout_seconds,omitempty" yaml:"stabilize_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	// TempExtensions are in-progress download suffixes to ignore entirely.
	TempExtensions []string `json:"temp_extensions,omitempty" yaml:"temp_extensions,omitempty"`
}

// NewDefaultWatcherConfig creates default watcher configuration
func NewDefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		Enabled:                 true,
		Directories:             []string{},
		PollIntervalMS:          500,
		StableChecks:            2,
		StabilizeTimeoutSeconds: 30,
		TempExtensions:          append([]string{}, defaultTempExtensions...),
	}
}

// PollInterval returns the stabilization poll interval as a duration.
func (wc WatcherConfig) PollInterval() time.Duration {
	if wc.PollIntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(wc.PollIntervalMS) * time.Millisecond
}

// StabilizeTimeout returns the stabilization deadline as a duration.
func (wc WatcherConfig) StabilizeTimeout() time.Duration {
	if wc.StabilizeTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(wc.StabilizeTimeoutSeconds) * time.Second
}
