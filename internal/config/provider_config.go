package config

import "time"

// Default reputation provider endpoints.
const (
	DefaultVirusTotalEndpoint   = "https://www.virustotal.com/api/v3"
	DefaultSafeBrowsingEndpoint = "https://safebrowsing.googleapis.com/v4"
)

// ProviderSettings is the per-provider configuration snapshot. The reputation
// client holds this read-only; a config reload produces a new snapshot rather
// than mutating shared state.
type ProviderSettings struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	APIKey         string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Endpoint       string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" validate:"omitempty,url"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1"`
}

// Timeout returns the per-call timeout as a duration.
func (ps ProviderSettings) Timeout() time.Duration {
	if ps.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(ps.TimeoutSeconds) * time.Second
}

// ProvidersConfig enumerates the supported reputation providers. Adding a
// provider means adding a field here and a variant in the provider package,
// not changing the engine.
type ProvidersConfig struct {
	VirusTotal   ProviderSettings `json:"virustotal,omitempty" yaml:"virustotal,omitempty"`
	SafeBrowsing ProviderSettings `json:"safe_browsing,omitempty" yaml:"safe_browsing,omitempty"`
}

// NewDefaultProvidersConfig creates default provider configuration. Providers
// start disabled; they require an API key to be useful.
func NewDefaultProvidersConfig() ProvidersConfig {
	return ProvidersConfig{
		VirusTotal: ProviderSettings{
			Enabled:        false,
			Endpoint:       DefaultVirusTotalEndpoint,
			TimeoutSeconds: 10,
		},
		SafeBrowsing: ProviderSettings{
			Enabled:        false,
			Endpoint:       DefaultSafeBrowsingEndpoint,
			TimeoutSeconds: 10,
		},
	}
}

// AnyEnabled reports whether at least one provider is enabled.
func (pc ProvidersConfig) AnyEnabled() bool {
	return pc.VirusTotal.Enabled || pc.SafeBrowsing.Enabled
}
