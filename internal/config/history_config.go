package config

// HistoryConfig defines configuration for the verdict history store.
type HistoryConfig struct {
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	DatabasePath string `json:"database_path,omitempty" yaml:"database_path,omitempty"`
	// MaxEntries caps the history table; older rows are pruned on insert.
	MaxEntries int `json:"max_entries,omitempty" yaml:"max_entries,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultHistoryConfig creates default history configuration
func NewDefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Enabled:      true,
		DatabasePath: "data/filewarden.db",
		MaxEntries:   100,
	}
}
