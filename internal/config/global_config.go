package config

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"filewarden/internal/common"
	"filewarden/internal/logger"

	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	LogConfig             logger.FileLogConfig  `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	EngineConfig          EngineConfig          `json:"engine_config,omitempty" yaml:"engine_config,omitempty"`
	CacheConfig           CacheConfig           `json:"cache_config,omitempty" yaml:"cache_config,omitempty"`
	WatcherConfig         WatcherConfig         `json:"watcher_config,omitempty" yaml:"watcher_config,omitempty"`
	ProvidersConfig       ProvidersConfig       `json:"providers_config,omitempty" yaml:"providers_config,omitempty"`
	HistoryConfig         HistoryConfig         `json:"history_config,omitempty" yaml:"history_config,omitempty"`
	ResourceLimiterConfig ResourceLimiterConfig `json:"resource_limiter_config,omitempty" yaml:"resource_limiter_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		LogConfig:             logger.NewDefaultFileLogConfig(),
		EngineConfig:          NewDefaultEngineConfig(),
		CacheConfig:           NewDefaultCacheConfig(),
		WatcherConfig:         NewDefaultWatcherConfig(),
		ProvidersConfig:       NewDefaultProvidersConfig(),
		HistoryConfig:         NewDefaultHistoryConfig(),
		ResourceLimiterConfig: NewDefaultResourceLimiterConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath and supports both
// YAML and JSON formats. A missing file yields the defaults, not an error.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		return cfg, nil
	}

	data, err := readConfigFile(filePath)
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	return cfg, nil
}

// parseConfigContent decodes YAML or JSON depending on the file extension.
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".json":
		return json.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}
