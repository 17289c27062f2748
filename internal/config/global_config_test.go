package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	assert.Equal(t, 4, cfg.EngineConfig.MaxConcurrentAnalyses)
	assert.Equal(t, 1024, cfg.CacheConfig.Capacity)
	assert.Equal(t, 3600, cfg.CacheConfig.TTLSeconds)
	assert.True(t, cfg.WatcherConfig.Enabled)
	assert.Empty(t, cfg.WatcherConfig.Directories)
	assert.False(t, cfg.ProvidersConfig.VirusTotal.Enabled)
	assert.False(t, cfg.ProvidersConfig.SafeBrowsing.Enabled)
	assert.True(t, cfg.HistoryConfig.Enabled)
	assert.Equal(t, 100, cfg.HistoryConfig.MaxEntries)
}

func TestLoadGlobalConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadGlobalConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, NewDefaultGlobalConfig().CacheConfig, cfg.CacheConfig)
}

func TestLoadGlobalConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
cache_config:
  capacity: 64
  ttl_seconds: 120
engine_config:
  max_concurrent_analyses: 2
  enable_remote: false
watcher_config:
  enabled: true
  directories:
    - ` + dir + `
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadGlobalConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.CacheConfig.Capacity)
	assert.Equal(t, 120, cfg.CacheConfig.TTLSeconds)
	assert.Equal(t, 2, cfg.EngineConfig.MaxConcurrentAnalyses)
	assert.False(t, cfg.EngineConfig.EnableRemote)
	assert.True(t, cfg.WatcherConfig.Enabled)
	assert.Equal(t, []string{dir}, cfg.WatcherConfig.Directories)
	// Sections absent from the file keep their defaults.
	assert.Equal(t, 100, cfg.HistoryConfig.MaxEntries)
}

func TestLoadGlobalConfig_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"cache_config": {"capacity": 16}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadGlobalConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.CacheConfig.Capacity)
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_config: [not a map"), 0644))

	_, err := LoadGlobalConfig(path)
	assert.Error(t, err)
}

func TestValidateConfig_Defaults(t *testing.T) {
	assert.NoError(t, ValidateConfig(NewDefaultGlobalConfig()))
}

func TestValidateConfig_BadLogLevel(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.LogConfig.LogLevel = "verbose"
	assert.Error(t, ValidateConfig(cfg))
}

func TestSanitizeConfig_DropsMissingDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefaultGlobalConfig()
	cfg.WatcherConfig.Directories = []string{dir, filepath.Join(dir, "missing")}

	warnings := SanitizeConfig(cfg, zerolog.Nop())

	assert.Equal(t, []string{dir}, cfg.WatcherConfig.Directories)
	assert.Len(t, warnings, 1)
}

func TestSanitizeConfig_DisablesKeylessProviders(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.ProvidersConfig.VirusTotal.Enabled = true
	cfg.ProvidersConfig.VirusTotal.APIKey = ""

	warnings := SanitizeConfig(cfg, zerolog.Nop())

	assert.False(t, cfg.ProvidersConfig.VirusTotal.Enabled)
	assert.Len(t, warnings, 1)
}

func TestManager_CurrentAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_config:\n  capacity: 8\n"), 0644))

	mgr, err := NewManager(path, zerolog.Nop())
	require.NoError(t, err)
	defer mgr.Stop()

	assert.Equal(t, 8, mgr.Current().CacheConfig.Capacity)

	require.NoError(t, os.WriteFile(path, []byte("cache_config:\n  capacity: 32\n"), 0644))
	mgr.reload()
	assert.Equal(t, 32, mgr.Current().CacheConfig.Capacity)
}
