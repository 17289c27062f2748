package config

import (
	"path/filepath"
	"sync"
	"time"

	"filewarden/internal/common"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ReloadFunc receives the freshly loaded snapshot after a config file change.
type ReloadFunc func(*GlobalConfig)

// Manager holds the current configuration snapshot and optionally hot-reloads
// it when the config file changes on disk. Consumers always receive immutable
// snapshots: a reload builds a new GlobalConfig and swaps the pointer, it
// never mutates the one already handed out.
type Manager struct {
	mu         sync.RWMutex
	config     *GlobalConfig
	configPath string
	logger     zerolog.Logger
	watcher    *fsnotify.Watcher
	onReload   ReloadFunc
	stopChan   chan struct{}
	stopOnce   sync.Once
	// reloadDelay coalesces the burst of write events editors produce into a
	// single reload.
	reloadDelay time.Duration
}

// NewManager loads the initial configuration and returns a manager for it.
func NewManager(configPath string, log zerolog.Logger) (*Manager, error) {
	cfg, err := LoadGlobalConfig(configPath)
	if err != nil {
		return nil, common.WrapError(err, "failed to load initial configuration")
	}

	return &Manager{
		config:      cfg,
		configPath:  GetConfigPath(configPath),
		logger:      log.With().Str("component", "ConfigManager").Logger(),
		stopChan:    make(chan struct{}),
		reloadDelay: time.Second,
	}, nil
}

// Current returns the active configuration snapshot.
func (m *Manager) Current() *GlobalConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// StartHotReload begins watching the config file for changes. onReload is
// invoked with each new validated snapshot. No-op when no config file exists.
func (m *Manager) StartHotReload(onReload ReloadFunc) error {
	if m.configPath == "" {
		m.logger.Debug().Msg("No config file on disk, hot reload disabled")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return common.WrapError(err, "failed to create config file watcher")
	}
	// Watch the directory: editors replace files on save, which would drop a
	// watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(m.configPath)); err != nil {
		_ = watcher.Close()
		return common.WrapError(err, "failed to watch config directory")
	}

	m.watcher = watcher
	m.onReload = onReload
	go m.hotReloadLoop()

	m.logger.Info().Str("path", m.configPath).Msg("Config hot reload enabled")
	return nil
}

// Stop halts hot reloading.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		if m.watcher != nil {
			_ = m.watcher.Close()
		}
	})
}

func (m *Manager) hotReloadLoop() {
	reloadTimer := time.NewTimer(0)
	if !reloadTimer.Stop() {
		<-reloadTimer.C
	}

	for {
		select {
		case <-m.stopChan:
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Name == m.configPath && event.Op.Has(fsnotify.Write|fsnotify.Create) {
				reloadTimer.Reset(m.reloadDelay)
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Error().Err(err).Msg("Config file watcher error")

		case <-reloadTimer.C:
			m.reload()
		}
	}
}

func (m *Manager) reload() {
	cfg, err := LoadGlobalConfig(m.configPath)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to reload configuration, keeping previous snapshot")
		return
	}
	if err := ValidateConfig(cfg); err != nil {
		m.logger.Error().Err(err).Msg("Reloaded configuration is invalid, keeping previous snapshot")
		return
	}
	SanitizeConfig(cfg, m.logger)

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	m.logger.Info().Str("path", m.configPath).Msg("Configuration reloaded")
	if m.onReload != nil {
		m.onReload(cfg)
	}
}
