// Package watcher turns raw filesystem notifications into stabilized file
// events. Downloads arrive in bursts of partial writes, often under a
// temporary name; the watcher debounces each file until its size and mtime
// stop changing and emits exactly one event per settled file.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"filewarden/internal/common"
	"filewarden/internal/config"
	"filewarden/internal/eventbus"
	"filewarden/internal/models"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Service watches configured directories for new files.
type Service struct {
	cfg      config.WatcherConfig
	bus      *eventbus.Bus
	limiter  *common.ResourceLimiter
	logger   zerolog.Logger
	events   chan models.WatchEvent
	fsw      *fsnotify.Watcher
	tracked  map[string]*tracking
	mu       sync.Mutex
	stopOnce sync.Once
	done     chan struct{}
}

// NewService creates a watcher service. bus and limiter may be nil.
func NewService(cfg config.WatcherConfig, bus *eventbus.Bus, limiter *common.ResourceLimiter, log zerolog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		bus:     bus,
		limiter: limiter,
		logger:  log.With().Str("component", "DirectoryWatcher").Logger(),
		events:  make(chan models.WatchEvent, 128),
		tracked: make(map[string]*tracking),
		done:    make(chan struct{}),
	}
}

// Events returns the channel of stabilized file events. It is closed when
// the service stops.
func (s *Service) Events() <-chan models.WatchEvent {
	return s.events
}

// Start registers all configured directories and begins watching. Existing
// files are snapshotted and not reported; only files that appear afterwards
// produce events.
func (s *Service) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return common.WrapError(err, "failed to create filesystem watcher")
	}
	s.fsw = fsw

	var watched []string
	for _, dir := range s.cfg.Directories {
		expanded := config.ExpandHome(dir)
		if err := fsw.Add(expanded); err != nil {
			s.logger.Error().Err(err).Str("directory", expanded).Msg("Failed to watch directory")
			s.publishLifecycle(expanded, models.WatcherDegraded, "directory could not be watched")
			continue
		}
		watched = append(watched, expanded)
		s.publishLifecycle(expanded, models.WatcherStarted, "")
		s.logger.Info().Str("directory", expanded).Msg("Watching directory")
	}
	if len(watched) == 0 {
		_ = fsw.Close()
		return common.NewError("no watchable directories configured")
	}

	go s.run(ctx, watched)
	return nil
}

// Stop halts watching and closes the events channel.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

func (s *Service) run(ctx context.Context, watched []string) {
	defer func() {
		_ = s.fsw.Close()
		for _, dir := range watched {
			s.publishLifecycle(dir, models.WatcherStopped, "")
		}
		close(s.events)
	}()

	ticker := time.NewTicker(s.cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return

		case event, ok := <-s.fsw.Events:
			if !ok {
				return
			}
			s.handleNotification(event)

		case err, ok := <-s.fsw.Errors:
			if !ok {
				return
			}
			s.logger.Error().Err(err).Msg("Filesystem watcher error")
			for _, dir := range watched {
				s.publishLifecycle(dir, models.WatcherDegraded, "filesystem notifications failed")
			}

		case now := <-ticker.C:
			s.pollTracked(now)
		}
	}
}

func (s *Service) handleNotification(event fsnotify.Event) {
	path := event.Name

	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		s.mu.Lock()
		if _, ok := s.tracked[path]; ok {
			delete(s.tracked, path)
			s.logger.Debug().Str("path", path).Msg("File removed before stabilizing, dropped")
		}
		s.mu.Unlock()
		return

	case !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write):
		return
	}

	if s.isTempFile(path) {
		// An in-progress download. The rename to its final name will arrive
		// as a separate Create event.
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tracked[path]; ok {
		t.touch()
		return
	}
	s.tracked[path] = newTracking(path, time.Now())
	s.logger.Debug().Str("path", path).Msg("New file detected, waiting for it to settle")
}

func (s *Service) pollTracked(now time.Time) {
	if s.limiter != nil && s.limiter.OverLimit() {
		// Under memory pressure tracked files stay queued; they will be
		// polled again on a later tick.
		s.logger.Warn().Msg("Memory pressure, deferring file stability checks")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for path, t := range s.tracked {
		info, err := os.Stat(path)
		if err != nil {
			delete(s.tracked, path)
			s.logger.Debug().Str("path", path).Msg("File vanished before stabilizing, dropped")
			continue
		}

		if t.expired(now, s.cfg.StabilizeTimeout()) {
			delete(s.tracked, path)
			s.logger.Warn().Str("path", path).Msg("File never settled within the timeout, dropped")
			continue
		}

		if t.poll(info, s.cfg.StableChecks) {
			evt := models.WatchEvent{Path: path, DetectedAt: t.detectedAt, Stabilized: true}
			select {
			case s.events <- evt:
				delete(s.tracked, path)
				s.logger.Info().Str("path", path).Msg("File settled, queued for analysis")
			default:
				// Consumer is behind. Keep tracking and retry next tick.
				t.stableCount = s.cfg.StableChecks
			}
		}
	}
}

func (s *Service) isTempFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, tempExt := range s.cfg.TempExtensions {
		if ext == tempExt {
			return true
		}
	}
	return false
}

func (s *Service) publishLifecycle(dir string, state models.WatcherState, reason string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(models.TopicWatcher, models.WatcherLifecycleEvent{
		Directory: dir,
		State:     state,
		Reason:    reason,
		Timestamp: time.Now(),
	})
}
