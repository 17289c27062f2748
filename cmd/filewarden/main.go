package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"filewarden/internal/cache"
	"filewarden/internal/common"
	"filewarden/internal/config"
	"filewarden/internal/datastore"
	"filewarden/internal/engine"
	"filewarden/internal/eventbus"
	"filewarden/internal/logger"
	"filewarden/internal/models"
	"filewarden/internal/notifier"
	"filewarden/internal/provider"
	"filewarden/internal/watcher"

	"github.com/rs/zerolog"
)

// Exit codes for one-shot checks.
const (
	exitSafe       = 0
	exitSuspicious = 1
	exitDangerous  = 2
	exitFailure    = 1
)

func main() {
	os.Exit(run())
}

// run wires everything and returns the process exit code, so deferred
// cleanup (history DB, event bus) always executes before exit.
func run() int {
	configFile := flag.String("config", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	configFileAlias := flag.String("c", "", "Alias for -config")
	checkTarget := flag.String("check", "", "Analyze a single file path or URL, print the verdict as JSON, and exit.")
	flag.Parse()

	if *configFile == "" && *configFileAlias != "" {
		*configFile = *configFileAlias
	}

	cfgManager, err := config.NewManager(*configFile, zerolog.Nop())
	if err != nil {
		log.Printf("[FATAL] Could not load configuration: %v", err)
		return exitFailure
	}
	gCfg := cfgManager.Current()

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Printf("[FATAL] Could not initialize logger: %v", err)
		return exitFailure
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Error().Err(err).Msg("Configuration validation failed")
		return exitFailure
	}
	config.SanitizeConfig(gCfg, zLogger)

	app, err := buildApplication(gCfg, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to initialize")
		return exitFailure
	}
	defer app.close()

	if *checkTarget != "" {
		return app.runCheck(*checkTarget)
	}

	return app.runWatch(cfgManager, zLogger)
}

// application holds the wired components shared by both run modes.
type application struct {
	cfg     *config.GlobalConfig
	bus     *eventbus.Bus
	cache   *cache.VerdictCache
	engine  *engine.Engine
	history *datastore.HistoryStore
	logger  zerolog.Logger
}

func buildApplication(gCfg *config.GlobalConfig, zLogger zerolog.Logger) (*application, error) {
	bus := eventbus.NewBus(128, zLogger)
	verdictCache := cache.NewVerdictCache(gCfg.CacheConfig.Capacity, gCfg.CacheConfig.TTL(), zLogger)

	var history *datastore.HistoryStore
	if gCfg.HistoryConfig.Enabled {
		store, err := datastore.NewHistoryStore(gCfg.HistoryConfig.DatabasePath, gCfg.HistoryConfig.MaxEntries, zLogger)
		if err != nil {
			return nil, common.WrapError(err, "failed to open verdict history")
		}
		history = store
	}

	var reputation engine.ReputationLookup
	if client := provider.NewClient(gCfg.ProvidersConfig, gCfg.EngineConfig.RemoteTimeout(), zLogger); client != nil {
		reputation = client
	}

	var recorder engine.VerdictRecorder
	if history != nil {
		recorder = history
	}

	return &application{
		cfg:     gCfg,
		bus:     bus,
		cache:   verdictCache,
		engine:  engine.NewEngine(gCfg.EngineConfig, verdictCache, reputation, bus, recorder, zLogger),
		history: history,
		logger:  zLogger,
	}, nil
}

func (app *application) close() {
	if app.history != nil {
		_ = app.history.Close()
	}
	app.bus.Close()
}

// runCheck analyzes one target, prints the verdict as JSON, and maps its
// level to an exit code.
func (app *application) runCheck(raw string) int {
	target := models.NewFileTarget(raw)
	if looksLikeURL(raw) {
		target = models.NewURLTarget(raw)
	}

	verdict := app.engine.Analyze(context.Background(), target)

	output, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		app.logger.Error().Err(err).Msg("Failed to encode verdict")
		return exitSuspicious
	}
	fmt.Println(string(output))

	switch verdict.Level {
	case models.RiskSafe:
		return exitSafe
	case models.RiskDangerous:
		return exitDangerous
	default:
		return exitSuspicious
	}
}

// looksLikeURL decides whether a -check argument is a URL or a file path. An
// explicit scheme always wins; otherwise a bare domain-ish string that does
// not exist on disk is treated as a URL.
func looksLikeURL(raw string) bool {
	if strings.Contains(raw, "://") {
		return true
	}
	if common.FileExists(raw) {
		return false
	}
	return strings.Contains(raw, ".") && !strings.ContainsAny(raw, "/\\")
}

// runWatch monitors the configured directories until interrupted.
func (app *application) runWatch(cfgManager *config.Manager, zLogger zerolog.Logger) int {
	if !app.cfg.WatcherConfig.Enabled || len(app.cfg.WatcherConfig.Directories) == 0 {
		zLogger.Error().Msg("Watch mode requires watcher_config.enabled and at least one directory; or use -check for a one-shot analysis")
		return exitFailure
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := common.NewResourceLimiter(app.cfg.ResourceLimiterConfig.ToCommon(), zLogger)

	verdictNotifier := notifier.NewVerdictNotifier(os.Stdout, zLogger)
	verdictNotifier.Start(app.bus)

	watchService := watcher.NewService(app.cfg.WatcherConfig, app.bus, limiter, zLogger)
	if err := watchService.Start(ctx); err != nil {
		zLogger.Error().Err(err).Msg("Failed to start directory watcher")
		return exitFailure
	}

	if err := cfgManager.StartHotReload(func(updated *config.GlobalConfig) {
		var reputation engine.ReputationLookup
		if client := provider.NewClient(updated.ProvidersConfig, updated.EngineConfig.RemoteTimeout(), zLogger); client != nil {
			reputation = client
		}
		app.engine.UpdateSettings(updated.EngineConfig, reputation)
		zLogger.Info().Msg("Configuration reloaded; engine and provider settings apply to new analyses, watcher and cache sizing take effect on restart")
	}); err != nil {
		zLogger.Warn().Err(err).Msg("Config hot reload unavailable")
	}
	defer cfgManager.Stop()

	done := make(chan struct{})
	go func() {
		app.engine.ConsumeWatchEvents(ctx, watchService.Events())
		close(done)
	}()

	zLogger.Info().Strs("directories", app.cfg.WatcherConfig.Directories).Msg("Watching for new downloads")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	zLogger.Info().Msg("Shutting down")

	watchService.Stop()
	cancel()
	<-done
	verdictNotifier.Stop()
	return exitSafe
}
