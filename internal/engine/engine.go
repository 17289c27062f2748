// Package engine orchestrates a full analysis: fingerprint, cached verdict
// lookup, heuristic scoring, optional reputation lookup, and publication of
// the final verdict. Analyze never returns an error; every failure mode is
// folded into the verdict itself.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"filewarden/internal/cache"
	"filewarden/internal/config"
	"filewarden/internal/eventbus"
	"filewarden/internal/fingerprint"
	"filewarden/internal/heuristics"
	"filewarden/internal/models"

	"github.com/rs/zerolog"
)

// Signal names the engine itself emits. These carry zero severity: they
// explain an Unknown or degraded verdict without inflating the risk level,
// and they never count as evidence.
const (
	SignalContentUnreadable  = "content_unreadable"
	SignalRemoteLookupFailed = "remote_lookup_failed"
	SignalAnalysisCancelled  = "analysis_cancelled"
	SignalNoEvidence         = "no_evidence"
)

// ReputationLookup is the remote half of an analysis. *provider.Client
// satisfies it; tests substitute their own.
type ReputationLookup interface {
	Lookup(ctx context.Context, fp models.Fingerprint) ([]models.Signal, error)
}

// VerdictRecorder persists verdicts for later inspection.
type VerdictRecorder interface {
	Record(verdict models.Verdict) error
}

// settings is the reloadable half of the engine's configuration. A config
// file change swaps in a new value; in-flight analyses keep the snapshot
// they started with.
type settings struct {
	cfg        config.EngineConfig
	reputation ReputationLookup
}

// Engine runs analyses. All dependencies except the fingerprinter, scorer
// and cache are optional: a nil reputation client disables remote lookups, a
// nil bus disables publication, a nil recorder disables history.
type Engine struct {
	settings      atomic.Pointer[settings]
	fingerprinter *fingerprint.Fingerprinter
	scorer        *heuristics.Scorer
	cache         *cache.VerdictCache
	bus           *eventbus.Bus
	recorder      VerdictRecorder
	mutexes       *fingerprintMutexManager
	sem           chan struct{}
	logger        zerolog.Logger
}

// NewEngine wires an analysis engine.
func NewEngine(
	cfg config.EngineConfig,
	verdictCache *cache.VerdictCache,
	reputation ReputationLookup,
	bus *eventbus.Bus,
	recorder VerdictRecorder,
	log zerolog.Logger,
) *Engine {
	workers := cfg.MaxConcurrentAnalyses
	if workers <= 0 {
		workers = 4
	}
	e := &Engine{
		fingerprinter: fingerprint.NewFingerprinter(log),
		scorer:        heuristics.NewScorer(),
		cache:         verdictCache,
		bus:           bus,
		recorder:      recorder,
		mutexes:       newFingerprintMutexManager(),
		sem:           make(chan struct{}, workers),
		logger:        log.With().Str("component", "Engine").Logger(),
	}
	e.settings.Store(&settings{cfg: cfg, reputation: reputation})
	return e
}

// UpdateSettings swaps in reloaded engine configuration and a matching
// reputation client. New analyses pick the new snapshot up immediately; the
// worker pool size stays as built until restart.
func (e *Engine) UpdateSettings(cfg config.EngineConfig, reputation ReputationLookup) {
	e.settings.Store(&settings{cfg: cfg, reputation: reputation})
	e.logger.Info().Bool("remote_enabled", cfg.EnableRemote).Msg("Engine settings updated")
}

// Analyze produces a verdict for the target. It never returns an error:
// unreadable content or cancellation yield an Unknown verdict whose signals
// explain what happened, and remote failures degrade to a heuristics-only
// verdict with a zero-severity marker signal.
func (e *Engine) Analyze(ctx context.Context, target models.Target) models.Verdict {
	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		return e.cancelledVerdict(models.Fingerprint{})
	}

	fp, err := e.fingerprinter.Fingerprint(target)
	if err != nil {
		e.logger.Warn().Err(err).Str("target", target.Raw).Msg("Fingerprinting failed")
		return unknownVerdict(models.Fingerprint{Kind: target.Kind}, models.Signal{
			Name:     SignalContentUnreadable,
			Severity: models.SeverityInfo,
			Reason:   "the content could not be read for analysis",
		})
	}

	// Identical concurrent analyses serialize here; the second one through
	// finds the first one's verdict in the cache.
	mu := e.mutexes.acquire(fp.Key())
	mu.Lock()
	defer func() {
		mu.Unlock()
		e.mutexes.release(mu)
	}()

	if verdict, ok := e.cache.Get(fp); ok {
		e.logger.Debug().Str("key", fp.Key()).Msg("Verdict served from cache")
		return verdict
	}

	verdict, ok := e.analyzeFresh(ctx, target, fp)
	if !ok {
		return verdict
	}

	e.cache.Put(verdict)
	e.publish(verdict)
	e.record(verdict)
	return verdict
}

// analyzeFresh runs scoring and the optional remote lookup. The bool is
// false when the verdict must not be cached or published.
func (e *Engine) analyzeFresh(ctx context.Context, target models.Target, fp models.Fingerprint) (models.Verdict, bool) {
	st := e.settings.Load()

	var meta *heuristics.FileMetadata
	if target.Kind == models.TargetKindFile {
		m, err := heuristics.CollectFileMetadata(target.Raw)
		if err != nil {
			e.logger.Warn().Err(err).Str("path", target.Raw).Msg("File metadata collection failed")
			return unknownVerdict(fp, models.Signal{
				Name:     SignalContentUnreadable,
				Severity: models.SeverityInfo,
				Reason:   "the file vanished or became unreadable during analysis",
			}), false
		}
		meta = &m
	}

	// Evidence counts only what heuristics and providers actually said about
	// the target. Marker signals the engine appends do not count; a verdict
	// with zero evidence must stay Unknown, never drift to Safe.
	signals := e.scorer.Score(target, meta)
	evidence := len(signals)

	sourceRemote := false
	if st.cfg.EnableRemote && st.reputation != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, st.cfg.RemoteTimeout())
		remoteSignals, err := st.reputation.Lookup(lookupCtx, fp)
		cancel()
		switch {
		case err != nil:
			signals = append(signals, models.Signal{
				Name:     SignalRemoteLookupFailed,
				Severity: models.SeverityInfo,
				Reason:   "reputation services could not be reached, verdict is based on local analysis only",
			})
		default:
			evidence += len(remoteSignals)
			sourceRemote = len(remoteSignals) > 0
			signals = append(signals, remoteSignals...)
		}
	}

	if ctx.Err() != nil {
		return e.cancelledVerdict(fp), false
	}

	if evidence == 0 {
		if len(signals) == 0 {
			signals = append(signals, models.Signal{
				Name:     SignalNoEvidence,
				Severity: models.SeverityInfo,
				Reason:   "nothing about this stood out locally and no reputation service was available to confirm it",
			})
		}
		e.logger.Info().Str("key", fp.Key()).Msg("No evidence collected, verdict is Unknown")
		return unknownVerdict(fp, signals...), true
	}

	verdict := models.NewVerdict(fp, signals, sourceRemote)
	e.logger.Info().
		Str("key", fp.Key()).
		Str("level", verdict.Level.String()).
		Int("signals", len(verdict.Signals)).
		Msg("Analysis complete")
	return verdict, true
}

// ConsumeWatchEvents analyzes stabilized files from the watcher until the
// channel closes or the context is cancelled. A fixed pool of workers sized
// to the engine's concurrency limit drains the channel.
func (e *Engine) ConsumeWatchEvents(ctx context.Context, events <-chan models.WatchEvent) {
	var wg sync.WaitGroup
	for i := 0; i < cap(e.sem); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case evt, ok := <-events:
					if !ok {
						return
					}
					e.Analyze(ctx, models.NewFileTarget(evt.Path))
				}
			}
		}()
	}
	wg.Wait()
}

func (e *Engine) cancelledVerdict(fp models.Fingerprint) models.Verdict {
	return unknownVerdict(fp, models.Signal{
		Name:     SignalAnalysisCancelled,
		Severity: models.SeverityInfo,
		Reason:   "analysis was cancelled before it completed",
	})
}

// unknownVerdict builds an Unknown verdict carrying only explanatory
// signals. It is timestamped like any other verdict.
func unknownVerdict(fp models.Fingerprint, signals ...models.Signal) models.Verdict {
	return models.Verdict{
		Fingerprint: fp,
		Level:       models.RiskUnknown,
		Signals:     signals,
		Timestamp:   time.Now(),
	}
}

func (e *Engine) publish(verdict models.Verdict) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(models.TopicVerdicts, models.NewVerdictEvent(verdict))
}

func (e *Engine) record(verdict models.Verdict) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(verdict); err != nil {
		e.logger.Warn().Err(err).Msg("Failed to persist verdict to history")
	}
}
