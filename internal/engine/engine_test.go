package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"filewarden/internal/cache"
	"filewarden/internal/common"
	"filewarden/internal/config"
	"filewarden/internal/eventbus"
	"filewarden/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReputation struct {
	calls   atomic.Int64
	signals []models.Signal
	err     error
	delay   time.Duration
}

func (c *countingReputation) Lookup(ctx context.Context, fp models.Fingerprint) ([]models.Signal, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, common.NewProviderError("stub", "deadline", common.ErrProviderTimeout)
		}
	}
	return c.signals, c.err
}

type memoryRecorder struct {
	mu       sync.Mutex
	verdicts []models.Verdict
}

func (m *memoryRecorder) Record(v models.Verdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts = append(m.verdicts, v)
	return nil
}

func (m *memoryRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.verdicts)
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestEngine(reputation ReputationLookup, bus *eventbus.Bus, recorder VerdictRecorder) *Engine {
	cfg := config.NewDefaultEngineConfig()
	return NewEngine(cfg, cache.NewVerdictCache(64, time.Minute, zerolog.Nop()), reputation, bus, recorder, zerolog.Nop())
}

func TestEngine_AnalyzeFileProducesVerdict(t *testing.T) {
	path := writeTestFile(t, "invoice.pdf.exe", "MZ fake executable")
	e := newTestEngine(nil, nil, nil)

	verdict := e.Analyze(context.Background(), models.NewFileTarget(path))

	assert.Equal(t, models.RiskDangerous, verdict.Level)
	assert.NotEmpty(t, verdict.Fingerprint.Digest)
	assert.False(t, verdict.SourceRemote)
	assert.NotEmpty(t, verdict.Signals)
}

func TestEngine_CacheHitSkipsRemote(t *testing.T) {
	path := writeTestFile(t, "report.pdf", "plain document content")
	reputation := &countingReputation{}
	e := newTestEngine(reputation, nil, nil)

	first := e.Analyze(context.Background(), models.NewFileTarget(path))
	second := e.Analyze(context.Background(), models.NewFileTarget(path))

	assert.Equal(t, first.Level, second.Level)
	assert.Equal(t, first.Timestamp, second.Timestamp)
	assert.Equal(t, int64(1), reputation.calls.Load())
}

func TestEngine_ConcurrentIdenticalAnalysesCoalesce(t *testing.T) {
	path := writeTestFile(t, "report.pdf", "plain document content")
	reputation := &countingReputation{delay: 50 * time.Millisecond}
	e := newTestEngine(reputation, nil, nil)
	target := models.NewFileTarget(path)

	const workers = 4
	var wg sync.WaitGroup
	verdicts := make([]models.Verdict, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			verdicts[i] = e.Analyze(context.Background(), target)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), reputation.calls.Load())
	for i := 1; i < workers; i++ {
		assert.Equal(t, verdicts[0].Level, verdicts[i].Level)
	}
}

func TestEngine_RemoteFailureDegradesGracefully(t *testing.T) {
	path := writeTestFile(t, "notes.txt", "harmless text")
	reputation := &countingReputation{err: common.NewProviderError("stub", "down", common.ErrProviderUnavailable)}
	e := newTestEngine(reputation, nil, nil)

	verdict := e.Analyze(context.Background(), models.NewFileTarget(path))

	assert.NotEqual(t, models.RiskUnknown, verdict.Level)
	var found bool
	for _, s := range verdict.Signals {
		if s.Name == SignalRemoteLookupFailed {
			found = true
			assert.Equal(t, models.SeverityInfo, s.Severity)
		}
	}
	assert.True(t, found, "expected a remote_lookup_failed marker signal")
}

func TestEngine_RemoteFailureVerdictNotCached(t *testing.T) {
	path := writeTestFile(t, "notes.txt", "harmless text")
	reputation := &countingReputation{err: common.NewProviderError("stub", "down", common.ErrProviderUnavailable)}
	e := newTestEngine(reputation, nil, nil)
	target := models.NewFileTarget(path)

	first := e.Analyze(context.Background(), target)
	// Heuristics-only verdicts from degraded lookups still cache; the level
	// was legitimately derived. Only Unknown verdicts stay out of the cache.
	second := e.Analyze(context.Background(), target)

	assert.Equal(t, first.Level, second.Level)
	assert.Equal(t, int64(1), reputation.calls.Load())
}

func TestEngine_RemoteTimeoutBoundsLatency(t *testing.T) {
	path := writeTestFile(t, "notes.txt", "harmless text")
	reputation := &countingReputation{delay: 10 * time.Second}
	e := newTestEngine(reputation, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	verdict := e.Analyze(ctx, models.NewFileTarget(path))
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second)
	assert.Equal(t, models.RiskUnknown, verdict.Level)
}

func TestEngine_URLWithNoFindingsAndFailedRemoteIsUnknown(t *testing.T) {
	reputation := &countingReputation{err: common.NewProviderError("stub", "down", common.ErrProviderUnavailable)}
	e := newTestEngine(reputation, nil, nil)

	verdict := e.Analyze(context.Background(), models.NewURLTarget("https://example.org"))

	assert.Equal(t, models.RiskUnknown, verdict.Level)
	require.NotEmpty(t, verdict.Signals)
	assert.Equal(t, SignalRemoteLookupFailed, verdict.Signals[0].Name)
	assert.Equal(t, models.SeverityInfo, verdict.Signals[0].Severity)
}

func TestEngine_URLWithNoFindingsAndNoRemoteIsUnknown(t *testing.T) {
	e := newTestEngine(nil, nil, nil)

	verdict := e.Analyze(context.Background(), models.NewURLTarget("https://example.org"))

	assert.Equal(t, models.RiskUnknown, verdict.Level)
	require.Len(t, verdict.Signals, 1)
	assert.Equal(t, SignalNoEvidence, verdict.Signals[0].Name)
}

func TestEngine_CleanRemoteAnswerIsSafeAndSourceRemote(t *testing.T) {
	reputation := &countingReputation{signals: []models.Signal{{
		Name:     "safebrowsing_clean",
		Severity: models.SeverityInfo,
		Reason:   "no record of this address being dangerous",
	}}}
	e := newTestEngine(reputation, nil, nil)

	verdict := e.Analyze(context.Background(), models.NewURLTarget("https://example.org"))

	assert.Equal(t, models.RiskSafe, verdict.Level)
	assert.True(t, verdict.SourceRemote)
}

func TestEngine_UpdateSettingsSwapsReputation(t *testing.T) {
	pathA := writeTestFile(t, "a.txt", "content a")
	pathB := writeTestFile(t, "b.txt", "content b")
	first := &countingReputation{}
	e := newTestEngine(first, nil, nil)

	e.Analyze(context.Background(), models.NewFileTarget(pathA))
	assert.Equal(t, int64(1), first.calls.Load())

	second := &countingReputation{}
	e.UpdateSettings(config.NewDefaultEngineConfig(), second)

	e.Analyze(context.Background(), models.NewFileTarget(pathB))
	assert.Equal(t, int64(1), first.calls.Load())
	assert.Equal(t, int64(1), second.calls.Load())
}

func TestEngine_UpdateSettingsCanDisableRemote(t *testing.T) {
	path := writeTestFile(t, "a.txt", "content a")
	reputation := &countingReputation{}
	e := newTestEngine(reputation, nil, nil)

	cfg := config.NewDefaultEngineConfig()
	cfg.EnableRemote = false
	e.UpdateSettings(cfg, reputation)

	e.Analyze(context.Background(), models.NewFileTarget(path))
	assert.Equal(t, int64(0), reputation.calls.Load())
}

func TestEngine_UnknownVerdictsAreTimestamped(t *testing.T) {
	e := newTestEngine(nil, nil, nil)

	verdict := e.Analyze(context.Background(), models.NewFileTarget("/nonexistent/path/file.bin"))

	assert.Equal(t, models.RiskUnknown, verdict.Level)
	assert.False(t, verdict.Timestamp.IsZero())
}

func TestEngine_UnreadableFileYieldsUnknown(t *testing.T) {
	e := newTestEngine(nil, nil, nil)

	verdict := e.Analyze(context.Background(), models.NewFileTarget("/nonexistent/path/file.bin"))

	assert.Equal(t, models.RiskUnknown, verdict.Level)
	require.NotEmpty(t, verdict.Signals)
	assert.Equal(t, SignalContentUnreadable, verdict.Signals[0].Name)
}

func TestEngine_UnknownVerdictNotCached(t *testing.T) {
	e := newTestEngine(nil, nil, nil)
	target := models.NewFileTarget("/nonexistent/path/file.bin")

	first := e.Analyze(context.Background(), target)
	second := e.Analyze(context.Background(), target)

	assert.Equal(t, models.RiskUnknown, first.Level)
	assert.Equal(t, models.RiskUnknown, second.Level)
}

func TestEngine_PublishesVerdictEvent(t *testing.T) {
	path := writeTestFile(t, "setup.exe", "MZ fake executable")
	bus := eventbus.NewBus(4, zerolog.Nop())
	defer bus.Close()
	ch, cancel := bus.Subscribe(models.TopicVerdicts)
	defer cancel()

	e := newTestEngine(nil, bus, nil)
	verdict := e.Analyze(context.Background(), models.NewFileTarget(path))

	select {
	case evt := <-ch:
		published, ok := evt.Payload.(models.VerdictEvent)
		require.True(t, ok)
		assert.Equal(t, verdict.Fingerprint.Digest, published.Fingerprint.Digest)
		assert.Equal(t, verdict.Level, published.Level)
		assert.Equal(t, models.TargetKindFile, published.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for verdict event")
	}
}

func TestEngine_RecordsHistory(t *testing.T) {
	path := writeTestFile(t, "notes.txt", "harmless text")
	recorder := &memoryRecorder{}
	e := newTestEngine(nil, nil, recorder)

	e.Analyze(context.Background(), models.NewFileTarget(path))

	assert.Equal(t, 1, recorder.count())
}

func TestEngine_AnalyzeURL(t *testing.T) {
	e := newTestEngine(nil, nil, nil)

	verdict := e.Analyze(context.Background(), models.NewURLTarget("http://paypa1.com/login/verify"))

	assert.Equal(t, models.RiskDangerous, verdict.Level)
	assert.Equal(t, models.TargetKindURL, verdict.Fingerprint.Kind)
	assert.NotEmpty(t, verdict.Fingerprint.NormalizedURL)
}

func TestEngine_ConsumeWatchEvents(t *testing.T) {
	pathA := writeTestFile(t, "a.txt", "content a")
	pathB := writeTestFile(t, "b.txt", "content b")
	recorder := &memoryRecorder{}
	e := newTestEngine(nil, nil, recorder)

	events := make(chan models.WatchEvent, 2)
	events <- models.WatchEvent{Path: pathA, DetectedAt: time.Now(), Stabilized: true}
	events <- models.WatchEvent{Path: pathB, DetectedAt: time.Now(), Stabilized: true}
	close(events)

	e.ConsumeWatchEvents(context.Background(), events)

	assert.Equal(t, 2, recorder.count())
}
