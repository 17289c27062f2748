package watcher

import (
	"os"
	"time"
)

// trackState is the per-file debounce state.
type trackState int

const (
	stateDetected trackState = iota
	stateStabilizing
	stateReady
)

// tracking follows one file from first sighting to stability. A file is
// stable once its size and mtime survive the configured number of
// consecutive polls unchanged.
type tracking struct {
	path        string
	state       trackState
	detectedAt  time.Time
	lastSize    int64
	lastModTime time.Time
	stableCount int
}

func newTracking(path string, now time.Time) *tracking {
	return &tracking{
		path:       path,
		state:      stateDetected,
		detectedAt: now,
	}
}

// poll advances the state machine with a fresh stat sample and reports
// whether the file just became ready.
func (t *tracking) poll(info os.FileInfo, stableChecks int) bool {
	size := info.Size()
	modTime := info.ModTime()

	if t.state == stateDetected {
		t.state = stateStabilizing
		t.lastSize = size
		t.lastModTime = modTime
		t.stableCount = 0
		return false
	}

	if size != t.lastSize || !modTime.Equal(t.lastModTime) {
		// Still being written. Restart the stability count.
		t.lastSize = size
		t.lastModTime = modTime
		t.stableCount = 0
		return false
	}

	t.stableCount++
	if t.stableCount >= stableChecks {
		t.state = stateReady
		return true
	}
	return false
}

// expired reports whether the file never settled within the timeout.
func (t *tracking) expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(t.detectedAt) > timeout
}

// touch resets the debounce after a new write notification so a burst of
// writes cannot ride out a stale stability count.
func (t *tracking) touch() {
	t.stableCount = 0
}
