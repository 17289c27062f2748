package models

import "time"

// WatchEvent describes a newly stabilized file in a watched directory. It is
// created by the watcher, consumed exactly once by the engine, then discarded.
type WatchEvent struct {
	Path       string    `json:"path"`
	DetectedAt time.Time `json:"detected_at"`
	// Stabilized is true once the file's size and mtime survived the debounce
	// window unchanged. The watcher only emits stabilized events.
	Stabilized bool `json:"stabilized"`
}
