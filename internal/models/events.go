package models

import "time"

// Event bus topics.
const (
	TopicVerdicts = "verdicts"
	TopicWatcher  = "watcher"
)

// VerdictEvent is the stable schema published for every produced verdict.
// Downstream consumers (UI, trusted-contact notifier) subscribe to this only.
type VerdictEvent struct {
	Fingerprint  Fingerprint `json:"fingerprint"`
	Kind         TargetKind  `json:"kind"`
	Level        RiskLevel   `json:"level"`
	Signals      []Signal    `json:"signals"`
	SourceRemote bool        `json:"source_remote"`
	Timestamp    time.Time   `json:"timestamp"`
}

// NewVerdictEvent projects a Verdict onto the published event schema.
func NewVerdictEvent(v Verdict) VerdictEvent {
	return VerdictEvent{
		Fingerprint:  v.Fingerprint,
		Kind:         v.Fingerprint.Kind,
		Level:        v.Level,
		Signals:      v.Signals,
		SourceRemote: v.SourceRemote,
		Timestamp:    v.Timestamp,
	}
}

// WatcherState identifies a watcher lifecycle transition.
type WatcherState string

const (
	WatcherStarted  WatcherState = "started"
	WatcherStopped  WatcherState = "stopped"
	WatcherDegraded WatcherState = "degraded"
)

// WatcherLifecycleEvent is published whenever a directory watcher starts,
// stops, or degrades (e.g. the directory disappeared). Failures reach
// subscribers as a reason string, never as a raw error value.
type WatcherLifecycleEvent struct {
	Directory string       `json:"directory"`
	State     WatcherState `json:"state"`
	Reason    string       `json:"reason,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
