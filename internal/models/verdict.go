package models

import (
	"encoding/json"
	"time"
)

// RiskLevel classifies the outcome of an analysis.
type RiskLevel int

const (
	RiskUnknown RiskLevel = iota
	RiskSafe
	RiskSuspicious
	RiskDangerous
)

// String returns the wire representation of the risk level.
func (rl RiskLevel) String() string {
	switch rl {
	case RiskSafe:
		return "safe"
	case RiskSuspicious:
		return "suspicious"
	case RiskDangerous:
		return "dangerous"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the level as its string form for the event schema.
func (rl RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(rl.String())
}

// UnmarshalJSON decodes the string form of a risk level.
func (rl *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*rl = ParseRiskLevel(s)
	return nil
}

// ParseRiskLevel maps a wire string back to a RiskLevel. Unrecognized input
// yields RiskUnknown.
func ParseRiskLevel(s string) RiskLevel {
	switch s {
	case "safe":
		return RiskSafe
	case "suspicious":
		return RiskSuspicious
	case "dangerous":
		return RiskDangerous
	default:
		return RiskUnknown
	}
}

// LevelForSignals computes the risk level from the single highest-severity
// signal present. No signals at all means the engine learned nothing: Unknown.
func LevelForSignals(signals []Signal) RiskLevel {
	max := MaxSeverity(signals)
	switch {
	case max < 0:
		return RiskUnknown
	case max >= SeverityDangerous:
		return RiskDangerous
	case max >= SeveritySuspicious:
		return RiskSuspicious
	default:
		return RiskSafe
	}
}

// Verdict is the immutable outcome of analyzing a Target.
type Verdict struct {
	Fingerprint Fingerprint `json:"fingerprint"`
	Level       RiskLevel   `json:"level"`
	Signals     []Signal    `json:"signals"`
	// SourceRemote is true when at least one reputation provider contributed
	// signals to this verdict.
	SourceRemote bool      `json:"source_remote"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewVerdict builds a Verdict from collected signals, deriving the level from
// the maximum-severity signal.
func NewVerdict(fp Fingerprint, signals []Signal, sourceRemote bool) Verdict {
	return Verdict{
		Fingerprint:  fp,
		Level:        LevelForSignals(signals),
		Signals:      signals,
		SourceRemote: sourceRemote,
		Timestamp:    time.Now(),
	}
}
