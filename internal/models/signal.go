package models

// Signal severity scale and the level cut-offs applied by the engine.
// Severity is 0-100. A single signal at or above SeverityDangerous makes the
// verdict Dangerous; at or above SeveritySuspicious makes it Suspicious. The
// level is always driven by the single highest-severity signal, never a sum,
// so many weak heuristic hits cannot escalate on their own.
const (
	SeverityInfo       = 0
	SeveritySuspicious = 40
	SeverityDangerous  = 75
	SeverityMax        = 100
)

// Signal is one weighted piece of evidence contributing to a risk verdict,
// produced either by a heuristic rule or by a normalized reputation response.
type Signal struct {
	Name     string `json:"name"`
	Severity int    `json:"severity"`
	Reason   string `json:"reason"`
}

// MaxSeverity returns the highest severity present in signals, or -1 when the
// slice is empty.
func MaxSeverity(signals []Signal) int {
	max := -1
	for _, s := range signals {
		if s.Severity > max {
			max = s.Severity
		}
	}
	return max
}
