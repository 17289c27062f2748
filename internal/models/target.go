package models

// TargetKind distinguishes the two kinds of items the engine can analyze.
type TargetKind string

const (
	TargetKindFile TargetKind = "file"
	TargetKindURL  TargetKind = "url"
)

// Target represents a file path or URL submitted for analysis.
// Targets are immutable and are discarded once a Verdict has been produced.
type Target struct {
	Kind TargetKind `json:"kind"`
	// Raw is the path (file targets) or the URL string as entered (url targets).
	Raw string `json:"raw"`
	// DeclaredType is an optional declared MIME type or extension hint.
	DeclaredType string `json:"declared_type,omitempty"`
}

// NewFileTarget creates a Target for a local file path.
func NewFileTarget(path string) Target {
	return Target{Kind: TargetKindFile, Raw: path}
}

// NewURLTarget creates a Target for a URL string.
func NewURLTarget(rawURL string) Target {
	return Target{Kind: TargetKindURL, Raw: rawURL}
}
