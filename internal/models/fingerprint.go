package models

// Fingerprint is the opaque, deterministic identifier derived from a Target.
// For files it is a SHA-256 content digest plus the file size; for URLs it is
// the SHA-256 of the normalized URL string. The digest is the only
// representation of a target that is ever transmitted externally.
type Fingerprint struct {
	Kind   TargetKind `json:"kind"`
	Digest string     `json:"digest"` // hex-encoded SHA-256
	// SizeBytes is recorded for file targets to detect truncation. Zero for URLs.
	SizeBytes int64 `json:"size_bytes,omitempty"`
	// NormalizedURL is the canonical form that was hashed. Empty for files.
	NormalizedURL string `json:"normalized_url,omitempty"`
}

// Key returns the cache key for this fingerprint. Kind is part of the key so a
// file whose bytes happen to hash like a URL string can never collide with it.
func (fp Fingerprint) Key() string {
	return string(fp.Kind) + ":" + fp.Digest
}

// IsZero reports whether the fingerprint carries no digest.
func (fp Fingerprint) IsZero() bool {
	return fp.Digest == ""
}
