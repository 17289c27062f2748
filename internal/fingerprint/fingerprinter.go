// Package fingerprint derives the deterministic identifiers used as cache
// keys and as the only representation of a target ever sent off the machine.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"filewarden/internal/common"
	"filewarden/internal/models"
	"filewarden/internal/normalizer"

	"github.com/rs/zerolog"
)

// Fingerprinter computes content digests for files and normalized-string
// hashes for URLs.
type Fingerprinter struct {
	logger zerolog.Logger
}

// NewFingerprinter creates a new Fingerprinter.
func NewFingerprinter(logger zerolog.Logger) *Fingerprinter {
	return &Fingerprinter{
		logger: logger.With().Str("component", "Fingerprinter").Logger(),
	}
}

// Fingerprint computes the Fingerprint for a target. File content is streamed
// through SHA-256 so large downloads are never loaded into memory at once.
// Unreadable files fail with an error wrapping common.ErrIO.
func (f *Fingerprinter) Fingerprint(target models.Target) (models.Fingerprint, error) {
	switch target.Kind {
	case models.TargetKindFile:
		return f.fingerprintFile(target.Raw)
	case models.TargetKindURL:
		return f.fingerprintURL(target.Raw)
	default:
		return models.Fingerprint{}, common.NewError("unsupported target kind: %s", target.Kind)
	}
}

func (f *Fingerprinter) fingerprintFile(path string) (models.Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return models.Fingerprint{}, common.WrapErrorf(common.ErrIO, "opening %s: %v", path, err)
	}
	defer func() { _ = file.Close() }()

	hasher := sha256.New()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return models.Fingerprint{}, common.WrapErrorf(common.ErrIO, "reading %s: %v", path, err)
	}

	return models.Fingerprint{
		Kind:      models.TargetKindFile,
		Digest:    hex.EncodeToString(hasher.Sum(nil)),
		SizeBytes: size,
	}, nil
}

func (f *Fingerprinter) fingerprintURL(rawURL string) (models.Fingerprint, error) {
	normalized, err := normalizer.NormalizeURL(rawURL)
	if err != nil {
		return models.Fingerprint{}, common.WrapError(err, "normalizing URL")
	}

	sum := sha256.Sum256([]byte(normalized))
	return models.Fingerprint{
		Kind:          models.TargetKindURL,
		Digest:        hex.EncodeToString(sum[:]),
		NormalizedURL: normalized,
	}, nil
}
