package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"filewarden/internal/common"
	"filewarden/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFingerprinter() *Fingerprinter {
	return NewFingerprinter(zerolog.Nop())
}

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestFingerprintFileDeterminism(t *testing.T) {
	fp := newTestFingerprinter()
	path := writeTempFile(t, "sample.bin", []byte("the quick brown fox"))

	first, err := fp.Fingerprint(models.NewFileTarget(path))
	require.NoError(t, err)
	second, err := fp.Fingerprint(models.NewFileTarget(path))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, models.TargetKindFile, first.Kind)
	assert.Equal(t, int64(19), first.SizeBytes)
	assert.Len(t, first.Digest, 64)
}

func TestFingerprintFileSensitivity(t *testing.T) {
	fp := newTestFingerprinter()
	pathA := writeTempFile(t, "a.bin", []byte("content"))
	pathB := writeTempFile(t, "b.bin", []byte("content!"))

	fpA, err := fp.Fingerprint(models.NewFileTarget(pathA))
	require.NoError(t, err)
	fpB, err := fp.Fingerprint(models.NewFileTarget(pathB))
	require.NoError(t, err)

	assert.NotEqual(t, fpA.Digest, fpB.Digest)
}

func TestFingerprintFileUnreadable(t *testing.T) {
	fp := newTestFingerprinter()
	_, err := fp.Fingerprint(models.NewFileTarget(filepath.Join(t.TempDir(), "missing.bin")))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrIO)
}

func TestFingerprintURLEquivalence(t *testing.T) {
	fp := newTestFingerprinter()

	first, err := fp.Fingerprint(models.NewURLTarget("https://Example.com:443/login/?b=2&a=1#top"))
	require.NoError(t, err)
	second, err := fp.Fingerprint(models.NewURLTarget("https://example.com/login?a=1&b=2"))
	require.NoError(t, err)

	assert.Equal(t, first.Digest, second.Digest)
	assert.Equal(t, first.NormalizedURL, second.NormalizedURL)
	assert.Equal(t, models.TargetKindURL, first.Kind)
}

func TestFingerprintInvalidURL(t *testing.T) {
	fp := newTestFingerprinter()
	_, err := fp.Fingerprint(models.NewURLTarget("   "))
	assert.Error(t, err)
}
