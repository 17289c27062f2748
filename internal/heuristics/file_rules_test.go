package heuristics

import (
	"testing"

	"filewarden/internal/common"
	"filewarden/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signalNames(signals []models.Signal) []string {
	names := make([]string, 0, len(signals))
	for _, s := range signals {
		names = append(names, s.Name)
	}
	return names
}

func findSignal(t *testing.T, signals []models.Signal, name string) models.Signal {
	t.Helper()
	for _, s := range signals {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("signal %q not found in %v", name, signalNames(signals))
	return models.Signal{}
}

func TestScoreFileDoubleExtension(t *testing.T) {
	scorer := NewScorer()
	meta := &FileMetadata{Name: "invoice.pdf.exe", SizeBytes: 1024, Extension: ".exe"}

	signals := scorer.Score(models.NewFileTarget("/downloads/invoice.pdf.exe"), meta)

	double := findSignal(t, signals, SignalDoubleExtension)
	assert.GreaterOrEqual(t, double.Severity, models.SeverityDangerous)
	assert.Contains(t, double.Reason, ".pdf")

	// The dangerous extension and the bait keyword fire independently.
	findSignal(t, signals, SignalDangerousExtension)
	keyword := findSignal(t, signals, SignalSuspiciousFilename)
	assert.GreaterOrEqual(t, keyword.Severity, models.SeverityDangerous)

	assert.Equal(t, models.RiskDangerous, models.LevelForSignals(signals))
}

func TestScoreFileExtensionClasses(t *testing.T) {
	scorer := NewScorer()
	tests := []struct {
		name         string
		fileName     string
		ext          string
		expectSignal string
		expectLevel  models.RiskLevel
	}{
		{"executable", "setup.exe", ".exe", SignalDangerousExtension, models.RiskDangerous},
		{"script", "helper.ps1", ".ps1", SignalScriptExtension, models.RiskDangerous},
		{"document", "letter.docx", ".docx", SignalDocumentMacro, models.RiskSafe},
		{"archive", "photos.zip", ".zip", SignalArchive, models.RiskSafe},
		{"media", "holiday.jpg", ".jpg", SignalMediaFile, models.RiskSafe},
		{"unrecognized", "data.xyz", ".xyz", SignalUnknownExtension, models.RiskSuspicious},
		{"no extension", "README", "", SignalUnknownExtension, models.RiskSuspicious},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := &FileMetadata{Name: tt.fileName, SizeBytes: 100, Extension: tt.ext}
			signals := scorer.Score(models.NewFileTarget(tt.fileName), meta)
			findSignal(t, signals, tt.expectSignal)
			assert.Equal(t, tt.expectLevel, models.LevelForSignals(signals))
		})
	}
}

func TestScoreFileArchiveReasonIncludesSize(t *testing.T) {
	scorer := NewScorer()
	meta := &FileMetadata{Name: "photos.zip", SizeBytes: 5 * 1024 * 1024, Extension: ".zip"}

	signals := scorer.Score(models.NewFileTarget("photos.zip"), meta)
	archive := findSignal(t, signals, SignalArchive)
	assert.Contains(t, archive.Reason, common.FormatFileSize(meta.SizeBytes))
}

func TestScoreFileEmptyFile(t *testing.T) {
	scorer := NewScorer()
	meta := &FileMetadata{Name: "download.jpg", SizeBytes: 0, Extension: ".jpg"}

	signals := scorer.Score(models.NewFileTarget("download.jpg"), meta)
	empty := findSignal(t, signals, SignalEmptyFile)
	assert.GreaterOrEqual(t, empty.Severity, models.SeveritySuspicious)
}

func TestScoreFileContentMismatch(t *testing.T) {
	scorer := NewScorer()

	t.Run("executable disguised as image", func(t *testing.T) {
		meta := &FileMetadata{
			Name:             "photo.png",
			SizeBytes:        2048,
			Extension:        ".png",
			SniffedMIME:      "application/vnd.microsoft.portable-executable",
			SniffedExtension: ".exe",
		}
		signals := scorer.Score(models.NewFileTarget("photo.png"), meta)
		mismatch := findSignal(t, signals, SignalContentMismatch)
		assert.GreaterOrEqual(t, mismatch.Severity, models.SeverityDangerous)
	})

	t.Run("matching extension and content stays quiet", func(t *testing.T) {
		meta := &FileMetadata{
			Name:             "photo.png",
			SizeBytes:        2048,
			Extension:        ".png",
			SniffedMIME:      "image/png",
			SniffedExtension: ".png",
		}
		signals := scorer.Score(models.NewFileTarget("photo.png"), meta)
		assert.NotContains(t, signalNames(signals), SignalContentMismatch)
	})

	t.Run("jpeg and jpg are equivalent", func(t *testing.T) {
		meta := &FileMetadata{
			Name:             "photo.jpeg",
			SizeBytes:        2048,
			Extension:        ".jpeg",
			SniffedMIME:      "image/jpeg",
			SniffedExtension: ".jpg",
		}
		signals := scorer.Score(models.NewFileTarget("photo.jpeg"), meta)
		assert.NotContains(t, signalNames(signals), SignalContentMismatch)
	})
}

func TestArchiveChainDepth(t *testing.T) {
	tests := []struct {
		name     string
		expected int
	}{
		{"report.zip", 1},
		{"backup.tar.gz", 1},
		{"layered.zip.gz", 2},
		{"deep.zip.gz.zip", 3},
		{"plain.txt", 0},
		{"noext", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, archiveChainDepth(tt.name), "file %q", tt.name)
	}
}

func TestScoreFileNestedArchive(t *testing.T) {
	scorer := NewScorer()
	meta := &FileMetadata{Name: "files.zip.gz", SizeBytes: 512, Extension: ".gz"}

	signals := scorer.Score(models.NewFileTarget("files.zip.gz"), meta)
	nesting := findSignal(t, signals, SignalArchiveNesting)
	assert.GreaterOrEqual(t, nesting.Severity, models.SeveritySuspicious)
}

func TestScoreFileRequiresMetadata(t *testing.T) {
	scorer := NewScorer()
	require.Nil(t, scorer.Score(models.NewFileTarget("anything.exe"), nil))
}

func TestScoreFileDeterminism(t *testing.T) {
	scorer := NewScorer()
	meta := &FileMetadata{Name: "urgent-invoice.zip", SizeBytes: 4096, Extension: ".zip"}
	target := models.NewFileTarget("urgent-invoice.zip")

	first := scorer.Score(target, meta)
	second := scorer.Score(target, meta)
	assert.Equal(t, first, second)
}
