// Package heuristics maps local evidence about a file or URL to weighted risk
// signals. Scoring is pure and deterministic: every applicable rule fires and
// contributes exactly one signal, so the final verdict can always explain
// itself to the user.
package heuristics

import (
	"filewarden/internal/models"
)

// Signal names produced by the scorer.
const (
	SignalDoubleExtension    = "double_extension"
	SignalDangerousExtension = "dangerous_extension"
	SignalScriptExtension    = "script_extension"
	SignalDocumentMacro      = "document_macro"
	SignalArchive            = "archive"
	SignalArchiveNesting     = "archive_nesting"
	SignalSuspiciousFilename = "suspicious_filename"
	SignalEmptyFile          = "empty_file"
	SignalUnknownExtension   = "unknown_extension"
	SignalContentMismatch    = "content_mismatch"
	SignalMediaFile          = "media_file"

	SignalURLIPHost           = "url_ip_host"
	SignalURLPunycodeHost     = "url_punycode_host"
	SignalURLSubdomainDepth   = "url_subdomain_depth"
	SignalURLShortener        = "url_shortener"
	SignalURLCredentials      = "url_credentials"
	SignalURLScamKeywords     = "url_scam_keywords"
	SignalURLNonHTTPS         = "url_non_https"
	SignalURLUnusualStructure = "url_unusual_structure"
	SignalURLLookalikeDomain  = "url_lookalike_domain"
	SignalURLTrustedDomain    = "url_trusted_domain"
	SignalURLInvalid          = "url_invalid"
)

// Rule severities. The engine classifies from the single highest severity:
// >= models.SeverityDangerous is dangerous, >= models.SeveritySuspicious is
// suspicious, anything below is safe.
const (
	severityInfo     = 0
	severityLow      = 20
	severityCaution  = 50
	severityDanger   = 85
	severityCritical = 95
)

// Scorer evaluates heuristic rules against targets. It performs no I/O; file
// metadata is collected by the caller (see CollectFileMetadata).
type Scorer struct{}

// NewScorer creates a new Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns the ordered signals for a target. File targets require
// metadata; URL targets ignore it.
func (s *Scorer) Score(target models.Target, meta *FileMetadata) []models.Signal {
	switch target.Kind {
	case models.TargetKindFile:
		if meta == nil {
			return nil
		}
		return s.scoreFile(*meta)
	case models.TargetKindURL:
		return s.scoreURL(target.Raw)
	default:
		return nil
	}
}
