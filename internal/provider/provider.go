// Package provider implements reputation lookups against external services.
// Only content digests and normalized URLs are ever sent over the wire; raw
// file paths and file contents never leave the machine.
package provider

import (
	"context"

	"filewarden/internal/models"
)

// Signal names emitted by reputation providers. Clean results carry a
// zero-severity signal rather than an empty answer, so a verdict can tell a
// confirmed-clean lookup apart from no lookup at all.
const (
	SignalVirusTotalDetected = "virustotal_detected"
	SignalVirusTotalClean    = "virustotal_clean"
	SignalSafeBrowsingMatch  = "safebrowsing_match"
	SignalSafeBrowsingClean  = "safebrowsing_clean"
)

// Provider is a single external reputation source.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string
	// Supports reports whether the provider can look up this target kind.
	Supports(kind models.TargetKind) bool
	// Query looks up the fingerprint and returns any reputation signals.
	// An unknown fingerprint yields no signals and no error.
	Query(ctx context.Context, fp models.Fingerprint) ([]models.Signal, error)
}
