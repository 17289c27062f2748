package heuristics

import (
	"fmt"
	"strings"

	"filewarden/internal/common"
	"filewarden/internal/models"
)

// MIME types that mean "this is a runnable program" regardless of what the
// file calls itself.
var executableMIMEs = map[string]struct{}{
	"application/vnd.microsoft.portable-executable": {},
	"application/x-dosexec":                         {},
	"application/x-msdownload":                      {},
	"application/x-executable":                      {},
	"application/x-elf":                             {},
	"application/x-sharedlib":                       {},
	"application/x-mach-binary":                     {},
}

// Extensions that spell the same content type differently.
var equivalentExtensions = map[string]string{
	".jpeg": ".jpg",
	".htm":  ".html",
	".tif":  ".tiff",
	".midi": ".mid",
}

// scoreFile runs every file rule. Rules are independent and never
// short-circuit each other.
func (s *Scorer) scoreFile(meta FileMetadata) []models.Signal {
	var signals []models.Signal

	nameLower := strings.ToLower(meta.Name)
	ext := meta.Extension
	root := strings.TrimSuffix(nameLower, ext)

	if meta.SizeBytes == 0 {
		signals = append(signals, models.Signal{
			Name:     SignalEmptyFile,
			Severity: severityCaution,
			Reason:   fmt.Sprintf("The file '%s' contains no data at all, which may mean the download did not finish", meta.Name),
		})
	}

	// Double extension: "invoice.pdf.exe" pretends to be a document.
	if strings.Contains(root, ".") {
		if _, dangerous := dangerousExtensions[ext]; dangerous {
			fakeExt := extOf(root)
			signals = append(signals, models.Signal{
				Name:     SignalDoubleExtension,
				Severity: severityCritical,
				Reason:   fmt.Sprintf("The file '%s' is pretending to be a '%s' file but is actually a program", meta.Name, fakeExt),
			})
		}
	}

	signals = append(signals, s.extensionSignals(meta, nameLower, ext)...)
	signals = append(signals, s.keywordSignals(meta, nameLower, ext)...)
	signals = append(signals, s.mismatchSignals(meta, ext)...)
	signals = append(signals, s.nestingSignals(meta, nameLower)...)

	return signals
}

// extensionSignals classifies the file by its declared extension. Exactly one
// of these fires per file.
func (s *Scorer) extensionSignals(meta FileMetadata, nameLower, ext string) []models.Signal {
	switch {
	case contains(dangerousExtensions, ext):
		return []models.Signal{{
			Name:     SignalDangerousExtension,
			Severity: severityDanger,
			Reason:   fmt.Sprintf("The file '%s' is a program ('%s') that can make changes to this computer", meta.Name, ext),
		}}
	case contains(scriptExtensions, ext):
		return []models.Signal{{
			Name:     SignalScriptExtension,
			Severity: severityDanger,
			Reason:   fmt.Sprintf("The file '%s' is a script ('%s'), a kind of mini-program", meta.Name, ext),
		}}
	case contains(documentExtensions, ext):
		return []models.Signal{{
			Name:     SignalDocumentMacro,
			Severity: severityLow,
			Reason:   fmt.Sprintf("The file '%s' is a document; documents can carry hidden macros, so never enable content if asked", meta.Name),
		}}
	case contains(archiveExtensions, ext):
		return []models.Signal{{
			Name:     SignalArchive,
			Severity: severityLow,
			Reason:   fmt.Sprintf("The file '%s' (%s) is a compressed archive and could contain anything, including programs", meta.Name, common.FormatFileSize(meta.SizeBytes)),
		}}
	case contains(mediaExtensions, ext):
		return []models.Signal{{
			Name:     SignalMediaFile,
			Severity: severityInfo,
			Reason:   fmt.Sprintf("The file '%s' appears to be a photo, music, or video file, which is generally safe", meta.Name),
		}}
	default:
		displayExt := ext
		if displayExt == "" {
			displayExt = "(none)"
		}
		return []models.Signal{{
			Name:     SignalUnknownExtension,
			Severity: severityCaution,
			Reason:   fmt.Sprintf("The file '%s' has an unusual type ('%s') that is not recognised", meta.Name, displayExt),
		}}
	}
}

// keywordSignals flags urgency or bait wording in the filename. The word only
// escalates to danger when combined with a runnable extension.
func (s *Scorer) keywordSignals(meta FileMetadata, nameLower, ext string) []models.Signal {
	for _, kw := range suspiciousFilenameKeywords {
		if !strings.Contains(nameLower, kw) {
			continue
		}
		severity := severityLow
		if contains(dangerousExtensions, ext) || contains(scriptExtensions, ext) {
			severity = severityDanger
		} else if contains(documentExtensions, ext) || contains(archiveExtensions, ext) {
			severity = severityCaution
		}
		return []models.Signal{{
			Name:     SignalSuspiciousFilename,
			Severity: severity,
			Reason:   fmt.Sprintf("The file name '%s' uses the word '%s', which scammers often use to pressure people", meta.Name, kw),
		}}
	}
	return nil
}

// mismatchSignals compares the declared extension against the sniffed content
// signature.
func (s *Scorer) mismatchSignals(meta FileMetadata, ext string) []models.Signal {
	if meta.SniffedMIME == "" {
		return nil
	}

	// A runnable program disguised under a harmless extension is the single
	// strongest local signal we have.
	if _, isExecMIME := executableMIMEs[meta.SniffedMIME]; isExecMIME {
		if !contains(dangerousExtensions, ext) {
			return []models.Signal{{
				Name:     SignalContentMismatch,
				Severity: severityCritical,
				Reason:   fmt.Sprintf("The file '%s' looks like a '%s' file but its content is actually a runnable program", meta.Name, ext),
			}}
		}
		return nil
	}

	if meta.SniffedExtension == "" || ext == "" {
		return nil
	}
	if canonicalExt(meta.SniffedExtension) == canonicalExt(ext) {
		return nil
	}
	// Plain-text detection is too generic to call a mismatch: scripts, CSVs,
	// and config files all sniff as text.
	if strings.HasPrefix(meta.SniffedMIME, "text/") {
		return nil
	}
	return []models.Signal{{
		Name:     SignalContentMismatch,
		Severity: severityCaution,
		Reason:   fmt.Sprintf("The file '%s' is named as '%s' but its content looks like '%s'", meta.Name, ext, meta.SniffedExtension),
	}}
}

// nestingSignals flags chained archive extensions such as "backup.zip.gz".
// The common ".tar.gz"/".tar.bz2" pairing counts as a single layer.
func (s *Scorer) nestingSignals(meta FileMetadata, nameLower string) []models.Signal {
	depth := archiveChainDepth(nameLower)
	if depth <= 1 {
		return nil
	}
	return []models.Signal{{
		Name:     SignalArchiveNesting,
		Severity: severityCaution,
		Reason:   fmt.Sprintf("The file '%s' is an archive packed inside another archive (%d layers), which is a common way to hide dangerous files", meta.Name, depth),
	}}
}

// archiveChainDepth counts trailing archive extensions in a filename.
func archiveChainDepth(nameLower string) int {
	depth := 0
	rest := nameLower
	for {
		ext := extOf(rest)
		if ext == "" {
			break
		}
		if _, ok := archiveExtensions[ext]; !ok {
			break
		}
		depth++
		rest = strings.TrimSuffix(rest, ext)
		// ".tar.gz" and friends are one logical archive, not two.
		if (ext == ".gz" || ext == ".7z") && strings.HasSuffix(rest, ".tar") {
			rest = strings.TrimSuffix(rest, ".tar")
		}
	}
	return depth
}

func extOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx:]
}

func canonicalExt(ext string) string {
	if canonical, ok := equivalentExtensions[ext]; ok {
		return canonical
	}
	return ext
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
