package heuristics

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"filewarden/internal/models"

	"golang.org/x/net/idna"
)

const (
	maxReasonableURLLength = 100
	maxSubdomainDepth      = 4
)

// scoreURL runs every URL rule against the raw URL string. Parsing failures
// yield a single caution signal rather than an error: "we couldn't read this
// address" is itself evidence.
func (s *Scorer) scoreURL(rawURL string) []models.Signal {
	trimmed := strings.TrimSpace(rawURL)
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Hostname() == "" {
		return []models.Signal{{
			Name:     SignalURLInvalid,
			Severity: severityCaution,
			Reason:   fmt.Sprintf("The address '%s' does not look like a normal web address", rawURL),
		}}
	}

	var signals []models.Signal
	host := strings.ToLower(u.Hostname())
	baseDomain := strings.TrimPrefix(host, "www.")

	signals = append(signals, s.hostSignals(rawURL, host, baseDomain)...)
	signals = append(signals, s.structureSignals(rawURL, trimmed, u, host)...)
	signals = append(signals, s.keywordURLSignals(rawURL, trimmed, baseDomain)...)

	if isTrustedDomain(baseDomain) {
		signals = append(signals, models.Signal{
			Name:     SignalURLTrustedDomain,
			Severity: severityInfo,
			Reason:   fmt.Sprintf("The address '%s' belongs to a well-known, trusted website", rawURL),
		})
	}

	return signals
}

// hostSignals covers rules about the host itself: IP literals, punycode,
// lookalike domains.
func (s *Scorer) hostSignals(rawURL, host, baseDomain string) []models.Signal {
	var signals []models.Signal

	if net.ParseIP(strings.Trim(host, "[]")) != nil {
		signals = append(signals, models.Signal{
			Name:     SignalURLIPHost,
			Severity: severityCaution,
			Reason:   fmt.Sprintf("The address '%s' uses a raw number instead of a website name, which legitimate sites almost never do", rawURL),
		})
		return signals
	}

	if strings.Contains(host, "xn--") {
		unicodeHost, err := idna.ToUnicode(host)
		if err != nil {
			unicodeHost = host
		}
		signals = append(signals, models.Signal{
			Name:     SignalURLPunycodeHost,
			Severity: severityCaution,
			Reason:   fmt.Sprintf("The address '%s' uses special characters ('%s') that can imitate a normal website name", rawURL, unicodeHost),
		})
	}

	if realDomain := lookalikeOf(baseDomain); realDomain != "" {
		signals = append(signals, models.Signal{
			Name:     SignalURLLookalikeDomain,
			Severity: severityDanger,
			Reason:   fmt.Sprintf("The address '%s' looks very similar to '%s' but is spelled slightly differently", rawURL, realDomain),
		})
	}

	return signals
}

// structureSignals covers rules about the shape of the URL.
func (s *Scorer) structureSignals(rawURL, normalized string, u *url.URL, host string) []models.Signal {
	var signals []models.Signal

	if u.User != nil {
		signals = append(signals, models.Signal{
			Name:     SignalURLCredentials,
			Severity: severityDanger,
			Reason:   fmt.Sprintf("The address '%s' has a hidden username built into it, a trick used to disguise the real destination", rawURL),
		})
	}

	if _, shortener := shortenerDomains[strings.TrimPrefix(host, "www.")]; shortener {
		signals = append(signals, models.Signal{
			Name:     SignalURLShortener,
			Severity: severityCaution,
			Reason:   fmt.Sprintf("The address '%s' is a shortened link, so the real destination is hidden", rawURL),
		})
	}

	if net.ParseIP(strings.Trim(host, "[]")) == nil {
		if depth := strings.Count(host, "."); depth >= maxSubdomainDepth {
			signals = append(signals, models.Signal{
				Name:     SignalURLSubdomainDepth,
				Severity: severityCaution,
				Reason:   fmt.Sprintf("The address '%s' has an unusually deep chain of sub-sites, which scammers use to bury a familiar name", rawURL),
			})
		}
	}

	if u.Scheme == "http" {
		signals = append(signals, models.Signal{
			Name:     SignalURLNonHTTPS,
			Severity: severityLow,
			Reason:   fmt.Sprintf("The address '%s' does not use a secure connection; avoid entering personal details there", rawURL),
		})
	}

	if len(normalized) > maxReasonableURLLength || strings.Count(normalized, ".") > 4 {
		signals = append(signals, models.Signal{
			Name:     SignalURLUnusualStructure,
			Severity: severityLow,
			Reason:   fmt.Sprintf("The address '%s' looks more complicated than normal website addresses", rawURL),
		})
	}

	return signals
}

// keywordURLSignals flags scam wording anywhere in the URL. Trusted domains
// are exempt so legitimate pages about "account verification" do not alarm.
func (s *Scorer) keywordURLSignals(rawURL, normalized, baseDomain string) []models.Signal {
	if isTrustedDomain(baseDomain) {
		return nil
	}
	lower := strings.ToLower(normalized)
	for _, kw := range scamURLKeywords {
		if strings.Contains(lower, kw) {
			return []models.Signal{{
				Name:     SignalURLScamKeywords,
				Severity: severityDanger,
				Reason:   fmt.Sprintf("The address '%s' contains the word '%s', which is common in scam and phishing sites", rawURL, kw),
			}}
		}
	}
	return nil
}

// isTrustedDomain reports whether the domain or one of its parents is on the
// trusted allowlist.
func isTrustedDomain(baseDomain string) bool {
	if _, ok := trustedDomains[baseDomain]; ok {
		return true
	}
	for td := range trustedDomains {
		if strings.HasSuffix(baseDomain, "."+td) {
			return true
		}
	}
	return false
}

// lookalikeOf returns the real domain when baseDomain looks like a misspelled
// or homoglyph-substituted version of a well-known site, otherwise empty.
func lookalikeOf(baseDomain string) string {
	if isTrustedDomain(baseDomain) {
		return ""
	}

	label := strings.Split(baseDomain, ".")[0]
	folded := foldHomoglyphs(strings.ToLower(label))
	if len(folded) < 4 {
		return ""
	}

	for brand, realDomain := range lookalikeTargets {
		if folded == brand {
			// Exact match after folding means pure homoglyph substitution,
			// e.g. "paypa1.com".
			if label != brand {
				return realDomain
			}
			continue
		}
		if dist := levenshtein(folded, brand); dist > 0 && dist <= 2 {
			return realDomain
		}
	}
	return ""
}

func foldHomoglyphs(s string) string {
	return strings.Map(func(r rune) rune {
		if folded, ok := homoglyphFold[r]; ok {
			return folded
		}
		return r
	}, s)
}
