// Package normalizer produces the canonical form of a URL used for
// fingerprinting, so equivalent spellings of the same address share a cache
// key and are disclosed to reputation providers at most once.
package normalizer

import (
	"net/url"
	"sort"
	"strings"
)

// NormalizeURL takes a raw URL string and returns a normalized version.
// Normalization is conservative:
// - Adds a default scheme (https) if missing.
// - Lowercases the scheme and host.
// - Strips default ports (:80 for http, :443 for https).
// - Strips a single trailing slash from the path.
// - Sorts query parameters by key.
// - Removes the fragment.
func NormalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", ErrEmptyURL
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", ErrMissingHost
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	stripDefaultPort(u)
	u.Path = strings.TrimSuffix(u.Path, "/")
	sortQuery(u)

	return u.String(), nil
}

// stripDefaultPort removes the port when it matches the scheme's default.
func stripDefaultPort(u *url.URL) {
	port := u.Port()
	if port == "" {
		return
	}
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = u.Hostname()
	}
}

// sortQuery rewrites the raw query with keys in sorted order. Values for a
// repeated key keep their original relative order.
func sortQuery(u *url.URL) {
	if u.RawQuery == "" {
		return
	}
	values := u.Query()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	u.RawQuery = b.String()
}
