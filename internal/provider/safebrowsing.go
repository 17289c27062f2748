package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"filewarden/internal/common"
	"filewarden/internal/config"
	"filewarden/internal/httpclient"
	"filewarden/internal/models"

	"github.com/rs/zerolog"
)

// Remote detections carry a severity high enough to make the verdict
// Dangerous on their own.
const severityRemoteDetection = 95

// SafeBrowsingProvider queries the Google Safe Browsing v4 lookup API with
// the normalized URL of the target. File targets are not supported.
type SafeBrowsingProvider struct {
	apiKey     string
	endpoint   string
	httpClient *httpclient.HTTPClient
	logger     zerolog.Logger
}

// NewSafeBrowsingProvider creates a Safe Browsing provider from its settings.
func NewSafeBrowsingProvider(settings config.ProviderSettings, client *httpclient.HTTPClient, log zerolog.Logger) *SafeBrowsingProvider {
	endpoint := settings.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultSafeBrowsingEndpoint
	}
	return &SafeBrowsingProvider{
		apiKey:     settings.APIKey,
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: client,
		logger:     log.With().Str("component", "SafeBrowsingProvider").Logger(),
	}
}

// Name implements Provider.
func (p *SafeBrowsingProvider) Name() string { return "safebrowsing" }

// Supports implements Provider.
func (p *SafeBrowsingProvider) Supports(kind models.TargetKind) bool {
	return kind == models.TargetKindURL
}

type sbThreatEntry struct {
	URL string `json:"url"`
}

type sbLookupRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string        `json:"threatTypes"`
		PlatformTypes    []string        `json:"platformTypes"`
		ThreatEntryTypes []string        `json:"threatEntryTypes"`
		ThreatEntries    []sbThreatEntry `json:"threatEntries"`
	} `json:"threatInfo"`
}

type sbLookupResponse struct {
	Matches []struct {
		ThreatType string `json:"threatType"`
	} `json:"matches"`
}

// Query implements Provider.
func (p *SafeBrowsingProvider) Query(ctx context.Context, fp models.Fingerprint) ([]models.Signal, error) {
	if fp.NormalizedURL == "" {
		return nil, nil
	}

	var lookup sbLookupRequest
	lookup.Client.ClientID = "filewarden"
	lookup.Client.ClientVersion = "1.0"
	lookup.ThreatInfo.ThreatTypes = []string{
		"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION",
	}
	lookup.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	lookup.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	lookup.ThreatInfo.ThreatEntries = []sbThreatEntry{{URL: fp.NormalizedURL}}

	body, err := json.Marshal(lookup)
	if err != nil {
		return nil, common.NewProviderError(p.Name(), "failed to encode request", common.ErrProviderUnavailable)
	}

	req := &httpclient.HTTPRequest{
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/threatMatches:find?key=%s", p.endpoint, p.apiKey),
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
		Context: ctx,
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, common.NewProviderError(p.Name(), "request deadline exceeded", common.ErrProviderTimeout)
		}
		return nil, common.NewProviderError(p.Name(), "request failed", common.ErrProviderUnavailable)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, common.NewProviderError(p.Name(), "rejected API key", common.ErrProviderAuth)
	case resp.StatusCode != http.StatusOK:
		return nil, common.NewProviderError(p.Name(), fmt.Sprintf("unexpected status %d", resp.StatusCode), common.ErrProviderUnavailable)
	}

	var result sbLookupResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, common.NewProviderError(p.Name(), "malformed response body", common.ErrProviderUnavailable)
	}

	if len(result.Matches) == 0 {
		return []models.Signal{{
			Name:     SignalSafeBrowsingClean,
			Severity: models.SeverityInfo,
			Reason:   "Google Safe Browsing has no record of this address being dangerous",
		}}, nil
	}

	threatTypes := make([]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		threatTypes = append(threatTypes, m.ThreatType)
	}
	return []models.Signal{{
		Name:     SignalSafeBrowsingMatch,
		Severity: severityRemoteDetection,
		Reason:   fmt.Sprintf("flagged by Google Safe Browsing: %s", strings.Join(threatTypes, ", ")),
	}}, nil
}
