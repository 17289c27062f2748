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

// VirusTotalProvider queries the VirusTotal v3 file report endpoint by
// content digest. It never uploads content.
type VirusTotalProvider struct {
	apiKey     string
	endpoint   string
	httpClient *httpclient.HTTPClient
	logger     zerolog.Logger
}

// NewVirusTotalProvider creates a VirusTotal provider from its settings.
func NewVirusTotalProvider(settings config.ProviderSettings, client *httpclient.HTTPClient, log zerolog.Logger) *VirusTotalProvider {
	endpoint := settings.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultVirusTotalEndpoint
	}
	return &VirusTotalProvider{
		apiKey:     settings.APIKey,
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: client,
		logger:     log.With().Str("component", "VirusTotalProvider").Logger(),
	}
}

// Name implements Provider.
func (p *VirusTotalProvider) Name() string { return "virustotal" }

// Supports implements Provider. VirusTotal file reports are keyed by digest.
func (p *VirusTotalProvider) Supports(kind models.TargetKind) bool {
	return kind == models.TargetKindFile
}

type vtFileReport struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats struct {
				Malicious  int `json:"malicious"`
				Suspicious int `json:"suspicious"`
				Harmless   int `json:"harmless"`
				Undetected int `json:"undetected"`
			} `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// Query implements Provider.
func (p *VirusTotalProvider) Query(ctx context.Context, fp models.Fingerprint) ([]models.Signal, error) {
	req := &httpclient.HTTPRequest{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/files/%s", p.endpoint, fp.Digest),
		Headers: map[string]string{"x-apikey": p.apiKey},
		Context: ctx,
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, p.classifyTransportError(ctx, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Hash unknown to VirusTotal. Not an error and not evidence either way.
		return nil, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, common.NewProviderError(p.Name(), "rejected API key", common.ErrProviderAuth)
	case resp.StatusCode != http.StatusOK:
		return nil, common.NewProviderError(p.Name(), fmt.Sprintf("unexpected status %d", resp.StatusCode), common.ErrProviderUnavailable)
	}

	var report vtFileReport
	if err := json.Unmarshal(resp.Body, &report); err != nil {
		return nil, common.NewProviderError(p.Name(), "malformed response body", common.ErrProviderUnavailable)
	}

	stats := report.Data.Attributes.LastAnalysisStats
	detections := stats.Malicious + stats.Suspicious
	if detections > 0 {
		return []models.Signal{{
			Name:     SignalVirusTotalDetected,
			Severity: severityRemoteDetection,
			Reason:   fmt.Sprintf("flagged by %d antivirus engine(s)", detections),
		}}, nil
	}

	return []models.Signal{{
		Name:     SignalVirusTotalClean,
		Severity: models.SeverityInfo,
		Reason:   "no antivirus engine flagged this content",
	}}, nil
}

func (p *VirusTotalProvider) classifyTransportError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return common.NewProviderError(p.Name(), "request deadline exceeded", common.ErrProviderTimeout)
	}
	return common.NewProviderError(p.Name(), "request failed", common.ErrProviderUnavailable)
}
