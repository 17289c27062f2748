package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"filewarden/internal/common"
	"filewarden/internal/config"
	"filewarden/internal/httpclient"
	"filewarden/internal/models"

	"github.com/rs/zerolog"
)

// Client fans a lookup out to every configured provider that supports the
// target kind and merges their signals. Individual provider failures do not
// fail the lookup as long as at least one provider answered.
type Client struct {
	providers []Provider
	timeout   time.Duration
	logger    zerolog.Logger
	// authWarn ensures a bad credential is logged once per provider, not on
	// every analysis.
	authWarn sync.Map
}

// NewClient builds a reputation client from the providers configuration.
// Disabled providers are skipped. Returns nil when no provider is enabled.
func NewClient(cfg config.ProvidersConfig, timeout time.Duration, log zerolog.Logger) *Client {
	clientLogger := log.With().Str("component", "ReputationClient").Logger()

	var providers []Provider
	if cfg.VirusTotal.Enabled {
		httpCfg := httpclient.DefaultHTTPClientConfig()
		httpCfg.Timeout = cfg.VirusTotal.Timeout()
		providers = append(providers, NewVirusTotalProvider(cfg.VirusTotal, httpclient.NewHTTPClient(httpCfg, log), log))
	}
	if cfg.SafeBrowsing.Enabled {
		httpCfg := httpclient.DefaultHTTPClientConfig()
		httpCfg.Timeout = cfg.SafeBrowsing.Timeout()
		providers = append(providers, NewSafeBrowsingProvider(cfg.SafeBrowsing, httpclient.NewHTTPClient(httpCfg, log), log))
	}
	if len(providers) == 0 {
		return nil
	}

	return &Client{
		providers: providers,
		timeout:   timeout,
		logger:    clientLogger,
	}
}

// NewClientWithProviders builds a client around explicit providers.
func NewClientWithProviders(timeout time.Duration, log zerolog.Logger, providers ...Provider) *Client {
	return &Client{
		providers: providers,
		timeout:   timeout,
		logger:    log.With().Str("component", "ReputationClient").Logger(),
	}
}

// Lookup queries all applicable providers concurrently and merges their
// signals. It returns an error only when every applicable provider failed;
// with no applicable providers it returns no signals and no error.
func (c *Client) Lookup(ctx context.Context, fp models.Fingerprint) ([]models.Signal, error) {
	applicable := make([]Provider, 0, len(c.providers))
	for _, p := range c.providers {
		if p.Supports(fp.Kind) {
			applicable = append(applicable, p)
		}
	}
	if len(applicable) == 0 {
		return nil, nil
	}

	type result struct {
		provider string
		signals  []models.Signal
		err      error
	}

	results := make(chan result, len(applicable))
	var wg sync.WaitGroup
	for _, p := range applicable {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			queryCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			signals, err := p.Query(queryCtx, fp)
			results <- result{provider: p.Name(), signals: signals, err: err}
		}(p)
	}
	wg.Wait()
	close(results)

	var (
		merged   []models.Signal
		failures []error
		answered int
	)
	for res := range results {
		if res.err != nil {
			c.logProviderFailure(res.provider, res.err)
			failures = append(failures, res.err)
			continue
		}
		answered++
		merged = append(merged, res.signals...)
	}

	if answered == 0 {
		return nil, errors.Join(failures...)
	}
	return merged, nil
}

func (c *Client) logProviderFailure(name string, err error) {
	if errors.Is(err, common.ErrProviderAuth) {
		if _, loaded := c.authWarn.LoadOrStore(name, true); !loaded {
			c.logger.Error().Str("provider", name).Msg("Provider rejected the configured API key, further failures will not be logged")
		}
		return
	}
	c.logger.Warn().Str("provider", name).Err(err).Msg("Provider lookup failed")
}
