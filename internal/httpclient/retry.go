package httpclient

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// RetryHandler handles HTTP request retries with exponential backoff. The
// user-facing analysis path never retries (a slow check is worse than a
// partial one); this exists for background refresh policies.
type RetryHandler struct {
	maxRetries       int
	baseDelay        time.Duration
	maxDelay         time.Duration
	enableJitter     bool
	retryStatusCodes map[int]bool
	logger           zerolog.Logger
}

// RetryHandlerConfig configuration for retry handler
type RetryHandlerConfig struct {
	MaxRetries       int           `json:"max_retries" yaml:"max_retries"`
	BaseDelay        time.Duration `json:"base_delay" yaml:"base_delay"`
	MaxDelay         time.Duration `json:"max_delay" yaml:"max_delay"`
	EnableJitter     bool          `json:"enable_jitter" yaml:"enable_jitter"`
	RetryStatusCodes []int         `json:"retry_status_codes" yaml:"retry_status_codes"`
}

// DefaultRetryHandlerConfig returns a conservative retry policy: two retries
// on rate-limit and server errors.
func DefaultRetryHandlerConfig() RetryHandlerConfig {
	return RetryHandlerConfig{
		MaxRetries:       2,
		BaseDelay:        time.Second,
		MaxDelay:         30 * time.Second,
		EnableJitter:     true,
		RetryStatusCodes: []int{429, 500, 502, 503, 504},
	}
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(config RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	statusCodeMap := make(map[int]bool)
	for _, code := range config.RetryStatusCodes {
		statusCodeMap[code] = true
	}

	return &RetryHandler{
		maxRetries:       config.MaxRetries,
		baseDelay:        config.BaseDelay,
		maxDelay:         config.MaxDelay,
		enableJitter:     config.EnableJitter,
		retryStatusCodes: statusCodeMap,
		logger:           logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// ShouldRetry determines if a request should be retried based on status code
func (rh *RetryHandler) ShouldRetry(statusCode int, attempt int) bool {
	if attempt >= rh.maxRetries {
		return false
	}
	return rh.retryStatusCodes[statusCode]
}

// CalculateDelay calculates the delay for the next retry attempt using exponential backoff
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return rh.baseDelay
	}

	delay := rh.baseDelay * time.Duration(math.Pow(2, float64(attempt)))
	if delay > rh.maxDelay {
		delay = rh.maxDelay
	}

	if rh.enableJitter && delay > 10*time.Millisecond {
		jitter := time.Duration(rand.Intn(int(delay.Milliseconds()/10))) * time.Millisecond
		delay += jitter
	}

	return delay
}

// DoWithRetry executes an HTTP request with retry logic
func (rh *RetryHandler) DoWithRetry(ctx context.Context, doFunc func(*HTTPRequest) (*HTTPResponse, error), req *HTTPRequest) (*HTTPResponse, error) {
	var lastResp *HTTPResponse
	var lastErr error

	for attempt := 0; attempt <= rh.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := doFunc(req)
		if err != nil {
			lastErr = err
			lastResp = nil
			if attempt < rh.maxRetries {
				rh.logger.Debug().
					Str("url", req.URL).
					Int("attempt", attempt+1).
					Err(err).
					Msg("Network error, retrying")
				continue
			}
			break
		}

		lastResp = resp
		lastErr = nil

		if !rh.ShouldRetry(resp.StatusCode, attempt) {
			return resp, nil
		}

		delay := rh.CalculateDelay(attempt)
		rh.logger.Warn().
			Str("url", req.URL).
			Int("status_code", resp.StatusCode).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Retryable status, waiting before retry")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return lastResp, nil
}
