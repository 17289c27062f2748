package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDoSetsHeaders(t *testing.T) {
	var gotUserAgent, gotAPIKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotAPIKey = r.Header.Get("X-Apikey")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewHTTPClient(DefaultHTTPClientConfig(), zerolog.Nop())
	resp, err := client.Do(&HTTPRequest{
		Method:  http.MethodGet,
		URL:     server.URL,
		Headers: map[string]string{"x-apikey": "secret"},
		Context: context.Background(),
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "filewarden/1.0", gotUserAgent)
	assert.Equal(t, "secret", gotAPIKey)
}

func TestClientDoRespectsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewHTTPClient(DefaultHTTPClientConfig(), zerolog.Nop())
	_, err := client.Do(&HTTPRequest{Method: http.MethodGet, URL: server.URL, Context: ctx})
	require.Error(t, err)
}

func TestClientLimitsBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 1024))
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.MaxContentSize = 100
	client := NewHTTPClient(cfg, zerolog.Nop())

	resp, err := client.Do(&HTTPRequest{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)
	assert.Len(t, resp.Body, 100)
}

func TestRetryHandlerRetriesOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	rh := NewRetryHandler(RetryHandlerConfig{
		MaxRetries:       2,
		BaseDelay:        time.Millisecond,
		MaxDelay:         10 * time.Millisecond,
		RetryStatusCodes: []int{503},
	}, zerolog.Nop())
	client := NewHTTPClient(DefaultHTTPClientConfig(), zerolog.Nop()).WithRetryHandler(rh)

	resp, err := client.Do(&HTTPRequest{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetryHandlerCalculateDelayCapped(t *testing.T) {
	rh := NewRetryHandler(RetryHandlerConfig{
		MaxRetries: 5,
		BaseDelay:  time.Second,
		MaxDelay:   4 * time.Second,
	}, zerolog.Nop())

	assert.Equal(t, time.Second, rh.CalculateDelay(0))
	assert.Equal(t, 2*time.Second, rh.CalculateDelay(1))
	assert.Equal(t, 4*time.Second, rh.CalculateDelay(2))
	assert.Equal(t, 4*time.Second, rh.CalculateDelay(10))
}

func TestClientWithoutRetryHandlerPerformsSingleRequest(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewHTTPClient(DefaultHTTPClientConfig(), zerolog.Nop())
	resp, err := client.Do(&HTTPRequest{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
