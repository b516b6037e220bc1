package ingest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/comfortlab/comfortcast/internal/ingest"
	"github.com/comfortlab/comfortcast/pkg/util/exception"
)

func TestClient_FetchASOS(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte("# TM STN TA\n202403051400 108 17.2\n"))
	}))
	defer server.Close()

	client := ingest.NewClient(ingest.ClientConfig{
		BaseURL:           server.URL,
		APIKey:            "test-key",
		RequestsPerSecond: 1000,
		Burst:             10,
	})

	from := time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	body, err := client.FetchASOS(context.Background(), from, to)
	assert.NoError(t, err)
	assert.Contains(t, body, "202403051400 108 17.2")

	assert.Equal(t, "/api/typ01/url/kma_sfctm3.php", gotPath)
	assert.Equal(t, []string{"202403041400"}, gotQuery["tm1"])
	assert.Equal(t, []string{"202403051400"}, gotQuery["tm2"])
	assert.Equal(t, []string{"test-key"}, gotQuery["authKey"])
}

func TestClient_FetchPM10(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/typ01/url/kma_pm10.php", r.URL.Path)
		_, _ = w.Write([]byte("202403051400,108,22\n"))
	}))
	defer server.Close()

	client := ingest.NewClient(ingest.ClientConfig{
		BaseURL:           server.URL,
		RequestsPerSecond: 1000,
		Burst:             10,
	})

	body, err := client.FetchPM10(context.Background(), time.Now().Add(-time.Hour), time.Now())
	assert.NoError(t, err)
	assert.Contains(t, body, "108,22")
}

func TestClient_ServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := ingest.NewClient(ingest.ClientConfig{
		BaseURL:           server.URL,
		RequestsPerSecond: 1000,
		Burst:             10,
	})

	_, err := client.FetchASOS(context.Background(), time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
	var perr *exception.PipelineError
	if assert.ErrorAs(t, err, &perr) {
		assert.True(t, perr.IsRetryable())
	}
}

func TestClient_ClientErrorIsNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := ingest.NewClient(ingest.ClientConfig{
		BaseURL:           server.URL,
		RequestsPerSecond: 1000,
		Burst:             10,
	})

	_, err := client.FetchASOS(context.Background(), time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
	var perr *exception.PipelineError
	if assert.ErrorAs(t, err, &perr) {
		assert.False(t, perr.IsRetryable())
	}
}

func TestClient_RateLimitWaitHonorsContext(t *testing.T) {
	client := ingest.NewClient(ingest.ClientConfig{
		BaseURL:           "http://127.0.0.1:0",
		RequestsPerSecond: 0.001,
		Burst:             1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	// Burn the single burst token, then the next call must block on the
	// limiter until the context is canceled.
	_, _ = client.FetchASOS(ctx, time.Now().Add(-time.Hour), time.Now())

	cancel()
	_, err := client.FetchASOS(ctx, time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
