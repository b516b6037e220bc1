package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/comfortlab/comfortcast/pkg/util/exception"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

// ClientConfig configures the KMA API client.
type ClientConfig struct {
	BaseURL string `yaml:"baseUrl"`
	APIKey  string `yaml:"apiKey"`
	// TimeoutSeconds bounds a single request; 0 means 30s.
	TimeoutSeconds int `yaml:"timeoutSeconds"`
	// RequestsPerSecond throttles outgoing calls. The upstream API enforces a
	// per-key quota, so the default stays conservative. 0 means 2 rps.
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// Client fetches raw observation payloads from the KMA endpoints, respecting
// a local rate limit so bursty schedules do not exhaust the API quota.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg ClientConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// FetchASOS retrieves the surface-observation payload for the half-open time
// range [from, to). Times are formatted as YYYYMMDDHHMM in UTC, matching the
// payload's own timestamps.
func (c *Client) FetchASOS(ctx context.Context, from, to time.Time) (string, error) {
	return c.fetch(ctx, "/api/typ01/url/kma_sfctm3.php", url.Values{
		"tm1":  {from.UTC().Format("200601021504")},
		"tm2":  {to.UTC().Format("200601021504")},
		"help": {"0"},
	})
}

// FetchPM10 retrieves the dust payload for the half-open time range [from, to).
func (c *Client) FetchPM10(ctx context.Context, from, to time.Time) (string, error) {
	return c.fetch(ctx, "/api/typ01/url/kma_pm10.php", url.Values{
		"tm1": {from.UTC().Format("200601021504")},
		"tm2": {to.UTC().Format("200601021504")},
	})
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait canceled: %w", err)
	}

	params.Set("authKey", c.cfg.APIKey)
	endpoint := c.cfg.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", exception.NewPipelineError("ingest", "failed to build request", err, false, false)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", exception.NewPipelineError("ingest",
			fmt.Sprintf("request to %s failed", path), err, false, true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", exception.NewPipelineError("ingest",
			fmt.Sprintf("reading response from %s failed", path), err, false, true)
	}
	if resp.StatusCode != http.StatusOK {
		return "", exception.NewPipelineError("ingest",
			fmt.Sprintf("request to %s returned status %d", path, resp.StatusCode),
			nil, false, resp.StatusCode >= 500)
	}

	logger.Debugf("ingest: fetched %s (%d bytes in %s)", path, len(body), time.Since(started).Round(time.Millisecond))
	return string(body), nil
}
