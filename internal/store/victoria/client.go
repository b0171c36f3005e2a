package victoria

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/sensorbridge/internal/series"
)

// Default timeouts for VictoriaMetrics operations.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultRequestTimeout = 5 * time.Second

	// errorBodyLimit caps how much of an error response is quoted in errors.
	errorBodyLimit = 512
)

// Client writes samples to VictoriaMetrics using InfluxDB line protocol.
//
// Every Append is a single synchronous POST to /write, so a nil error means
// VictoriaMetrics accepted the sample.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	url         string
	measurement string
	httpClient  *http.Client
}

// Connect creates a client for the store URL and verifies it via GET /health.
//
// Parameters:
//   - ctx: Context for the health check
//   - cfg: Store configuration (url and victoriametrics.measurement are used)
//
// Returns:
//   - *Client: Connected client ready for Append
//   - error: wraps ErrConnectionFailed if the health check fails
func Connect(ctx context.Context, cfg config.StoreConfig) (*Client, error) {
	measurement := cfg.VictoriaMetrics.Measurement
	if measurement == "" {
		measurement = defaultMeasurement
	}

	c := &Client{
		url:         strings.TrimRight(cfg.URL, "/"),
		measurement: measurement,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}

	healthCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	if err := c.HealthCheck(healthCtx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return c, nil
}

// Append writes one sample as a line tagged with its series key.
func (c *Client) Append(ctx context.Context, key string, ts series.Timestamp, value float64) error {
	line := formatLine(c.measurement, key, ts, value)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/write", bytes.NewBufferString(line))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit)) //nolint:errcheck // Best effort detail
		return fmt.Errorf("%w: HTTP %d: %s", ErrWriteFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// Drain body to allow connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// HealthCheck verifies the VictoriaMetrics connection is alive.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/health", nil)
	if err != nil {
		return fmt.Errorf("victoriametrics health check: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("victoriametrics health check: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("victoriametrics health check: status %d", resp.StatusCode)
	}

	return nil
}

// Close releases idle HTTP connections.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	return nil
}
