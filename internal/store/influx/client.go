package influx

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/sensorbridge/internal/series"
)

// Default timeouts for InfluxDB operations.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultPingTimeout    = 5 * time.Second
)

// defaultMeasurement is used when influxdb.measurement is empty.
const defaultMeasurement = "environment"

// seriesTag carries the series key on every point.
const seriesTag = "series"

// Client wraps the InfluxDB v2 client for sample appends.
//
// It uses the blocking write API so each Append returns only after the
// server has accepted (or refused) the point.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client      influxdb2.Client
	writeAPI    api.WriteAPIBlocking
	measurement string
}

// Connect establishes a connection to the InfluxDB server.
//
// It performs the following setup:
//  1. Creates the client with token authentication
//  2. Verifies connectivity with a ping
//  3. Binds the blocking write API to the configured org and bucket
//
// Parameters:
//   - ctx: Context for the ping
//   - cfg: Store configuration (url and the influxdb section are used)
//
// Returns:
//   - *Client: Connected client ready for Append
//   - error: wraps ErrConnectionFailed or ErrMissingBucket
func Connect(ctx context.Context, cfg config.StoreConfig) (*Client, error) {
	if cfg.InfluxDB.Org == "" || cfg.InfluxDB.Bucket == "" {
		return nil, ErrMissingBucket
	}

	measurement := cfg.InfluxDB.Measurement
	if measurement == "" {
		measurement = defaultMeasurement
	}

	client := influxdb2.NewClient(cfg.URL, cfg.InfluxDB.Token)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	return &Client{
		client:      client,
		writeAPI:    client.WriteAPIBlocking(cfg.InfluxDB.Org, cfg.InfluxDB.Bucket),
		measurement: measurement,
	}, nil
}

// Append writes one point: <measurement>,series=<key> value=<v> [time].
func (c *Client) Append(ctx context.Context, key string, ts series.Timestamp, value float64) error {
	if err := c.writeAPI.WritePoint(ctx, newPoint(c.measurement, key, ts, value)); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// newPoint builds the point for a sample. Auto leaves the time unset so
// the server stamps it.
func newPoint(measurement, key string, ts series.Timestamp, value float64) *write.Point {
	p := influxdb2.NewPointWithMeasurement(measurement).
		AddTag(seriesTag, key).
		AddField("value", value)

	if t, ok := ts.Time(); ok {
		p = p.SetTime(t)
	}
	return p
}

// HealthCheck verifies the InfluxDB connection with a ping.
func (c *Client) HealthCheck(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := c.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check failed: server not healthy")
	}
	return nil
}

// Close shuts down the underlying client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.client.Close()
	return nil
}
