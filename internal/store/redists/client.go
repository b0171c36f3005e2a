package redists

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/sensorbridge/internal/series"
)

// Default timeouts for Redis operations.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultPingTimeout    = 5 * time.Second
)

// autoTimestamp asks the server to stamp the sample with its own clock.
const autoTimestamp = "*"

// duplicatePolicies are the ON_DUPLICATE values RedisTimeSeries accepts.
var duplicatePolicies = map[string]bool{
	"BLOCK": true,
	"FIRST": true,
	"LAST":  true,
	"MIN":   true,
	"MAX":   true,
	"SUM":   true,
}

// Client appends samples to RedisTimeSeries with TS.ADD.
//
// Each Append is one round trip. Series keys are created on first append
// by the module with its default retention.
//
// Thread Safety:
//   - All methods are safe for concurrent use; go-redis pools connections.
type Client struct {
	rdb         *redis.Client
	onDuplicate string
}

// Connect opens a Redis client for the store URL and verifies it with PING.
//
// Parameters:
//   - ctx: Context for the connectivity check
//   - cfg: Store configuration (url and redis.on_duplicate are used)
//
// Returns:
//   - *Client: Connected client ready for Append
//   - error: wraps ErrConnectionFailed or ErrInvalidPolicy
func Connect(ctx context.Context, cfg config.StoreConfig) (*Client, error) {
	policy := strings.ToUpper(cfg.Redis.OnDuplicate)
	if policy != "" && !duplicatePolicies[policy] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPolicy, cfg.Redis.OnDuplicate)
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing url: %w", ErrConnectionFailed, err)
	}

	c := &Client{
		rdb:         redis.NewClient(opts),
		onDuplicate: policy,
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	if err := c.rdb.Ping(pingCtx).Err(); err != nil {
		c.rdb.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}

	return c, nil
}

// Append adds one sample with TS.ADD.
func (c *Client) Append(ctx context.Context, key string, ts series.Timestamp, value float64) error {
	if err := c.rdb.Do(ctx, addArgs(key, ts, value, c.onDuplicate)...).Err(); err != nil {
		return fmt.Errorf("%w: TS.ADD %s: %w", ErrWriteFailed, key, err)
	}
	return nil
}

// addArgs builds: TS.ADD key <*|ms> value [ON_DUPLICATE policy]
func addArgs(key string, ts series.Timestamp, value float64, onDuplicate string) []any {
	var stamp any = autoTimestamp
	if !ts.IsAuto() {
		stamp = ts.UnixMilli()
	}

	args := []any{"TS.ADD", key, stamp, value}
	if onDuplicate != "" {
		args = append(args, "ON_DUPLICATE", onDuplicate)
	}
	return args
}

// HealthCheck verifies the Redis connection with PING.
func (c *Client) HealthCheck(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := c.rdb.Ping(checkCtx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("closing redis client: %w", err)
	}
	return nil
}
