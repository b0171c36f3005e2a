package mqtt

import (
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang and exposes the connection as an event stream.
//
// paho delivers messages through callbacks on its own goroutine. Client turns
// those callbacks into Events on a bounded channel so a single consumer can
// poll them in order. When the channel is full the delivery goroutine blocks,
// which pushes back on the broker library instead of dropping messages.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Events must be drained by exactly one consumer.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex

	// logger for connection-loss and status logging (may be nil).
	logger Logger
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// newClient builds an unconnected Client with its event channel.
func newClient(cfg config.MQTTConfig) *Client {
	depth := cfg.Inflight
	if depth < 1 {
		depth = 1
	}
	return &Client{
		cfg:    cfg,
		events: make(chan Event, depth),
		done:   make(chan struct{}),
	}
}

// Connect establishes a connection to the MQTT broker.
//
// It performs the following setup:
//  1. Builds connection options from config (broker URL, auth, TLS, keep-alive)
//  2. Configures Last Will and Testament when a status topic is set
//  3. Routes every inbound publish and connection loss onto Events()
//  4. Attempts the connection with timeout
//  5. Publishes retained online status when a status topic is set
//
// Parameters:
//   - cfg: MQTT configuration from config.yaml
//   - logger: receives connection-loss and status warnings (may be nil)
//
// Returns:
//   - *Client: Connected client ready for Subscribe
//   - error: wraps ErrConnectionFailed if the broker cannot be reached in time
func Connect(cfg config.MQTTConfig, logger Logger) (*Client, error) {
	c := newClient(cfg)
	c.logger = logger

	opts := buildClientOptions(cfg)
	if cfg.StatusTopic != "" {
		configureLWT(opts, cfg.StatusTopic, cfg.Broker.ClientID)
	}

	opts.SetDefaultPublishHandler(func(_ pahomqtt.Client, msg pahomqtt.Message) {
		c.handlePublish(msg)
	})

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleConnectionLost(err)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	if cfg.StatusTopic != "" {
		payload := buildStatusPayload("online", cfg.Broker.ClientID, "")
		if err := c.Publish(cfg.StatusTopic, []byte(payload), byte(cfg.QoS), true); err != nil {
			if c.logger != nil {
				c.logger.Warn("failed to publish online status", "topic", cfg.StatusTopic, "error", err)
			}
		}
	}

	return c, nil
}

// Events returns the connection's event stream.
//
// Inbound publishes arrive in broker delivery order. After an
// EventConnectionLost no further events are sent.
func (c *Client) Events() <-chan Event {
	return c.events
}

// handlePublish enqueues an inbound message, blocking while the queue is full.
func (c *Client) handlePublish(msg pahomqtt.Message) {
	ev := Event{
		Kind:      EventPublish,
		Topic:     msg.Topic(),
		Payload:   msg.Payload(),
		QoS:       msg.Qos(),
		Retained:  msg.Retained(),
		Duplicate: msg.Duplicate(),
	}

	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// handleConnectionLost marks the client disconnected and enqueues the loss.
func (c *Client) handleConnectionLost(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	if c.logger != nil {
		c.logger.Warn("MQTT connection lost", "error", err)
	}

	select {
	case c.events <- Event{Kind: EventConnectionLost, Err: err}:
	case <-c.done:
	}
}

// Close gracefully disconnects from the MQTT broker.
//
// It performs:
//  1. Releases any delivery blocked on a full event queue
//  2. Publishes graceful offline status (different from LWT crash status)
//  3. Disconnects from broker after a quiesce period
//
// Close is idempotent.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.closeOnce.Do(func() {
		close(c.done)

		if c.IsConnected() && c.cfg.StatusTopic != "" {
			payload := buildStatusPayload("offline", c.cfg.Broker.ClientID, "graceful_shutdown")
			token := c.client.Publish(c.cfg.StatusTopic, byte(c.cfg.QoS), true, payload)
			token.WaitTimeout(defaultPublishTimeout)
		}

		c.client.Disconnect(defaultDisconnectQuiesce)

		c.connMu.Lock()
		c.connected = false
		c.connMu.Unlock()
	})

	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}
