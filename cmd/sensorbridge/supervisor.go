package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/sensorbridge/internal/bridge"
	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/sensorbridge/internal/infrastructure/logging"
	"github.com/nerrad567/sensorbridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/sensorbridge/internal/metrics"
	"github.com/nerrad567/sensorbridge/internal/series"
)

// brokerClient is the part of *mqtt.Client the supervisor uses.
type brokerClient interface {
	bridge.Source
	IsConnected() bool
	Close() error
}

type connectFunc func(cfg config.MQTTConfig, logger mqtt.Logger) (brokerClient, error)

func connectMQTT(cfg config.MQTTConfig, logger mqtt.Logger) (brokerClient, error) {
	c, err := mqtt.Connect(cfg, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// supervisor owns the broker connection. It connects, runs one bridge
// per connection and reconnects with exponential backoff when the
// connection drops.
//
// Thread Safety: run is called once; BrokerConnected and LoopState may be
// called concurrently from the API server.
type supervisor struct {
	cfg     *config.Config
	writer  *series.Writer
	logger  *logging.Logger
	metrics *metrics.Metrics
	connect connectFunc

	// delayUnit scales reconnect.initial_delay and max_delay.
	delayUnit time.Duration

	mu       sync.RWMutex
	client   brokerClient
	loop     *bridge.Bridge
	sessions int
}

func newSupervisor(cfg *config.Config, writer *series.Writer, logger *logging.Logger, m *metrics.Metrics) *supervisor {
	return &supervisor{
		cfg:       cfg,
		writer:    writer,
		logger:    logger,
		metrics:   m,
		connect:   connectMQTT,
		delayUnit: time.Second,
	}
}

// run connects and processes messages until ctx is cancelled.
//
// The first session must connect and subscribe; failing either is a
// startup error. Later losses are retried while reconnect is enabled and
// attempts remain. A session whose subscription is refused counts as a
// failed attempt.
func (s *supervisor) run(ctx context.Context) error {
	rc := s.cfg.MQTT.Reconnect
	initial := time.Duration(rc.InitialDelay) * s.delayUnit
	maxDelay := time.Duration(rc.MaxDelay) * s.delayUnit

	everConnected := false
	failures := 0
	backoff := initial

	for {
		established, err := s.session(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		if established {
			everConnected = true
			failures = 0
			backoff = initial
		}
		if !everConnected {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		if !rc.Enabled {
			return err
		}

		failures++
		if rc.MaxAttempts > 0 && failures > rc.MaxAttempts {
			return fmt.Errorf("giving up after %d reconnect attempts: %w", rc.MaxAttempts, err)
		}

		s.logger.Warn("broker unavailable, reconnecting",
			"attempt", failures,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxDelay {
			backoff = maxDelay
		}
	}
}

// session runs one connection. established reports whether the broker
// accepted both the connection and the subscription, which resets the
// backoff.
func (s *supervisor) session(ctx context.Context) (established bool, err error) {
	client, err := s.connect(s.cfg.MQTT, s.logger)
	if err != nil {
		return false, err
	}
	defer func() {
		s.mu.Lock()
		s.client = nil
		s.mu.Unlock()
		if closeErr := client.Close(); closeErr != nil {
			s.logger.Error("error closing MQTT", "error", closeErr)
		}
	}()

	s.mu.Lock()
	s.sessions++
	log := s.logger.With("session", s.sessions)
	s.mu.Unlock()

	log.Info("MQTT connected",
		"broker", s.cfg.BrokerAddress(),
		"client_id", s.cfg.MQTT.Broker.ClientID,
		"keep_alive", s.cfg.GetKeepAlive().String(),
	)

	opts := bridge.Options{
		Source: client,
		Writer: s.writer,
		Topic:  s.cfg.MQTT.Topic,
		QoS:    byte(s.cfg.MQTT.QoS),
		Logger: log,
	}
	if s.metrics != nil {
		opts.Observer = s.metrics
	}

	loop, err := bridge.New(opts)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	reconnected := s.loop != nil
	s.client = client
	s.loop = loop
	s.mu.Unlock()

	if reconnected && s.metrics != nil {
		s.metrics.Reconnected()
	}

	err = loop.Run(ctx)
	if errors.Is(err, bridge.ErrSubscribeFailed) {
		return false, err
	}
	return true, err
}

// BrokerConnected implements api.Runtime.
func (s *supervisor) BrokerConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil && s.client.IsConnected()
}

// LoopState implements api.Runtime.
func (s *supervisor) LoopState() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loop == nil {
		return bridge.StateConnecting.String()
	}
	return s.loop.State().String()
}
