package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/sensorbridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/sensorbridge/internal/reading"
	"github.com/nerrad567/sensorbridge/internal/series"
)

// Source is the broker connection the loop reads from.
// Satisfied by *mqtt.Client.
type Source interface {
	// Subscribe registers interest in topic. Matching publishes arrive on Events.
	Subscribe(topic string, qos byte) error

	// Events returns the ordered stream of inbound events.
	Events() <-chan mqtt.Event
}

// Logger interface for structured logging.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Observer is notified of loop activity. Used for metrics.
type Observer interface {
	StateChanged(state State)
	MessageHandled(result Result, elapsed time.Duration)
	ConnectionLost()
}

type nopObserver struct{}

func (nopObserver) StateChanged(State)                   {}
func (nopObserver) MessageHandled(Result, time.Duration) {}
func (nopObserver) ConnectionLost()                      {}

// Options holds configuration for creating a bridge.
type Options struct {
	// Source is the connected event source. Required.
	Source Source

	// Writer appends decoded readings. Required.
	Writer *series.Writer

	// Topic is the topic filter to subscribe to. Required.
	Topic string

	// QoS is the subscription QoS.
	QoS byte

	// Logger is optional; nil discards log output.
	Logger Logger

	// Observer is optional.
	Observer Observer
}

// Bridge is the subscription loop.
//
// Thread Safety: Run must be called from one goroutine at a time. State
// may be read concurrently.
type Bridge struct {
	source   Source
	writer   *series.Writer
	topic    string
	qos      byte
	logger   Logger
	observer Observer

	state atomic.Int32
}

// New creates a bridge. Call Run to start it.
func New(opts Options) (*Bridge, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("event source is required")
	}
	if opts.Writer == nil {
		return nil, fmt.Errorf("series writer is required")
	}
	if opts.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	b := &Bridge{
		source:   opts.Source,
		writer:   opts.Writer,
		topic:    opts.Topic,
		qos:      opts.QoS,
		logger:   opts.Logger,
		observer: opts.Observer,
	}
	if b.logger == nil {
		b.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if b.observer == nil {
		b.observer = nopObserver{}
	}
	return b, nil
}

// State returns the current loop state.
func (b *Bridge) State() State {
	return State(b.state.Load())
}

func (b *Bridge) setState(s State) {
	if State(b.state.Swap(int32(s))) != s {
		b.observer.StateChanged(s)
	}
}

// Run subscribes and processes events until the context is cancelled or
// the connection drops.
//
// Returns:
//   - nil when ctx is cancelled
//   - an error wrapping ErrConnectionLost when the broker connection drops
//   - an error wrapping ErrSubscribeFailed if the subscription is refused
func (b *Bridge) Run(ctx context.Context) error {
	b.setState(StateConnecting)

	if err := b.source.Subscribe(b.topic, b.qos); err != nil {
		b.setState(StateTerminating)
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, b.topic, err)
	}
	b.setState(StateSubscribed)
	b.logger.Info("subscribed", "topic", b.topic, "qos", b.qos)

	events := b.source.Events()
	for {
		b.setState(StateReceiving)

		select {
		case <-ctx.Done():
			b.setState(StateTerminating)
			b.logger.Info("subscription loop stopping", "reason", ctx.Err())
			return nil

		case ev, ok := <-events:
			if !ok {
				b.observer.ConnectionLost()
				b.setState(StateTerminating)
				return fmt.Errorf("%w: event stream closed", ErrConnectionLost)
			}

			switch ev.Kind {
			case mqtt.EventConnectionLost:
				b.observer.ConnectionLost()
				b.setState(StateTerminating)
				b.logger.Warn("broker connection lost", "error", ev.Err)
				if ev.Err != nil {
					return fmt.Errorf("%w: %w", ErrConnectionLost, ev.Err)
				}
				return ErrConnectionLost

			case mqtt.EventPublish:
				if !mqtt.MatchTopic(b.topic, ev.Topic) {
					b.logger.Debug("ignoring message on unrelated topic", "topic", ev.Topic)
					b.observer.MessageHandled(ResultIgnored, 0)
					continue
				}
				b.setState(StateProcessing)
				b.handle(ctx, ev)

			default:
				b.observer.MessageHandled(ResultIgnored, 0)
			}
		}
	}
}

// handle decodes one publish and writes its reading. Failures are logged
// and the message is dropped.
func (b *Bridge) handle(ctx context.Context, ev mqtt.Event) {
	start := time.Now()
	ref := uuid.NewString()
	result := ResultProcessed

	defer func() {
		if r := recover(); r != nil {
			result = ResultDropped
			b.logger.Error("message handling panicked, message dropped",
				"message_ref", ref,
				"topic", ev.Topic,
				"panic", r,
			)
		}
		b.observer.MessageHandled(result, time.Since(start))
	}()

	b.logger.Info("message received",
		"message_ref", ref,
		"topic", ev.Topic,
		"size", len(ev.Payload),
		"payload", payloadPreview(ev.Payload),
		"qos", ev.QoS,
		"retained", ev.Retained,
		"duplicate", ev.Duplicate,
	)

	r, err := reading.Decode(ev.Payload)
	if err != nil {
		result = ResultDecodeError
		b.logger.Warn("dropping message, decode failed",
			"message_ref", ref,
			"topic", ev.Topic,
			"error", err,
		)
		return
	}

	b.logger.Info("reading decoded",
		"message_ref", ref,
		"temperature", r.Temperature,
		"pressure", r.Pressure,
		"humidity", r.Humidity,
	)

	if err := b.writer.Write(ctx, r, series.Auto); err != nil {
		result = ResultWriteError
		attrs := []any{"message_ref", ref, "error", err}
		var we *series.WriteError
		if errors.As(err, &we) {
			attrs = append(attrs, "field", we.Field, "series", we.Key)
		}
		b.logger.Error("writing reading failed", attrs...)
	}
}

// maxLoggedPayload caps how much of a raw message is logged.
const maxLoggedPayload = 256

// payloadPreview returns the payload as text, cut to maxLoggedPayload bytes.
func payloadPreview(p []byte) string {
	if len(p) <= maxLoggedPayload {
		return string(p)
	}
	return string(p[:maxLoggedPayload]) + "..."
}
