package series

import (
	"context"
	"time"

	"github.com/nerrad567/sensorbridge/internal/reading"
)

// Observer is notified of each append outcome. Used for metrics.
type Observer interface {
	SampleWritten(key string)
	AppendFailed(key string)
}

// Option configures a Writer.
type Option func(*Writer)

// WithTimeout bounds each append. Zero or negative leaves appends unbounded.
func WithTimeout(d time.Duration) Option {
	return func(w *Writer) {
		w.timeout = d
	}
}

// WithObserver registers an Observer for append outcomes.
func WithObserver(o Observer) Option {
	return func(w *Writer) {
		w.observer = o
	}
}

// Writer turns a Reading into one sample per measurement.
//
// Thread Safety:
//   - Writer holds no mutable state; concurrency depends on the Appender.
type Writer struct {
	store    Appender
	keys     Keys
	timeout  time.Duration
	observer Observer
}

// NewWriter creates a Writer appending to store under keys.
func NewWriter(store Appender, keys Keys, opts ...Option) *Writer {
	w := &Writer{
		store: store,
		keys:  keys,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write appends temperature, pressure and humidity, in that order, all
// with the same timestamp.
//
// The first failing append stops the write and is returned as a
// *WriteError. Earlier samples stay written. Nothing is retried.
func (w *Writer) Write(ctx context.Context, r reading.Reading, ts Timestamp) error {
	for _, field := range reading.Fields {
		key := w.keys.For(field)
		value, _ := r.Value(field)

		if err := w.append(ctx, key, ts, value); err != nil {
			if w.observer != nil {
				w.observer.AppendFailed(key)
			}
			return &WriteError{Field: field, Key: key, Err: err}
		}

		if w.observer != nil {
			w.observer.SampleWritten(key)
		}
	}

	return nil
}

func (w *Writer) append(ctx context.Context, key string, ts Timestamp, value float64) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	return w.store.Append(ctx, key, ts, value)
}
