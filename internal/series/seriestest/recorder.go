// Package seriestest provides an in-memory series.Appender for tests.
package seriestest

import (
	"context"
	"sync"

	"github.com/nerrad567/sensorbridge/internal/series"
)

// Sample is one recorded append.
type Sample struct {
	Key   string
	TS    series.Timestamp
	Value float64
}

// Recorder records appends in order. Keys listed in FailOn return the
// mapped error instead of being recorded.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
	calls   []string

	FailOn map[string]error
}

// Append implements series.Appender.
func (r *Recorder) Append(ctx context.Context, key string, ts series.Timestamp, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, key)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := r.FailOn[key]; ok {
		return err
	}

	r.samples = append(r.samples, Sample{Key: key, TS: ts, Value: value})
	return nil
}

// Samples returns a copy of the successful appends.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sample(nil), r.samples...)
}

// Calls returns every key Append was called with, including failures.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
