package series_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/sensorbridge/internal/reading"
	"github.com/nerrad567/sensorbridge/internal/series"
	"github.com/nerrad567/sensorbridge/internal/series/seriestest"
)

var sample = reading.Reading{Temperature: 21.4, Pressure: 1013.25, Humidity: 48}

type countingObserver struct {
	written map[string]int
	failed  map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{written: map[string]int{}, failed: map[string]int{}}
}

func (o *countingObserver) SampleWritten(key string) { o.written[key]++ }
func (o *countingObserver) AppendFailed(key string)  { o.failed[key]++ }

func TestWriter_WritesAllFieldsInOrder(t *testing.T) {
	rec := &seriestest.Recorder{}
	w := series.NewWriter(rec, series.DefaultKeys)

	require.NoError(t, w.Write(context.Background(), sample, series.Auto))

	assert.Equal(t, []seriestest.Sample{
		{Key: "TS:TEMPERATURE", TS: series.Auto, Value: 21.4},
		{Key: "TS:PRESSURE", TS: series.Auto, Value: 1013.25},
		{Key: "TS:HUMIDITY", TS: series.Auto, Value: 48},
	}, rec.Samples())
}

func TestWriter_ExplicitTimestamp(t *testing.T) {
	rec := &seriestest.Recorder{}
	w := series.NewWriter(rec, series.DefaultKeys)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, w.Write(context.Background(), sample, series.At(at)))

	for _, s := range rec.Samples() {
		got, ok := s.TS.Time()
		require.True(t, ok)
		assert.True(t, got.Equal(at), "key %s stamped %v", s.Key, got)
	}
}

func TestWriter_FailFast(t *testing.T) {
	storeErr := errors.New("connection reset")
	rec := &seriestest.Recorder{FailOn: map[string]error{"TS:PRESSURE": storeErr}}
	obs := newCountingObserver()
	w := series.NewWriter(rec, series.DefaultKeys, series.WithObserver(obs))

	err := w.Write(context.Background(), sample, series.Auto)
	require.Error(t, err)

	var writeErr *series.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, reading.FieldPressure, writeErr.Field)
	assert.Equal(t, "TS:PRESSURE", writeErr.Key)
	assert.ErrorIs(t, err, series.ErrWriteFailed)
	assert.ErrorIs(t, err, storeErr)

	// Temperature landed, humidity was never attempted.
	assert.Equal(t, []string{"TS:TEMPERATURE", "TS:PRESSURE"}, rec.Calls())
	require.Len(t, rec.Samples(), 1)
	assert.Equal(t, "TS:TEMPERATURE", rec.Samples()[0].Key)

	assert.Equal(t, 1, obs.written["TS:TEMPERATURE"])
	assert.Equal(t, 1, obs.failed["TS:PRESSURE"])
	assert.Zero(t, obs.written["TS:HUMIDITY"])
}

func TestWriter_CustomKeys(t *testing.T) {
	rec := &seriestest.Recorder{}
	keys := series.KeysFromConfig(config.SeriesConfig{
		Temperature: "lab.t",
		Pressure:    "lab.p",
		Humidity:    "lab.h",
	})
	w := series.NewWriter(rec, keys)

	require.NoError(t, w.Write(context.Background(), sample, series.Auto))
	assert.Equal(t, []string{"lab.t", "lab.p", "lab.h"}, rec.Calls())
}

type slowAppender struct{}

func (slowAppender) Append(ctx context.Context, _ string, _ series.Timestamp, _ float64) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestWriter_Timeout(t *testing.T) {
	w := series.NewWriter(slowAppender{}, series.DefaultKeys, series.WithTimeout(20*time.Millisecond))

	err := w.Write(context.Background(), sample, series.Auto)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, series.ErrWriteFailed)
}

func TestTimestamp(t *testing.T) {
	assert.True(t, series.Auto.IsAuto())
	assert.Equal(t, "*", series.Auto.String())
	assert.Zero(t, series.Auto.UnixMilli())

	at := time.UnixMilli(1700000000123)
	ts := series.At(at)
	assert.False(t, ts.IsAuto())
	assert.Equal(t, int64(1700000000123), ts.UnixMilli())
}

func TestKeys_For(t *testing.T) {
	k := series.DefaultKeys
	assert.Equal(t, "TS:TEMPERATURE", k.For(reading.FieldTemperature))
	assert.Equal(t, "TS:PRESSURE", k.For(reading.FieldPressure))
	assert.Equal(t, "TS:HUMIDITY", k.For(reading.FieldHumidity))
	assert.Empty(t, k.For("voltage"))
}
