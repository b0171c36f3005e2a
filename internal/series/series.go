package series

import (
	"context"
	"time"

	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/sensorbridge/internal/reading"
)

// Keys maps each measurement to the series it is appended to.
type Keys struct {
	Temperature string
	Pressure    string
	Humidity    string
}

// DefaultKeys are the series keys used when none are configured.
var DefaultKeys = Keys{
	Temperature: "TS:TEMPERATURE",
	Pressure:    "TS:PRESSURE",
	Humidity:    "TS:HUMIDITY",
}

// KeysFromConfig builds Keys from the store.series section.
func KeysFromConfig(cfg config.SeriesConfig) Keys {
	return Keys{
		Temperature: cfg.Temperature,
		Pressure:    cfg.Pressure,
		Humidity:    cfg.Humidity,
	}
}

// For returns the series key of a reading field, or "" for unknown fields.
func (k Keys) For(field string) string {
	switch field {
	case reading.FieldTemperature:
		return k.Temperature
	case reading.FieldPressure:
		return k.Pressure
	case reading.FieldHumidity:
		return k.Humidity
	default:
		return ""
	}
}

// Timestamp is the time attached to a sample. The zero value is Auto.
type Timestamp struct {
	t   time.Time
	set bool
}

// Auto lets the store stamp the sample when it receives it.
var Auto = Timestamp{}

// At pins the sample to t.
func At(t time.Time) Timestamp {
	return Timestamp{t: t, set: true}
}

// IsAuto reports whether the store assigns the time.
func (ts Timestamp) IsAuto() bool {
	return !ts.set
}

// Time returns the explicit time and true, or the zero time and false for Auto.
func (ts Timestamp) Time() (time.Time, bool) {
	return ts.t, ts.set
}

// UnixMilli returns the explicit time in milliseconds since the epoch.
// It returns 0 for Auto.
func (ts Timestamp) UnixMilli() int64 {
	if !ts.set {
		return 0
	}
	return ts.t.UnixMilli()
}

func (ts Timestamp) String() string {
	if !ts.set {
		return "*"
	}
	return ts.t.UTC().Format(time.RFC3339Nano)
}

// Appender appends one sample to a named series.
//
// Implementations must not retry internally and must not buffer: when
// Append returns nil the sample has been accepted by the store.
type Appender interface {
	Append(ctx context.Context, key string, ts Timestamp, value float64) error
}
