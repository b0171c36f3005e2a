package victoria

import (
	"strconv"
	"strings"

	"github.com/nerrad567/sensorbridge/internal/series"
)

// defaultMeasurement is used when victoriametrics.measurement is empty.
const defaultMeasurement = "environment"

// seriesTag carries the series key on every line.
const seriesTag = "series"

// formatLine formats a sample as an InfluxDB line protocol string.
//
// Format: measurement,series=<key> value=<v>[ timestamp_ns]
//
// The timestamp is omitted for series.Auto so VictoriaMetrics stamps the
// sample on receipt. VictoriaMetrics stores it as <measurement>_value{series="<key>"}.
func formatLine(measurement, key string, ts series.Timestamp, value float64) string {
	var b strings.Builder

	b.WriteString(escapeMeasurement(measurement))
	b.WriteByte(',')
	b.WriteString(seriesTag)
	b.WriteByte('=')
	b.WriteString(escapeTag(key))

	b.WriteString(" value=")
	b.WriteString(strconv.FormatFloat(value, 'g', -1, 64))

	if t, ok := ts.Time(); ok {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(t.UnixNano(), 10))
	}

	return b.String()
}

// escapeTag escapes special characters in tag keys/values per line protocol spec.
// Backslashes, commas, equals signs, and spaces must be backslash-escaped;
// an unescaped trailing backslash would swallow the following space.
// Newlines are stripped to prevent line protocol injection.
func escapeTag(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "=", "\\=")
	return s
}

// escapeMeasurement escapes special characters in measurement names.
// Newlines are stripped to prevent line protocol injection.
func escapeMeasurement(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	return s
}
