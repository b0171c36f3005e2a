package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/sensorbridge/internal/reading"
	"github.com/nerrad567/sensorbridge/internal/series"
	"github.com/nerrad567/sensorbridge/migrations"
)

type row struct {
	key   string
	ts    int64
	value float64
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samples.db")

	s, err := Open(context.Background(), config.StoreConfig{URL: "sqlite://" + path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func rows(t *testing.T, s *Store) []row {
	t.Helper()
	rs, err := s.db.QueryContext(context.Background(),
		"SELECT series_key, ts, value FROM samples ORDER BY id")
	require.NoError(t, err)
	defer rs.Close()

	var out []row
	for rs.Next() {
		var r row
		require.NoError(t, rs.Scan(&r.key, &r.ts, &r.value))
		out = append(out, r)
	}
	require.NoError(t, rs.Err())
	return out
}

func TestPathFromURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "sqlite:///var/lib/sensorbridge/samples.db", want: "/var/lib/sensorbridge/samples.db"},
		{raw: "sqlite3:///tmp/x.db", want: "/tmp/x.db"},
		{raw: "sqlite://data/x.db", want: "data/x.db"},
		{raw: "file:x.db", want: "x.db"},
		{raw: "file:x.db?cache=shared", want: "x.db"},
		{raw: "sqlite::memory:", want: ":memory:"},
		{raw: "sqlite://", wantErr: true},
		{raw: "sqlite:///var/lib/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := PathFromURL(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_AppliesMigrations(t *testing.T) {
	s := openTestStore(t)

	var versions int
	require.NoError(t, s.db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)

	var tables int
	require.NoError(t, s.db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'samples'").Scan(&tables))
	assert.Equal(t, 1, tables)
}

func TestOpen_MigrationsRunOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "TS:TEMPERATURE", series.Auto, 21.4))
	require.NoError(t, s.db.Migrate(ctx, migrations.FS))

	var versions int
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
	assert.Len(t, rows(t, s), 1, "samples survive a second migrate")
}

func TestOpen_InvalidURL(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{URL: "sqlite://"})
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{URL: "sqlite::memory:"})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Append(context.Background(), "TS:TEMPERATURE", series.Auto, 1))
	assert.Len(t, rows(t, s), 1)
}

func TestAppend_Auto(t *testing.T) {
	s := openTestStore(t)
	before := time.Now().UnixMilli()

	require.NoError(t, s.Append(context.Background(), "TS:TEMPERATURE", series.Auto, 21.4))

	after := time.Now().UnixMilli()
	got := rows(t, s)
	require.Len(t, got, 1)
	assert.Equal(t, "TS:TEMPERATURE", got[0].key)
	assert.Equal(t, 21.4, got[0].value)
	// The database clock stamps auto rows; allow for rounding at the edges.
	assert.GreaterOrEqual(t, got[0].ts, before-1)
	assert.LessOrEqual(t, got[0].ts, after+1)
}

func TestAppend_ExplicitTimestamp(t *testing.T) {
	s := openTestStore(t)
	at := time.UnixMilli(1700000000123)

	require.NoError(t, s.Append(context.Background(), "TS:PRESSURE", series.At(at), 1013.25))

	assert.Equal(t, []row{{key: "TS:PRESSURE", ts: 1700000000123, value: 1013.25}}, rows(t, s))
}

func TestAppend_KeepsDuplicates(t *testing.T) {
	s := openTestStore(t)
	at := series.At(time.UnixMilli(1000))

	require.NoError(t, s.Append(context.Background(), "TS:HUMIDITY", at, 40))
	require.NoError(t, s.Append(context.Background(), "TS:HUMIDITY", at, 41))

	assert.Len(t, rows(t, s), 2)
}

func TestAppend_Closed(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	err := s.Append(context.Background(), "TS:HUMIDITY", series.Auto, 1)
	assert.True(t, errors.Is(err, ErrWriteFailed), "error = %v", err)
}

func TestHealthCheck(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.HealthCheck(context.Background()))
}

func TestWriter_EndToEnd(t *testing.T) {
	s := openTestStore(t)
	w := series.NewWriter(s, series.DefaultKeys)

	at := series.At(time.UnixMilli(5000))
	require.NoError(t, w.Write(context.Background(), reading.Reading{Temperature: 21.4, Pressure: 1013.25, Humidity: 48}, at))

	assert.Equal(t, []row{
		{key: "TS:TEMPERATURE", ts: 5000, value: 21.4},
		{key: "TS:PRESSURE", ts: 5000, value: 1013.25},
		{key: "TS:HUMIDITY", ts: 5000, value: 48},
	}, rows(t, s))
}
