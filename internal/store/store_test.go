package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/sensorbridge/internal/series"
	"github.com/nerrad567/sensorbridge/internal/store/influx"
	"github.com/nerrad567/sensorbridge/internal/store/redists"
	"github.com/nerrad567/sensorbridge/internal/store/sqlite"
	"github.com/nerrad567/sensorbridge/internal/store/victoria"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := config.StoreConfig{URL: "sqlite://" + filepath.Join(t.TempDir(), "s.db")}

	s, backend, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, config.BackendSQLite, backend)
	assert.IsType(t, &sqlite.Store{}, s)
	assert.NoError(t, s.Append(context.Background(), "TS:TEMPERATURE", series.Auto, 20))
	assert.NoError(t, s.HealthCheck(context.Background()))
}

func TestOpen_HTTPSchemes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/ping":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Run("victoriametrics by scheme", func(t *testing.T) {
		s, backend, err := Open(context.Background(), config.StoreConfig{URL: srv.URL})
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, config.BackendVictoriaMetrics, backend)
		assert.IsType(t, &victoria.Client{}, s)
	})

	t.Run("influxdb by backend", func(t *testing.T) {
		s, backend, err := Open(context.Background(), config.StoreConfig{
			URL:      srv.URL,
			Backend:  config.BackendInfluxDB,
			InfluxDB: config.InfluxDBConfig{Org: "home", Bucket: "sensors"},
		})
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, config.BackendInfluxDB, backend)
		assert.IsType(t, &influx.Client{}, s)
	})
}

func TestOpen_Unsupported(t *testing.T) {
	tests := []config.StoreConfig{
		{URL: "mongodb://localhost"},
		{URL: "redis://localhost:6379", Backend: "cassandra"},
	}

	for _, cfg := range tests {
		_, _, err := Open(context.Background(), cfg)
		assert.ErrorIs(t, err, ErrUnsupportedBackend, "cfg = %+v", cfg)
	}
}

func TestOpen_ConnectionFailed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, backend, err := Open(ctx, config.StoreConfig{URL: "redis://:secret@127.0.0.1:1/0"})
	require.Error(t, err)

	assert.Equal(t, config.BackendRedis, backend)
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.ErrorIs(t, err, redists.ErrConnectionFailed)
	assert.NotContains(t, err.Error(), "secret")
}

func TestRedact(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"redis://localhost:6379", "redis://localhost:6379"},
		{"redis://:hunter2@localhost:6379/0", "redis://:xxxxx@localhost:6379/0"},
		{"postgres://bridge:pw@db/samples?sslmode=disable", "postgres://bridge:xxxxx@db/samples?sslmode=disable"},
		{"sqlite:///var/lib/s.db", "sqlite:///var/lib/s.db"},
		{"http://[::1", "<invalid url>"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Redact(tt.raw), tt.raw)
	}
}
