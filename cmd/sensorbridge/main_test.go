package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/sensorbridge/internal/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestRun_InvalidConfig verifies run fails with a missing config file.
func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("run() error = %v, want loading config failure", err)
	}
}

// TestRun_StoreUnreachable verifies startup fails before touching the broker.
func TestRun_StoreUnreachable(t *testing.T) {
	path := writeConfig(t, `
store:
  url: "redis://127.0.0.1:1/0"
logging:
  level: error
`)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := run(ctx, path)
	if err == nil {
		t.Fatal("run() should fail when the store is unreachable")
	}
	if !strings.Contains(err.Error(), "opening store") {
		t.Errorf("run() error = %v, want opening store failure", err)
	}
}

// TestRun_BrokerUnreachable verifies a failed first connection is fatal.
func TestRun_BrokerUnreachable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "samples.db")
	path := writeConfig(t, `
mqtt:
  broker:
    host: "127.0.0.1"
    port: 1
store:
  url: "sqlite://`+dbPath+`"
logging:
  level: error
`)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := run(ctx, path)
	if err == nil {
		t.Fatal("run() should fail when the broker is unreachable")
	}
	if !strings.Contains(err.Error(), "connecting to MQTT") {
		t.Errorf("run() error = %v, want connecting to MQTT failure", err)
	}
}

// TestRun_SuccessfulStartupAndShutdown requires an MQTT broker at 127.0.0.1:1883.
func TestRun_SuccessfulStartupAndShutdown(t *testing.T) {
	if os.Getenv("SENSORBRIDGE_TEST_BROKER") == "" {
		t.Skip("SENSORBRIDGE_TEST_BROKER not set, skipping integration test")
	}

	dbPath := filepath.Join(t.TempDir(), "samples.db")
	path := writeConfig(t, `
mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "sensorbridge-test"
store:
  url: "sqlite://`+dbPath+`"
api:
  enabled: true
  port: 0
`)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx, path); err != nil {
		t.Errorf("run() error = %v, want clean shutdown", err)
	}
}

func TestLoadConfig_FlagWins(t *testing.T) {
	path := writeConfig(t, "mqtt:\n  topic: from/flag\n")
	t.Setenv("SENSORBRIDGE_CONFIG", "/nonexistent.yaml")

	cfg, source, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if source != path {
		t.Errorf("source = %q, want %q", source, path)
	}
	if cfg.MQTT.Topic != "from/flag" {
		t.Errorf("topic = %q, want from/flag", cfg.MQTT.Topic)
	}
}

func TestLoadConfig_EnvPath(t *testing.T) {
	path := writeConfig(t, "mqtt:\n  topic: from/env\n")
	t.Setenv("SENSORBRIDGE_CONFIG", path)

	cfg, source, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if source != path || cfg.MQTT.Topic != "from/env" {
		t.Errorf("source = %q topic = %q, want %q from/env", source, cfg.MQTT.Topic, path)
	}
}

func TestLoadConfig_DefaultFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("SENSORBRIDGE_CONFIG", "")

	if err := os.MkdirAll(filepath.Join(dir, "configs"), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, defaultConfigPath), []byte("mqtt:\n  topic: from/default\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, source, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if source != defaultConfigPath || cfg.MQTT.Topic != "from/default" {
		t.Errorf("source = %q topic = %q", source, cfg.MQTT.Topic)
	}
}

func TestLoadConfig_BuiltInDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SENSORBRIDGE_CONFIG", "")

	cfg, source, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if source != "defaults" {
		t.Errorf("source = %q, want defaults", source)
	}
	if cfg.MQTT.Topic != "pico_bme280" {
		t.Errorf("topic = %q, want pico_bme280", cfg.MQTT.Topic)
	}
}

func TestOpenHealthProbe_OwnConnection(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{URL: "sqlite://" + filepath.Join(t.TempDir(), "samples.db")}

	st, _, err := store.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}

	probe, err := openHealthProbe(ctx, cfg)
	if err != nil {
		t.Fatalf("openHealthProbe() error = %v", err)
	}
	defer probe.Close() //nolint:errcheck // Test cleanup

	if err := st.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := probe.HealthCheck(ctx); err != nil {
		t.Errorf("probe HealthCheck() after loop store closed = %v, want nil", err)
	}
	if err := st.HealthCheck(ctx); err == nil {
		t.Error("closed loop store still reports healthy")
	}
}

func TestOpenHealthProbe_Unreachable(t *testing.T) {
	_, err := openHealthProbe(context.Background(), config.StoreConfig{URL: "redis://127.0.0.1:1/0"})
	if !errors.Is(err, store.ErrConnectionFailed) {
		t.Errorf("openHealthProbe() error = %v, want store.ErrConnectionFailed", err)
	}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir on Go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
