// sensorbridge subscribes to an MQTT topic carrying environmental sensor
// readings and appends each reading to a time-series store as three
// samples: temperature, pressure and humidity.
//
// Usage:
//
//	sensorbridge [-config path/to/config.yaml]
//
// Without -config the file is taken from SENSORBRIDGE_CONFIG, then
// configs/config.yaml if it exists, and otherwise built-in defaults plus
// SENSORBRIDGE_* environment overrides are used.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/sensorbridge/internal/api"
	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/sensorbridge/internal/infrastructure/logging"
	"github.com/nerrad567/sensorbridge/internal/metrics"
	"github.com/nerrad567/sensorbridge/internal/series"
	"github.com/nerrad567/sensorbridge/internal/store"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath string) error {
	log := logging.Default()
	log.Info("starting sensorbridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, source, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"source", source,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	st, backend, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		log.Info("closing store")
		if closeErr := st.Close(); closeErr != nil {
			log.Error("error closing store", "error", closeErr)
		}
	}()
	log.Info("store connected",
		"backend", backend,
		"url", store.Redact(cfg.Store.URL),
	)

	m := metrics.New()
	keys := series.KeysFromConfig(cfg.Store.Series)
	writer := series.NewWriter(st, keys,
		series.WithTimeout(cfg.GetWriteTimeout()),
		series.WithObserver(m),
	)
	log.Info("series keys",
		"temperature", keys.Temperature,
		"pressure", keys.Pressure,
		"humidity", keys.Humidity,
	)

	sup := newSupervisor(cfg, writer, log, m)

	if cfg.API.Enabled {
		probe, probeErr := openHealthProbe(ctx, cfg.Store)
		if probeErr != nil {
			return probeErr
		}
		defer func() {
			if closeErr := probe.Close(); closeErr != nil {
				log.Error("error closing store health probe", "error", closeErr)
			}
		}()

		server, apiErr := api.New(api.Deps{
			Config:  cfg.API,
			Logger:  log,
			Metrics: m.Handler(),
			Store:   probe,
			Backend: backend,
			Runtime: sup,
			Version: version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := server.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	if err := sup.run(ctx); err != nil {
		return err
	}

	log.Info("sensorbridge stopped")
	return nil
}

// openHealthProbe opens a second store connection for the API. The loop's
// connection is never shared, so health checks cannot queue behind appends.
func openHealthProbe(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	probe, _, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening store health probe: %w", err)
	}
	return probe, nil
}

// loadConfig resolves the config file and loads it. The returned source
// names where the configuration came from, for logging.
func loadConfig(flagPath string) (*config.Config, string, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv("SENSORBRIDGE_CONFIG")
	}
	if path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}

	if _, err := os.Stat(defaultConfigPath); err == nil {
		cfg, loadErr := config.Load(defaultConfigPath)
		return cfg, defaultConfigPath, loadErr
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("checking %s: %w", defaultConfigPath, err)
	}

	cfg, err := config.Default()
	return cfg, "defaults", err
}
