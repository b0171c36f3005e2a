package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the sensor bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	API     APIConfig     `yaml:"api"`
}

// MQTTConfig contains MQTT broker connection and subscription settings.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`

	// Topic is the single topic the bridge subscribes to.
	Topic string `yaml:"topic"`
	QoS   int    `yaml:"qos"`

	// KeepAlive is the MQTT keep-alive interval in milliseconds.
	KeepAlive int `yaml:"keep_alive"`

	// Inflight bounds the number of received messages queued for the loop.
	Inflight int `yaml:"inflight"`

	// StatusTopic receives retained online/offline status. Empty disables it.
	StatusTopic string `yaml:"status_topic"`

	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains the process-level reconnection policy.
// Delays are in seconds. MaxAttempts of 0 means unlimited.
type MQTTReconnectConfig struct {
	Enabled      bool `yaml:"enabled"`
	InitialDelay int  `yaml:"initial_delay"`
	MaxDelay     int  `yaml:"max_delay"`
	MaxAttempts  int  `yaml:"max_attempts"`
}

// StoreConfig contains time-series store settings.
type StoreConfig struct {
	// URL is the store connection string, e.g. redis://localhost:6379.
	URL string `yaml:"url"`

	// Backend forces a backend. Empty selects one from the URL scheme.
	// One of: redis, victoriametrics, influxdb, sqlite, postgres.
	Backend string `yaml:"backend"`

	// WriteTimeout bounds each append in milliseconds. 0 disables the bound.
	WriteTimeout int `yaml:"write_timeout"`

	Series          SeriesConfig          `yaml:"series"`
	Redis           RedisConfig           `yaml:"redis"`
	InfluxDB        InfluxDBConfig        `yaml:"influxdb"`
	VictoriaMetrics VictoriaMetricsConfig `yaml:"victoriametrics"`
	SQLite          SQLiteConfig          `yaml:"sqlite"`
}

// SeriesConfig maps each measurement to its series key in the store.
type SeriesConfig struct {
	Temperature string `yaml:"temperature"`
	Pressure    string `yaml:"pressure"`
	Humidity    string `yaml:"humidity"`
}

// RedisConfig contains RedisTimeSeries-specific settings.
type RedisConfig struct {
	// OnDuplicate is the TS.ADD ON_DUPLICATE policy. Empty uses the key's policy.
	OnDuplicate string `yaml:"on_duplicate"`
}

// InfluxDBConfig contains InfluxDB v2 settings.
type InfluxDBConfig struct {
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
}

// VictoriaMetricsConfig contains VictoriaMetrics settings.
type VictoriaMetricsConfig struct {
	Measurement string `yaml:"measurement"`
}

// SQLiteConfig contains SQLite sample store settings.
type SQLiteConfig struct {
	WALMode     bool `yaml:"wal_mode"`
	BusyTimeout int  `yaml:"busy_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// APIConfig contains the health and metrics HTTP server settings.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// Store backends.
const (
	BackendRedis           = "redis"
	BackendVictoriaMetrics = "victoriametrics"
	BackendInfluxDB        = "influxdb"
	BackendSQLite          = "sqlite"
	BackendPostgres        = "postgres"
)

// envPrefix is prepended to every environment override.
const envPrefix = "SENSORBRIDGE_"

// minKeepAlive is the shortest keep-alive the broker library accepts (1s).
const minKeepAlive = 1000

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SENSORBRIDGE_SECTION_KEY
// For example: SENSORBRIDGE_MQTT_HOST, SENSORBRIDGE_STORE_URL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in defaults with environment overrides applied.
// It is used when no configuration file is present.
func Default() (*Config, error) {
	cfg := defaultConfig()

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with the documented defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "broker.hivemq.com",
				Port:     1883,
				ClientID: "sensorbridge",
			},
			Topic:     "pico_bme280",
			QoS:       1,
			KeepAlive: 15000,
			Inflight:  10,
			Reconnect: MQTTReconnectConfig{
				Enabled:      true,
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Store: StoreConfig{
			URL: "redis://localhost:6379",
			Series: SeriesConfig{
				Temperature: "TS:TEMPERATURE",
				Pressure:    "TS:PRESSURE",
				Humidity:    "TS:HUMIDITY",
			},
			Redis: RedisConfig{
				OnDuplicate: "LAST",
			},
			InfluxDB: InfluxDBConfig{
				Measurement: "environment",
			},
			VictoriaMetrics: VictoriaMetricsConfig{
				Measurement: "environment",
			},
			SQLite: SQLiteConfig{
				WALMode:     true,
				BusyTimeout: 5,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		API: APIConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    9464,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SENSORBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	// MQTT
	if v := os.Getenv(envPrefix + "MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv(envPrefix + "MQTT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sMQTT_PORT %q: %w", envPrefix, v, err)
		}
		cfg.MQTT.Broker.Port = port
	}
	if v := os.Getenv(envPrefix + "MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.Broker.ClientID = v
	}
	if v := os.Getenv(envPrefix + "MQTT_TOPIC"); v != "" {
		cfg.MQTT.Topic = v
	}
	if v := os.Getenv(envPrefix + "MQTT_KEEP_ALIVE"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sMQTT_KEEP_ALIVE %q: %w", envPrefix, v, err)
		}
		cfg.MQTT.KeepAlive = ms
	}
	if v := os.Getenv(envPrefix + "MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv(envPrefix + "MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Store
	if v := os.Getenv(envPrefix + "STORE_URL"); v != "" {
		cfg.Store.URL = v
	}
	if v := os.Getenv(envPrefix + "STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv(envPrefix + "INFLUXDB_TOKEN"); v != "" {
		cfg.Store.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.Broker.ClientID == "" {
		errs = append(errs, "mqtt.broker.client_id is required")
	}
	if c.MQTT.Topic == "" {
		errs = append(errs, "mqtt.topic is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.KeepAlive < minKeepAlive {
		errs = append(errs, "mqtt.keep_alive must be at least 1000 (milliseconds)")
	}
	if c.MQTT.Inflight < 1 {
		errs = append(errs, "mqtt.inflight must be at least 1")
	}
	if c.MQTT.Reconnect.Enabled {
		if c.MQTT.Reconnect.InitialDelay < 1 {
			errs = append(errs, "mqtt.reconnect.initial_delay must be at least 1 second")
		}
		if c.MQTT.Reconnect.MaxDelay < c.MQTT.Reconnect.InitialDelay {
			errs = append(errs, "mqtt.reconnect.max_delay must not be less than initial_delay")
		}
		if c.MQTT.Reconnect.MaxAttempts < 0 {
			errs = append(errs, "mqtt.reconnect.max_attempts must not be negative")
		}
	}

	// Store validation
	errs = append(errs, c.Store.validate()...)

	// Logging validation
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, "logging.format must be json or text")
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (s StoreConfig) validate() []string {
	var errs []string

	if s.URL == "" {
		errs = append(errs, "store.url is required")
	} else if _, err := s.ResolveBackend(); err != nil {
		errs = append(errs, err.Error())
	}

	if s.WriteTimeout < 0 {
		errs = append(errs, "store.write_timeout must not be negative")
	}

	keys := map[string]string{
		"temperature": s.Series.Temperature,
		"pressure":    s.Series.Pressure,
		"humidity":    s.Series.Humidity,
	}
	seen := make(map[string]string, len(keys))
	for _, field := range []string{"temperature", "pressure", "humidity"} {
		key := keys[field]
		if key == "" {
			errs = append(errs, fmt.Sprintf("store.series.%s is required", field))
			continue
		}
		if other, dup := seen[key]; dup {
			errs = append(errs, fmt.Sprintf("store.series.%s duplicates store.series.%s", field, other))
			continue
		}
		seen[key] = field
	}

	return errs
}

// ResolveBackend returns the store backend, either as configured or
// inferred from the URL scheme.
func (s StoreConfig) ResolveBackend() (string, error) {
	if s.Backend != "" {
		switch b := strings.ToLower(s.Backend); b {
		case BackendRedis, BackendVictoriaMetrics, BackendInfluxDB, BackendSQLite, BackendPostgres:
			return b, nil
		default:
			return "", fmt.Errorf("store.backend %q is not supported", s.Backend)
		}
	}

	u, err := url.Parse(s.URL)
	if err != nil {
		return "", fmt.Errorf("store.url is invalid: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "redis", "rediss":
		return BackendRedis, nil
	case "http", "https":
		return BackendVictoriaMetrics, nil
	case "sqlite", "sqlite3", "file":
		return BackendSQLite, nil
	case "postgres", "postgresql":
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("store.url scheme %q is not supported", u.Scheme)
	}
}

// GetKeepAlive returns the MQTT keep-alive interval as a Duration.
func (c *Config) GetKeepAlive() time.Duration {
	return time.Duration(c.MQTT.KeepAlive) * time.Millisecond
}

// GetWriteTimeout returns the per-append store timeout. Zero means unbounded.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.Store.WriteTimeout) * time.Millisecond
}

// BrokerAddress returns host:port of the configured broker.
func (c *Config) BrokerAddress() string {
	return fmt.Sprintf("%s:%d", c.MQTT.Broker.Host, c.MQTT.Broker.Port)
}
