// Package config handles loading and validating sensor bridge configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with SENSORBRIDGE_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Every option has a documented default, so the bridge runs without a
// config file at all:
//
//	mqtt.broker.host   broker.hivemq.com
//	mqtt.broker.port   1883
//	mqtt.broker.client_id sensorbridge
//	mqtt.topic         pico_bme280
//	mqtt.keep_alive    15000 (ms)
//	store.url          redis://localhost:6379 (SENSORBRIDGE_STORE_URL)
//
// Security Considerations:
//   - Broker passwords and InfluxDB tokens should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MQTT.Topic)
package config
