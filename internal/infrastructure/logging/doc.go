// Package logging provides structured logging for the sensor bridge.
//
// This package wraps Go's standard log/slog package so every component
// logs through the same handler with the same default fields.
//
// # Formats
//
//   - json: slog's JSON handler, one object per line (machine-parsable)
//   - text: charmbracelet/log rendered through slog (human-readable)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("connected to broker", "broker", addr)
//	logger.Warn("decode failed", "message_ref", ref, "error", err)
//
// Never log MQTT passwords or store credentials. Store URLs are logged with
// the userinfo stripped.
package logging
