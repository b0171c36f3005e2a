// Package metrics exposes Prometheus counters for the bridge.
//
// All collectors live on a private registry so tests can create as many
// Metrics as they like. Metrics implements both series.Observer and
// bridge.Observer; pass it to series.WithObserver and bridge.Options.
//
//	sensorbridge_messages_total{result}
//	sensorbridge_samples_written_total{series}
//	sensorbridge_append_errors_total{series}
//	sensorbridge_processing_seconds
//	sensorbridge_loop_state
//	sensorbridge_connection_losses_total
//	sensorbridge_reconnects_total
package metrics
