// Package mqtt provides MQTT client connectivity for the sensor bridge.
//
// This package manages:
//   - Connection to the broker with configurable keep-alive and client ID
//   - Topic subscriptions with wildcard support
//   - An ordered, bounded event stream of inbound publishes and connection loss
//   - Optional retained online/offline status with Last Will and Testament
//   - Connection health monitoring
//
// # Event stream
//
// paho invokes callbacks on its own goroutines. The Client converts them
// into Events so the consumer has a single place to wait:
//
//	paho delivery goroutine → Events() (capacity mqtt.inflight) → bridge loop
//
// Auto-reconnect is disabled. Connection loss appears exactly once as an
// EventConnectionLost and the caller decides whether to Connect again.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	if err := client.Subscribe(cfg.MQTT.Topic, 1); err != nil {
//	    return err
//	}
//	for ev := range client.Events() {
//	    if ev.Kind == mqtt.EventConnectionLost {
//	        break
//	    }
//	    handle(ev.Topic, ev.Payload)
//	}
package mqtt
