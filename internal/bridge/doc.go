// Package bridge runs the subscription loop that turns broker messages
// into time-series samples.
//
// A Bridge owns nothing: the event source (a connected MQTT client) and
// the series writer are created by the caller and passed in. Run
// subscribes to one topic and then blocks on the event stream:
//
//	b, err := bridge.New(bridge.Options{
//	    Source: client,
//	    Writer: series.NewWriter(st, keys),
//	    Topic:  cfg.MQTT.Topic,
//	    QoS:    cfg.MQTT.QoS,
//	    Logger: log,
//	})
//	err = b.Run(ctx) // nil on ctx cancel, ErrConnectionLost on drop
//
// Decode and write failures are logged and the message is dropped; only
// loss of the connection ends the loop.
package bridge
