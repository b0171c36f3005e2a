package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// subackFailure is the SUBACK return code for a refused subscription.
const subackFailure = 0x80

// Subscribe asks the broker for messages matching topic at the given QoS.
//
// Matching messages are delivered on Events(). Topics can include MQTT
// wildcards:
//   - + (single-level): "sensors/+/bme280" matches any sensor name
//   - # (multi-level): "sensors/#" matches everything under sensors
//
// Subscriptions are not restored automatically. A new connection needs a
// new Subscribe.
//
// paho completes the token without error when the broker answers SUBACK
// 0x80, so the granted code is checked here. A refused subscription
// returns ErrSubscribeFailed; a downgraded QoS is logged and accepted.
//
// Parameters:
//   - topic: The topic filter to subscribe to
//   - qos: Maximum QoS level for received messages (0, 1, or 2)
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Subscribe(topic string, qos byte) error {
	if err := ValidateTopicFilter(topic); err != nil {
		return err
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	// A nil callback routes matches to the default publish handler.
	token := c.client.Subscribe(topic, qos, nil)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	if st, ok := token.(*pahomqtt.SubscribeToken); ok {
		return c.acceptSuback(topic, qos, st.Result())
	}
	return nil
}

// acceptSuback checks the return code the broker sent for topic.
func (c *Client) acceptSuback(topic string, requested byte, granted map[string]byte) error {
	code, ok := granted[topic]
	switch {
	case !ok:
		return fmt.Errorf("%w: no SUBACK code for %q", ErrSubscribeFailed, topic)
	case code == subackFailure:
		return fmt.Errorf("%w: broker refused %q", ErrSubscribeFailed, topic)
	case code > maxQoS:
		return fmt.Errorf("%w: unexpected SUBACK code 0x%02x for %q", ErrSubscribeFailed, code, topic)
	}

	if code < requested && c.logger != nil {
		c.logger.Warn("broker granted lower QoS than requested",
			"topic", topic,
			"requested", requested,
			"granted", code,
		)
	}
	return nil
}
