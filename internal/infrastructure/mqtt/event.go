package mqtt

// EventKind identifies what happened on the connection.
type EventKind int

const (
	// EventPublish is an inbound PUBLISH on a subscribed topic.
	EventPublish EventKind = iota + 1

	// EventConnectionLost is raised once when the broker connection drops.
	// No further events follow it.
	EventConnectionLost
)

// String returns the event kind name for logging.
func (k EventKind) String() string {
	switch k {
	case EventPublish:
		return "publish"
	case EventConnectionLost:
		return "connection_lost"
	default:
		return "unknown"
	}
}

// Event is a single item from the connection's event stream.
//
// Topic, Payload, QoS, Retained and Duplicate are set for EventPublish.
// Err is set for EventConnectionLost.
type Event struct {
	Kind      EventKind
	Topic     string
	Payload   []byte
	QoS       byte
	Retained  bool
	Duplicate bool
	Err       error
}
