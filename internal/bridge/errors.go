package bridge

import "errors"

// Sentinel errors returned by the bridge.
var (
	// ErrConnectionLost indicates the broker connection dropped while the
	// loop was running. The caller decides whether to reconnect.
	ErrConnectionLost = errors.New("bridge: connection lost")

	// ErrSubscribeFailed indicates the loop could not subscribe to its topic.
	ErrSubscribeFailed = errors.New("bridge: subscribe failed")
)
