package bridge

// State is the position of the subscription loop.
type State int32

// Loop states. Receiving and Processing alternate for each message.
const (
	StateConnecting State = iota
	StateSubscribed
	StateReceiving
	StateProcessing
	StateTerminating
)

// String returns the state name for logs and health output.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateReceiving:
		return "receiving"
	case StateProcessing:
		return "processing"
	case StateTerminating:
		return "terminating"
	default:
		return "unknown"
	}
}

// Result is the outcome of handling one inbound event.
type Result string

// Message results.
const (
	ResultProcessed   Result = "processed"
	ResultDecodeError Result = "decode_error"
	ResultWriteError  Result = "write_error"
	ResultDropped     Result = "dropped"
	ResultIgnored     Result = "ignored"
)
