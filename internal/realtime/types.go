package realtime

// ConnState is the lifecycle of the single logical connection the client
// owns. Disconnected is both the initial state and the only state an
// external caller can force via Disconnect.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "invalid"
	}
}

// State is the externally visible projection mutated only by the client.
// Connected is true strictly between a handshake acknowledgment and a
// detected failure or close.
type State struct {
	Text      string
	Connected bool
	Conn      ConnState
	LastErr   error
}

// Callbacks are invoked from the client's own goroutines; observers that
// feed a UI layer should marshal onto their own context.
type Callbacks struct {
	OnStateChange   func(state ConnState)
	OnTranscription func(text string)
	OnSystemNotice  func(message string)
	OnError         func(err error)
}
