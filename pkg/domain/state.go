package domain

// SessionState is the lifecycle of an engine session.
type SessionState int

const (
	StateIdle       SessionState = iota // Engine ready, no search running
	StateAnalyzing                      // Search running, updates flowing
	StateStopping                       // Stop sent, waiting for bestmove
	StateTerminated                     // Process gone; the session cannot recover
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnalyzing:
		return "analyzing"
	case StateStopping:
		return "stopping"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// MarshalText lets states appear as strings in JSON payloads.
func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AllStates lists every state, in declaration order.
var AllStates = []SessionState{StateIdle, StateAnalyzing, StateStopping, StateTerminated}
