package domain

// Hooks are optional callbacks fired by a session on the caller's goroutine.
// Any field may be nil.
type Hooks struct {
	// OnCommand fires after a command was written to the engine.
	OnCommand func(cmd Command)

	// OnMessage fires for every drained message, before it is applied.
	OnMessage func(msg Message)

	// OnStateChange fires after every state transition.
	OnStateChange func(from, to SessionState)
}

// CombineHooks returns hooks that call each of the given hooks in order.
func CombineHooks(all ...Hooks) Hooks {
	return Hooks{
		OnCommand: func(cmd Command) {
			for _, h := range all {
				if h.OnCommand != nil {
					h.OnCommand(cmd)
				}
			}
		},
		OnMessage: func(msg Message) {
			for _, h := range all {
				if h.OnMessage != nil {
					h.OnMessage(msg)
				}
			}
		},
		OnStateChange: func(from, to SessionState) {
			for _, h := range all {
				if h.OnStateChange != nil {
					h.OnStateChange(from, to)
				}
			}
		},
	}
}
