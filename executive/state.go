package executive

// State is the position of an instance in the block lifecycle.
type State uint8

const (
	StateIdle State = iota
	StateInitialized
	StateExecuting
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateInitialized:
		return "Initialized"
	case StateExecuting:
		return "Executing"
	case StateFinalized:
		return "Finalized"
	default:
		return "Unknown"
	}
}

// allows reports whether s is one of states.
func (s State) allows(states ...State) bool {
	for _, st := range states {
		if s == st {
			return true
		}
	}
	return false
}
