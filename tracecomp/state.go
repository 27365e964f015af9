package tracecomp

// State is the lifecycle position of a Computer.
type State uint8

const (
	StateIdle State = iota
	StatePreparing
	StateRunning
	StateCompleted
	StateFailed
	StateCancelled
)

var stateNames = map[State]string{
	StateIdle:      "idle",
	StatePreparing: "preparing",
	StateRunning:   "running",
	StateCompleted: "completed",
	StateFailed:    "failed",
	StateCancelled: "cancelled",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}
