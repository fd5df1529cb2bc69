package sim

// Phase is the state of the run state machine.
type Phase int

const (
	NotStarted Phase = iota
	Started
	Crashed
	Won
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not started"
	case Started:
		return "started"
	case Crashed:
		return "crashed"
	case Won:
		return "won"
	default:
		return "unknown"
	}
}

// Terminal reports whether p ends a run.
func (p Phase) Terminal() bool {
	return p == Crashed || p == Won
}
