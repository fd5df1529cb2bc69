package core

// Action represents a semantic driver action, abstracted from physical key presses.
type Action int

const (
	ActionNone  Action = iota
	ActionFlap         // Space, Up, W - upward impulse, also restarts after lockout
	ActionQuit         // Q, Ctrl+C - exit
	ActionReset        // Esc - abandon the current run
	ActionShot         // Ctrl+S - save the current frame to disk
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionFlap:
		return "Flap"
	case ActionQuit:
		return "Quit"
	case ActionReset:
		return "Reset"
	case ActionShot:
		return "Screenshot"
	default:
		return "Unknown"
	}
}
