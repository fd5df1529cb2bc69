package sim

import "github.com/go-gl/mathgl/mgl64"

// Snapshot is a read-only view of the engine state for renderers.
type Snapshot struct {
	Position  mgl64.Vec2
	Velocity  mgl64.Vec2
	RotationZ float64
	Phase     Phase
	Score     int
	Frame     int
	RunID     string
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Position:  e.pos,
		Velocity:  e.vel,
		RotationZ: e.rotZ,
		Phase:     e.phase,
		Score:     e.score,
		Frame:     e.frame,
		RunID:     e.runID,
	}
}
