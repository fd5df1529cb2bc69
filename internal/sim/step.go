package sim

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/flapline/internal/broadcast"
)

// step executes one fixed step and reports whether it ran.
func (e *Engine) step() bool {
	switch e.phase {
	case Crashed, Won:
		return false
	case NotStarted:
		if e.pending == 0 {
			return false
		}
		e.start()
	}

	e.drainFlaps()
	if e.updateScore() {
		e.advanceClock()
		return true
	}
	e.integrate()
	e.checkCrash()
	e.advanceClock()
	return true
}

func (e *Engine) start() {
	e.resetRun()
	e.pending = 1
	e.runID = e.newRunID()
	e.startFrame = e.frame
	e.vel = mgl64.Vec2{0, e.cfg.Physics.LaunchImpulse}
	e.phase = Started

	e.logger.Debug("run started", "run", e.runID, "frame", e.frame)
	e.bus.Publish(broadcast.Started{RunID: e.runID, FrameCount: 0})
}

// drainFlaps applies every queued flap as a single impulse.
func (e *Engine) drainFlaps() {
	if e.pending == 0 {
		return
	}
	e.pending = 0
	e.vel[1] = e.cfg.Physics.LaunchImpulse
	e.jumps = append(e.jumps, e.frame-e.startFrame)
}

// updateScore credits at most one gate and reports whether the run was won.
func (e *Engine) updateScore() bool {
	s := e.layout.PassedCount(e.pos.X(), e.cfg.Scoring.PassMargin)
	if s <= len(e.proof) {
		return false
	}

	e.proof = append(e.proof, e.pos)
	e.score++
	e.bus.Publish(broadcast.PointGained{
		RunID:       e.runID,
		FrameOffset: e.frame - e.startFrame,
		Score:       e.score,
		Position:    [2]float64{e.pos.X(), e.pos.Y()},
	})

	if e.score >= e.layout.Len()-1 {
		e.end(Won, "course complete")
		return true
	}
	return false
}

func (e *Engine) integrate() {
	p := e.cfg.Physics
	dt := e.dt

	damping := math.Exp(-p.Damping*dt) - 1
	if e.pos.Y() > e.cfg.Bounds.Ground {
		e.vel[0] += p.Thrust * dt
		e.vel[1] -= p.Gravity * dt
		damping *= p.AirDampingScale
	}
	e.vel = e.vel.Add(e.vel.Mul(damping))
	e.pos = e.pos.Add(e.vel.Mul(dt))
	e.rotZ = e.vel.Y() / 180 * 2 * math.Pi
}

// checkCrash tests ground, ceiling and obstacles in that order and ends
// the run on the first hit.
func (e *Engine) checkCrash() bool {
	b := e.cfg.Bounds
	switch {
	case e.pos.Y() <= b.Ground:
		e.pos[1] = b.Ground
		e.end(Crashed, "ground")
	case e.pos.Y() > b.Ceiling:
		e.end(Crashed, "ceiling")
	case e.Hit(e.pos):
		e.end(Crashed, "obstacle")
	default:
		return false
	}
	return true
}

func (e *Engine) end(phase Phase, reason string) {
	e.phase = phase
	e.pending = 0
	e.vel = mgl64.Vec2{0, 0}
	e.lastRun = slices.Clone(e.jumps)

	e.logger.Debug("run ended", "run", e.runID, "phase", phase, "reason", reason, "score", e.score)
	e.bus.Publish(broadcast.Ended{
		RunID:       e.runID,
		FinalScore:  e.score,
		JumpHistory: slices.Clone(e.jumps),
	})
}

func (e *Engine) advanceClock() {
	e.clock += e.stepMillis
	e.frame++
}
