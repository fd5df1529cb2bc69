// Package sim is the deterministic simulation engine: a fixed-timestep loop
// driving the bird through the obstacle course, the run state machine, and
// score bookkeeping.
//
// An Engine is not safe for concurrent use. One driver calls Advance (or
// Tick) per frame; events are published synchronously through a
// broadcast.Broadcaster that must not block.
package sim

import (
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/vovakirdan/flapline/internal/broadcast"
	"github.com/vovakirdan/flapline/internal/collider"
	"github.com/vovakirdan/flapline/internal/config"
	"github.com/vovakirdan/flapline/internal/level"
)

// Option configures an Engine.
type Option func(*Engine)

// WithBroadcaster sets where lifecycle events are published.
func WithBroadcaster(b broadcast.Broadcaster) Option {
	return func(e *Engine) {
		if b != nil {
			e.bus = b
		}
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRunIDs replaces the run id generator.
func WithRunIDs(next func() string) Option {
	return func(e *Engine) {
		if next != nil {
			e.newRunID = next
		}
	}
}

// Engine owns all simulation state.
type Engine struct {
	cfg    config.FlapConfig
	layout *level.Layout
	shape  *collider.Shape

	bus      broadcast.Broadcaster
	logger   *log.Logger
	newRunID func() string

	dt         float64
	stepMillis float64
	clock      float64
	lastNow    float64
	haveNow    bool

	pos   mgl64.Vec2
	vel   mgl64.Vec2
	rotZ  float64
	phase Phase

	frame      int
	startFrame int
	score      int
	proof      []mgl64.Vec2
	jumps      []int
	lastRun    []int
	pending    int
	runID      string
}

// New creates an engine in the NotStarted phase. cfg is assumed valid.
func New(cfg config.FlapConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		layout:     level.NewLayout(level.FromConfig(cfg.Level)),
		shape:      collider.NewShape(cfg.Collider),
		bus:        broadcast.Nop(),
		logger:     log.New(io.Discard),
		newRunID:   uuid.NewString,
		dt:         cfg.StepSeconds(),
		stepMillis: cfg.StepMillis(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resetRun()
	return e
}

// Advance runs as many fixed steps as wall time nowMillis allows, at most
// MaxCatchUpSteps per call, and returns the resulting snapshot. A flap
// request is queued before stepping. The first finite time sets the clock
// origin; later non-finite or decreasing times run no steps.
func (e *Engine) Advance(nowMillis float64, flap bool) Snapshot {
	if flap {
		e.EnqueueFlap()
	}
	if math.IsNaN(nowMillis) || math.IsInf(nowMillis, 0) {
		return e.Snapshot()
	}
	if !e.haveNow {
		e.haveNow = true
		e.clock = nowMillis
	} else if nowMillis < e.lastNow {
		return e.Snapshot()
	}
	e.lastNow = nowMillis

	maxSteps := e.cfg.Physics.MaxCatchUpSteps
	due := int(math.Floor((nowMillis - e.clock) / e.stepMillis))
	if due > maxSteps {
		// Drop the backlog rather than spiral.
		due = maxSteps
		e.clock = nowMillis - float64(maxSteps)*e.stepMillis
	}

	for n := 0; n < due; n++ {
		if !e.step() {
			break
		}
	}
	return e.Snapshot()
}

// Tick runs exactly one fixed step, ignoring wall time. It reports whether
// the step ran; idle and terminal phases do not step.
func (e *Engine) Tick() bool {
	return e.step()
}

// EnqueueFlap queues a flap for the next step. Flaps are dropped while the
// run is over; call Restart first.
func (e *Engine) EnqueueFlap() bool {
	if e.phase.Terminal() {
		return false
	}
	e.pending++
	return true
}

// Restart leaves a terminal phase and returns to NotStarted.
func (e *Engine) Restart() bool {
	if !e.phase.Terminal() {
		return false
	}
	e.logger.Debug("restart", "run", e.runID, "phase", e.phase)
	e.resetRun()
	return true
}

// Abandon drops the current run from any phase without publishing an event.
func (e *Engine) Abandon() {
	if e.phase == Started {
		e.logger.Debug("run abandoned", "run", e.runID, "score", e.score)
	}
	e.resetRun()
}

func (e *Engine) resetRun() {
	e.phase = NotStarted
	e.pending = 0
	e.score = 0
	e.proof = nil
	e.jumps = nil
	e.vel = mgl64.Vec2{}
	e.rotZ = 0
	e.pos = mgl64.Vec2{e.cfg.Bounds.StartX, e.cfg.Bounds.StartY}
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Terminal reports whether the last run ended and awaits Restart.
func (e *Engine) Terminal() bool { return e.phase.Terminal() }

// Score returns the number of gates passed in the current run.
func (e *Engine) Score() int { return e.score }

// Frame returns the number of steps executed since the engine was created.
func (e *Engine) Frame() int { return e.frame }

// StartFrame returns the frame at which the current or last run began.
func (e *Engine) StartFrame() int { return e.startFrame }

// RunID returns the id of the current or last run.
func (e *Engine) RunID() string { return e.runID }

// Pending returns the number of queued flaps.
func (e *Engine) Pending() int { return e.pending }

// Position returns the bird position.
func (e *Engine) Position() mgl64.Vec2 { return e.pos }

// ScoreProof returns a copy of the positions at which each point was gained.
func (e *Engine) ScoreProof() []mgl64.Vec2 { return slices.Clone(e.proof) }

// JumpHistory returns a copy of the flap frame offsets of the current run.
func (e *Engine) JumpHistory() []int { return slices.Clone(e.jumps) }

// LastRun returns a copy of the jump history of the last finished run.
func (e *Engine) LastRun() []int { return slices.Clone(e.lastRun) }

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.FlapConfig { return e.cfg }

// Layout returns the obstacle course.
func (e *Engine) Layout() *level.Layout { return e.layout }

// Shape returns the collider geometry.
func (e *Engine) Shape() *collider.Shape { return e.shape }

// Hit reports whether pos touches a collider of the nearest obstacle.
func (e *Engine) Hit(pos mgl64.Vec2) bool {
	o, ok := e.layout.At(e.layout.NearestIndex(pos.X()))
	if !ok {
		return false
	}
	return e.shape.Hits(o, pos)
}
