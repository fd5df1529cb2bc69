// Package broadcast delivers match lifecycle events to any number of listeners.
//
// The simulation publishes through the Broadcaster interface and never waits
// for delivery. Hub fans events out in-process; WebSocketServer forwards them
// to remote listeners as JSON text frames.
package broadcast

import "time"

// Kind is the wire tag of an event.
type Kind string

const (
	KindStarted     Kind = "s"
	KindPointGained Kind = "pg"
	KindEnded       Kind = "c"
)

// Event is a match lifecycle event. The set of implementations is closed.
type Event interface {
	Kind() Kind
	Run() string
	matchEvent()
}

// Started is published when a run begins.
type Started struct {
	RunID      string
	FrameCount int
}

func (Started) Kind() Kind { return KindStarted }
func (e Started) Run() string { return e.RunID }
func (Started) matchEvent() {}

// PointGained is published each time the bird passes a gate.
type PointGained struct {
	RunID       string
	FrameOffset int
	Score       int
	Position    [2]float64
}

func (PointGained) Kind() Kind { return KindPointGained }
func (e PointGained) Run() string { return e.RunID }
func (PointGained) matchEvent() {}

// Ended is published when a run crashes or is won.
type Ended struct {
	RunID       string
	FinalScore  int
	JumpHistory []int
}

func (Ended) Kind() Kind { return KindEnded }
func (e Ended) Run() string { return e.RunID }
func (Ended) matchEvent() {}

// Envelope is an event together with its capture time.
type Envelope struct {
	Event Event
	At    time.Time
}
