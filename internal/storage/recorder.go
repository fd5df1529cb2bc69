package storage

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/flapline/internal/broadcast"
	"github.com/vovakirdan/flapline/internal/sim"
)

// MaxOpenRunAge is how long a started run is kept without an Ended event.
const MaxOpenRunAge = time.Hour

// Recorder persists runs from their broadcast events. It tracks each run
// from Started through its PointGained events and saves it on Ended.
type Recorder struct {
	store    *Store
	channel  string
	seed     uint32
	winScore int
	logger   *log.Logger
	runs     map[string]*openRun
}

type openRun struct {
	started time.Time
	points  []mgl64.Vec2
}

// NewRecorder creates a recorder saving into store. seed is the level seed
// the publishing engines fly; it is stored with every run so the run can be
// replayed later. Runs ending with at least winScore points are stored as won.
func NewRecorder(store *Store, channel string, seed uint32, winScore int, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Recorder{
		store:    store,
		channel:  channel,
		seed:     seed,
		winScore: winScore,
		logger:   logger,
		runs:     make(map[string]*openRun),
	}
}

// Run consumes events until ctx is cancelled or events is closed.
// Save errors are logged and do not stop the recorder.
func (r *Recorder) Run(ctx context.Context, events <-chan broadcast.Envelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-events:
			if !ok {
				return
			}
			if _, err := r.Handle(env); err != nil {
				r.logger.Error("cannot record run", "run", env.Event.Run(), "error", err)
			}
		}
	}
}

// Start runs the recorder on its own goroutine. The returned function
// cancels it and waits until any save in progress has finished.
func (r *Recorder) Start(ctx context.Context, events <-chan broadcast.Envelope) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx, events)
	}()
	return func() {
		cancel()
		<-done
	}
}

// Handle applies one event. It returns the saved run when env ends one.
func (r *Recorder) Handle(env broadcast.Envelope) (*Run, error) {
	switch e := env.Event.(type) {
	case broadcast.Started:
		r.prune(env.At)
		r.runs[e.RunID] = &openRun{started: env.At}
	case broadcast.PointGained:
		run := r.open(e.RunID, env.At)
		run.points = append(run.points, mgl64.Vec2{e.Position[0], e.Position[1]})
	case broadcast.Ended:
		run := r.open(e.RunID, env.At)
		delete(r.runs, e.RunID)
		return r.save(e, run, env.At)
	}
	return nil, nil
}

func (r *Recorder) open(runID string, at time.Time) *openRun {
	run, ok := r.runs[runID]
	if !ok {
		// Joined mid-run; duration and proof cover only what was seen.
		run = &openRun{started: at}
		r.runs[runID] = run
	}
	return run
}

func (r *Recorder) save(e broadcast.Ended, run *openRun, at time.Time) (*Run, error) {
	outcome := OutcomeCrashed
	if e.FinalScore >= r.winScore {
		outcome = OutcomeWon
	}

	rec := Run{
		RunID:       e.RunID,
		Channel:     r.channel,
		Seed:        r.seed,
		Score:       e.FinalScore,
		Outcome:     outcome,
		JumpHistory: e.JumpHistory,
		ProofDigest: sim.ProofDigest(run.points),
		Points:      len(run.points),
		Duration:    at.Sub(run.started),
	}

	id, err := r.store.SaveRun(rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	if _, err := r.store.SaveScore(r.channel, e.FinalScore); err != nil {
		return nil, err
	}

	r.logger.Info("run recorded", "run", rec.RunID, "score", rec.Score, "outcome", rec.Outcome)
	return &rec, nil
}

// prune drops runs that never ended. Abandoned runs publish no Ended event.
func (r *Recorder) prune(now time.Time) {
	for id, run := range r.runs {
		if now.Sub(run.started) > MaxOpenRunAge {
			r.logger.Debug("dropping unfinished run", "run", id, "points", len(run.points))
			delete(r.runs, id)
		}
	}
}

// Open returns the number of runs started but not yet ended.
func (r *Recorder) Open() int {
	return len(r.runs)
}
