package storage

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/flapline/internal/broadcast"
	"github.com/vovakirdan/flapline/internal/config"
	"github.com/vovakirdan/flapline/internal/sim"
)

func TestRecorderHandle(t *testing.T) {
	store := openTestStore(t)
	rec := NewRecorder(store, "flappy", 7, 448, nil)
	t0 := time.UnixMilli(1_700_000_000_000)

	events := []broadcast.Envelope{
		{Event: broadcast.Started{RunID: "r1"}, At: t0},
		{Event: broadcast.PointGained{RunID: "r1", FrameOffset: 200, Score: 1, Position: [2]float64{-247.9, 6.5}}, At: t0.Add(time.Second)},
		{Event: broadcast.PointGained{RunID: "r1", FrameOffset: 290, Score: 2, Position: [2]float64{-237.8, 7.1}}, At: t0.Add(2 * time.Second)},
	}
	for _, env := range events {
		if run, err := rec.Handle(env); err != nil || run != nil {
			t.Fatalf("Handle(%T) = %v, %v", env.Event, run, err)
		}
	}
	if rec.Open() != 1 {
		t.Errorf("Open() = %d", rec.Open())
	}

	run, err := rec.Handle(broadcast.Envelope{
		Event: broadcast.Ended{RunID: "r1", FinalScore: 2, JumpHistory: []int{0, 40, 95}},
		At:    t0.Add(3 * time.Second),
	})
	if err != nil {
		t.Fatalf("Handle(Ended) failed: %v", err)
	}
	if run == nil || run.Outcome != OutcomeCrashed || run.Points != 2 {
		t.Fatalf("saved run = %+v", run)
	}
	want := sim.ProofDigest([]mgl64.Vec2{{-247.9, 6.5}, {-237.8, 7.1}})
	if run.ProofDigest != want {
		t.Errorf("digest = %s, want %s", run.ProofDigest, want)
	}
	if run.Duration != 3*time.Second {
		t.Errorf("duration = %v", run.Duration)
	}
	if rec.Open() != 0 {
		t.Errorf("Open() after end = %d", rec.Open())
	}

	stored, err := store.RunByID("r1")
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if stored.Seed != 7 {
		t.Errorf("stored seed = %d, want 7", stored.Seed)
	}
	if !slices.Equal(stored.JumpHistory, []int{0, 40, 95}) {
		t.Errorf("stored jumps = %v", stored.JumpHistory)
	}
	if high, _ := store.HighScore("flappy"); high != 2 {
		t.Errorf("high score = %d", high)
	}
}

func TestRecorderDropsAbandonedRuns(t *testing.T) {
	rec := NewRecorder(openTestStore(t), "flappy", config.DefaultSeed, 448, nil)
	t0 := time.UnixMilli(1_700_000_000_000)

	rec.Handle(broadcast.Envelope{Event: broadcast.Started{RunID: "gone"}, At: t0})
	rec.Handle(broadcast.Envelope{Event: broadcast.Started{RunID: "recent"}, At: t0.Add(MaxOpenRunAge)})
	if rec.Open() != 2 {
		t.Fatalf("Open() = %d, want 2", rec.Open())
	}

	rec.Handle(broadcast.Envelope{Event: broadcast.Started{RunID: "new"}, At: t0.Add(MaxOpenRunAge + time.Minute)})
	if rec.Open() != 2 {
		t.Errorf("Open() = %d, want the stale run dropped", rec.Open())
	}
	if _, ok := rec.runs["gone"]; ok {
		t.Error("stale run still open")
	}
}

func TestRecorderStopWaitsForSave(t *testing.T) {
	store := openTestStore(t)
	rec := NewRecorder(store, "flappy", config.DefaultSeed, 448, nil)
	events := make(chan broadcast.Envelope)
	stop := rec.Start(context.Background(), events)

	t0 := time.UnixMilli(1_700_000_000_000)
	events <- broadcast.Envelope{Event: broadcast.Started{RunID: "s"}, At: t0}
	events <- broadcast.Envelope{Event: broadcast.Ended{RunID: "s", FinalScore: 4, JumpHistory: []int{0}}, At: t0.Add(time.Second)}
	stop()

	// The Ended event was received before stop, so its save is complete.
	run, err := store.RunByID("s")
	if err != nil {
		t.Fatalf("RunByID() after stop failed: %v", err)
	}
	if run.Score != 4 || run.Seed != config.DefaultSeed {
		t.Errorf("run = %+v", run)
	}

	select {
	case events <- broadcast.Envelope{Event: broadcast.Started{RunID: "late"}, At: t0}:
		t.Error("recorder still receiving after stop")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRecorderMarksWins(t *testing.T) {
	store := openTestStore(t)
	rec := NewRecorder(store, "flappy", config.DefaultSeed, 3, nil)

	run, err := rec.Handle(broadcast.Envelope{Event: broadcast.Ended{RunID: "w", FinalScore: 3}, At: time.Now()})
	if err != nil {
		t.Fatalf("Handle() failed: %v", err)
	}
	if run.Outcome != OutcomeWon {
		t.Errorf("outcome = %s", run.Outcome)
	}
}

func TestRecorderFromEngine(t *testing.T) {
	store := openTestStore(t)
	cfg := config.DefaultFlapConfig()
	hub := broadcast.NewHub()
	sub := hub.Subscribe(1024)
	defer sub.Close()

	rec := NewRecorder(store, cfg.Session.Channel, cfg.Level.Seed, cfg.Level.Count-1, nil)
	stop := rec.Start(context.Background(), sub.Events())

	e := sim.New(cfg, sim.WithBroadcaster(hub))
	e.EnqueueFlap()
	for e.Tick() {
	}

	deadline := time.Now().Add(5 * time.Second)
	var stored *Run
	for stored == nil {
		if time.Now().After(deadline) {
			t.Fatal("run was never recorded")
		}
		stored, _ = store.RunByID(e.RunID())
		time.Sleep(10 * time.Millisecond)
	}
	stop()

	if stored.Score != e.Score() || !slices.Equal(stored.JumpHistory, e.LastRun()) {
		t.Errorf("stored = %+v", stored)
	}
	if _, err := sim.Verify(cfg, stored.JumpHistory, stored.Score, stored.ProofDigest); err != nil {
		t.Errorf("Verify() failed: %v", err)
	}
}

// followGaps flaps whenever the bird is falling below the center of the next gate.
func followGaps(e *sim.Engine) bool {
	snap := e.Snapshot()
	p := e.Layout().Params()
	k := int(math.Ceil((snap.Position.X() - 2.25 - p.FirstX) / p.Spacing))
	k = max(0, min(k, e.Layout().Len()-1))
	o, _ := e.Layout().At(k)
	return snap.Position.Y() < o.GapCenterY && snap.Velocity.Y() < 0
}

func TestRecordedRunReplaysOnItsOwnSeed(t *testing.T) {
	store := openTestStore(t)
	cfg := config.DefaultFlapConfig()
	cfg.Level.Seed = 42

	hub := broadcast.NewHub()
	rec := NewRecorder(store, cfg.Session.Channel, cfg.Level.Seed, cfg.Level.Count-1, nil)
	var saved *Run
	hub.Add(broadcast.ListenerFunc(func(env broadcast.Envelope) {
		run, err := rec.Handle(env)
		if err != nil {
			t.Errorf("Handle() failed: %v", err)
		}
		if run != nil {
			saved = run
		}
	}))

	e := sim.New(cfg, sim.WithBroadcaster(hub))
	e.EnqueueFlap()
	for steps := 0; steps < 20000; steps++ {
		if e.Phase() == sim.Started && followGaps(e) {
			e.EnqueueFlap()
		}
		if !e.Tick() {
			break
		}
	}
	if saved == nil {
		t.Fatal("run was never recorded")
	}
	if saved.Score < 10 {
		t.Fatalf("pilot scored %d, want a run that passes gates", saved.Score)
	}

	stored, err := store.RunByID(saved.RunID)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if stored.Seed != 42 {
		t.Fatalf("stored seed = %d, want 42", stored.Seed)
	}

	// Verification uses the stored seed, not the caller's.
	res, err := stored.Verify(config.DefaultFlapConfig())
	if err != nil {
		t.Fatalf("Verify() on the default config failed: %v", err)
	}
	if res.Score != stored.Score {
		t.Errorf("replayed score = %d, want %d", res.Score, stored.Score)
	}

	_, err = sim.Verify(config.DefaultFlapConfig(), stored.JumpHistory, stored.Score, stored.ProofDigest)
	if !errors.Is(err, sim.ErrReplayDiverged) {
		t.Errorf("replay on the default seed err = %v, want divergence", err)
	}
}
