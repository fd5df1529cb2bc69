package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	for _, score := range []int{100, 50, 200} {
		if _, err := store.SaveScore("flappy", score); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SaveScore("other", 500); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	high, err := store.HighScore("flappy")
	if err != nil || high != 200 {
		t.Errorf("HighScore() = %d, %v", high, err)
	}
	high, err = store.HighScore("empty")
	if err != nil || high != 0 {
		t.Errorf("HighScore(empty) = %d, %v", high, err)
	}
}

func TestStoreRuns(t *testing.T) {
	store := openTestStore(t)

	runs := []Run{
		{RunID: "a", Channel: "flappy", Seed: 42, Score: 3, Outcome: OutcomeCrashed, JumpHistory: []int{0, 12, 30}, ProofDigest: "d1", Points: 3, Duration: 1500 * time.Millisecond},
		{RunID: "b", Channel: "flappy", Score: 448, Outcome: OutcomeWon, JumpHistory: []int{0}, Points: 448},
		{RunID: "c", Channel: "flappy", Score: 0, Outcome: OutcomeCrashed},
	}
	for _, r := range runs {
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun(%s) failed: %v", r.RunID, err)
		}
	}

	got, err := store.RunByID("a")
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got.Score != 3 || got.Outcome != OutcomeCrashed || got.ProofDigest != "d1" || got.Points != 3 {
		t.Errorf("run a = %+v", got)
	}
	if !slices.Equal(got.JumpHistory, []int{0, 12, 30}) {
		t.Errorf("jump history = %v", got.JumpHistory)
	}
	if got.Seed != 42 {
		t.Errorf("seed = %d, want 42", got.Seed)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v", got.Duration)
	}

	empty, err := store.RunByID("c")
	if err != nil {
		t.Fatalf("RunByID(c) failed: %v", err)
	}
	if empty.JumpHistory == nil || len(empty.JumpHistory) != 0 {
		t.Errorf("nil history should load as empty, got %#v", empty.JumpHistory)
	}

	if _, err := store.RunByID("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("RunByID(missing) err = %v", err)
	}
	if _, err := store.SaveRun(runs[0]); err == nil {
		t.Error("duplicate run id should fail")
	}

	top, err := store.TopRuns(2)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(top) != 2 || top[0].RunID != "b" || top[1].RunID != "a" {
		t.Errorf("TopRuns = %+v", top)
	}

	recent, err := store.RecentRuns(0)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(recent) != 3 || recent[0].RunID != "c" {
		t.Errorf("RecentRuns = %+v", recent)
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.Stats("flappy")
	if err != nil {
		t.Fatalf("Stats() on empty store failed: %v", err)
	}
	if stats.RunsCount != 0 || stats.HighScore != 0 {
		t.Errorf("empty stats = %+v", stats)
	}

	for i, r := range []Run{
		{RunID: "x", Channel: "flappy", Score: 10, Outcome: OutcomeCrashed},
		{RunID: "y", Channel: "flappy", Score: 448, Outcome: OutcomeWon},
		{RunID: "z", Channel: "other", Score: 5, Outcome: OutcomeCrashed},
	} {
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun(%d) failed: %v", i, err)
		}
	}

	stats, err = store.Stats("flappy")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.RunsCount != 2 || stats.Wins != 1 || stats.HighScore != 448 || stats.TotalScore != 458 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AvgScore != 229 {
		t.Errorf("avg = %v, want 229", stats.AvgScore)
	}

	if err := store.ClearScores("flappy"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}
	stats, _ = store.Stats("flappy")
	if stats.RunsCount != 0 {
		t.Errorf("runs after clear = %d", stats.RunsCount)
	}
}

func TestStoreMigratesRunsWithoutSeed(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			channel TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			jump_history TEXT NOT NULL DEFAULT '[]',
			proof_digest TEXT NOT NULL DEFAULT '',
			points INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		INSERT INTO runs (run_id, channel, score, outcome) VALUES ('old', 'flappy', 7, 'crashed');
	`)
	if err != nil {
		t.Fatalf("creating legacy schema failed: %v", err)
	}
	db.Close()

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() on legacy database failed: %v", err)
	}
	defer store.Close()

	old, err := store.RunByID("old")
	if err != nil {
		t.Fatalf("RunByID(old) failed: %v", err)
	}
	if old.Seed != 0 || old.Score != 7 {
		t.Errorf("legacy run = %+v", old)
	}

	if _, err := store.SaveRun(Run{RunID: "new", Channel: "flappy", Seed: 99, Outcome: OutcomeCrashed}); err != nil {
		t.Fatalf("SaveRun() after migration failed: %v", err)
	}
	got, err := store.RunByID("new")
	if err != nil || got.Seed != 99 {
		t.Errorf("RunByID(new) = %+v, %v", got, err)
	}
}
