// Package storage provides SQLite-based persistence for finished runs and scores.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("storage: run not found")

// Outcomes stored with each run.
const (
	OutcomeCrashed = "crashed"
	OutcomeWon     = "won"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Run is a finished run as recorded from its broadcast events.
type Run struct {
	ID          int64
	RunID       string
	Channel     string
	Seed        uint32 // Level seed the run was flown on; 0 for runs recorded without one
	Score       int
	Outcome     string
	JumpHistory []int
	ProofDigest string
	Points      int
	Duration    time.Duration
	CreatedAt   time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			channel TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_channel ON scores(channel);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(channel, score DESC);

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			channel TEXT NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			jump_history TEXT NOT NULL DEFAULT '[]',
			proof_digest TEXT NOT NULL DEFAULT '',
			points INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_channel ON runs(channel);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(score DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Databases created before runs recorded their level seed.
	hasSeed, err := s.hasColumn("runs", "seed")
	if err != nil {
		return err
	}
	if !hasSeed {
		if _, err := s.db.Exec(`ALTER TABLE runs ADD COLUMN seed INTEGER NOT NULL DEFAULT 0`); err != nil {
			return err
		}
	}
	return nil
}

// hasColumn reports whether table has a column with the given name.
func (s *Store) hasColumn(table, column string) (bool, error) {
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveScore records a new score for the given channel.
// Returns the ID of the inserted record.
func (s *Store) SaveScore(channel string, score int) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (channel, score) VALUES (?, ?)",
		channel, score,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// HighScore returns the highest score for the given channel.
// Returns 0 if no scores exist.
func (s *Store) HighScore(channel string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM scores WHERE channel = ?",
		channel,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearScores deletes all scores and runs for the given channel.
func (s *Store) ClearScores(channel string) error {
	if _, err := s.db.Exec("DELETE FROM scores WHERE channel = ?", channel); err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM runs WHERE channel = ?", channel); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// SaveRun records a finished run. Returns the ID of the inserted record.
func (s *Store) SaveRun(run Run) (int64, error) {
	jumps := run.JumpHistory
	if jumps == nil {
		jumps = []int{}
	}
	encoded, err := json.Marshal(jumps)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot encode jump history: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO runs
		 (run_id, channel, seed, score, outcome, jump_history, proof_digest, points, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Channel,
		int64(run.Seed),
		run.Score,
		run.Outcome,
		string(encoded),
		run.ProofDigest,
		run.Points,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const runColumns = `id, run_id, channel, seed, score, outcome, jump_history,
		        proof_digest, points, duration_ms, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var jumps string
	var durationMS, seed int64
	var createdAt any

	if err := row.Scan(
		&run.ID,
		&run.RunID,
		&run.Channel,
		&seed,
		&run.Score,
		&run.Outcome,
		&jumps,
		&run.ProofDigest,
		&run.Points,
		&durationMS,
		&createdAt,
	); err != nil {
		return Run{}, err
	}

	if err := json.Unmarshal([]byte(jumps), &run.JumpHistory); err != nil {
		return Run{}, fmt.Errorf("storage: corrupt jump history for run %s: %w", run.RunID, err)
	}
	run.Seed = uint32(seed)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.CreatedAt = parseTime(createdAt)
	return run, nil
}

// RunByID retrieves a run by its run id.
func (s *Store) RunByID(runID string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE run_id = ?`,
		runID,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return &run, nil
}

// RecentRuns retrieves the most recent runs.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	return s.queryRuns(`ORDER BY id DESC`, limit)
}

// TopRuns retrieves the best runs, highest score first.
func (s *Store) TopRuns(limit int) ([]Run, error) {
	return s.queryRuns(`ORDER BY score DESC, id ASC`, limit)
}

func (s *Store) queryRuns(order string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 `+order+`
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// Stats contains aggregated statistics for a channel.
type Stats struct {
	Channel    string
	RunsCount  int
	Wins       int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	LastPlayed time.Time
}

// Stats returns aggregated run statistics for the given channel.
func (s *Store) Stats(channel string) (Stats, error) {
	stats := Stats{Channel: channel}

	var high, total sql.NullInt64
	var avg sql.NullFloat64
	var wins sql.NullInt64
	var last any
	err := s.db.QueryRow(
		`SELECT COUNT(*), MAX(score), AVG(score), SUM(score),
		        SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), MAX(created_at)
		 FROM runs
		 WHERE channel = ?`,
		OutcomeWon, channel,
	).Scan(&stats.RunsCount, &high, &avg, &total, &wins, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("storage: cannot query stats: %w", err)
	}

	stats.HighScore = int(high.Int64)
	stats.AvgScore = avg.Float64
	stats.TotalScore = total.Int64
	stats.Wins = int(wins.Int64)
	stats.LastPlayed = parseTime(last)
	return stats, nil
}

// parseTime handles both time.Time and string datetimes returned by the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
