package storage

import (
	"github.com/vovakirdan/flapline/internal/config"
	"github.com/vovakirdan/flapline/internal/sim"
)

// ReplayConfig returns base flown on the run's level seed. Runs recorded
// without a seed keep base's seed.
func (r *Run) ReplayConfig(base config.FlapConfig) config.FlapConfig {
	if r.Seed != 0 {
		base.Level.Seed = r.Seed
	}
	return base
}

// Verify replays the run on the course it was flown on and checks the
// recorded score and proof digest.
func (r *Run) Verify(base config.FlapConfig) (sim.ReplayResult, error) {
	return sim.Verify(r.ReplayConfig(base), r.JumpHistory, r.Score, r.ProofDigest)
}
