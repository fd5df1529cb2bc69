package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flapline/internal/sim"
	"github.com/vovakirdan/flapline/internal/storage"
)

var replayCmd = &cobra.Command{
	Use:   "replay <run-id>",
	Short: "Re-simulate a recorded run",
	Long: `Replay a recorded run from its flap history and check that it reproduces
the recorded score and proof digest.

The replay flies the level seed stored with the run. Physics and layout
tuning come from the current config, so a run only verifies against the
tuning it was flown with.

Examples:
  flapline replay 3f2a6c1e-8d47-4b0f-9a51-2c7e0b6d9f13
  flapline replay 3f2a6c1e-8d47-4b0f-9a51-2c7e0b6d9f13 --config ./tuned.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func runReplay(_ *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening runs database: %w", err)
	}
	defer store.Close()

	run, err := store.RunByID(args[0])
	if err != nil {
		return err
	}

	res, err := run.Verify(flapConfig)

	fmt.Printf("Run %s (seed %d)\n", run.RunID, run.ReplayConfig(flapConfig).Level.Seed)
	fmt.Printf("  Recorded: score %d, %s, %d flaps, digest %s\n", run.Score, run.Outcome, len(run.JumpHistory), run.ProofDigest)
	if errors.Is(err, sim.ErrInvalidHistory) {
		return err
	}
	fmt.Printf("  Replayed: score %d, %s after %d frames, digest %s\n", res.Score, res.Phase, res.Frames, res.Digest)
	fmt.Println()

	if err != nil {
		return err
	}
	fmt.Println("Verified.")
	return nil
}
