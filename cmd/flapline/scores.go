package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flapline/internal/storage"
)

var (
	flagScoresLimit  int
	flagScoresRecent bool
	flagScoresClear  bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show recorded runs",
	Long: `Display the best recorded runs and the channel's statistics.

Examples:
  flapline scores
  flapline scores --recent
  flapline scores --limit 25
  flapline scores --clear`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVarP(&flagScoresLimit, "limit", "n", 10, "Number of runs to show")
	scoresCmd.Flags().BoolVar(&flagScoresRecent, "recent", false, "Show the most recent runs instead of the best")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all recorded runs and scores of the channel")
}

func runScores(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening runs database: %w", err)
	}
	defer store.Close()

	if flagScoresClear {
		if err := store.ClearScores(flapConfig.Session.Channel); err != nil {
			return err
		}
		fmt.Printf("Cleared runs and scores of channel %q.\n", flapConfig.Session.Channel)
		return nil
	}

	title := "Best runs"
	list := store.TopRuns
	if flagScoresRecent {
		title = "Recent runs"
		list = store.RecentRuns
	}

	runs, err := list(flagScoresLimit)
	if err != nil {
		return fmt.Errorf("loading runs: %w", err)
	}

	fmt.Printf("%s - %s\n", title, flapConfig.Session.Channel)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'flapline play' to record the first run!")
		return nil
	}

	// Print header
	fmt.Printf("  %-4s  %-6s  %-8s  %-6s  %-10s  %-16s  %s\n", "Rank", "Score", "Outcome", "Flaps", "Seed", "Date", "Run")
	fmt.Printf("  %-4s  %-6s  %-8s  %-6s  %-10s  %-16s  %s\n", "----", "-----", "-------", "-----", "----", "----", "---")

	for i, run := range runs {
		dateStr := run.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-6d  %-8s  %-6d  %-10d  %-16s  %s\n", i+1, run.Score, run.Outcome, len(run.JumpHistory), run.Seed, dateStr, run.RunID)
	}

	stats, err := store.Stats(flapConfig.Session.Channel)
	if err == nil && stats.RunsCount > 0 {
		fmt.Println()
		fmt.Printf("Runs: %d  Wins: %d  Best: %d  Average: %.1f\n", stats.RunsCount, stats.Wins, stats.HighScore, stats.AvgScore)
	}
	return nil
}
