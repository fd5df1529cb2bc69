package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flapline/internal/level"
)

var (
	flagLevelsCount int
	flagLevelsFrom  int
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Print the obstacle layout",
	Long: `Print the obstacles generated for the configured seed.

Examples:
  flapline levels
  flapline levels --count 20
  flapline levels --seed 42 --from 400`,
	Args: cobra.NoArgs,
	RunE: runLevels,
}

func init() {
	levelsCmd.Flags().IntVarP(&flagLevelsCount, "count", "n", 10, "Number of obstacles to print (0 = all)")
	levelsCmd.Flags().IntVar(&flagLevelsFrom, "from", 0, "Index of the first obstacle to print")
}

func runLevels(_ *cobra.Command, _ []string) error {
	layout := level.NewLayout(level.FromConfig(flapConfig.Level))
	if flagLevelsFrom < 0 || flagLevelsFrom >= layout.Len() {
		return fmt.Errorf("--from must be in [0, %d)", layout.Len())
	}

	end := layout.Len()
	if flagLevelsCount > 0 {
		end = min(end, flagLevelsFrom+flagLevelsCount)
	}

	fmt.Printf("Seed %d - %d obstacles\n", flapConfig.Level.Seed, layout.Len())
	fmt.Println()
	fmt.Printf("  %-5s  %-8s  %s\n", "Index", "X", "Gap center")
	fmt.Printf("  %-5s  %-8s  %s\n", "-----", "-", "----------")

	for i := flagLevelsFrom; i < end; i++ {
		o, _ := layout.At(i)
		fmt.Printf("  %-5d  %-8.1f  %.6f\n", o.Index, o.X, o.GapCenterY)
	}
	return nil
}
