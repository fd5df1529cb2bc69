package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/flapline/internal/core"
	"github.com/vovakirdan/flapline/internal/platform/tui"
	"github.com/vovakirdan/flapline/internal/storage"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Browse recorded runs",
	Long: `Open an interactive table of recorded runs.

Controls:
  Up/Down/j/k  - Move through runs
  Tab          - Switch between best and recent runs
  Q/Esc        - Quit

Examples:
  flapline board
  flapline board --db ./runs.db`,
	Args: cobra.NoArgs,
	RunE: runBoard,
}

func runBoard(_ *cobra.Command, _ []string) error {
	cfg := core.DefaultConfig()
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening runs database: %w", err)
	}
	defer store.Close()

	return tui.RunScoreboard(store, flapConfig.Session.Channel, cfg.ScreenW, cfg.ScreenH)
}
