package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/flapline/internal/broadcast"
	"github.com/vovakirdan/flapline/internal/core"
	"github.com/vovakirdan/flapline/internal/platform/tui"
	"github.com/vovakirdan/flapline/internal/sim"
	"github.com/vovakirdan/flapline/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Fly the course",
	Long: `Start a local run in the terminal.

Controls:
  Space/Up/W  - Flap (also starts a run)
  Esc/R       - Abandon the current run
  Ctrl+S      - Save a screenshot
  Q/Ctrl+C    - Quit

After a crash, flapping again restarts once the restart lockout has passed.
Finished runs are recorded in the runs database.

Examples:
  flapline play
  flapline play --seed 42
  flapline play --config ./my-flapline.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg := core.DefaultConfig()
	cfg.TickRate = flagFPS
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}

	hub := broadcast.NewHub()

	// Open run storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		// Continue without storage - the run still works
		store = nil
	}
	if store != nil {
		defer store.Close()
		hub.Add(recordInline(store))
	}

	// The TUI owns the terminal, so the engine logs nowhere unless asked.
	engineOpts := []sim.Option{sim.WithBroadcaster(hub)}
	if flagVerbose {
		engineOpts = append(engineOpts, sim.WithLogger(logger.With("run", "local")))
	}
	engine := sim.New(flapConfig, engineOpts...)

	if err := tui.Run(engine, store, cfg); err != nil {
		return fmt.Errorf("running flapline: %w", err)
	}
	return nil
}

// recordInline records runs on the publishing goroutine. A single local
// engine publishes rarely enough that the save on Ended does not stall it.
func recordInline(store *storage.Store) broadcast.Listener {
	recorder := storage.NewRecorder(store, flapConfig.Session.Channel, flapConfig.Level.Seed, flapConfig.Level.Count-1, logger)
	return broadcast.ListenerFunc(func(env broadcast.Envelope) {
		if _, err := recorder.Handle(env); err != nil {
			logger.Error("cannot record run", "run", env.Event.Run(), "error", err)
		}
	})
}
