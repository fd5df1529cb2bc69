// flapline is a deterministic flap-through-the-gates simulation for the terminal.
//
// Usage:
//
//	flapline play              - Fly the course locally
//	flapline serve             - Serve the course over SSH and stream events over WebSocket
//	flapline scores            - Show the best and most recent runs
//	flapline board             - Browse recorded runs interactively
//	flapline levels            - Print the generated obstacle layout
//	flapline replay <run-id>   - Re-simulate a recorded run and verify its score
//	flapline listen <url>      - Print events from a running server
//	flapline schema            - Print the JSON schema of the event wire format
//
// Global flags:
//
//	--fps <rate>     - Set driver tick rate (default: 60)
//	--seed <value>   - Override the level seed
//	--db <path>      - Set database path (default: ~/.flapline/runs.db)
//	--config <path>  - Load a custom config YAML
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/flapline/internal/config"
)

var (
	// Global flags
	flagFPS     int
	flagSeed    uint32
	flagDBPath  string
	flagConfig  string
	flagVerbose bool

	// Set up by the root command before any subcommand runs.
	flapConfig config.FlapConfig
	logger     *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flapline",
	Short: "Flapline - fly a seeded course of gates in your terminal",
	Long: `Flapline is a deterministic flight simulation. Every run flies the same
seeded course of gates, so a run's flap history is enough to reproduce
and verify its score.

Available commands:
  play     - Fly the course locally
  serve    - Start the SSH and WebSocket servers
  scores   - View recorded runs
  board    - Interactive run browser
  levels   - Print the obstacle layout
  replay   - Verify a recorded run
  listen   - Follow a server's event stream
  schema   - Print the event wire schema

Examples:
  flapline play
  flapline play --seed 42
  flapline serve --ssh :2222 --ws :8080
  flapline replay 3f2a...`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Driver tick rate (frames per second)")
	rootCmd.PersistentFlags().Uint32Var(&flagSeed, "seed", 0, "Level seed (0 = config or "+config.EnvSeed+")")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to runs database (default ~/.flapline/runs.db or "+config.EnvDBPath+")")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML (default search or "+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(schemaCmd)
}

// setup loads .env, the config file and the seed override, and builds the logger.
func setup(_ *cobra.Command, _ []string) error {
	level := log.InfoLevel
	if flagVerbose {
		level = log.DebugLevel
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "flapline",
		Level:           level,
	})

	if err := config.LoadEnv(); err != nil {
		return err
	}

	if flagDBPath == "" {
		flagDBPath = config.EnvString(config.EnvDBPath, "~/.flapline/runs.db")
	}

	configPath := flagConfig
	if configPath == "" {
		configPath = config.EnvString(config.EnvConfigPath, "")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if flagSeed != 0 {
		cfg.Level.Seed = flagSeed
	} else {
		cfg.Level.Seed = config.EnvSeedOr(cfg.Level.Seed)
	}

	flapConfig = cfg
	logger.Debug("config loaded", "seed", cfg.Level.Seed, "obstacles", cfg.Level.Count, "step_rate", cfg.Physics.StepRate)
	return nil
}
