package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flapline/internal/broadcast"
)

var flagListenRaw bool

var listenCmd = &cobra.Command{
	Use:   "listen <url>",
	Short: "Print events from a running server",
	Long: `Connect to a server's event stream and print every run event.

Examples:
  flapline listen ws://localhost:8081/events
  flapline listen ws://localhost:8081/events --raw`,
	Args: cobra.ExactArgs(1),
	RunE: runListen,
}

func init() {
	listenCmd.Flags().BoolVar(&flagListenRaw, "raw", false, "Print the JSON wire form")
}

func runListen(_ *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := broadcast.Dial(ctx, args[0])
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		client.Close()
	}()

	logger.Info("listening", "url", args[0])
	for {
		env, err := client.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, broadcast.ErrUnknownEventType) {
				logger.Warn("skipping event", "error", err)
				continue
			}
			return err
		}
		if flagListenRaw {
			data, err := broadcast.Encode(env)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			continue
		}
		fmt.Println(describe(env))
	}
}

func describe(env broadcast.Envelope) string {
	at := env.At.Format("15:04:05.000")
	switch e := env.Event.(type) {
	case broadcast.Started:
		return fmt.Sprintf("%s  %s  started at frame %d", at, e.RunID, e.FrameCount)
	case broadcast.PointGained:
		return fmt.Sprintf("%s  %s  point %d at frame %d (%.2f, %.2f)", at, e.RunID, e.Score, e.FrameOffset, e.Position[0], e.Position[1])
	case broadcast.Ended:
		return fmt.Sprintf("%s  %s  ended with %d after %d flaps", at, e.RunID, e.FinalScore, len(e.JumpHistory))
	}
	return fmt.Sprintf("%s  %s  %s", at, env.Event.Run(), env.Event.Kind())
}
