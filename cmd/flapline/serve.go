package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flapline/internal/broadcast"
	"github.com/vovakirdan/flapline/internal/platform/tui"
	"github.com/vovakirdan/flapline/internal/storage"
)

var (
	flagSSHAddr     string
	flagWSAddr      string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server and the event stream",
	Long: `Start an SSH server where every connection flies its own run, and an
HTTP server streaming every run's events over WebSocket at /events.

All sessions share one runs database and one event stream.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.flapline/host_key

Examples:
  flapline serve                          # SSH on :23234, events on :8081
  flapline serve --ssh :2222 --ws :9000
  flapline serve --ws ""                  # SSH only

Users can connect with:
  ssh localhost -p 23234
  flapline listen ws://localhost:8081/events`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagWSAddr, "ws", ":8081", "Event stream address (host:port, empty to disable)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := broadcast.NewHub()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening runs database: %w", err)
	}
	defer store.Close()

	recorder := storage.NewRecorder(store, flapConfig.Session.Channel, flapConfig.Level.Seed, flapConfig.Level.Count-1, logger.WithPrefix("recorder"))
	sub := hub.Subscribe(broadcast.DefaultListenerBuffer * 4)
	defer sub.Close()
	// Stops before the store closes.
	defer recorder.Start(ctx, sub.Events())()

	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Address = flagSSHAddr
	sshCfg.HostKeyPath = flagHostKey
	sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	sshCfg.TickRate = flagFPS

	server, err := tui.NewSSHServer(sshCfg, flapConfig, hub, store, logger.WithPrefix("ssh"))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errc := make(chan error, 2)
	if flagWSAddr != "" {
		httpServer := newEventServer(flagWSAddr, hub)
		go func() {
			logger.Info("serving events", "address", flagWSAddr, "path", "/events")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("event server: %w", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("event server shutdown", "error", err)
			}
		}()
	}

	fmt.Printf("Connect with: ssh localhost -p %s\n", portOf(flagSSHAddr))
	fmt.Println("Press Ctrl+C to stop")

	go func() {
		errc <- server.ListenAndServe(ctx)
	}()

	select {
	case err := <-errc:
		stop()
		return err
	case <-ctx.Done():
		// The SSH server shuts itself down on ctx; wait for it.
		return <-errc
	}
}

func newEventServer(addr string, hub *broadcast.Hub) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/events", broadcast.NewWebSocketServer(hub, logger.WithPrefix("ws")))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
