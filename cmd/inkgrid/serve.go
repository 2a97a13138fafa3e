package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/inkgrid/internal/api"
	"github.com/vovakirdan/inkgrid/internal/multiplayer"
	"github.com/vovakirdan/inkgrid/internal/platform/tui"
	"github.com/vovakirdan/inkgrid/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
	flagServeWeb    string
	flagWebAddr     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inkgrid SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own session with the inkgrid menu. All
sessions share one set of online rooms and one match history, so players
can host a room and give the code to friends on the same server.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.inkgrid/ssh_host_ed25519

Examples:
  inkgrid serve                     # Listen on the configured address
  inkgrid serve --ssh :2222         # Listen on port 2222
  inkgrid serve --web :8080         # Also serve the HTTP API on the same rooms

Users can connect with:
  ssh localhost -p 2222`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the HTTP and websocket API",
	Long: `Serve stages, cards, match history and online rooms over HTTP.

Websocket clients connect to /ws and create, join and play rooms with
JSON messages: create, join, submit and leave.

Examples:
  inkgrid web
  inkgrid web --addr :9000`,
	Args: cobra.NoArgs,
	Run:  runWeb,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (default from config)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting (default from config)")
	serveCmd.Flags().StringVar(&flagServeWeb, "web", "", "Also serve the HTTP API on this address")

	webCmd.Flags().StringVar(&flagWebAddr, "addr", "", "HTTP listen address (default from config)")
}

// online is the shared state of a server process.
type online struct {
	coordinator *multiplayer.Coordinator
	store       *storage.Store
}

func (a *app) startOnline() (*online, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	c := multiplayer.NewCoordinator(a.coordinatorConfig(), a.stages, a.catalog,
		multiplayer.NewSessionRegistry(), a.logger.WithPrefix("rooms"))
	c.SetResultSaver(store)
	c.Start()
	return &online{coordinator: c, store: store}, nil
}

func (o *online) stop() {
	o.coordinator.Stop()
	o.store.Close()
}

func (a *app) apiServer(o *online, addr string) *api.Server {
	gin.SetMode(gin.ReleaseMode)
	cfg := a.cfg.Web
	if addr != "" {
		cfg.Address = addr
	}
	return api.NewServer(cfg, api.Deps{
		Stages:      a.stages,
		Catalog:     a.catalog,
		Store:       o.store,
		Coordinator: o.coordinator,
		Logger:      a.logger.WithPrefix("web"),
	})
}

func runServe(_ *cobra.Command, _ []string) {
	a := mustLoad()
	cfg := a.cfg.SSH
	if flagSSHAddr != "" {
		cfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.IdleTimeout = flagIdleTimeout
	}

	o, err := a.startOnline()
	if err != nil {
		fatal(err)
	}
	defer o.stop()

	env := tui.Env{
		Stages:      a.stages,
		Catalog:     a.catalog,
		Match:       a.cfg.Match,
		Store:       o.store,
		Coordinator: o.coordinator,
		Logger:      a.logger.WithPrefix("match"),
	}
	server, err := tui.NewSSHServer(cfg, env, a.logger.WithPrefix("ssh"))
	if err != nil {
		fatal(fmt.Errorf("creating server: %w", err))
	}

	fmt.Printf("Starting inkgrid SSH server on %s\n", cfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	if flagServeWeb == "" {
		if err := server.ListenAndServe(); err != nil {
			fatal(err)
		}
		return
	}

	// With --web both servers run until a signal arrives or one fails.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errc := make(chan error, 2)
	go func() { errc <- a.apiServer(o, flagServeWeb).ListenAndServe(ctx) }()
	go func() { errc <- server.Run(ctx) }()

	var errs []error
	for range 2 {
		if err := <-errc; err != nil {
			errs = append(errs, err)
			stop()
		}
	}
	if err := errors.Join(errs...); err != nil {
		fatal(err)
	}
}

func runWeb(_ *cobra.Command, _ []string) {
	a := mustLoad()
	o, err := a.startOnline()
	if err != nil {
		fatal(err)
	}
	defer o.stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := a.apiServer(o, flagWebAddr)
	fmt.Printf("Starting inkgrid web API on %s\n", srv.Addr())
	if err := srv.ListenAndServe(ctx); err != nil {
		fatal(err)
	}
}
