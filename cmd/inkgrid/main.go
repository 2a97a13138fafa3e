// inkgrid is a territory-capture card game for the terminal.
//
// Usage:
//
//	inkgrid play               - Play against bots, host or join online rooms
//	inkgrid serve              - Start the SSH server for remote play
//	inkgrid web                - Start the HTTP/websocket API
//	inkgrid stages             - List stages
//	inkgrid show <stage>       - Print a stage layout
//	inkgrid cards              - List cards
//	inkgrid check <stage>      - Check a placement on a fresh board
//	inkgrid sim                - Run bot-only matches
//	inkgrid history            - Show recorded matches
//	inkgrid replay <match-id>  - Print a recorded match turn by turn
//	inkgrid strategies         - List bot strategies
//
// Global flags:
//
//	--config <path>     - Configuration file (default: ~/.inkgrid/config.yaml)
//	--log-level <level> - Override the configured log level
//	--seed <value>      - Deck shuffle seed (0 = random per match)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/inkgrid/internal/bots"
	"github.com/vovakirdan/inkgrid/internal/cards"
	"github.com/vovakirdan/inkgrid/internal/config"
	"github.com/vovakirdan/inkgrid/internal/stages"
	"github.com/vovakirdan/inkgrid/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagLogLevel string
	flagSeed     int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "inkgrid",
	Short: "inkgrid - a territory-capture card game in your terminal",
	Long: `inkgrid is a simultaneous-turn card game: every turn each player
places a card pattern on a shared grid, and whoever covers the most
spaces after twelve turns wins.

Examples:
  inkgrid play
  inkgrid serve --ssh :2222
  inkgrid web --addr :8080
  inkgrid show 1 --players 2
  inkgrid sim --bots greedy,random --games 20`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Deck shuffle seed (0 = random per match)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(stagesCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(strategiesCmd)
}

// app is what every command builds on.
type app struct {
	cfg     config.Config
	logger  *log.Logger
	stages  *stages.Loader
	catalog *cards.Catalog
}

// loadApp reads the configuration, sets up logging and loads the stage,
// card and script sources it names.
func loadApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagSeed != 0 {
		cfg.Match.Seed = flagSeed
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "inkgrid",
		Level:           cfg.Level(),
	})
	if flagLogLevel != "" {
		lvl, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
		logger.SetLevel(lvl)
	}
	logger.Debug("configuration loaded", "source", cfg.Source)

	catalog, err := cards.Default()
	if cfg.CardsDir != "" {
		catalog, err = cards.LoadDir(cfg.CardsDir)
	}
	if err != nil {
		return nil, err
	}

	if cfg.ScriptsDir != "" {
		names, err := bots.LoadScripts(cfg.ScriptsDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("strategies loaded", "dir", cfg.ScriptsDir, "names", names)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		stages:  stages.NewLoader(cfg.StagesDir),
		catalog: catalog,
	}, nil
}

// openStore opens the match database, creating the data directory.
func (a *app) openStore() (*storage.Store, error) {
	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create data directory: %w", err)
	}
	return storage.Open(a.cfg.Database())
}

// mustLoad is loadApp for Run functions.
func mustLoad() *app {
	a, err := loadApp()
	if err != nil {
		fatal(err)
	}
	return a
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
