package main

import (
	"io"
	"os"
	"os/user"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/multiplayer"
	"github.com/vovakirdan/inkgrid/internal/platform/tui"
	"github.com/vovakirdan/inkgrid/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play inkgrid in the terminal",
	Long: `Start an interactive session: pick a stage, opponents and difficulty,
then play against bots. Finished matches are saved to the history
database and can be replayed from the menu.

Controls:
  Arrows/hjkl  - Move the card
  Tab/1-6      - Pick a card from the hand
  r/R          - Rotate clockwise / counter-clockwise
  x            - Toggle special attack
  Enter/Space  - Place the card
  p            - Pass, discarding the selected card
  u            - Undo the last turn
  ?            - Help
  Esc          - Back to the menu
  Ctrl+C       - Quit

Examples:
  inkgrid play
  inkgrid play --name ana --seed 42`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

var (
	flagPlayName string
	flagNoSave   bool
)

func init() {
	playCmd.Flags().StringVar(&flagPlayName, "name", "", "Player name (default: login name)")
	playCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not record matches")
}

func runPlay(_ *cobra.Command, _ []string) {
	a := mustLoad()

	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}

	// Logs go to a file so they do not tear the alt screen.
	a.logger.SetOutput(io.Discard)
	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err == nil {
		logFile, err := os.OpenFile(filepath.Join(a.cfg.DataDir, "inkgrid.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			defer logFile.Close()
			a.logger.SetOutput(logFile)
		}
	}

	var store *storage.Store
	if !flagNoSave {
		var err error
		store, err = a.openStore()
		if err != nil {
			a.logger.Warn("history disabled", "err", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	env := tui.Env{
		Stages:  a.stages,
		Catalog: a.catalog,
		Match:   a.cfg.Match,
		Store:   store,
		Logger:  a.logger,
	}
	if err := tui.RunSession(env, playerName(), width, height); err != nil {
		fatal(err)
	}
}

func playerName() string {
	if flagPlayName != "" {
		return flagPlayName
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "player"
}

// coordinatorConfig builds the online room settings from the match config.
func (a *app) coordinatorConfig() multiplayer.CoordinatorConfig {
	cfg := multiplayer.DefaultCoordinatorConfig()
	cfg.RoomTimeout = a.cfg.Match.RoomTimeout
	cfg.TurnTimeout = a.cfg.Match.TurnTimeout
	cfg.Match = match.Options{
		TurnLimit: a.cfg.Match.TurnLimit,
		HandSize:  a.cfg.Match.HandSize,
		Seed:      a.cfg.Match.Seed,
	}
	cfg.Deck = a.cfg.Match.Deck
	return cfg
}
