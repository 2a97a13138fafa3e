package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/registry"
	"github.com/vovakirdan/inkgrid/internal/stages"
	"github.com/vovakirdan/inkgrid/internal/storage"
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run bot-only matches",
	Long: `Play matches between bot strategies and report the results.

One seat is created per name in --bots. Seeds run from --seed (or the
current time) upward, one per game, so a run can be repeated exactly.

Examples:
  inkgrid sim --bots greedy,random
  inkgrid sim --bots greedy,lua:spread,random --stage 2 --games 50
  inkgrid sim --bots greedy,greedy --save`,
	Args: cobra.NoArgs,
	Run:  runSim,
}

var (
	flagSimBots  string
	flagSimStage int
	flagSimGames int
	flagSimSave  bool
)

func init() {
	simCmd.Flags().StringVar(&flagSimBots, "bots", "greedy,random", "Comma-separated strategies, one per seat")
	simCmd.Flags().IntVar(&flagSimStage, "stage", 1, "Stage number")
	simCmd.Flags().IntVar(&flagSimGames, "games", 1, "Number of matches")
	simCmd.Flags().BoolVar(&flagSimSave, "save", false, "Record the matches in the history database")
}

func runSim(_ *cobra.Command, _ []string) {
	a := mustLoad()
	names := strings.Split(flagSimBots, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
		if !registry.Exists(names[i]) {
			fatal(fmt.Errorf("unknown strategy %q (see 'inkgrid strategies')", names[i]))
		}
	}
	if flagSimGames < 1 {
		fatal(errors.New("--games must be positive"))
	}
	stage, err := a.stages.ByNumber(flagSimStage)
	if err != nil {
		fatal(err)
	}

	var store *storage.Store
	if flagSimSave {
		if store, err = a.openStore(); err != nil {
			fatal(err)
		}
		defer store.Close()
	}

	seed := a.cfg.Match.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	wins := make([]int, len(names))
	draws := 0
	for g := range flagSimGames {
		gameSeed := seed + int64(g)
		res, m, err := simulate(a, stage, names, gameSeed)
		if err != nil {
			fatal(err)
		}
		if res.Winner < 0 {
			draws++
		} else {
			wins[res.Winner]++
		}
		fmt.Printf("game %-3d seed %-20d scores %v\n", g+1, gameSeed, res.Scores)

		if store != nil {
			if err := saveSim(store, m, stage.Number, names, res); err != nil {
				a.logger.Error("cannot save match", "err", err)
			}
		}
	}

	fmt.Println()
	for i, n := range names {
		fmt.Printf("  seat %d  %-16s  %d wins\n", i, n, wins[i])
	}
	fmt.Printf("  draws %d\n", draws)
}

// simulate plays one match to the end. A bot whose choice is rejected
// passes with its first card instead.
func simulate(a *app, stage *stages.Stage, names []string, seed int64) (match.Result, *match.Match, error) {
	seats := make([]match.Seat, len(names))
	strategies := make([]registry.Strategy, len(names))
	for i, n := range names {
		s, err := registry.Create(n, seed+int64(i))
		if err != nil {
			return match.Result{}, nil, err
		}
		strategies[i] = s
		seats[i] = match.Seat{Name: fmt.Sprintf("%s#%d", n, i), Deck: a.cfg.Match.Deck}
	}

	opts := match.Options{TurnLimit: a.cfg.Match.TurnLimit, HandSize: a.cfg.Match.HandSize, Seed: seed}
	m, err := match.New(stage, a.catalog, seats, opts, a.logger.WithPrefix("sim"))
	if err != nil {
		return match.Result{}, nil, err
	}

	for !m.Over() {
		for p, s := range strategies {
			if err := m.Submit(p, s.Choose(m.View(p))); err != nil {
				a.logger.Debug("bot move rejected", "strategy", s.Name(), "err", err)
				if err := m.Submit(p, match.Pass(m.Hand(p)[0].Number)); err != nil {
					return match.Result{}, nil, err
				}
			}
		}
		if _, err := m.Resolve(); err != nil {
			return match.Result{}, nil, err
		}
	}
	return m.Result(), m, nil
}

func saveSim(store *storage.Store, m *match.Match, stage int, names []string, res match.Result) error {
	rp, err := m.Replay()
	if err != nil {
		return err
	}
	blob, err := rp.Encode()
	if err != nil {
		return err
	}
	players := make([]string, len(names))
	for i := range names {
		players[i] = m.PlayerName(i)
	}
	_, err = store.SaveMatch(storage.MatchRecord{
		MatchID:   m.ID(),
		Stage:     stage,
		Players:   players,
		Scores:    res.Scores,
		Winner:    res.Winner,
		EndReason: "completed",
		Turns:     m.Turn(),
		Replay:    blob,
	})
	return err
}
