package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/platform/tui"
	"github.com/vovakirdan/inkgrid/internal/replay"
	"github.com/vovakirdan/inkgrid/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded matches",
	Long: `Display the most recent matches, or one player's matches and
statistics with --player.

Examples:
  inkgrid history
  inkgrid history --player ana
  inkgrid history --limit 50`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

var replayCmd = &cobra.Command{
	Use:   "replay <match-id>",
	Short: "Print a recorded match turn by turn",
	Long: `Replay a recorded match from the history database, printing every
turn's moves and the board after it. Match ids may be shortened to any
unique prefix shown by 'inkgrid history'.

Examples:
  inkgrid replay 3f2a9c1e
  inkgrid replay 3f2a9c1e --turn 6`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

var (
	flagHistoryPlayer string
	flagHistoryLimit  int
	flagReplayTurn    int
)

func init() {
	historyCmd.Flags().StringVar(&flagHistoryPlayer, "player", "", "Only this player's matches")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Number of matches to show")
	replayCmd.Flags().IntVar(&flagReplayTurn, "turn", 0, "Only print the board after this turn")
}

func runHistory(_ *cobra.Command, _ []string) {
	a := mustLoad()
	store, err := a.openStore()
	if err != nil {
		fatal(fmt.Errorf("opening history database: %w", err))
	}
	defer store.Close()

	var matches []storage.MatchRecord
	if flagHistoryPlayer != "" {
		matches, err = store.PlayerMatches(flagHistoryPlayer, flagHistoryLimit)
	} else {
		matches, err = store.RecentMatches(flagHistoryLimit)
	}
	if err != nil {
		fatal(err)
	}

	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'inkgrid play' to record the first one!")
		return
	}

	fmt.Printf("  %-16s  %-8s  %-5s  %-28s  %-14s  %s\n", "Date", "Match", "Stage", "Players", "Scores", "Winner")
	fmt.Printf("  %-16s  %-8s  %-5s  %-28s  %-14s  %s\n", "----", "-----", "-----", "-------", "------", "------")
	for _, r := range matches {
		winner := r.WinnerName()
		if winner == "" {
			winner = "draw"
		}
		if r.EndReason != "completed" {
			winner += " (" + r.EndReason + ")"
		}
		fmt.Printf("  %-16s  %-8s  %-5d  %-28s  %-14s  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), shortID(r.MatchID), r.Stage,
			strings.Join(r.Players, ", "), joinInts(r.Scores), winner)
	}

	if flagHistoryPlayer == "" {
		return
	}
	stats, err := store.PlayerStats(flagHistoryPlayer)
	if err != nil {
		fatal(err)
	}
	fmt.Println()
	fmt.Printf("%s: %d played, %d won, best %d, average %.1f\n",
		stats.Name, stats.Played, stats.Won, stats.BestScore, stats.AvgScore)
}

func runReplay(_ *cobra.Command, args []string) {
	a := mustLoad()
	store, err := a.openStore()
	if err != nil {
		fatal(fmt.Errorf("opening history database: %w", err))
	}
	defer store.Close()

	id, err := resolveMatchID(store, args[0])
	if err != nil {
		fatal(err)
	}
	blob, err := store.ReplayBlob(id)
	if err != nil {
		fatal(err)
	}
	rp, err := replay.Decode(blob)
	if err != nil {
		fatal(err)
	}
	stage, err := a.stages.ByNumber(rp.Stage)
	if err != nil {
		fatal(err)
	}
	viewer, err := tui.NewReplayModel(rp, stage, a.catalog)
	if err != nil {
		fatal(err)
	}
	if flagReplayTurn < 0 || flagReplayTurn > len(rp.Turns) {
		fatal(fmt.Errorf("--turn %d outside 0..%d", flagReplayTurn, len(rp.Turns)))
	}

	names := make([]string, len(rp.Players))
	for i, p := range rp.Players {
		names[i] = p.Name
	}
	fmt.Printf("Match %s on %s: %s\n\n", id, stage.Name, strings.Join(names, " vs "))

	if flagReplayTurn > 0 {
		for viewer.Turn() < flagReplayTurn {
			viewer.Forward()
		}
		printTurn(viewer.Board(), flagReplayTurn, len(rp.Players))
		return
	}

	for viewer.Forward() {
		turn := viewer.Turn()
		moves, err := rp.Moves(turn-1, a.catalog)
		if err != nil {
			fatal(err)
		}
		for p, mv := range moves {
			desc := mv.String()
			if mv.Card != nil {
				desc += " " + mv.Card.Name
			}
			if rp.Turns[turn-1][p].Timeout {
				desc = "timed out"
			}
			fmt.Printf("  %-12s %s\n", names[p], desc)
		}
		printTurn(viewer.Board(), turn, len(rp.Players))
	}
}

func printTurn(b *engine.Board, turn, players int) {
	fmt.Printf("\nAfter turn %d, scores %s\n", turn, joinInts(engine.Scores(b, players)))
	fmt.Println(renderBoard(b))
	fmt.Println()
}

// resolveMatchID expands a unique prefix of a recent match id.
func resolveMatchID(store *storage.Store, prefix string) (string, error) {
	if _, err := store.MatchByID(prefix); err == nil {
		return prefix, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	recent, err := store.RecentMatches(500)
	if err != nil {
		return "", err
	}
	var found []string
	for _, r := range recent {
		if strings.HasPrefix(r.MatchID, prefix) {
			found = append(found, r.MatchID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no match %q", prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("match id %q is ambiguous (%d matches)", prefix, len(found))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "-")
}
