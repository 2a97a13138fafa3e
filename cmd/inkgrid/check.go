package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/inkgrid/internal/engine"
)

var checkCmd = &cobra.Command{
	Use:   "check <stage>",
	Short: "Check a card placement on a fresh board",
	Long: `Check whether a card may be placed on the opening board of a stage,
and print the board it would leave behind.

Without --x/--y every legal placement of the card is listed instead.

Examples:
  inkgrid check 1 --card 3 --x 1 --y 8
  inkgrid check 1 --card 3 --x 1 --y 8 --rotation 2 --player 1
  inkgrid check 2 --card 7 --players 4`,
	Args: cobra.ExactArgs(1),
	Run:  runCheck,
}

var (
	flagCheckCard     int
	flagCheckX        int
	flagCheckY        int
	flagCheckRotation int
	flagCheckPlayer   int
	flagCheckPlayers  int
	flagCheckSpecial  bool
)

func init() {
	checkCmd.Flags().IntVar(&flagCheckCard, "card", 0, "Card number (required)")
	checkCmd.Flags().IntVar(&flagCheckX, "x", -1, "Card origin column")
	checkCmd.Flags().IntVar(&flagCheckY, "y", -1, "Card origin row")
	checkCmd.Flags().IntVar(&flagCheckRotation, "rotation", 0, "Quarter turns clockwise, 0-3")
	checkCmd.Flags().IntVar(&flagCheckPlayer, "player", 0, "Placing player, 0-based")
	checkCmd.Flags().IntVar(&flagCheckPlayers, "players", 2, "Players on the board")
	checkCmd.Flags().BoolVar(&flagCheckSpecial, "special", false, "Check as a special attack")
	_ = checkCmd.MarkFlagRequired("card")
}

func runCheck(cmd *cobra.Command, args []string) {
	a := mustLoad()
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fatal(fmt.Errorf("stage must be a number, got %q", args[0]))
	}
	s, err := a.stages.ByNumber(n)
	if err != nil {
		fatal(err)
	}
	b, err := s.NewBoard(flagCheckPlayers)
	if err != nil {
		fatal(err)
	}
	if flagCheckPlayer < 0 || flagCheckPlayer >= flagCheckPlayers {
		fatal(fmt.Errorf("player %d outside 0..%d", flagCheckPlayer, flagCheckPlayers-1))
	}
	card, err := a.catalog.Card(flagCheckCard)
	if err != nil {
		fatal(err)
	}

	if !cmd.Flags().Changed("x") && !cmd.Flags().Changed("y") {
		listPlacements(b, card)
		return
	}

	if rej := engine.CheckMoveLegality(b, flagCheckPlayer, card, flagCheckX, flagCheckY, flagCheckRotation, flagCheckSpecial); rej != nil {
		fmt.Printf("Illegal: %s\n", rej.Message)
		if rej.Code != engine.RejectNotAnchored && rej.Code != engine.RejectNotAnchoredActive {
			fmt.Printf("  at %v\n", rej.At)
		}
		return
	}

	moves := make([]*engine.Move, flagCheckPlayers)
	for p := range moves {
		mv := engine.PassMove()
		moves[p] = &mv
	}
	mv := engine.PlayMove(card, flagCheckX, flagCheckY, flagCheckRotation, flagCheckSpecial)
	moves[flagCheckPlayer] = &mv
	res := engine.MakePlacements(b, moves)

	fmt.Printf("Legal: %s covers %d spaces", card.Name, len(res.Changed()))
	if k := len(res.SpecialSpacesActivated); k > 0 {
		fmt.Printf(", activates %d special spaces", k)
	}
	fmt.Println()
	fmt.Println()
	fmt.Println(renderBoard(b))
	fmt.Println()
	fmt.Printf("Scores: %v\n", engine.Scores(b, flagCheckPlayers))
}

func listPlacements(b *engine.Board, card *engine.Card) {
	legal := engine.LegalPlacements(b, flagCheckPlayer, card, flagCheckSpecial)
	if len(legal) == 0 {
		fmt.Printf("%s has no legal placement for player %d.\n", card.Name, flagCheckPlayer)
		return
	}
	fmt.Printf("%s: %d legal placements for player %d\n\n", card.Name, len(legal), flagCheckPlayer)
	fmt.Printf("  %-4s  %-4s  %s\n", "X", "Y", "Rotation")
	for _, p := range legal {
		fmt.Printf("  %-4d  %-4d  %d\n", p.X, p.Y, p.Rotation)
	}
}
