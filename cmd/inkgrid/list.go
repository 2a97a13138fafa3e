package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/registry"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List all stages",
	Long:  `Shows every stage with its size and supported player counts.`,
	Args:  cobra.NoArgs,
	Run:   runStages,
}

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "List all cards",
	Long: `Shows every card in the catalog.

With --patterns each card's pattern is printed as well:
'=' is ink, '*' is the card's special space.`,
	Args: cobra.NoArgs,
	Run:  runCards,
}

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List bot strategies",
	Long: `Shows every registered bot strategy, including lua scripts from
the configured scripts directory.`,
	Args: cobra.NoArgs,
	Run:  runStrategies,
}

var showCmd = &cobra.Command{
	Use:   "show <stage>",
	Short: "Print a stage layout",
	Long: `Print a stage as a grid.

  .  empty     #  wall       (blank) outside the stage
  a-d ink      A-D special   1-4 active special

Examples:
  inkgrid show 1
  inkgrid show 2 --players 4`,
	Args: cobra.ExactArgs(1),
	Run:  runShow,
}

var (
	flagPatterns    bool
	flagShowPlayers int
)

func init() {
	cardsCmd.Flags().BoolVar(&flagPatterns, "patterns", false, "Print card patterns")
	showCmd.Flags().IntVar(&flagShowPlayers, "players", 0, "Place the start spaces for this many players")
}

func runStages(_ *cobra.Command, _ []string) {
	a := mustLoad()
	list, err := a.stages.LoadAll()
	if err != nil {
		fatal(err)
	}
	if len(list) == 0 {
		fmt.Println("No stages available.")
		return
	}

	fmt.Printf("  %-3s  %-16s  %-7s  %s\n", "#", "Name", "Size", "Players")
	fmt.Printf("  %-3s  %-16s  %-7s  %s\n", "-", "----", "----", "-------")
	for _, s := range list {
		w, h := s.Size()
		fmt.Printf("  %-3d  %-16s  %-7s  2-%d\n", s.Number, s.Name, fmt.Sprintf("%dx%d", w, h), s.MaxPlayers())
	}
	fmt.Println()
	fmt.Println("Run 'inkgrid show <number>' to see a layout.")
}

func runCards(_ *cobra.Command, _ []string) {
	a := mustLoad()
	fmt.Printf("  %-3s  %-18s  %-7s  %-4s  %s\n", "#", "Name", "Rarity", "Size", "Special")
	fmt.Printf("  %-3s  %-18s  %-7s  %-4s  %s\n", "-", "----", "------", "----", "-------")
	for _, c := range a.catalog.All() {
		fmt.Printf("  %-3d  %-18s  %-7s  %-4d  %d\n", c.Number, c.Name, c.Rarity, c.Size(), c.SpecialCost)
		if flagPatterns {
			for _, row := range c.PatternRows(0) {
				fmt.Printf("       %s\n", row)
			}
			fmt.Println()
		}
	}
}

func runStrategies(_ *cobra.Command, _ []string) {
	mustLoad()
	list := registry.List()
	width := len("Name")
	for _, s := range list {
		width = max(width, len(s.Name))
	}
	fmt.Printf("  %-*s  %s\n", width, "Name", "Description")
	fmt.Printf("  %-*s  %s\n", width, "----", "-----------")
	for _, s := range list {
		fmt.Printf("  %-*s  %s\n", width, s.Name, s.Description)
	}
}

func runShow(_ *cobra.Command, args []string) {
	a := mustLoad()
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fatal(fmt.Errorf("stage must be a number, got %q", args[0]))
	}
	s, err := a.stages.ByNumber(n)
	if err != nil {
		fatal(err)
	}

	b := s.Layout()
	if flagShowPlayers > 0 {
		if b, err = s.NewBoard(flagShowPlayers); err != nil {
			fatal(err)
		}
	}
	w, h := s.Size()
	fmt.Printf("Stage %d - %s (%dx%d)\n\n", s.Number, s.Name, w, h)
	fmt.Println(renderBoard(b))
}

// renderBoard prints a board, colouring ink when stdout is a terminal.
func renderBoard(b *engine.Board) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return b.String()
	}
	wall := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	var sb strings.Builder
	for y := range b.H {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := range b.W {
			sp := b.Get(engine.C(x, y))
			ch := string(sp.Char())
			switch {
			case sp.IsOwned():
				style := lipgloss.NewStyle().Foreground(lipgloss.Color(match.Palette[sp.Player()].Hex()))
				if sp.IsSpecial() {
					style = style.Bold(true)
				}
				sb.WriteString(style.Render(ch))
			case sp.IsBlocked():
				sb.WriteString(wall.Render(ch))
			default:
				sb.WriteString(ch)
			}
		}
	}
	return sb.String()
}
