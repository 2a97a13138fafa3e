package match

import "github.com/vovakirdan/inkgrid/internal/engine"

// View is what a single player may see when choosing a move.
type View struct {
	Player        int
	Players       int
	Board         *engine.Board // a copy, safe to modify
	Hand          []*engine.Card
	SpecialPoints int
	Turn          int // 1-based turn being chosen
	TurnLimit     int
}

// TurnsLeft counts the current turn and those after it.
func (v View) TurnsLeft() int {
	return v.TurnLimit - v.Turn + 1
}

// View returns player p's view of the current turn.
func (m *Match) View(p int) View {
	m.mu.Lock()
	defer m.mu.Unlock()

	return View{
		Player:        p,
		Players:       len(m.players),
		Board:         m.board.Clone(),
		Hand:          m.handLocked(p),
		SpecialPoints: m.players[p].sp,
		Turn:          len(m.history) + 1,
		TurnLimit:     m.opts.TurnLimit,
	}
}
