// Package match drives a full game on top of the rules engine: decks and
// hands, special points, simultaneous submissions and turn resolution.
package match

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/inkgrid/internal/cards"
	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/replay"
	"github.com/vovakirdan/inkgrid/internal/stages"
)

var (
	ErrNotInHand           = errors.New("card not in hand")
	ErrAlreadySubmitted    = errors.New("move already submitted")
	ErrInsufficientSpecial = errors.New("not enough special points")
	ErrMatchOver           = errors.New("match is over")
	ErrTurnIncomplete      = errors.New("not every player has submitted")
	ErrNothingToUndo       = errors.New("no turn to undo")
	ErrNoSuchPlayer        = errors.New("no such player")
)

// Options tunes a match.
type Options struct {
	TurnLimit int
	HandSize  int
	Seed      int64 // deck shuffle seed
}

// DefaultOptions returns the standard rules: twelve turns, four cards in hand.
func DefaultOptions() Options {
	return Options{TurnLimit: 12, HandSize: 4}
}

// Palette holds the default player colours, one per seat.
var Palette = []replay.Color{
	{R: 0xe6, G: 0xd2, B: 0x2e},
	{R: 0x4a, G: 0x5c, B: 0xf0},
	{R: 0xe6, G: 0x4a, B: 0x9b},
	{R: 0x3c, G: 0xc8, B: 0x6e},
}

// Seat describes one player joining a match.
type Seat struct {
	Name  string
	Color *replay.Color // nil means the palette colour
	Deck  []int         // card numbers, unique
}

// TurnResult reports one resolved turn.
type TurnResult struct {
	Turn          int // 1-based
	Moves         []engine.Move
	Results       engine.PlacementResults
	Scores        []int
	SpecialPoints []int
	Over          bool
}

// Result is the outcome of a finished match.
type Result struct {
	Scores []int
	Winner int // -1 on a draw
}

type player struct {
	name  string
	color replay.Color
	deck  []*engine.Card // draw order
	hand  []int          // indices into deck
	drawn int            // next deck index to draw
	sp    int
}

type pending struct {
	move   engine.Move
	record replay.Record
}

type turnRecord struct {
	moves   []engine.Move
	records []replay.Record
	results engine.PlacementResults
	hands   [][]int
	drawn   []int
	sp      []int
}

// Match is safe for concurrent use.
type Match struct {
	mu     sync.Mutex
	id     string
	stage  *stages.Stage
	opts   Options
	logger *log.Logger

	board   *engine.Board
	players []*player
	pending []*pending
	history []turnRecord
}

// New starts a match on stage. Each seat's deck is shuffled with
// opts.Seed and the opening hands are drawn. A nil logger discards output.
func New(stage *stages.Stage, catalog *cards.Catalog, seats []Seat, opts Options, logger *log.Logger) (*Match, error) {
	if n := len(seats); n < 2 || n > engine.MaxPlayers {
		return nil, fmt.Errorf("match: %d players, want 2..%d", n, engine.MaxPlayers)
	}
	if opts.TurnLimit < 1 || opts.TurnLimit > replay.MaxTurns {
		return nil, fmt.Errorf("match: turn limit %d outside 1..%d", opts.TurnLimit, replay.MaxTurns)
	}
	if opts.HandSize < 1 {
		return nil, fmt.Errorf("match: hand size %d", opts.HandSize)
	}

	board, err := stage.NewBoard(len(seats))
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}

	if logger == nil {
		logger = log.New(io.Discard)
	}
	id := uuid.NewString()
	m := &Match{
		id:      id,
		stage:   stage,
		opts:    opts,
		logger:  logger.With("match", id[:8]),
		board:   board,
		pending: make([]*pending, len(seats)),
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	for i, seat := range seats {
		p, err := newPlayer(seat, i, catalog, opts)
		if err != nil {
			return nil, err
		}
		rng.Shuffle(len(p.deck), func(a, b int) {
			p.deck[a], p.deck[b] = p.deck[b], p.deck[a]
		})
		for range opts.HandSize {
			p.draw()
		}
		m.players = append(m.players, p)
	}

	m.logger.Info("match started", "stage", stage.Number, "players", len(seats), "turns", opts.TurnLimit)
	return m, nil
}

func newPlayer(seat Seat, index int, catalog *cards.Catalog, opts Options) (*player, error) {
	need := opts.HandSize + opts.TurnLimit - 1
	if len(seat.Deck) < need || len(seat.Deck) > replay.MaxDeck {
		return nil, fmt.Errorf("match: seat %d: deck of %d cards, want %d..%d", index, len(seat.Deck), need, replay.MaxDeck)
	}
	p := &player{name: seat.Name, color: Palette[index]}
	if seat.Color != nil {
		p.color = *seat.Color
	}
	seen := make(map[int]bool)
	for _, n := range seat.Deck {
		if seen[n] {
			return nil, fmt.Errorf("match: seat %d: card %d appears twice", index, n)
		}
		seen[n] = true
		card, err := catalog.Card(n)
		if err != nil {
			return nil, fmt.Errorf("match: seat %d: %w", index, err)
		}
		p.deck = append(p.deck, card)
	}
	return p, nil
}

func (p *player) draw() {
	if p.drawn < len(p.deck) {
		p.hand = append(p.hand, p.drawn)
		p.drawn++
	}
}

// discard replaces slot in the hand with the next card of the deck, or
// removes it once the deck is exhausted.
func (p *player) discard(slot int) {
	i := slices.Index(p.hand, slot)
	if i < 0 {
		panic(fmt.Sprintf("match: deck slot %d not in hand %v", slot, p.hand))
	}
	if p.drawn < len(p.deck) {
		p.hand[i] = p.drawn
		p.drawn++
		return
	}
	p.hand = slices.Delete(p.hand, i, i+1)
}

func (p *player) slotOf(cardNumber int) int {
	for _, slot := range p.hand {
		if p.deck[slot].Number == cardNumber {
			return slot
		}
	}
	return -1
}

// ID returns the match identifier.
func (m *Match) ID() string {
	return m.id
}

// Stage returns the stage being played.
func (m *Match) Stage() *stages.Stage {
	return m.stage
}

// Players returns the number of seats.
func (m *Match) Players() int {
	return len(m.players)
}

// PlayerName returns the name of seat p.
func (m *Match) PlayerName(p int) string {
	return m.players[p].name
}

// PlayerColor returns the colour of seat p.
func (m *Match) PlayerColor(p int) replay.Color {
	return m.players[p].color
}

// TurnLimit returns the number of turns in the match.
func (m *Match) TurnLimit() int {
	return m.opts.TurnLimit
}

// Turn returns the number of resolved turns.
func (m *Match) Turn() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}

// Board returns a copy of the current board.
func (m *Match) Board() *engine.Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board.Clone()
}

// Hand returns the cards in player p's hand.
func (m *Match) Hand(p int) []*engine.Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handLocked(p)
}

func (m *Match) handLocked(p int) []*engine.Card {
	pl := m.players[p]
	out := make([]*engine.Card, len(pl.hand))
	for i, slot := range pl.hand {
		out[i] = pl.deck[slot]
	}
	return out
}

// SpecialPoints returns player p's unspent special points.
func (m *Match) SpecialPoints(p int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players[p].sp
}

// Submitted reports whether player p has a move in for the current turn.
func (m *Match) Submitted(p int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending[p] != nil
}

// Ready reports whether every player has submitted.
func (m *Match) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readyLocked()
}

func (m *Match) readyLocked() bool {
	for _, pd := range m.pending {
		if pd == nil {
			return false
		}
	}
	return true
}

// Over reports whether the turn limit has been reached.
func (m *Match) Over() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overLocked()
}

func (m *Match) overLocked() bool {
	return len(m.history) >= m.opts.TurnLimit
}

// Scores returns the current territory count per player.
func (m *Match) Scores() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return engine.Scores(m.board, len(m.players))
}

// Result returns the scores and the winner. The winner is -1 when the top
// score is shared. It may be called before the match is over.
func (m *Match) Result() Result {
	scores := m.Scores()
	winner, best := -1, -1
	for p, s := range scores {
		switch {
		case s > best:
			winner, best = p, s
		case s == best:
			winner = -1
		}
	}
	return Result{Scores: scores, Winner: winner}
}

func (m *Match) checkPlayer(p int) error {
	if p < 0 || p >= len(m.players) {
		return fmt.Errorf("match: player %d: %w", p, ErrNoSuchPlayer)
	}
	return nil
}

// Submit records player p's move for the current turn. Illegal placements
// return the engine's *Rejection.
func (m *Match) Submit(p int, s Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.overLocked() {
		return ErrMatchOver
	}
	if err := m.checkPlayer(p); err != nil {
		return err
	}
	if m.pending[p] != nil {
		return fmt.Errorf("match: player %d: %w", p, ErrAlreadySubmitted)
	}

	pl := m.players[p]
	slot := pl.slotOf(s.CardNumber)
	if slot < 0 {
		return fmt.Errorf("match: player %d card %d: %w", p, s.CardNumber, ErrNotInHand)
	}
	card := pl.deck[slot]

	pd := &pending{record: replay.Record{HandSlot: slot}}
	if s.IsPass {
		pd.move = engine.PassMove()
		pd.record.Pass = true
	} else {
		if s.IsSpecialAttack && pl.sp < card.SpecialCost {
			return fmt.Errorf("match: player %d has %d, card %d costs %d: %w",
				p, pl.sp, card.Number, card.SpecialCost, ErrInsufficientSpecial)
		}
		mv := engine.PlayMove(card, s.X, s.Y, s.Rotation, s.IsSpecialAttack)
		if rej := engine.IsLegal(m.board, p, mv); rej != nil {
			return rej
		}
		pd.move = mv
		pd.record.Rotation = pd.move.Rotation
		pd.record.X, pd.record.Y = s.X, s.Y
		pd.record.SpecialAttack = s.IsSpecialAttack
	}

	m.pending[p] = pd
	m.logger.Debug("move submitted", "turn", len(m.history)+1, "player", p, "move", pd.move)
	return nil
}

// Timeout submits a pass for player p that discards the first card in hand.
func (m *Match) Timeout(p int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.overLocked() {
		return ErrMatchOver
	}
	if err := m.checkPlayer(p); err != nil {
		return err
	}
	if m.pending[p] != nil {
		return fmt.Errorf("match: player %d: %w", p, ErrAlreadySubmitted)
	}
	m.pending[p] = &pending{
		move:   engine.PassMove(),
		record: replay.Record{HandSlot: m.players[p].hand[0], Timeout: true},
	}
	m.logger.Debug("player timed out", "turn", len(m.history)+1, "player", p)
	return nil
}

// Resolve applies the submitted moves once every player has submitted.
//
// Each player earns one special point per special space of theirs activated
// this turn and one for passing. A special attack costs the card's special
// cost. The played or discarded card is replaced from the deck.
func (m *Match) Resolve() (TurnResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.overLocked() {
		return TurnResult{}, ErrMatchOver
	}
	if !m.readyLocked() {
		return TurnResult{}, ErrTurnIncomplete
	}

	rec := turnRecord{
		moves:   make([]engine.Move, len(m.players)),
		records: make([]replay.Record, len(m.players)),
		hands:   make([][]int, len(m.players)),
		drawn:   make([]int, len(m.players)),
		sp:      make([]int, len(m.players)),
	}
	ptrs := make([]*engine.Move, len(m.players))
	for p, pd := range m.pending {
		rec.moves[p] = pd.move
		rec.records[p] = pd.record
		ptrs[p] = &rec.moves[p]

		pl := m.players[p]
		rec.hands[p] = slices.Clone(pl.hand)
		rec.drawn[p] = pl.drawn
		rec.sp[p] = pl.sp
	}

	rec.results = engine.MakePlacements(m.board, ptrs)

	for _, at := range rec.results.SpecialSpacesActivated {
		m.players[m.board.Get(at).Player()].sp++
	}
	for p, pd := range m.pending {
		pl := m.players[p]
		switch {
		case pd.move.Pass:
			pl.sp++
		case pd.move.SpecialAttack:
			pl.sp -= pd.move.Card.SpecialCost
		}
		pl.discard(pd.record.HandSlot)
		m.pending[p] = nil
	}
	m.history = append(m.history, rec)

	result := TurnResult{
		Turn:          len(m.history),
		Moves:         rec.moves,
		Results:       rec.results,
		Scores:        engine.Scores(m.board, len(m.players)),
		SpecialPoints: make([]int, len(m.players)),
		Over:          m.overLocked(),
	}
	for p, pl := range m.players {
		result.SpecialPoints[p] = pl.sp
	}

	m.logger.Info("turn resolved", "turn", result.Turn, "scores", result.Scores,
		"activated", len(rec.results.SpecialSpacesActivated))
	if result.Over {
		m.logger.Info("match over", "scores", result.Scores)
	}
	return result, nil
}

// UndoLastTurn reverses the most recent resolved turn: board, hands, decks
// and special points. Pending submissions are dropped.
func (m *Match) UndoLastTurn() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.history) == 0 {
		return ErrNothingToUndo
	}
	last := m.history[len(m.history)-1]
	engine.UndoTurn(m.board, last.results)
	for p, pl := range m.players {
		pl.hand = slices.Clone(last.hands[p])
		pl.drawn = last.drawn[p]
		pl.sp = last.sp[p]
		m.pending[p] = nil
	}
	m.history = m.history[:len(m.history)-1]

	m.logger.Info("turn undone", "turn", len(m.history)+1)
	return nil
}

// Replay returns the match so far in replay form. Decks are recorded in
// draw order so hand slots index them directly.
func (m *Match) Replay() (*replay.Replay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := &replay.Replay{Stage: m.stage.Number}
	for _, pl := range m.players {
		deck := make([]int, len(pl.deck))
		for i, c := range pl.deck {
			deck[i] = c.Number
		}
		r.Players = append(r.Players, replay.Player{Name: pl.name, Color: pl.color, Deck: deck})
	}
	for _, t := range m.history {
		r.Turns = append(r.Turns, slices.Clone(t.records))
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}
	return r, nil
}
