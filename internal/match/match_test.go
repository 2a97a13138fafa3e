package match

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/vovakirdan/inkgrid/internal/cards"
	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/replay"
	"github.com/vovakirdan/inkgrid/internal/stages"
)

func fixtures(t *testing.T) (*stages.Stage, *cards.Catalog) {
	t.Helper()
	stage, err := stages.NewLoader("").ByNumber(1)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	catalog, err := cards.Default()
	if err != nil {
		t.Fatalf("cards: %v", err)
	}
	return stage, catalog
}

func starterDeck() []int {
	return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
}

func newTestMatch(t *testing.T, seed int64) *Match {
	t.Helper()
	stage, catalog := fixtures(t)
	seats := []Seat{
		{Name: "left", Deck: starterDeck()},
		{Name: "right", Deck: starterDeck()},
	}
	opts := DefaultOptions()
	opts.Seed = seed
	m, err := New(stage, catalog, seats, opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestNewValidation(t *testing.T) {
	stage, catalog := fixtures(t)
	short := []int{1, 2, 3, 4, 5}
	dup := starterDeck()
	dup[14] = 1
	unknown := starterDeck()
	unknown[0] = 500

	tests := []struct {
		name  string
		seats []Seat
	}{
		{"one seat", []Seat{{Deck: starterDeck()}}},
		{"deck too short", []Seat{{Deck: starterDeck()}, {Deck: short}}},
		{"duplicate card", []Seat{{Deck: starterDeck()}, {Deck: dup}}},
		{"unknown card", []Seat{{Deck: starterDeck()}, {Deck: unknown}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(stage, catalog, tc.seats, DefaultOptions(), nil); err == nil {
				t.Error("expected New to fail")
			}
		})
	}

	opts := DefaultOptions()
	opts.TurnLimit = 13
	seats := []Seat{{Deck: starterDeck()}, {Deck: starterDeck()}}
	if _, err := New(stage, catalog, seats, opts, nil); err == nil {
		t.Error("turn limit 13 should be rejected")
	}
}

func TestOpeningState(t *testing.T) {
	m := newTestMatch(t, 1)

	for p := range m.Players() {
		if n := len(m.Hand(p)); n != 4 {
			t.Errorf("player %d hand = %d cards, expected 4", p, n)
		}
		if sp := m.SpecialPoints(p); sp != 0 {
			t.Errorf("player %d special points = %d", p, sp)
		}
	}
	if m.Board().Get(engine.C(2, 9)) != engine.SpecialInactive(0) {
		t.Error("player 0 start not placed")
	}
	if m.Turn() != 0 || m.Over() {
		t.Error("fresh match should be at turn 0 and not over")
	}
	if m.PlayerColor(1) != Palette[1] {
		t.Errorf("player 1 colour = %v", m.PlayerColor(1))
	}

	// Same seed, same hands.
	again := newTestMatch(t, 1)
	for i, c := range m.Hand(0) {
		if got := again.Hand(0)[i].Number; got != c.Number {
			t.Fatalf("hand slot %d = card %d, want %d for the same seed", i, got, c.Number)
		}
	}
}

func TestSubmitErrors(t *testing.T) {
	m := newTestMatch(t, 2)
	card := m.Hand(0)[0]

	if err := m.Submit(0, Play(999, engine.Position{}, false)); !errors.Is(err, ErrNotInHand) {
		t.Errorf("unknown card: %v", err)
	}
	if err := m.Submit(0, Play(card.Number, engine.Position{X: 5, Y: 5}, true)); !errors.Is(err, ErrInsufficientSpecial) {
		t.Errorf("special without points: %v", err)
	}

	err := m.Submit(0, Play(card.Number, engine.Position{X: 0, Y: 0}, false))
	var rej *engine.Rejection
	if !errors.As(err, &rej) || rej.Code != engine.RejectNotAnchored {
		t.Errorf("unanchored play: %v", err)
	}

	if err := m.Submit(0, Pass(card.Number)); err != nil {
		t.Fatalf("pass: %v", err)
	}
	if err := m.Submit(0, Pass(card.Number)); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("second submission: %v", err)
	}
	if err := m.Submit(7, Pass(card.Number)); !errors.Is(err, ErrNoSuchPlayer) {
		t.Errorf("bad player: %v", err)
	}
	if _, err := m.Resolve(); !errors.Is(err, ErrTurnIncomplete) {
		t.Errorf("Resolve with a missing move: %v", err)
	}
}

func TestAllPassMatch(t *testing.T) {
	m := newTestMatch(t, 3)

	for turn := 1; turn <= 12; turn++ {
		for p := range m.Players() {
			if err := m.Submit(p, Pass(m.Hand(p)[0].Number)); err != nil {
				t.Fatalf("turn %d player %d: %v", turn, p, err)
			}
		}
		res, err := m.Resolve()
		if err != nil {
			t.Fatalf("turn %d: %v", turn, err)
		}
		if res.Turn != turn {
			t.Errorf("Turn = %d, expected %d", res.Turn, turn)
		}
		if res.Over != (turn == 12) {
			t.Errorf("turn %d: Over = %v", turn, res.Over)
		}
	}

	if m.SpecialPoints(0) != 12 || m.SpecialPoints(1) != 12 {
		t.Errorf("special points = %d, %d; expected 12 each", m.SpecialPoints(0), m.SpecialPoints(1))
	}
	// 15 cards, 4 in hand, 11 draws: the last card is never replaced.
	if n := len(m.Hand(0)); n != 3 {
		t.Errorf("final hand = %d cards, expected 3", n)
	}
	if err := m.Submit(0, Pass(m.Hand(0)[0].Number)); !errors.Is(err, ErrMatchOver) {
		t.Errorf("submit after the end: %v", err)
	}

	res := m.Result()
	if res.Winner != -1 || res.Scores[0] != 1 || res.Scores[1] != 1 {
		t.Errorf("Result = %+v, expected a 1-1 draw", res)
	}
}

// playFirstLegal submits the first legal placement of any hand card, or a pass.
func playFirstLegal(t *testing.T, m *Match, p int) {
	t.Helper()
	v := m.View(p)
	for _, card := range v.Hand {
		if pos := engine.LegalPlacements(v.Board, p, card, false); len(pos) > 0 {
			if err := m.Submit(p, Play(card.Number, pos[0], false)); err != nil {
				t.Fatalf("player %d: %v", p, err)
			}
			return
		}
	}
	if err := m.Submit(p, Pass(v.Hand[0].Number)); err != nil {
		t.Fatalf("player %d pass: %v", p, err)
	}
}

func TestUndoLastTurn(t *testing.T) {
	m := newTestMatch(t, 4)
	before := m.Board()
	hand := m.Hand(0)

	if err := m.UndoLastTurn(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("undo at start: %v", err)
	}

	playFirstLegal(t, m, 0)
	if err := m.Timeout(1); err != nil {
		t.Fatalf("Timeout: %v", err)
	}
	res, err := m.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Board().Equal(before) {
		t.Fatal("board unchanged after a play")
	}
	if res.SpecialPoints[1] != 1 {
		t.Errorf("timeout should earn a point like a pass, got %d", res.SpecialPoints[1])
	}

	if err := m.UndoLastTurn(); err != nil {
		t.Fatalf("UndoLastTurn: %v", err)
	}
	if !m.Board().Equal(before) {
		t.Errorf("board not restored: %v", before.Diff(m.Board()))
	}
	if m.SpecialPoints(1) != 0 || m.Turn() != 0 {
		t.Error("points or turn not restored")
	}
	for i, c := range m.Hand(0) {
		if c != hand[i] {
			t.Fatalf("hand not restored: %v vs %v", m.Hand(0), hand)
		}
	}
}

func TestReplayReproducesBoard(t *testing.T) {
	m := newTestMatch(t, 5)
	for range 6 {
		for p := range m.Players() {
			playFirstLegal(t, m, p)
		}
		if _, err := m.Resolve(); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}

	r, err := m.Replay()
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	blob, err := r.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := replay.Decode(blob)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	stage, catalog := fixtures(t)
	b, err := stage.NewBoard(len(decoded.Players))
	if err != nil {
		t.Fatal(err)
	}
	for turn := range decoded.Turns {
		if _, err := decoded.Apply(b, turn, catalog); err != nil {
			t.Fatalf("Apply turn %d: %v", turn, err)
		}
	}
	if !b.Equal(m.Board()) {
		t.Errorf("replayed board differs at %v", b.Diff(m.Board()))
	}
}

func TestSubmissionJSON(t *testing.T) {
	var s Submission
	data := `{"cardNumber":8,"isPass":false,"x":-1,"y":3,"rotation":2,"isSpecialAttack":true}`
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := Submission{CardNumber: 8, X: -1, Y: 3, Rotation: 2, IsSpecialAttack: true}
	if s != want {
		t.Errorf("decoded %+v, expected %+v", s, want)
	}

	_, catalog := fixtures(t)
	mv, err := s.Move(catalog)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if mv.Card.Name != "Cross" || mv.Rotation != 2 || !mv.SpecialAttack {
		t.Errorf("Move = %v", mv)
	}

	s.CardNumber = 404
	if _, err := s.Move(catalog); !errors.Is(err, cards.ErrUnknownCard) {
		t.Errorf("unknown card: %v", err)
	}
	if mv, err := Pass(404).Move(catalog); err != nil || !mv.Pass {
		t.Errorf("pass conversion: %v %v", mv, err)
	}
}
