package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	_ "github.com/vovakirdan/inkgrid/internal/bots"
	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/registry"
	"github.com/vovakirdan/inkgrid/internal/replay"
	"github.com/vovakirdan/inkgrid/internal/stages"
	"github.com/vovakirdan/inkgrid/internal/storage"
)

func starterDeck() []int {
	return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
}

func newTestMatch(t *testing.T, seed int64) *match.Match {
	t.Helper()
	stage, err := stages.NewLoader("").ByNumber(1)
	if err != nil {
		t.Fatal(err)
	}
	seats := []match.Seat{
		{Name: "ana", Deck: starterDeck()},
		{Name: "cpu1", Deck: starterDeck()},
	}
	opts := match.DefaultOptions()
	opts.Seed = seed
	m, err := match.New(stage, testCatalog(t), seats, opts, nil)
	if err != nil {
		t.Fatalf("match.New() failed: %v", err)
	}
	return m
}

func newTestPlay(t *testing.T, store *storage.Store, bot string) (PlayModel, *match.Match) {
	t.Helper()
	m := newTestMatch(t, 3)
	strategy, err := registry.Create(bot, 1)
	if err != nil {
		t.Fatal(err)
	}
	return NewPlayModel(m, []registry.Strategy{strategy}, store, 100, 40), m
}

func press(t *testing.T, m PlayModel, keys ...tea.KeyMsg) PlayModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(PlayModel)
	}
	return m
}

func TestPlayPassToTheEnd(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "play.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	pm, m := newTestPlay(t, store, "pass")
	for turn := 1; turn <= m.TurnLimit(); turn++ {
		pm = press(t, pm, runeKey('p'))
		if m.Turn() != turn {
			t.Fatalf("after pass %d the match is at turn %d", turn, m.Turn())
		}
		if pm.statusErr {
			t.Fatalf("turn %d: %s", turn, pm.status)
		}
	}
	if !m.Over() {
		t.Fatal("match not over after the last turn")
	}
	if !strings.Contains(pm.View(), "Match over") {
		t.Error("view has no result overlay")
	}

	saved, err := store.RecentMatches(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 || saved[0].MatchID != m.ID() || saved[0].Turns != m.TurnLimit() {
		t.Fatalf("saved matches = %+v", saved)
	}
	blob, err := store.ReplayBlob(m.ID())
	if err != nil {
		t.Fatal(err)
	}
	rp, err := replay.Decode(blob)
	if err != nil {
		t.Fatalf("stored replay: %v", err)
	}
	if len(rp.Turns) != m.TurnLimit() {
		t.Errorf("replay has %d turns", len(rp.Turns))
	}

	// Undo the last turn and finish again: still one record.
	pm = press(t, pm, runeKey('u'))
	if m.Over() || m.Turn() != m.TurnLimit()-1 {
		t.Fatalf("undo left turn %d, over=%v", m.Turn(), m.Over())
	}
	pm = press(t, pm, runeKey('p'))
	if !m.Over() {
		t.Fatal("match not over after replaying the last turn")
	}
	if saved, _ := store.RecentMatches(10); len(saved) != 1 {
		t.Errorf("match saved %d times", len(saved))
	}

	pm = press(t, pm, keyPress(tea.KeyEnter))
	if !pm.BackToMenu() {
		t.Error("enter after the match should return to the menu")
	}
}

func TestPlayPlacesCard(t *testing.T) {
	pm, m := newTestPlay(t, nil, "pass")
	v := m.View(0)
	card := v.Hand[0]
	legal := engine.LegalPlacements(v.Board, 0, card, false)
	if len(legal) == 0 {
		t.Fatal("no legal placement for the first card")
	}
	before := engine.Scores(v.Board, 2)[0]

	pm.aim = placement{slot: 0, x: legal[0].X, y: legal[0].Y, rotation: legal[0].Rotation}
	pm = press(t, pm, keyPress(tea.KeyEnter))
	if pm.statusErr {
		t.Fatalf("placement refused: %s", pm.status)
	}
	if m.Turn() != 1 {
		t.Fatalf("turn = %d after placing", m.Turn())
	}
	if after := engine.Scores(m.Board(), 2)[0]; after != before+card.Size() {
		t.Errorf("score %d -> %d, card has %d cells", before, after, card.Size())
	}
	if !strings.Contains(pm.status, "ana played "+card.Name) {
		t.Errorf("status = %q", pm.status)
	}
	if len(pm.view.Hand) != len(v.Hand) {
		t.Errorf("hand has %d cards after drawing", len(pm.view.Hand))
	}
}

func TestPlayRejectsSpecialWithoutPoints(t *testing.T) {
	pm, m := newTestPlay(t, nil, "pass")
	pm = press(t, pm, runeKey('x'), keyPress(tea.KeyEnter))
	if !pm.statusErr || !strings.Contains(pm.status, "special attack needs") {
		t.Errorf("status = %q, err=%v", pm.status, pm.statusErr)
	}
	if m.Turn() != 0 {
		t.Error("a refused special attack resolved a turn")
	}

	pm = press(t, pm, runeKey('u'))
	if !pm.statusErr {
		t.Error("undo with no turns played should report an error")
	}
}

func TestPlayKeysMoveAim(t *testing.T) {
	pm, _ := newTestPlay(t, nil, "pass")
	x, y := pm.aim.x, pm.aim.y
	pm = press(t, pm, keyPress(tea.KeyRight), runeKey('s'))
	if pm.aim.x != x+1 || pm.aim.y != y+1 {
		t.Errorf("aim moved to (%d,%d) from (%d,%d)", pm.aim.x, pm.aim.y, x, y)
	}
	pm = press(t, pm, runeKey('2'))
	if pm.aim.slot != 1 {
		t.Errorf("slot = %d after pressing 2", pm.aim.slot)
	}
	pm = press(t, pm, keyPress(tea.KeyTab))
	if pm.aim.slot != 2 {
		t.Errorf("slot = %d after tab", pm.aim.slot)
	}
	pm = press(t, pm, runeKey('r'))
	if pm.aim.rotation != 1 {
		t.Errorf("rotation = %d after r", pm.aim.rotation)
	}

	pm = press(t, pm, keyPress(tea.KeyEsc))
	if !pm.BackToMenu() {
		t.Error("esc should go back")
	}
	_, cmd := pm.Update(keyPress(tea.KeyCtrlC))
	if cmd == nil {
		t.Error("ctrl+c should quit")
	}
}
