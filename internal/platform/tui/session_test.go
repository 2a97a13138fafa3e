package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/inkgrid/internal/config"
	"github.com/vovakirdan/inkgrid/internal/stages"
	"github.com/vovakirdan/inkgrid/internal/storage"
)

func sessionPress(t *testing.T, m SessionModel, keys ...tea.KeyMsg) SessionModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(SessionModel)
	}
	return m
}

func TestSessionLocalFlow(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	mc := config.Default().Match
	mc.Seed = 5
	mc.Difficulty = config.DifficultyEasy
	env := Env{Stages: stages.NewLoader(""), Catalog: testCatalog(t), Match: mc, Store: store}

	m, err := NewSessionModel(env, "ana", nil, 100, 40)
	if err != nil {
		t.Fatal(err)
	}
	if m.Init() != nil {
		t.Error("a session without a coordinator has no event pump")
	}

	m = sessionPress(t, m, keyPress(tea.KeyEnter))
	if m.screen != screenPlay {
		t.Fatalf("screen = %v after choosing play", m.screen)
	}
	for range mc.TurnLimit {
		m = sessionPress(t, m, runeKey('p'))
	}
	if !m.play.match.Over() {
		t.Fatal("match not over")
	}

	m = sessionPress(t, m, keyPress(tea.KeyEnter))
	if m.screen != screenMenu {
		t.Fatalf("screen = %v after the match", m.screen)
	}

	m = sessionPress(t, m, keyPress(tea.KeyDown), keyPress(tea.KeyEnter))
	if m.screen != screenHistory {
		t.Fatalf("screen = %v, want history", m.screen)
	}
	if len(m.history.matches) != 1 {
		t.Fatalf("history lists %d matches", len(m.history.matches))
	}

	m = sessionPress(t, m, keyPress(tea.KeyEnter))
	if m.err != "" {
		t.Fatalf("opening the replay: %s", m.err)
	}
	if m.screen != screenReplay || len(m.replay.replay.Turns) != mc.TurnLimit {
		t.Fatalf("screen = %v", m.screen)
	}

	m = sessionPress(t, m, keyPress(tea.KeyEsc))
	if m.screen != screenHistory {
		t.Errorf("screen = %v after leaving the replay", m.screen)
	}
	m = sessionPress(t, m, keyPress(tea.KeyEsc))
	if m.screen != screenMenu {
		t.Errorf("screen = %v after leaving history", m.screen)
	}
}
