package main

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/inkgrid/internal/cards"
	"github.com/vovakirdan/inkgrid/internal/config"
	"github.com/vovakirdan/inkgrid/internal/stages"
)

func testApp(t *testing.T) *app {
	t.Helper()
	catalog, err := cards.Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	return &app{
		cfg:     cfg,
		logger:  log.New(io.Discard),
		stages:  stages.NewLoader(""),
		catalog: catalog,
	}
}

func TestSimulateAndSave(t *testing.T) {
	a := testApp(t)
	stage, err := a.stages.ByNumber(1)
	if err != nil {
		t.Fatal(err)
	}
	names := []string{"greedy", "random"}

	res, m, err := simulate(a, stage, names, 7)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Over() || m.Turn() != 12 || len(res.Scores) != 2 {
		t.Fatalf("over=%v turn=%d scores=%v", m.Over(), m.Turn(), res.Scores)
	}

	again, _, err := simulate(a, stage, names, 7)
	if err != nil {
		t.Fatal(err)
	}
	if again.Scores[0] != res.Scores[0] || again.Scores[1] != res.Scores[1] {
		t.Errorf("same seed gave %v then %v", res.Scores, again.Scores)
	}

	store, err := a.openStore()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := saveSim(store, m, stage.Number, names, res); err != nil {
		t.Fatal(err)
	}
	if got := a.cfg.Database(); filepath.Dir(got) != a.cfg.DataDir {
		t.Errorf("database %s outside data dir", got)
	}

	id, err := resolveMatchID(store, m.ID()[:6])
	if err != nil || id != m.ID() {
		t.Errorf("resolveMatchID = %q, %v", id, err)
	}
	if _, err := resolveMatchID(store, "zzzz"); err == nil {
		t.Error("unknown prefix resolved")
	}
	rec, err := store.MatchByID(m.ID())
	if err != nil {
		t.Fatal(err)
	}
	if rec.Players[0] != "greedy#0" || rec.EndReason != "completed" {
		t.Errorf("record = %+v", rec)
	}
}

func TestCoordinatorConfig(t *testing.T) {
	a := testApp(t)
	a.cfg.Match.TurnLimit = 8
	a.cfg.Match.Seed = 3
	cfg := a.coordinatorConfig()
	if cfg.Match.TurnLimit != 8 || cfg.Match.Seed != 3 || cfg.TurnTimeout != a.cfg.Match.TurnTimeout || len(cfg.Deck) != 15 {
		t.Errorf("coordinator config = %+v", cfg)
	}
}

func TestJoinInts(t *testing.T) {
	if got := joinInts([]int{12, 9, 0}); got != "12-9-0" {
		t.Errorf("joinInts = %q", got)
	}
	if got := shortID("0123456789"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
}
