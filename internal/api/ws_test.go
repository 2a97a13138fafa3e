package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/multiplayer"
)

type wireEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var evt wireEvent
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("reading event: %v", err)
	}
	return evt
}

// readUntil reads events until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string, out any) {
	t.Helper()
	for {
		evt := readEvent(t, conn)
		if evt.Type != typ {
			continue
		}
		if out != nil {
			if err := json.Unmarshal(evt.Data, out); err != nil {
				t.Fatalf("decoding %s: %v", typ, err)
			}
		}
		return
	}
}

func send(t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "data": data}); err != nil {
		t.Fatal(err)
	}
}

func TestWebsocketMatch(t *testing.T) {
	d := testDeps(t)
	cfg := multiplayer.DefaultCoordinatorConfig()
	cfg.TurnTimeout = 0
	cfg.Match.Seed = 21
	c := multiplayer.NewCoordinator(cfg, d.Stages, d.Catalog, multiplayer.NewSessionRegistry(), nil)
	c.Start()
	t.Cleanup(c.Stop)
	d.Coordinator = c

	srv := httptest.NewServer(NewRouter(d))
	t.Cleanup(srv.Close)
	conn := dial(t, srv)

	if evt := readEvent(t, conn); evt.Type != "welcome" {
		t.Fatalf("first event = %s", evt.Type)
	}

	send(t, conn, "dance", nil)
	var failure struct {
		Message string `json:"message"`
	}
	readUntil(t, conn, "error", &failure)
	if !strings.Contains(failure.Message, "dance") {
		t.Errorf("error = %q", failure.Message)
	}

	send(t, conn, "create", map[string]any{"name": "ana", "stage": 1, "players": 2, "bots": []string{"pass"}})
	var created struct {
		Code string `json:"code"`
		Seat int    `json:"seat"`
	}
	readUntil(t, conn, "roomCreated", &created)
	if len(created.Code) != 6 || created.Seat != 0 {
		t.Fatalf("roomCreated = %+v", created)
	}

	var turn struct {
		View ViewDTO `json:"view"`
	}
	readUntil(t, conn, "turnStarted", &turn)
	if turn.View.Turn != 1 || len(turn.View.Hand) != 4 || turn.View.Board.Height != 12 {
		t.Fatalf("view = %+v", turn.View)
	}

	// Play the first legal placement of the first card.
	rows := turn.View.Board.Rows
	b, err := engine.ParseBoard(rows)
	if err != nil {
		t.Fatal(err)
	}
	card, err := d.Catalog.Card(turn.View.Hand[0].Number)
	if err != nil {
		t.Fatal(err)
	}
	legal := engine.LegalPlacements(b, 0, card, false)
	if len(legal) == 0 {
		t.Fatal("no legal placement")
	}
	send(t, conn, "submit", map[string]any{
		"cardNumber": card.Number, "x": legal[0].X, "y": legal[0].Y, "rotation": legal[0].Rotation,
	})

	var resolved struct {
		Result TurnDTO `json:"result"`
	}
	readUntil(t, conn, "turnResolved", &resolved)
	if resolved.Result.Turn != 1 || len(resolved.Result.Moves) != 2 || !resolved.Result.Moves[1].Pass {
		t.Fatalf("turnResolved = %+v", resolved.Result)
	}
	if len(resolved.Result.Changes) != card.Size() {
		t.Errorf("%d changed spaces for a card of %d", len(resolved.Result.Changes), card.Size())
	}
	if resolved.Result.Scores[0] != 1+card.Size() {
		t.Errorf("scores = %v", resolved.Result.Scores)
	}

	send(t, conn, "leave", nil)
	var ended struct {
		Reason string `json:"reason"`
	}
	readUntil(t, conn, "matchEnded", &ended)
	if ended.Reason != "disconnect" {
		t.Errorf("reason = %q", ended.Reason)
	}

	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for c.Sessions().Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("session still registered after the socket closed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEncodeEvent(t *testing.T) {
	b, err := engine.ParseBoard([]string{
		"a.......",
		".B......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := boardDTO(b).Rows; len(got) != 8 || got[1] != ".B......" {
		t.Errorf("board rows = %q", got)
	}

	res := engine.PlacementResults{
		Placements: []engine.Placement{{
			Players: []int{0},
			Cells: []engine.CellChange{
				{At: engine.C(1, 0), Old: engine.Empty, New: engine.Ink(0)},
				{At: engine.C(2, 0), Old: engine.Empty, New: engine.Ink(0)},
			},
		}, {
			Players: []int{0, 1},
			Cells: []engine.CellChange{
				{At: engine.C(1, 0), Old: engine.Ink(0), New: engine.Wall},
			},
		}},
		SpecialSpacesActivated: []engine.Coord{engine.C(1, 1)},
	}

	evt, err := encodeEvent(multiplayer.TurnResolvedEvent{
		MatchID: "m",
		Result: match.TurnResult{
			Turn:          3,
			Moves:         []engine.Move{engine.PassMove(), engine.PassMove()},
			Results:       res,
			Scores:        []int{2, 1},
			SpecialPoints: []int{1, 2},
		},
	})
	if err != nil || evt.Type != "turnResolved" {
		t.Fatalf("encodeEvent = %+v, %v", evt, err)
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire struct {
		Type string `json:"type"`
		Data struct {
			MatchID string  `json:"matchId"`
			Result  TurnDTO `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := wire.Data.Result
	if wire.Data.MatchID != "m" || got.Turn != 3 || len(got.Moves) != 2 || !got.Moves[0].Pass {
		t.Errorf("turn = %+v", wire.Data)
	}
	wantChanges := []CellDTO{{X: 1, Y: 0, Space: "#"}, {X: 2, Y: 0, Space: "a"}}
	if len(got.Changes) != len(wantChanges) {
		t.Fatalf("changes = %+v, want %+v", got.Changes, wantChanges)
	}
	for i := range wantChanges {
		if got.Changes[i] != wantChanges[i] {
			t.Errorf("change %d = %+v, want %+v", i, got.Changes[i], wantChanges[i])
		}
	}
	if len(got.Activated) != 1 || got.Activated[0] != (CellDTO{X: 1, Y: 1}) {
		t.Errorf("activated = %+v", got.Activated)
	}
	if len(got.Scores) != 2 || got.Scores[0] != 2 || got.SpecialPoints[1] != 2 {
		t.Errorf("scores = %v, special points = %v", got.Scores, got.SpecialPoints)
	}
}
