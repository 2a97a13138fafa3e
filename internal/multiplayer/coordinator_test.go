package multiplayer

import (
	"errors"
	"strings"
	"testing"
	"time"

	_ "github.com/vovakirdan/inkgrid/internal/bots"
	"github.com/vovakirdan/inkgrid/internal/cards"
	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/registry"
	"github.com/vovakirdan/inkgrid/internal/replay"
	"github.com/vovakirdan/inkgrid/internal/stages"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type chanSaver chan MatchResultData

func (s chanSaver) SaveMatchResult(d MatchResultData) error {
	s <- d
	return nil
}

func newTestCoordinator(t *testing.T, mutate func(*CoordinatorConfig)) (*Coordinator, *fakeClock) {
	t.Helper()
	catalog, err := cards.Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultCoordinatorConfig()
	cfg.Match.Seed = 42
	if mutate != nil {
		mutate(&cfg)
	}
	c := NewCoordinator(cfg, stages.NewLoader(""), catalog, NewSessionRegistry(), nil)
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	c.now = clock.now
	return c, clock
}

func connect(c *Coordinator, id string) *ChannelSession {
	s := NewChannelSession(SessionID(id), 512)
	c.Sessions().Register(s)
	return s
}

func drain(s *ChannelSession) []SessionEvent {
	var out []SessionEvent
	for {
		select {
		case evt := <-s.Events():
			out = append(out, evt)
		default:
			return out
		}
	}
}

func findEvent[T SessionEvent](events []SessionEvent) (T, bool) {
	var zero T
	for i := len(events) - 1; i >= 0; i-- {
		if evt, ok := events[i].(T); ok {
			return evt, true
		}
	}
	return zero, false
}

func TestCreateRoomValidation(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)
	connect(c, "host")

	tests := []struct {
		name    string
		session SessionID
		req     RoomRequest
		want    error
	}{
		{"unknown session", "ghost", RoomRequest{Stage: 1, Players: 2}, ErrUnknownSession},
		{"unknown stage", "host", RoomRequest{Stage: 99, Players: 2}, stages.ErrUnknownStage},
		{"one player", "host", RoomRequest{Stage: 1, Players: 1}, ErrInvalidRoom},
		{"too many for stage", "host", RoomRequest{Stage: 3, Players: 3}, ErrInvalidRoom},
		{"no seat for host", "host", RoomRequest{Stage: 1, Players: 2, Bots: []string{"pass", "pass"}}, ErrInvalidRoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateRoom(tt.session, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("CreateRoom error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := c.CreateRoom("host", RoomRequest{Stage: 1, Players: 2, Bots: []string{"nobody"}}); err == nil {
		t.Error("unknown bot should be rejected")
	}
	if c.RoomCount() != 0 {
		t.Errorf("failed requests left %d rooms behind", c.RoomCount())
	}
}

func TestRoomSeeds(t *testing.T) {
	tests := []struct {
		name     string
		seed     int64
		distinct bool
	}{
		{"configured seed", 42, false},
		{"no seed", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCoordinator(t, func(cfg *CoordinatorConfig) { cfg.Match.Seed = tt.seed })
			connect(c, "a")
			connect(c, "b")
			codeA, err := c.CreateRoom("a", RoomRequest{Stage: 1, Players: 2})
			if err != nil {
				t.Fatal(err)
			}
			codeB, err := c.CreateRoom("b", RoomRequest{Stage: 1, Players: 2})
			if err != nil {
				t.Fatal(err)
			}

			c.mu.RLock()
			seedA, seedB := c.rooms[codeA].seed, c.rooms[codeB].seed
			c.mu.RUnlock()
			if seedA == 0 || seedB == 0 {
				t.Fatalf("room seeds %d and %d", seedA, seedB)
			}
			if tt.distinct && seedA == seedB {
				t.Errorf("rooms share seed %d on a frozen clock", seedA)
			}
			if !tt.distinct && (seedA != tt.seed || seedB != tt.seed) {
				t.Errorf("room seeds %d and %d, want %d", seedA, seedB, tt.seed)
			}
		})
	}
}

func TestMatchAgainstBots(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)
	saver := make(chanSaver, 1)
	c.SetResultSaver(saver)
	host := connect(c, "host")

	code, err := c.CreateRoom("host", RoomRequest{Name: "ana", Stage: 1, Players: 3, Bots: []string{"greedy", "random"}})
	if err != nil {
		t.Fatal(err)
	}
	info, err := c.Room(code)
	if err != nil {
		t.Fatal(err)
	}
	if info.State != RoomPlaying {
		t.Fatalf("room with only bots to wait for is %v", info.State)
	}

	me, err := registry.Create("greedy", 7)
	if err != nil {
		t.Fatal(err)
	}
	for turn := 1; turn <= 12; turn++ {
		v, err := c.View("host")
		if err != nil {
			t.Fatalf("turn %d: %v", turn, err)
		}
		if v.Turn != turn {
			t.Fatalf("view is for turn %d, expected %d", v.Turn, turn)
		}
		if err := c.Submit("host", me.Choose(v)); err != nil {
			t.Fatalf("turn %d: %v", turn, err)
		}
	}

	events := drain(host)
	started, ok := findEvent[MatchStartedEvent](events)
	if !ok || started.Seat != 0 || len(started.Players) != 3 || started.Players[0] != "ana" {
		t.Errorf("MatchStartedEvent = %+v", started)
	}
	ended, ok := findEvent[MatchEndedEvent](events)
	if !ok {
		t.Fatal("no MatchEndedEvent")
	}
	if ended.Reason != MatchEndReasonCompleted {
		t.Errorf("end reason = %v", ended.Reason)
	}
	if c.RoomCount() != 0 {
		t.Error("finished room still open")
	}
	if _, err := c.View("host"); !errors.Is(err, ErrNotInRoom) {
		t.Errorf("View after the match: %v", err)
	}

	select {
	case data := <-saver:
		if data.Turns != 12 || data.Stage != 1 || data.EndReason != "completed" {
			t.Errorf("saved %+v", data)
		}
		rp, err := replay.Decode(data.Replay)
		if err != nil {
			t.Fatalf("saved replay: %v", err)
		}
		if len(rp.Turns) != 12 || len(rp.Players) != 3 {
			t.Errorf("replay has %d turns, %d players", len(rp.Turns), len(rp.Players))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("result was never saved")
	}
}

func TestJoinRoom(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)
	host := connect(c, "host")
	guest := connect(c, "guest")
	connect(c, "late")

	code, err := c.CreateRoom("host", RoomRequest{Stage: 1, Players: 2})
	if err != nil {
		t.Fatal(err)
	}
	if info, _ := c.Room(code); info.State != RoomWaiting || info.Seats[1].Kind != SeatOpen {
		t.Fatalf("new room = %+v", info)
	}
	if _, err := c.JoinRoom("guest", "bo", "NOPE00"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("join unknown code: %v", err)
	}
	if _, err := c.JoinRoom("host", "ana", code); !errors.Is(err, ErrAlreadyInRoom) {
		t.Errorf("host joining again: %v", err)
	}

	seat, err := c.JoinRoom("guest", "bo", strings.ToLower(code))
	if err != nil {
		t.Fatal(err)
	}
	if seat != 1 {
		t.Errorf("guest seat = %d", seat)
	}
	if _, err := c.JoinRoom("late", "cy", code); !errors.Is(err, ErrRoomFull) {
		t.Errorf("join full room: %v", err)
	}

	for i, s := range []*ChannelSession{host, guest} {
		events := drain(s)
		started, ok := findEvent[MatchStartedEvent](events)
		if !ok || started.Seat != i {
			t.Errorf("session %d: MatchStartedEvent = %+v", i, started)
		}
		ts, ok := findEvent[TurnStartedEvent](events)
		if !ok || ts.View.Player != i || ts.View.Turn != 1 || ts.Deadline.IsZero() {
			t.Errorf("session %d: TurnStartedEvent = %+v", i, ts)
		}
	}
	info, _ := c.Room(code)
	if info.State != RoomPlaying || info.Seats[1].Name != "bo" || info.MatchID == "" {
		t.Errorf("room after join = %+v", info)
	}
}

func TestSubmitErrors(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)
	connect(c, "host")
	connect(c, "guest")

	if err := c.Submit("host", match.Pass(1)); !errors.Is(err, ErrNotInRoom) {
		t.Errorf("submit outside a room: %v", err)
	}
	code, err := c.CreateRoom("host", RoomRequest{Stage: 1, Players: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Submit("host", match.Pass(1)); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("submit in a waiting room: %v", err)
	}
	if _, err := c.JoinRoom("guest", "", code); err != nil {
		t.Fatal(err)
	}

	v, err := c.View("host")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Submit("host", match.Pass(999)); !errors.Is(err, match.ErrNotInHand) {
		t.Errorf("pass with unknown card: %v", err)
	}
	if err := c.Submit("host", match.Pass(v.Hand[0].Number)); err != nil {
		t.Fatal(err)
	}
	if err := c.Submit("host", match.Pass(v.Hand[1].Number)); !errors.Is(err, match.ErrAlreadySubmitted) {
		t.Errorf("second submission: %v", err)
	}
}

func TestTurnTimeout(t *testing.T) {
	c, clock := newTestCoordinator(t, func(cfg *CoordinatorConfig) {
		cfg.TurnTimeout = 10 * time.Second
	})
	host := connect(c, "host")
	connect(c, "guest")
	code, err := c.CreateRoom("host", RoomRequest{Stage: 1, Players: 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.JoinRoom("guest", "", code); err != nil {
		t.Fatal(err)
	}
	v, _ := c.View("host")
	if err := c.Submit("host", match.Pass(v.Hand[0].Number)); err != nil {
		t.Fatal(err)
	}
	drain(host)

	clock.advance(5 * time.Second)
	c.sweep()
	if info, _ := c.Room(code); info.Turn != 0 {
		t.Fatalf("turn resolved before the deadline")
	}

	clock.advance(6 * time.Second)
	c.sweep()
	info, _ := c.Room(code)
	if info.Turn != 1 {
		t.Fatalf("turn = %d after the deadline, want 1", info.Turn)
	}
	events := drain(host)
	sub, ok := findEvent[PlayerSubmittedEvent](events)
	if !ok || sub.Seat != 1 || !sub.Timeout {
		t.Errorf("PlayerSubmittedEvent = %+v", sub)
	}
	res, ok := findEvent[TurnResolvedEvent](events)
	if !ok || !res.Result.Moves[1].Pass {
		t.Errorf("TurnResolvedEvent = %+v", res)
	}
	// Both passed, so both earned a special point.
	if sp := res.Result.SpecialPoints; sp[0] != 1 || sp[1] != 1 {
		t.Errorf("special points = %v", sp)
	}
}

func TestRoomExpiry(t *testing.T) {
	c, clock := newTestCoordinator(t, nil)
	host := connect(c, "host")
	if _, err := c.CreateRoom("host", RoomRequest{Stage: 1, Players: 2}); err != nil {
		t.Fatal(err)
	}
	clock.advance(c.config.RoomTimeout + time.Second)
	c.sweep()

	if c.RoomCount() != 0 {
		t.Fatal("waiting room did not expire")
	}
	ended, ok := findEvent[MatchEndedEvent](drain(host))
	if !ok || ended.Reason != MatchEndReasonCancelled {
		t.Errorf("MatchEndedEvent = %+v", ended)
	}
	if _, err := c.CreateRoom("host", RoomRequest{Stage: 1, Players: 2}); err != nil {
		t.Errorf("host cannot open a new room after expiry: %v", err)
	}
}

func TestLeave(t *testing.T) {
	t.Run("guest leaves waiting room", func(t *testing.T) {
		c, _ := newTestCoordinator(t, nil)
		host := connect(c, "host")
		connect(c, "guest")
		code, _ := c.CreateRoom("host", RoomRequest{Stage: 1, Players: 3})
		if _, err := c.JoinRoom("guest", "bo", code); err != nil {
			t.Fatal(err)
		}
		if err := c.Leave("guest"); err != nil {
			t.Fatal(err)
		}
		info, _ := c.Room(code)
		if info.Seats[1].Kind != SeatOpen {
			t.Errorf("seat not freed: %+v", info.Seats)
		}
		left, ok := findEvent[SeatLeftEvent](drain(host))
		if !ok || left.Seat != 1 || left.Name != "bo" {
			t.Errorf("SeatLeftEvent = %+v", left)
		}
	})

	t.Run("host closes waiting room", func(t *testing.T) {
		c, _ := newTestCoordinator(t, nil)
		connect(c, "host")
		guest := connect(c, "guest")
		code, _ := c.CreateRoom("host", RoomRequest{Stage: 1, Players: 3})
		if _, err := c.JoinRoom("guest", "", code); err != nil {
			t.Fatal(err)
		}
		if err := c.Leave("host"); err != nil {
			t.Fatal(err)
		}
		if c.RoomCount() != 0 {
			t.Error("room still open")
		}
		ended, ok := findEvent[MatchEndedEvent](drain(guest))
		if !ok || ended.Reason != MatchEndReasonHostLeft {
			t.Errorf("MatchEndedEvent = %+v", ended)
		}
	})

	t.Run("disconnect ends running match", func(t *testing.T) {
		c, _ := newTestCoordinator(t, nil)
		connect(c, "host")
		guest := connect(c, "guest")
		code, _ := c.CreateRoom("host", RoomRequest{Stage: 1, Players: 2})
		if _, err := c.JoinRoom("guest", "", code); err != nil {
			t.Fatal(err)
		}
		c.Disconnected("host")
		ended, ok := findEvent[MatchEndedEvent](drain(guest))
		if !ok || ended.Reason != MatchEndReasonDisconnect {
			t.Fatalf("MatchEndedEvent = %+v", ended)
		}
		if ended.Result.Winner != 1 {
			t.Errorf("winner = %d, want the seat that stayed", ended.Result.Winner)
		}
		// Cleaning up twice is harmless.
		c.Disconnected("host")
	})
}

func TestHandleMessageReportsErrors(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)
	host := connect(c, "host")

	c.handleMessage(JoinRoomMsg{SessionID: "host", Code: "ZZZZZZ"})
	errEvt, ok := findEvent[ErrorEvent](drain(host))
	if !ok || !strings.Contains(errEvt.Message, "room not found") {
		t.Errorf("ErrorEvent = %+v", errEvt)
	}

	c.handleMessage(CreateRoomMsg{SessionID: "host", Request: RoomRequest{Stage: 1, Players: 2, Bots: []string{"pass"}}})
	if _, ok := findEvent[RoomCreatedEvent](drain(host)); !ok {
		t.Error("no RoomCreatedEvent")
	}
	if len(c.Rooms()) != 1 {
		t.Errorf("rooms = %+v", c.Rooms())
	}
}

func TestGenerateJoinCode(t *testing.T) {
	for range 50 {
		code := generateJoinCode()
		if len(code) != 6 {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ234567", r) {
				t.Fatalf("code %q has character %q", code, r)
			}
		}
	}
}
