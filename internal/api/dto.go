package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/vovakirdan/inkgrid/internal/cards"
	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/multiplayer"
	"github.com/vovakirdan/inkgrid/internal/replay"
	"github.com/vovakirdan/inkgrid/internal/stages"
	"github.com/vovakirdan/inkgrid/internal/storage"
)

// BoardDTO is a board in its text form, one string per row.
type BoardDTO struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`
}

func boardDTO(b *engine.Board) BoardDTO {
	return BoardDTO{Width: b.W, Height: b.H, Rows: strings.Split(b.String(), "\n")}
}

// StageDTO describes a stage and its empty layout.
type StageDTO struct {
	Number     int      `json:"number"`
	Name       string   `json:"name"`
	MaxPlayers int      `json:"maxPlayers"`
	Layout     BoardDTO `json:"layout"`
}

func stageDTO(s *stages.Stage) StageDTO {
	return StageDTO{
		Number:     s.Number,
		Name:       s.Name,
		MaxPlayers: s.MaxPlayers(),
		Layout:     boardDTO(s.Layout()),
	}
}

// CardDTO describes a card. Pattern rows are cropped to the ink and use
// '.' for empty, '=' for ink and '*' for the special space.
type CardDTO struct {
	Number      int      `json:"number"`
	Name        string   `json:"name"`
	Rarity      string   `json:"rarity"`
	SpecialCost int      `json:"specialCost"`
	Size        int      `json:"size"`
	Pattern     []string `json:"pattern"`
}

func cardDTO(c *engine.Card) CardDTO {
	return CardDTO{
		Number:      c.Number,
		Name:        c.Name,
		Rarity:      string(c.Rarity),
		SpecialCost: c.SpecialCost,
		Size:        c.Size(),
		Pattern:     c.PatternRows(0),
	}
}

func cardDTOs(list []*engine.Card) []CardDTO {
	out := make([]CardDTO, len(list))
	for i, c := range list {
		out[i] = cardDTO(c)
	}
	return out
}

// MoveDTO is one seat's move. Card is 0 when no card is known.
type MoveDTO struct {
	Pass          bool `json:"pass"`
	Card          int  `json:"card,omitempty"`
	X             int  `json:"x"`
	Y             int  `json:"y"`
	Rotation      int  `json:"rotation"`
	SpecialAttack bool `json:"specialAttack"`
}

func moveDTO(m engine.Move) MoveDTO {
	out := MoveDTO{Pass: m.Pass, X: m.X, Y: m.Y, Rotation: m.Rotation, SpecialAttack: m.SpecialAttack}
	if m.Card != nil {
		out.Card = m.Card.Number
	}
	return out
}

func moveDTOs(moves []engine.Move) []MoveDTO {
	out := make([]MoveDTO, len(moves))
	for i, m := range moves {
		out[i] = moveDTO(m)
	}
	return out
}

// CellDTO is a board space and its value.
type CellDTO struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Space string `json:"space,omitempty"`
}

// placedCells lists every space the turn's placements touched with its
// value after them, in the order first changed.
func placedCells(res engine.PlacementResults) []CellDTO {
	final := make(map[engine.Coord]engine.Space)
	var order []engine.Coord
	for _, p := range res.Placements {
		for _, c := range p.Cells {
			if _, ok := final[c.At]; !ok {
				order = append(order, c.At)
			}
			final[c.At] = c.New
		}
	}
	out := make([]CellDTO, len(order))
	for i, at := range order {
		out[i] = CellDTO{X: at.X, Y: at.Y, Space: string(final[at].Char())}
	}
	return out
}

func coordDTOs(coords []engine.Coord) []CellDTO {
	out := make([]CellDTO, len(coords))
	for i, at := range coords {
		out[i] = CellDTO{X: at.X, Y: at.Y}
	}
	return out
}

// ViewDTO is what a seat sees at the start of a turn.
type ViewDTO struct {
	Seat          int       `json:"seat"`
	Players       int       `json:"players"`
	Board         BoardDTO  `json:"board"`
	Hand          []CardDTO `json:"hand"`
	SpecialPoints int       `json:"specialPoints"`
	Turn          int       `json:"turn"`
	TurnLimit     int       `json:"turnLimit"`
}

func viewDTO(v match.View) ViewDTO {
	return ViewDTO{
		Seat:          v.Player,
		Players:       v.Players,
		Board:         boardDTO(v.Board),
		Hand:          cardDTOs(v.Hand),
		SpecialPoints: v.SpecialPoints,
		Turn:          v.Turn,
		TurnLimit:     v.TurnLimit,
	}
}

// TurnDTO reports a resolved turn.
type TurnDTO struct {
	Turn          int       `json:"turn"`
	Moves         []MoveDTO `json:"moves"`
	Changes       []CellDTO `json:"changes"`
	Activated     []CellDTO `json:"activated"`
	Scores        []int     `json:"scores"`
	SpecialPoints []int     `json:"specialPoints"`
	Over          bool      `json:"over"`
}

// ResultDTO is the outcome of a match. Winner is -1 on a draw.
type ResultDTO struct {
	Scores []int `json:"scores"`
	Winner int   `json:"winner"`
}

// Event is the websocket envelope for both directions.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// encodeEvent converts a coordinator event into its wire form.
func encodeEvent(evt multiplayer.SessionEvent) (Event, error) {
	switch e := evt.(type) {
	case multiplayer.RoomCreatedEvent:
		return Event{"roomCreated", map[string]any{"code": e.Code, "stage": e.Stage, "seat": e.Seat}}, nil
	case multiplayer.ErrorEvent:
		return Event{"error", map[string]any{"message": e.Message}}, nil
	case multiplayer.SeatJoinedEvent:
		return Event{"seatJoined", map[string]any{"code": e.Code, "seat": e.Seat, "name": e.Name}}, nil
	case multiplayer.SeatLeftEvent:
		return Event{"seatLeft", map[string]any{"code": e.Code, "seat": e.Seat, "name": e.Name}}, nil
	case multiplayer.MatchStartedEvent:
		return Event{"matchStarted", map[string]any{
			"matchId": e.MatchID, "code": e.Code, "seat": e.Seat, "players": e.Players,
		}}, nil
	case multiplayer.TurnStartedEvent:
		data := map[string]any{"matchId": e.MatchID, "view": viewDTO(e.View)}
		if !e.Deadline.IsZero() {
			data["deadline"] = e.Deadline.UTC().Format(time.RFC3339)
		}
		return Event{"turnStarted", data}, nil
	case multiplayer.PlayerSubmittedEvent:
		return Event{"playerSubmitted", map[string]any{
			"matchId": e.MatchID, "turn": e.Turn, "seat": e.Seat, "timeout": e.Timeout,
		}}, nil
	case multiplayer.TurnResolvedEvent:
		r := e.Result
		return Event{"turnResolved", map[string]any{"matchId": e.MatchID, "result": TurnDTO{
			Turn:          r.Turn,
			Moves:         moveDTOs(r.Moves),
			Changes:       placedCells(r.Results),
			Activated:     coordDTOs(r.Results.SpecialSpacesActivated),
			Scores:        r.Scores,
			SpecialPoints: r.SpecialPoints,
			Over:          r.Over,
		}}}, nil
	case multiplayer.MatchEndedEvent:
		return Event{"matchEnded", map[string]any{
			"matchId": e.MatchID,
			"reason":  e.Reason.String(),
			"result":  ResultDTO{Scores: e.Result.Scores, Winner: e.Result.Winner},
		}}, nil
	default:
		return Event{}, fmt.Errorf("api: unknown event %T", evt)
	}
}

// MatchDTO is a stored match without its replay.
type MatchDTO struct {
	MatchID      string    `json:"matchId"`
	Stage        int       `json:"stage"`
	Players      []string  `json:"players"`
	Scores       []int     `json:"scores"`
	Winner       int       `json:"winner"`
	WinnerName   string    `json:"winnerName,omitempty"`
	EndReason    string    `json:"endReason"`
	Turns        int       `json:"turns"`
	DurationSecs int       `json:"durationSecs"`
	CreatedAt    time.Time `json:"createdAt"`
}

func matchDTO(r storage.MatchRecord) MatchDTO {
	return MatchDTO{
		MatchID:      r.MatchID,
		Stage:        r.Stage,
		Players:      r.Players,
		Scores:       r.Scores,
		Winner:       r.Winner,
		WinnerName:   r.WinnerName(),
		EndReason:    r.EndReason,
		Turns:        r.Turns,
		DurationSecs: r.DurationSecs,
		CreatedAt:    r.CreatedAt,
	}
}

// ReplayPlayerDTO is one seat of a replay.
type ReplayPlayerDTO struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Deck  []int  `json:"deck"`
}

// ReplayDTO is a decoded replay with every move resolved to its card.
type ReplayDTO struct {
	Stage   int               `json:"stage"`
	Players []ReplayPlayerDTO `json:"players"`
	Turns   [][]MoveDTO       `json:"turns"`
}

// replayDTO resolves every recorded hand slot to its card.
func replayDTO(rp *replay.Replay, catalog *cards.Catalog) (ReplayDTO, error) {
	out := ReplayDTO{Stage: rp.Stage, Turns: make([][]MoveDTO, len(rp.Turns))}
	for _, p := range rp.Players {
		out.Players = append(out.Players, ReplayPlayerDTO{Name: p.Name, Color: p.Color.Hex(), Deck: p.Deck})
	}
	for turn := range rp.Turns {
		moves, err := rp.Moves(turn, catalog)
		if err != nil {
			return ReplayDTO{}, err
		}
		out.Turns[turn] = moveDTOs(moves)
	}
	return out, nil
}
