// Package multiplayer hosts live matches. Sessions create rooms, other
// sessions join them by code, automated players fill the remaining seats,
// and the coordinator drives each turn until the match ends.
package multiplayer

// SessionID uniquely identifies a connected client (an SSH session or a
// websocket).
type SessionID string

// MatchID identifies a running match. It is the match's uuid.
type MatchID string

// SeatKind says who occupies a seat in a room.
type SeatKind int

const (
	// SeatOpen is waiting for a human to join.
	SeatOpen SeatKind = iota

	// SeatHuman is held by a connected session.
	SeatHuman

	// SeatBot is played by a registered strategy.
	SeatBot
)

// String returns a human-readable name for the seat kind.
func (k SeatKind) String() string {
	switch k {
	case SeatOpen:
		return "open"
	case SeatHuman:
		return "human"
	case SeatBot:
		return "bot"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k SeatKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// RoomState is the lifecycle stage of a room.
type RoomState int

const (
	RoomWaiting RoomState = iota
	RoomPlaying
	RoomFinished
)

// String returns a human-readable name for the room state.
func (s RoomState) String() string {
	switch s {
	case RoomWaiting:
		return "waiting"
	case RoomPlaying:
		return "playing"
	case RoomFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s RoomState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RoomRequest describes a room to create. The creating session takes seat
// 0; Bots fill the last seats in order and any seats in between stay open
// for other sessions.
type RoomRequest struct {
	Name    string   `json:"name"`
	Stage   int      `json:"stage"`
	Players int      `json:"players"`
	Bots    []string `json:"bots,omitempty"`
}

// SeatInfo is the public description of one seat.
type SeatInfo struct {
	Name string   `json:"name"`
	Kind SeatKind `json:"kind"`
}

// RoomInfo is a point-in-time snapshot of a room.
type RoomInfo struct {
	Code    string     `json:"code"`
	Stage   int        `json:"stage"`
	State   RoomState  `json:"state"`
	Seats   []SeatInfo `json:"seats"`
	MatchID MatchID    `json:"matchId,omitempty"`
	Turn    int        `json:"turn"`
}
