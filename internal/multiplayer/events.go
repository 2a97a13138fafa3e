package multiplayer

import (
	"time"

	"github.com/vovakirdan/inkgrid/internal/match"
)

// SessionEvent represents an event sent from the coordinator to a session.
type SessionEvent interface {
	sessionEvent()
}

// RoomCreatedEvent is sent to the creator once the room exists.
type RoomCreatedEvent struct {
	Code  string
	Stage int
	Seat  int
}

func (RoomCreatedEvent) sessionEvent() {}

// ErrorEvent reports a failed request back to the session that made it.
type ErrorEvent struct {
	Message string
}

func (ErrorEvent) sessionEvent() {}

// SeatJoinedEvent is sent to everyone in the room when a seat is taken.
type SeatJoinedEvent struct {
	Code string
	Seat int
	Name string
}

func (SeatJoinedEvent) sessionEvent() {}

// SeatLeftEvent is sent when a human leaves a room that has not started.
type SeatLeftEvent struct {
	Code string
	Seat int
	Name string
}

func (SeatLeftEvent) sessionEvent() {}

// MatchStartedEvent is sent to every human seat when the room fills.
type MatchStartedEvent struct {
	MatchID MatchID
	Code    string
	Seat    int
	Players []string
}

func (MatchStartedEvent) sessionEvent() {}

// TurnStartedEvent carries the receiving seat's view of a new turn. A
// zero Deadline means the turn has no time limit.
type TurnStartedEvent struct {
	MatchID  MatchID
	View     match.View
	Deadline time.Time
}

func (TurnStartedEvent) sessionEvent() {}

// PlayerSubmittedEvent tells the room that a seat has committed its move.
// The move itself stays hidden until the turn resolves.
type PlayerSubmittedEvent struct {
	MatchID MatchID
	Turn    int
	Seat    int
	Timeout bool
}

func (PlayerSubmittedEvent) sessionEvent() {}

// TurnResolvedEvent carries every seat's move and the board changes.
type TurnResolvedEvent struct {
	MatchID MatchID
	Result  match.TurnResult
}

func (TurnResolvedEvent) sessionEvent() {}

// MatchEndedEvent is sent when the match ends or the room closes.
type MatchEndedEvent struct {
	MatchID MatchID
	Reason  MatchEndReason
	Result  match.Result
}

func (MatchEndedEvent) sessionEvent() {}

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted  MatchEndReason = iota // Turn limit reached
	MatchEndReasonDisconnect                       // A human left mid-match
	MatchEndReasonCancelled                        // Room expired or was cancelled
	MatchEndReasonHostLeft                         // Host left the room before it filled
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "completed"
	case MatchEndReasonDisconnect:
		return "disconnect"
	case MatchEndReasonCancelled:
		return "cancelled"
	case MatchEndReasonHostLeft:
		return "host left"
	default:
		return "unknown"
	}
}

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateRoomMsg requests a new room.
type CreateRoomMsg struct {
	SessionID SessionID
	Request   RoomRequest
}

func (CreateRoomMsg) coordinatorMessage() {}

// JoinRoomMsg requests a seat in an existing room.
type JoinRoomMsg struct {
	SessionID SessionID
	Name      string
	Code      string
}

func (JoinRoomMsg) coordinatorMessage() {}

// LeaveRoomMsg requests leaving the session's room.
type LeaveRoomMsg struct {
	SessionID SessionID
}

func (LeaveRoomMsg) coordinatorMessage() {}

// SubmitMsg commits the session's move for the current turn.
type SubmitMsg struct {
	SessionID  SessionID
	Submission match.Submission
}

func (SubmitMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
