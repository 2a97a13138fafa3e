package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/multiplayer"
)

const (
	sessionBuffer  = 64
	maxMessageSize = 4096
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
)

// clientMessage is what a websocket client sends:
//
//	{"type": "create", "data": {"name": "ana", "stage": 1, "players": 2, "bots": ["greedy"]}}
//	{"type": "join", "data": {"code": "ABCDEF", "name": "bo"}}
//	{"type": "submit", "data": {"cardNumber": 4, "x": 3, "y": 7, "rotation": 1}}
//	{"type": "leave"}
type clientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type joinData struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// serveWS upgrades the request and bridges the connection to a
// coordinator session until either side goes away.
func (h *handler) serveWS(c *gin.Context) {
	if !h.needCoordinator(c) {
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	id := multiplayer.SessionID("ws-" + uuid.NewString())
	session := multiplayer.NewChannelSession(id, sessionBuffer)
	h.Coordinator.Sessions().Register(session)
	logger := h.Logger.With("session", id)
	logger.Info("websocket connected", "client", c.ClientIP())

	written := make(chan struct{})
	go func() {
		defer close(written)
		writeLoop(conn, session, logger)
	}()

	h.readLoop(conn, session, logger)

	h.Coordinator.Send(multiplayer.SessionDisconnectedMsg{SessionID: id})
	h.Coordinator.Sessions().Unregister(id)
	session.Close()
	<-written
	_ = conn.Close()
	logger.Info("websocket disconnected")
}

func (h *handler) readLoop(conn *websocket.Conn, session *multiplayer.ChannelSession, logger *log.Logger) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read", "err", err)
			}
			return
		}
		if err := h.dispatch(session.ID(), msg); err != nil {
			session.Send(multiplayer.ErrorEvent{Message: err.Error()})
		}
	}
}

// dispatch forwards one client message to the coordinator.
func (h *handler) dispatch(id multiplayer.SessionID, msg clientMessage) error {
	switch msg.Type {
	case "create":
		var req multiplayer.RoomRequest
		if err := decodeData(msg, &req); err != nil {
			return err
		}
		h.Coordinator.Send(multiplayer.CreateRoomMsg{SessionID: id, Request: req})
	case "join":
		var data joinData
		if err := decodeData(msg, &data); err != nil {
			return err
		}
		h.Coordinator.Send(multiplayer.JoinRoomMsg{SessionID: id, Name: data.Name, Code: data.Code})
	case "submit":
		var sub match.Submission
		if err := decodeData(msg, &sub); err != nil {
			return err
		}
		h.Coordinator.Send(multiplayer.SubmitMsg{SessionID: id, Submission: sub})
	case "leave":
		h.Coordinator.Send(multiplayer.LeaveRoomMsg{SessionID: id})
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func decodeData(msg clientMessage, v any) error {
	if len(msg.Data) == 0 {
		return fmt.Errorf("%s: missing data", msg.Type)
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return fmt.Errorf("%s: %w", msg.Type, err)
	}
	return nil
}

// writeLoop sends the session's events and keepalive pings until the
// session closes or a write fails.
func writeLoop(conn *websocket.Conn, session *multiplayer.ChannelSession, logger *log.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(v any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}
	if err := write(Event{Type: "welcome", Data: gin.H{"session": session.ID()}}); err != nil {
		return
	}

	var dropped int64
	for {
		select {
		case evt := <-session.Events():
			if n := session.Dropped(); n > dropped {
				logger.Warn("client falling behind", "dropped", n-dropped)
				dropped = n
			}
			out, err := encodeEvent(evt)
			if err != nil {
				logger.Warn("dropping event", "err", err)
				continue
			}
			if err := write(out); err != nil {
				logger.Warn("websocket write", "err", err)
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		case <-session.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}
