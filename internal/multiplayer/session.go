package multiplayer

import (
	"sync"
	"sync/atomic"
)

const defaultSessionBuffer = 64

// SessionHandle is how the coordinator reaches a connected player, whatever
// the transport behind it (SSH terminal, websocket).
type SessionHandle interface {
	ID() SessionID
	// Send queues evt without blocking.
	Send(evt SessionEvent)
	// Done is closed once the player disconnects.
	Done() <-chan struct{}
}

// ChannelSession queues events on a bounded channel that the transport
// drains. When the queue is full the oldest event is discarded: a client
// that falls that far behind resynchronises from the next
// TurnStartedEvent, which carries a full view.
//
// Events is never closed; readers select on Done as well.
type ChannelSession struct {
	id     SessionID
	events chan SessionEvent

	mu      sync.Mutex // serialises Send and Close
	closed  bool
	done    chan struct{}
	dropped atomic.Int64
}

// NewChannelSession creates a session queueing up to buffer events. A
// buffer below one selects the default size.
func NewChannelSession(id SessionID, buffer int) *ChannelSession {
	if buffer < 1 {
		buffer = defaultSessionBuffer
	}
	return &ChannelSession{
		id:     id,
		events: make(chan SessionEvent, buffer),
		done:   make(chan struct{}),
	}
}

func (s *ChannelSession) ID() SessionID { return s.id }

// Send queues evt, discarding the oldest queued event if necessary.
// Events sent after Close are ignored.
func (s *ChannelSession) Send(evt SessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.events <- evt:
			return
		default:
		}
		select {
		case <-s.events:
			s.dropped.Add(1)
		default:
			// A reader emptied the queue in between; retry the send.
		}
	}
}

// Events is the queue the transport reads from.
func (s *ChannelSession) Events() <-chan SessionEvent { return s.events }

func (s *ChannelSession) Done() <-chan struct{} { return s.done }

// Dropped counts the events discarded because the queue was full.
func (s *ChannelSession) Dropped() int64 { return s.dropped.Load() }

// Close ends the session. Calling it again has no effect.
func (s *ChannelSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
}

// SessionRegistry maps session ids to live sessions. A session must be
// registered before it can create or join a room. It is safe for
// concurrent use.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[SessionID]SessionHandle)}
}

// Register adds s, replacing any session registered under the same id.
func (r *SessionRegistry) Register(s SessionHandle) {
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
}

func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Get returns the session registered under id.
func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns how many sessions are connected.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
