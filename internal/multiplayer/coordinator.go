package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/inkgrid/internal/cards"
	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/registry"
	"github.com/vovakirdan/inkgrid/internal/stages"
)

var (
	ErrUnknownSession = errors.New("unknown session")
	ErrAlreadyInRoom  = errors.New("already in a room")
	ErrNotInRoom      = errors.New("not in a room")
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrNotPlaying     = errors.New("match has not started")
	ErrInvalidRoom    = errors.New("invalid room request")
)

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	RoomTimeout   time.Duration // how long a room may wait for players
	TurnTimeout   time.Duration // per-turn limit for human seats, 0 for none
	CleanupPeriod time.Duration // how often expired rooms and turns are swept
	Match         match.Options // a zero Seed picks one per match
	Deck          []int         // card numbers dealt to every seat
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		RoomTimeout:   5 * time.Minute,
		TurnTimeout:   90 * time.Second,
		CleanupPeriod: time.Second,
		Match:         match.DefaultOptions(),
		Deck:          []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	}
}

// StageSource looks stages up by number. *stages.Loader satisfies it.
type StageSource interface {
	ByNumber(number int) (*stages.Stage, error)
}

// MatchResultSaver is an interface for saving match results.
// This allows the coordinator to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	MatchID      string
	Code         string
	Stage        int
	Players      []string
	Scores       []int
	Winner       int // seat index, -1 on a draw
	EndReason    string
	Turns        int
	Replay       []byte // encoded replay, nil if it could not be built
	DurationSecs int
}

type seat struct {
	kind    SeatKind
	name    string
	session SessionHandle
	bot     registry.Strategy
}

// Room is a waiting or running match.
type Room struct {
	Code      string
	Stage     *stages.Stage
	CreatedAt time.Time

	seats     []seat
	state     RoomState
	match     *match.Match
	seed      int64 // deals the decks; bot seats add their index
	startedAt time.Time
	deadline  time.Time
}

func (r *Room) openSeat() int {
	for i, s := range r.seats {
		if s.kind == SeatOpen {
			return i
		}
	}
	return -1
}

func (r *Room) seatOf(id SessionID) int {
	for i, s := range r.seats {
		if s.kind == SeatHuman && s.session.ID() == id {
			return i
		}
	}
	return -1
}

func (r *Room) broadcast(evt SessionEvent) {
	for _, s := range r.seats {
		if s.kind == SeatHuman {
			s.session.Send(evt)
		}
	}
}

func (r *Room) names() []string {
	out := make([]string, len(r.seats))
	for i, s := range r.seats {
		out[i] = s.name
	}
	return out
}

func (r *Room) info() RoomInfo {
	info := RoomInfo{Code: r.Code, Stage: r.Stage.Number, State: r.state}
	for _, s := range r.seats {
		info.Seats = append(info.Seats, SeatInfo{Name: s.name, Kind: s.kind})
	}
	if r.match != nil {
		info.MatchID = MatchID(r.match.ID())
		info.Turn = r.match.Turn()
	}
	return info
}

// Coordinator manages rooms and the matches running in them.
type Coordinator struct {
	config      CoordinatorConfig
	stages      StageSource
	catalog     *cards.Catalog
	sessions    *SessionRegistry
	resultSaver MatchResultSaver // Optional, can be nil
	logger      *log.Logger
	now         func() time.Time

	mu          sync.RWMutex
	rooms       map[string]*Room     // code -> room
	sessionRoom map[SessionID]string // sessionID -> room code
	opened      int64                // rooms created so far

	// Message channel for async processing
	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a new coordinator. A nil logger discards output.
func NewCoordinator(cfg CoordinatorConfig, stageSource StageSource, catalog *cards.Catalog, sessions *SessionRegistry, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Coordinator{
		config:      cfg,
		stages:      stageSource,
		catalog:     catalog,
		sessions:    sessions,
		logger:      logger,
		now:         time.Now,
		rooms:       make(map[string]*Room),
		sessionRoom: make(map[SessionID]string),
		msgChan:     make(chan CoordinatorMessage, 256),
		done:        make(chan struct{}),
	}
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// Sessions returns the registry sessions must be added to before they
// create or join rooms.
func (c *Coordinator) Sessions() *SessionRegistry {
	return c.sessions
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop shuts down the coordinator. Safe to call more than once.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

// Send queues a message for async processing. Failures are reported to
// the sending session as an ErrorEvent.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	var (
		from SessionID
		err  error
	)
	switch m := msg.(type) {
	case CreateRoomMsg:
		from = m.SessionID
		_, err = c.CreateRoom(m.SessionID, m.Request)
	case JoinRoomMsg:
		from = m.SessionID
		_, err = c.JoinRoom(m.SessionID, m.Name, m.Code)
	case LeaveRoomMsg:
		from = m.SessionID
		err = c.Leave(m.SessionID)
	case SubmitMsg:
		from = m.SessionID
		err = c.Submit(m.SessionID, m.Submission)
	case SessionDisconnectedMsg:
		c.Disconnected(m.SessionID)
	}
	if err != nil {
		if s, ok := c.sessions.Get(from); ok {
			s.Send(ErrorEvent{Message: err.Error()})
		}
	}
}

func seatName(name string, i int) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fmt.Sprintf("player %d", i+1)
}

// CreateRoom opens a room with the session in seat 0 and returns its join
// code. A room whose other seats are all bots starts at once.
func (c *Coordinator) CreateRoom(id SessionID, req RoomRequest) (string, error) {
	session, ok := c.sessions.Get(id)
	if !ok {
		return "", ErrUnknownSession
	}
	stage, err := c.stages.ByNumber(req.Stage)
	if err != nil {
		return "", fmt.Errorf("multiplayer: %w", err)
	}
	if req.Players < 2 || req.Players > stage.MaxPlayers() {
		return "", fmt.Errorf("multiplayer: stage %d seats 2..%d players, asked for %d: %w",
			stage.Number, stage.MaxPlayers(), req.Players, ErrInvalidRoom)
	}
	if len(req.Bots) >= req.Players {
		return "", fmt.Errorf("multiplayer: %d bots leave no seat for the host: %w", len(req.Bots), ErrInvalidRoom)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, in := c.sessionRoom[id]; in {
		return "", ErrAlreadyInRoom
	}

	seed := c.roomSeed()
	seats := make([]seat, req.Players)
	seats[0] = seat{kind: SeatHuman, name: seatName(req.Name, 0), session: session}
	first := req.Players - len(req.Bots)
	for i, name := range req.Bots {
		bot, err := registry.Create(name, seed+int64(first+i))
		if err != nil {
			return "", fmt.Errorf("multiplayer: %w", err)
		}
		seats[first+i] = seat{kind: SeatBot, name: name, bot: bot}
	}

	room := &Room{
		Code:      c.generateUniqueCode(),
		Stage:     stage,
		CreatedAt: c.now(),
		seats:     seats,
		seed:      seed,
	}
	c.rooms[room.Code] = room
	c.sessionRoom[id] = room.Code

	c.logger.Info("room created", "code", room.Code, "stage", stage.Number,
		"players", req.Players, "bots", len(req.Bots))
	session.Send(RoomCreatedEvent{Code: room.Code, Stage: stage.Number, Seat: 0})

	if room.openSeat() < 0 {
		c.startMatch(room)
	}
	return room.Code, nil
}

// JoinRoom seats the session in the first open seat of the room and
// returns the seat index. Filling the last seat starts the match.
func (c *Coordinator) JoinRoom(id SessionID, name, code string) (int, error) {
	session, ok := c.sessions.Get(id)
	if !ok {
		return 0, ErrUnknownSession
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, in := c.sessionRoom[id]; in {
		return 0, ErrAlreadyInRoom
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	room, exists := c.rooms[code]
	if !exists {
		return 0, fmt.Errorf("multiplayer: %q: %w", code, ErrRoomNotFound)
	}
	i := room.openSeat()
	if room.state != RoomWaiting || i < 0 {
		return 0, fmt.Errorf("multiplayer: %s: %w", code, ErrRoomFull)
	}

	room.seats[i] = seat{kind: SeatHuman, name: seatName(name, i), session: session}
	c.sessionRoom[id] = code
	room.broadcast(SeatJoinedEvent{Code: code, Seat: i, Name: room.seats[i].name})
	c.logger.Info("seat joined", "code", code, "seat", i, "name", room.seats[i].name)

	if room.openSeat() < 0 {
		c.startMatch(room)
	}
	return i, nil
}

// Submit commits the session's move for the current turn. The turn
// resolves as soon as the last seat has submitted.
func (c *Coordinator) Submit(id SessionID, sub match.Submission) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, i, err := c.roomOf(id)
	if err != nil {
		return err
	}
	if room.state != RoomPlaying {
		return ErrNotPlaying
	}
	m := room.match
	turn := m.Turn() + 1
	if err := m.Submit(i, sub); err != nil {
		return err
	}
	room.broadcast(PlayerSubmittedEvent{MatchID: MatchID(m.ID()), Turn: turn, Seat: i})
	c.advance(room)
	return nil
}

// Leave removes the session from its room. Leaving a waiting room frees
// the seat, or closes the room when the host leaves. Leaving a running
// match ends it for everyone.
func (c *Coordinator) Leave(id SessionID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, i, err := c.roomOf(id)
	if err != nil {
		return err
	}

	switch room.state {
	case RoomWaiting:
		if i == 0 {
			room.broadcast(MatchEndedEvent{Reason: MatchEndReasonHostLeft, Result: match.Result{Winner: -1}})
			c.closeRoom(room)
			c.logger.Info("room closed by host", "code", room.Code)
			return nil
		}
		name := room.seats[i].name
		room.seats[i] = seat{kind: SeatOpen}
		delete(c.sessionRoom, id)
		room.broadcast(SeatLeftEvent{Code: room.Code, Seat: i, Name: name})
	case RoomPlaying:
		c.logger.Info("player left match", "code", room.Code, "seat", i)
		c.finish(room, MatchEndReasonDisconnect, i)
	}
	return nil
}

// Disconnected cleans up after a session whose transport went away.
func (c *Coordinator) Disconnected(id SessionID) {
	if err := c.Leave(id); err != nil && !errors.Is(err, ErrNotInRoom) {
		c.logger.Warn("disconnect cleanup", "session", id, "err", err)
	}
}

// View returns the session's view of the current turn.
func (c *Coordinator) View(id SessionID) (match.View, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	room, i, err := c.roomOf(id)
	if err != nil {
		return match.View{}, err
	}
	if room.state != RoomPlaying {
		return match.View{}, ErrNotPlaying
	}
	return room.match.View(i), nil
}

// Room returns a snapshot of the room with the given code.
func (c *Coordinator) Room(code string) (RoomInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	room, ok := c.rooms[strings.ToUpper(code)]
	if !ok {
		return RoomInfo{}, fmt.Errorf("multiplayer: %q: %w", code, ErrRoomNotFound)
	}
	return room.info(), nil
}

// Rooms returns a snapshot of every open room, ordered by code.
func (c *Coordinator) Rooms() []RoomInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]RoomInfo, 0, len(c.rooms))
	for _, room := range c.rooms {
		out = append(out, room.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// RoomCount returns the number of open rooms.
func (c *Coordinator) RoomCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rooms)
}

// roomOf must be called with the lock held.
func (c *Coordinator) roomOf(id SessionID) (*Room, int, error) {
	code, ok := c.sessionRoom[id]
	if !ok {
		return nil, 0, ErrNotInRoom
	}
	room, ok := c.rooms[code]
	if !ok {
		return nil, 0, ErrNotInRoom
	}
	i := room.seatOf(id)
	if i < 0 {
		return nil, 0, ErrNotInRoom
	}
	return room, i, nil
}

// The methods below must be called with the lock held.

// roomSeed returns the configured seed, or without one a seed unique to
// the new room.
func (c *Coordinator) roomSeed() int64 {
	c.opened++
	if c.config.Match.Seed != 0 {
		return c.config.Match.Seed
	}
	return c.now().UnixNano() + c.opened
}

func (c *Coordinator) startMatch(room *Room) {
	opts := c.config.Match
	opts.Seed = room.seed
	seats := make([]match.Seat, len(room.seats))
	for i, s := range room.seats {
		seats[i] = match.Seat{Name: s.name, Deck: c.config.Deck}
	}

	m, err := match.New(room.Stage, c.catalog, seats, opts, c.logger)
	if err != nil {
		c.logger.Error("cannot start match", "code", room.Code, "err", err)
		room.broadcast(ErrorEvent{Message: "cannot start match: " + err.Error()})
		c.closeRoom(room)
		return
	}
	room.match = m
	room.state = RoomPlaying
	room.startedAt = c.now()

	names := room.names()
	for i, s := range room.seats {
		if s.kind == SeatHuman {
			s.session.Send(MatchStartedEvent{MatchID: MatchID(m.ID()), Code: room.Code, Seat: i, Players: names})
		}
	}
	c.beginTurn(room)
}

func (c *Coordinator) beginTurn(room *Room) {
	m := room.match
	id := MatchID(m.ID())
	turn := m.Turn() + 1

	room.deadline = time.Time{}
	if c.config.TurnTimeout > 0 {
		room.deadline = c.now().Add(c.config.TurnTimeout)
	}
	for i, s := range room.seats {
		if s.kind == SeatHuman {
			s.session.Send(TurnStartedEvent{MatchID: id, View: m.View(i), Deadline: room.deadline})
		}
	}

	for i, s := range room.seats {
		if s.kind != SeatBot {
			continue
		}
		sub := s.bot.Choose(m.View(i))
		if err := m.Submit(i, sub); err != nil {
			c.logger.Warn("bot move rejected", "code", room.Code, "seat", i, "bot", s.name, "err", err)
			if err := m.Timeout(i); err != nil {
				continue
			}
		}
		room.broadcast(PlayerSubmittedEvent{MatchID: id, Turn: turn, Seat: i})
	}
	c.advance(room)
}

func (c *Coordinator) advance(room *Room) {
	m := room.match
	if !m.Ready() {
		return
	}
	res, err := m.Resolve()
	if err != nil {
		c.logger.Error("cannot resolve turn", "code", room.Code, "err", err)
		return
	}
	room.broadcast(TurnResolvedEvent{MatchID: MatchID(m.ID()), Result: res})
	if res.Over {
		c.finish(room, MatchEndReasonCompleted, -1)
		return
	}
	c.beginTurn(room)
}

// finish ends the room's match. A seat that left cannot win; the best
// remaining score takes it instead.
func (c *Coordinator) finish(room *Room, reason MatchEndReason, leaver int) {
	m := room.match
	result := m.Result()
	if leaver >= 0 && (result.Winner == leaver || result.Winner == -1) {
		result.Winner = bestExcluding(result.Scores, leaver)
	}
	room.state = RoomFinished
	room.broadcast(MatchEndedEvent{MatchID: MatchID(m.ID()), Reason: reason, Result: result})
	c.logger.Info("match ended", "code", room.Code, "reason", reason, "scores", result.Scores, "winner", result.Winner)

	if c.resultSaver != nil {
		data := MatchResultData{
			MatchID:      m.ID(),
			Code:         room.Code,
			Stage:        room.Stage.Number,
			Players:      room.names(),
			Scores:       result.Scores,
			Winner:       result.Winner,
			EndReason:    reason.String(),
			Turns:        m.Turn(),
			DurationSecs: int(c.now().Sub(room.startedAt).Seconds()),
		}
		if rp, err := m.Replay(); err == nil {
			data.Replay, _ = rp.Encode()
		}
		saver := c.resultSaver
		go func() {
			if err := saver.SaveMatchResult(data); err != nil {
				c.logger.Error("saving match result", "match", data.MatchID, "err", err)
			}
		}()
	}
	c.closeRoom(room)
}

func bestExcluding(scores []int, skip int) int {
	winner, best := -1, -1
	for p, s := range scores {
		if p == skip {
			continue
		}
		switch {
		case s > best:
			winner, best = p, s
		case s == best:
			winner = -1
		}
	}
	return winner
}

func (c *Coordinator) closeRoom(room *Room) {
	for _, s := range room.seats {
		if s.kind == SeatHuman {
			delete(c.sessionRoom, s.session.ID())
		}
	}
	delete(c.rooms, room.Code)
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

// sweep expires rooms that waited too long and times out every seat that
// missed the turn deadline.
func (c *Coordinator) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, room := range c.rooms {
		switch room.state {
		case RoomWaiting:
			if now.Sub(room.CreatedAt) > c.config.RoomTimeout {
				room.broadcast(MatchEndedEvent{Reason: MatchEndReasonCancelled, Result: match.Result{Winner: -1}})
				c.closeRoom(room)
				c.logger.Info("room expired", "code", room.Code)
			}
		case RoomPlaying:
			if !room.deadline.IsZero() && now.After(room.deadline) {
				c.expireTurn(room)
			}
		}
	}
}

func (c *Coordinator) expireTurn(room *Room) {
	m := room.match
	id := MatchID(m.ID())
	turn := m.Turn() + 1
	for i := range room.seats {
		if m.Submitted(i) {
			continue
		}
		if err := m.Timeout(i); err != nil {
			c.logger.Warn("cannot time out seat", "code", room.Code, "seat", i, "err", err)
			continue
		}
		room.broadcast(PlayerSubmittedEvent{MatchID: id, Turn: turn, Seat: i, Timeout: true})
	}
	c.logger.Debug("turn deadline passed", "code", room.Code, "turn", turn)
	c.advance(room)
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.rooms[code]; !exists {
			return code
		}
	}
}

// generateJoinCode creates a 6-character uppercase alphanumeric code.
func generateJoinCode() string {
	b := make([]byte, 4) // 4 bytes = 32 bits, base32 encodes to 8 chars, we take 6
	_, err := rand.Read(b)
	if err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	code := base32.StdEncoding.EncodeToString(b)[:6]
	return strings.ToUpper(code)
}
