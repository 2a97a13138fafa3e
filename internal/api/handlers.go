package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/multiplayer"
	"github.com/vovakirdan/inkgrid/internal/registry"
	"github.com/vovakirdan/inkgrid/internal/replay"
	"github.com/vovakirdan/inkgrid/internal/stages"
	"github.com/vovakirdan/inkgrid/internal/storage"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"online": h.Coordinator != nil,
		"store":  h.Store != nil,
	})
}

func (h *handler) listStages(c *gin.Context) {
	list, err := h.Stages.LoadAll()
	if err != nil {
		h.Logger.Error("loading stages", "err", err)
		abort(c, http.StatusInternalServerError, "cannot load stages")
		return
	}
	out := make([]StageDTO, len(list))
	for i, s := range list {
		out[i] = stageDTO(s)
	}
	c.JSON(http.StatusOK, out)
}

// stage resolves the :number path parameter, answering the request itself
// when it cannot.
func (h *handler) stage(c *gin.Context) (*stages.Stage, bool) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		abort(c, http.StatusBadRequest, "stage number must be an integer")
		return nil, false
	}
	s, err := h.Stages.ByNumber(n)
	if err != nil {
		abort(c, http.StatusNotFound, err.Error())
		return nil, false
	}
	return s, true
}

// getStage returns a stage. With ?players=n the layout carries the start
// spaces for n players.
func (h *handler) getStage(c *gin.Context) {
	s, ok := h.stage(c)
	if !ok {
		return
	}
	out := stageDTO(s)
	if p := c.Query("players"); p != "" {
		b, ok := h.startBoard(c, s, p)
		if !ok {
			return
		}
		out.Layout = boardDTO(b)
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) startBoard(c *gin.Context, s *stages.Stage, players string) (*engine.Board, bool) {
	n, err := strconv.Atoi(players)
	if err != nil {
		abort(c, http.StatusBadRequest, "players must be an integer")
		return nil, false
	}
	b, err := s.NewBoard(n)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return b, true
}

// PositionDTO is a legal card origin and rotation.
type PositionDTO struct {
	X        int `json:"x"`
	Y        int `json:"y"`
	Rotation int `json:"rotation"`
}

// stagePlacements lists every legal opening placement of a card on a
// fresh board: ?card=n&player=p&players=k&special=true.
func (h *handler) stagePlacements(c *gin.Context) {
	s, ok := h.stage(c)
	if !ok {
		return
	}
	b, ok := h.startBoard(c, s, c.DefaultQuery("players", "2"))
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Query("card"))
	if err != nil {
		abort(c, http.StatusBadRequest, "card must be an integer")
		return
	}
	card, err := h.Catalog.Card(number)
	if err != nil {
		abort(c, http.StatusNotFound, err.Error())
		return
	}
	player, err := strconv.Atoi(c.DefaultQuery("player", "0"))
	if err != nil || player < 0 || player >= engine.MaxPlayers {
		abort(c, http.StatusBadRequest, "player out of range")
		return
	}
	special := c.Query("special") == "true"

	legal := engine.LegalPlacements(b, player, card, special)
	out := make([]PositionDTO, len(legal))
	for i, p := range legal {
		out[i] = PositionDTO{X: p.X, Y: p.Y, Rotation: p.Rotation}
	}
	c.JSON(http.StatusOK, gin.H{"card": number, "player": player, "special": special, "placements": out})
}

func (h *handler) listCards(c *gin.Context) {
	c.JSON(http.StatusOK, cardDTOs(h.Catalog.All()))
}

func (h *handler) getCard(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		abort(c, http.StatusBadRequest, "card number must be an integer")
		return
	}
	card, err := h.Catalog.Card(n)
	if err != nil {
		abort(c, http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, cardDTO(card))
}

func (h *handler) listStrategies(c *gin.Context) {
	type strategy struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	var out []strategy
	for _, s := range registry.List() {
		out = append(out, strategy{Name: s.Name, Description: s.Description})
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) needCoordinator(c *gin.Context) bool {
	if h.Coordinator == nil {
		abort(c, http.StatusServiceUnavailable, "online play is disabled")
		return false
	}
	return true
}

// listRooms returns every open room.
func (h *handler) listRooms(c *gin.Context) {
	if !h.needCoordinator(c) {
		return
	}
	c.JSON(http.StatusOK, h.Coordinator.Rooms())
}

func (h *handler) getRoom(c *gin.Context) {
	if !h.needCoordinator(c) {
		return
	}
	info, err := h.Coordinator.Room(c.Param("code"))
	if errors.Is(err, multiplayer.ErrRoomNotFound) {
		abort(c, http.StatusNotFound, "room not found")
		return
	}
	if err != nil {
		abort(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handler) needStore(c *gin.Context) bool {
	if h.Store == nil {
		abort(c, http.StatusServiceUnavailable, "match history is disabled")
		return false
	}
	return true
}

// listMatches returns the newest matches, or those of ?player=name.
func (h *handler) listMatches(c *gin.Context) {
	if !h.needStore(c) {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 {
		abort(c, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	limit = min(limit, maxListLimit)

	var records []storage.MatchRecord
	if player := c.Query("player"); player != "" {
		records, err = h.Store.PlayerMatches(player, limit)
	} else {
		records, err = h.Store.RecentMatches(limit)
	}
	if err != nil {
		h.Logger.Error("listing matches", "err", err)
		abort(c, http.StatusInternalServerError, "cannot list matches")
		return
	}
	out := make([]MatchDTO, len(records))
	for i, r := range records {
		out[i] = matchDTO(r)
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) getMatch(c *gin.Context) {
	if !h.needStore(c) {
		return
	}
	rec, err := h.Store.MatchByID(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		abort(c, http.StatusNotFound, "match not found")
		return
	}
	if err != nil {
		h.Logger.Error("loading match", "id", c.Param("id"), "err", err)
		abort(c, http.StatusInternalServerError, "cannot load match")
		return
	}
	c.JSON(http.StatusOK, matchDTO(*rec))
}

// getReplay returns a stored replay as JSON, or in its binary encoding
// with ?format=binary.
func (h *handler) getReplay(c *gin.Context) {
	if !h.needStore(c) {
		return
	}
	blob, err := h.Store.ReplayBlob(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		abort(c, http.StatusNotFound, "replay not found")
		return
	}
	if err != nil {
		h.Logger.Error("loading replay", "id", c.Param("id"), "err", err)
		abort(c, http.StatusInternalServerError, "cannot load replay")
		return
	}
	if c.Query("format") == "binary" {
		c.Data(http.StatusOK, "application/octet-stream", blob)
		return
	}

	rp, err := replay.Decode(blob)
	if err != nil {
		h.Logger.Error("decoding replay", "id", c.Param("id"), "err", err)
		abort(c, http.StatusInternalServerError, "stored replay is corrupt")
		return
	}
	out, err := replayDTO(rp, h.Catalog)
	if err != nil {
		abort(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) playerStats(c *gin.Context) {
	if !h.needStore(c) {
		return
	}
	stats, err := h.Store.PlayerStats(c.Param("name"))
	if err != nil {
		h.Logger.Error("player stats", "name", c.Param("name"), "err", err)
		abort(c, http.StatusInternalServerError, "cannot load stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":       stats.Name,
		"played":     stats.Played,
		"won":        stats.Won,
		"bestScore":  stats.BestScore,
		"avgScore":   stats.AvgScore,
		"lastPlayed": stats.LastPlayed,
	})
}
