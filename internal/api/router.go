// Package api serves the stages, cards, stored matches and live rooms
// over HTTP, with a websocket bridge into the multiplayer coordinator.
package api

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/inkgrid/internal/cards"
	"github.com/vovakirdan/inkgrid/internal/multiplayer"
	"github.com/vovakirdan/inkgrid/internal/stages"
	"github.com/vovakirdan/inkgrid/internal/storage"
)

// Deps are the services behind the API. Store and Coordinator may be nil;
// the routes needing them then answer 503.
type Deps struct {
	Stages      *stages.Loader
	Catalog     *cards.Catalog
	Store       *storage.Store
	Coordinator *multiplayer.Coordinator
	Logger      *log.Logger
}

type handler struct {
	Deps
	upgrader websocket.Upgrader
}

// NewRouter builds the HTTP routes.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	h := &handler{
		Deps: d,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Logger))

	r.GET("/healthz", h.health)
	r.GET("/ws", h.serveWS)

	api := r.Group("/api")
	api.GET("/stages", h.listStages)
	api.GET("/stages/:number", h.getStage)
	api.GET("/stages/:number/placements", h.stagePlacements)
	api.GET("/cards", h.listCards)
	api.GET("/cards/:number", h.getCard)
	api.GET("/strategies", h.listStrategies)
	api.GET("/rooms", h.listRooms)
	api.GET("/rooms/:code", h.getRoom)
	api.GET("/matches", h.listMatches)
	api.GET("/matches/:id", h.getMatch)
	api.GET("/matches/:id/replay", h.getReplay)
	api.GET("/players/:name/stats", h.playerStats)

	return r
}

// requestLogger logs one line per request once it has been served.
func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
