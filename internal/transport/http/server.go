package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/auth"
	"github.com/vovakirdan/chatroom-server/internal/config"
	"github.com/vovakirdan/chatroom-server/internal/core"
	"github.com/vovakirdan/chatroom-server/internal/metrics"
	"github.com/vovakirdan/chatroom-server/internal/store"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer builds the HTTP server exposing the WebSocket endpoint, room
// queries, moderation API, health and metrics.
func NewServer(hub *core.Hub, groups *core.Groups, authService *auth.Service, bans store.BanStore, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")

	rooms := NewRoomHandlers(hub, logger)
	api.GET("/rooms/:room/users", rooms.ListUsers)
	api.GET("/rooms/:room/messages", rooms.ListMessages)

	banHandlers := NewBanHandlers(bans, logger)
	admin := api.Group("/bans", AdminMiddleware(authService, logger))
	admin.GET("", banHandlers.ListBans)
	admin.PUT("", banHandlers.PutBan)
	admin.DELETE("/:battleTag", banHandlers.DeleteBan)

	// /ws stays outside gin: its writer refuses to hijack after the 101 header.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, groups, cfg, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
