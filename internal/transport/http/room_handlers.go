package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/core"
)

// RoomHandlers exposes read-only views of live rooms.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// ListUsers returns the users currently connected to a room.
// GET /api/rooms/:room/users
func (h *RoomHandlers) ListUsers(c *gin.Context) {
	room := c.Param("room")
	users := h.hub.UsersOfRoom(room)

	h.log.Debug().Str("room", room).Int("user_count", len(users)).Msg("room users listed")
	c.JSON(http.StatusOK, toProtoUsers(users))
}

// ListMessages returns the retained history of a room, oldest first.
// GET /api/rooms/:room/messages
func (h *RoomHandlers) ListMessages(c *gin.Context) {
	room := c.Param("room")
	c.JSON(http.StatusOK, toProtoMessages(h.hub.MessagesOfRoom(room)))
}
