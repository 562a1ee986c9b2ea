package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/proto"
	"github.com/vovakirdan/chatroom-server/internal/store"
)

// BanHandlers provides the moderation endpoints.
type BanHandlers struct {
	bans store.BanStore
	log  *zerolog.Logger
}

// NewBanHandlers creates a new ban handlers instance.
func NewBanHandlers(bans store.BanStore, logger *zerolog.Logger) *BanHandlers {
	return &BanHandlers{
		bans: bans,
		log:  logger,
	}
}

// BanRequest represents the ban upsert request body.
type BanRequest struct {
	BattleTag string `json:"battleTag" binding:"required,max=64"`
	EndDate   string `json:"endDate" binding:"required"`
	BanReason string `json:"banReason" binding:"max=512"`
}

// ListBans returns all bans.
// GET /api/bans
func (h *BanHandlers) ListBans(c *gin.Context) {
	bans, err := h.bans.ListBans(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list bans")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]proto.Ban, 0, len(bans))
	for _, b := range bans {
		response = append(response, toProtoBan(b))
	}
	c.JSON(http.StatusOK, response)
}

// PutBan creates or replaces a ban.
// PUT /api/bans
func (h *BanHandlers) PutBan(c *gin.Context) {
	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid ban request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	endDate, err := store.ParseBanDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "endDate must be yyyy-MM-dd"})
		return
	}

	ban := &store.Ban{BattleTag: req.BattleTag, EndDate: endDate, Reason: req.BanReason}
	if err := h.bans.SaveBan(c.Request.Context(), ban); err != nil {
		h.log.Error().Err(err).Str("battle_tag", req.BattleTag).Msg("failed to save ban")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().
		Str("battle_tag", ban.BattleTag).
		Str("end_date", ban.EndDate).
		Str("moderator", c.GetString(ContextKeyModerator)).
		Msg("ban saved")
	c.JSON(http.StatusOK, toProtoBan(ban))
}

// DeleteBan lifts a ban.
// DELETE /api/bans/:battleTag
func (h *BanHandlers) DeleteBan(c *gin.Context) {
	battleTag := c.Param("battleTag")

	err := h.bans.DeleteBan(c.Request.Context(), battleTag)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "ban not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("battle_tag", battleTag).Msg("failed to delete ban")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("battle_tag", battleTag).Str("moderator", c.GetString(ContextKeyModerator)).Msg("ban lifted")
	c.Status(http.StatusNoContent)
}
