package prefs

import (
	"net/http"
	"strconv"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/logger"

	"github.com/gin-gonic/gin"
)

// Handler exposes the guild preferences endpoints. Permission
// enforcement lives in the guild gate middleware, not here.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the preferences endpoints on a guild-scoped
// group that already carries the auth and guild-admin gates.
func (h *Handler) RegisterRoutes(guilds *gin.RouterGroup) {
	guilds.GET("/:guild_id/preferences", h.get)
	guilds.PUT("/:guild_id/preferences", h.put)
}

func guildIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("guild_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guild id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) get(c *gin.Context) {
	guildID, ok := guildIDParam(c)
	if !ok {
		return
	}

	p, err := h.store.Get(c.Request.Context(), guildID)
	if err != nil {
		logger.Error("failed to fetch guild preferences", map[string]any{
			"guild_id": guildID,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch guild preferences"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "guild preferences not found"})
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) put(c *gin.Context) {
	guildID, ok := guildIDParam(c)
	if !ok {
		return
	}

	var p Preferences
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p.GuildID = guildID

	if err := p.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Upsert(c.Request.Context(), p); err != nil {
		logger.Error("failed to update guild preferences", map[string]any{
			"guild_id": guildID,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update guild preferences"})
		return
	}

	c.JSON(http.StatusOK, p)
}
