package handler

import (
	"net/http"
	"strconv"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth/resolver"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/discord"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/logger"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

type guildInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Icon         string `json:"icon,omitempty"`
	Banner       string `json:"banner,omitempty"`
	Owner        bool   `json:"owner"`
	Permissions  uint64 `json:"permissions"`
	BotInstalled bool   `json:"bot_installed"`
}

// guilds lists the caller's guilds where they can administer the bot
// (owner or administrator bit; extra-role grants are guild-scoped and
// resolved per request on the guild routes), annotated with whether
// the bot is installed.
func (h *Handler) guilds(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c.Request.Context())
	if !ok || principal.Session == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var memberships []discord.Guild
	err := discord.WithRetry(c.Request.Context(), func() error {
		var err error
		memberships, err = h.client.FetchGuilds(c.Request.Context(), principal.Session.AccessToken)
		return err
	})
	if err != nil {
		h.upstreamFailure(c, true, err)
		return
	}

	var adminGuilds []discord.Guild
	var adminIDs []int64
	for _, g := range memberships {
		decision := resolver.IsAdministrator(resolver.GuildContext{
			Owner:       g.Owner,
			Permissions: uint64(g.Permissions),
		})
		if !decision.Allowed {
			continue
		}
		adminGuilds = append(adminGuilds, g)
		if id, err := strconv.ParseInt(g.ID, 10, 64); err == nil {
			adminIDs = append(adminIDs, id)
		}
	}

	botStatus, err := h.botStatus.BotStatus(c.Request.Context(), adminIDs)
	if err != nil {
		logger.Error("failed to fetch bot status", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch guilds"})
		return
	}

	out := make([]guildInfo, 0, len(adminGuilds))
	for _, g := range adminGuilds {
		installed := false
		if id, err := strconv.ParseInt(g.ID, 10, 64); err == nil {
			installed = botStatus[id]
		}
		out = append(out, guildInfo{
			ID:           g.ID,
			Name:         g.Name,
			Icon:         g.Icon,
			Banner:       g.Banner,
			Owner:        g.Owner,
			Permissions:  uint64(g.Permissions),
			BotInstalled: installed,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"guilds":  out,
		"user_id": principal.Session.UserID,
	})
}
