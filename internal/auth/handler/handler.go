package handler

import (
	"context"
	"net/http"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth/state"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth/token"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/discord"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/logger"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

// OAuthClient is the slice of the Discord client the handshake uses.
type OAuthClient interface {
	AuthCodeURL(state string) string
	BotInviteURL() string
	ExchangeCode(ctx context.Context, code string) (*discord.TokenGrant, error)
	FetchIdentity(ctx context.Context, accessToken string) (*auth.Identity, error)
	FetchGuilds(ctx context.Context, accessToken string) ([]discord.Guild, error)
}

// BotStatusSource reports per-guild bot installation status.
type BotStatusSource interface {
	BotStatus(ctx context.Context, guildIDs []int64) (map[int64]bool, error)
}

type Handler struct {
	client         OAuthClient
	states         state.Store
	codec          *token.Codec
	botStatus      BotStatusSource
	frontendOrigin string
}

func NewHandler(
	client OAuthClient,
	states state.Store,
	codec *token.Codec,
	botStatus BotStatusSource,
	frontendOrigin string,
) *Handler {
	return &Handler{
		client:         client,
		states:         states,
		codec:          codec,
		botStatus:      botStatus,
		frontendOrigin: frontendOrigin,
	}
}

// RegisterPublicRoutes mounts the handshake endpoints.
func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup) {
	authGroup := api.Group("/auth")
	authGroup.GET("/url", h.authURL)
	authGroup.GET("/invite", h.invite)
	authGroup.GET("/callback", h.callback)
}

// RegisterProtectedRoutes mounts the bearer-authenticated endpoints;
// the group must already carry the auth gate.
func (h *Handler) RegisterProtectedRoutes(api *gin.RouterGroup) {
	authGroup := api.Group("/auth")
	authGroup.GET("/me", h.me)
	authGroup.POST("/logout", h.logout)
	authGroup.GET("/guilds", h.guilds)
}

func (h *Handler) authURL(c *gin.Context) {
	nonce, err := h.states.Issue(c.Request.Context())
	if err != nil {
		logger.Error("failed to issue oauth state", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to generate authorization url",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":   h.client.AuthCodeURL(nonce),
		"state": nonce,
	})
}

func (h *Handler) invite(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": h.client.BotInviteURL()})
}

func (h *Handler) me(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c.Request.Context())
	if !ok || principal.Session == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       principal.Session.UserID,
			"username": principal.Session.Username,
			"avatar":   principal.Session.Avatar,
		},
	})
}

// logout is an acknowledgment only: tokens are stateless and expire on
// their own, the client discards its copy.
func (h *Handler) logout(c *gin.Context) {
	if principal, ok := middleware.PrincipalFromContext(c.Request.Context()); ok && principal.Session != nil {
		logger.Info("user logged out", map[string]any{
			"user_id": principal.Session.UserID,
		})
	}
	c.Status(http.StatusNoContent)
}
