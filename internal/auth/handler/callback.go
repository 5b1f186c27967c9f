package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/discord"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/logger"

	"github.com/gin-gonic/gin"
)

func (h *Handler) callback(c *gin.Context) {
	wantsJSON := c.Query("format") == "json" ||
		strings.Contains(c.GetHeader("Accept"), "application/json")

	code := c.Query("code")
	stateParam := c.Query("state")
	if code == "" || stateParam == "" {
		h.callbackFailure(c, wantsJSON, http.StatusBadRequest, "missing code or state")
		return
	}

	ok, err := h.states.Consume(c.Request.Context(), stateParam)
	if err != nil {
		logger.Error("oauth state consume failed", map[string]any{
			"error": err.Error(),
		})
		h.callbackFailure(c, wantsJSON, http.StatusInternalServerError, "authentication failed")
		return
	}
	if !ok {
		h.callbackFailure(c, wantsJSON, http.StatusUnauthorized, "invalid state")
		return
	}

	var grant *discord.TokenGrant
	err = discord.WithRetry(c.Request.Context(), func() error {
		var err error
		grant, err = h.client.ExchangeCode(c.Request.Context(), code)
		return err
	})
	if err != nil {
		h.upstreamFailure(c, wantsJSON, err)
		return
	}

	var identity *auth.Identity
	err = discord.WithRetry(c.Request.Context(), func() error {
		var err error
		identity, err = h.client.FetchIdentity(c.Request.Context(), grant.AccessToken)
		return err
	})
	if err != nil {
		h.upstreamFailure(c, wantsJSON, err)
		return
	}

	sessionToken, err := h.codec.Issue(*identity, grant.AccessToken, time.Now())
	if err != nil {
		logger.Error("failed to issue session token", map[string]any{
			"error": err.Error(),
		})
		h.callbackFailure(c, wantsJSON, http.StatusInternalServerError, "authentication failed")
		return
	}

	logger.Info("user authenticated", map[string]any{
		"user_id":  identity.UserID,
		"username": identity.Username,
	})

	if wantsJSON {
		c.JSON(http.StatusOK, gin.H{
			"access_token": sessionToken,
			"token_type":   "bearer",
			"user": gin.H{
				"id":       identity.UserID,
				"username": identity.Username,
				"avatar":   identity.Avatar,
			},
		})
		return
	}

	h.renderPopup(c, http.StatusOK, popupData{
		Success: true,
		Token:   sessionToken,
	})
}

func (h *Handler) upstreamFailure(c *gin.Context, wantsJSON bool, err error) {
	status := http.StatusUnauthorized
	msg := "authentication failed"

	var rateLimited *auth.RateLimitedError
	switch {
	case errors.As(err, &rateLimited):
		status = http.StatusTooManyRequests
		msg = "rate limited"
		seconds := int(rateLimited.RetryAfter / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
	case errors.Is(err, auth.ErrUpstreamUnavailable):
		status = http.StatusServiceUnavailable
		msg = "discord unavailable"
	}

	logger.Warn("oauth handshake failed", map[string]any{
		"error": err.Error(),
	})
	h.callbackFailure(c, wantsJSON, status, msg)
}

func (h *Handler) callbackFailure(c *gin.Context, wantsJSON bool, status int, msg string) {
	if wantsJSON {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	h.renderPopup(c, status, popupData{Error: msg})
}
