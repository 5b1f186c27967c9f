package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth/resolver"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/discord"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/logger"

	"github.com/gin-gonic/gin"
)

// ExtraRoleSource is the slice of the guild-preferences collaborator
// the gate depends on.
type ExtraRoleSource interface {
	ExtraAdminRoles(ctx context.Context, guildID int64) ([]int64, error)
}

type decisionContextKeyType struct{}

var decisionKey = decisionContextKeyType{}

// DecisionFromContext extracts the administrative decision made for a
// guild-scoped route. Bot principals bypass resolution and carry no
// decision.
func DecisionFromContext(ctx context.Context) (resolver.Decision, bool) {
	d, ok := ctx.Value(decisionKey).(resolver.Decision)
	return d, ok
}

// GuildGate enforces administrative permission on guild-scoped routes.
// Membership data comes through a bounded-staleness source (fresh
// fetch or the 60s snapshot cache); extra admin roles come from the
// preferences collaborator.
type GuildGate struct {
	Memberships discord.MembershipSource
	Roles       ExtraRoleSource
}

func NewGuildGate(memberships discord.MembershipSource, roles ExtraRoleSource) *GuildGate {
	return &GuildGate{Memberships: memberships, Roles: roles}
}

// RequireGuildAdmin assumes GinRequireAuth already ran and a principal
// is attached. Bot processes are always allowed; users go through the
// permission resolver.
func (g *GuildGate) RequireGuildAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if principal.Bot {
			c.Next()
			return
		}

		guildID, err := strconv.ParseInt(c.Param("guild_id"), 10, 64)
		if err != nil || guildID <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid guild id"})
			return
		}

		decision, err := g.resolve(c.Request.Context(), principal, guildID)
		if err != nil {
			status := http.StatusInternalServerError
			msg := "permission check failed"
			switch {
			case errors.Is(err, auth.ErrUpstreamUnavailable):
				status = http.StatusServiceUnavailable
				msg = "discord unavailable"
			case errors.Is(err, auth.ErrRateLimited):
				status = http.StatusTooManyRequests
				msg = "rate limited"
			case errors.Is(err, auth.ErrInvalidGrant):
				// The embedded Discord token no longer works upstream.
				status = http.StatusUnauthorized
				msg = "unauthorized"
			}
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		logger.Info("guild admin decision", map[string]any{
			"user_id":  principal.Session.UserID,
			"guild_id": guildID,
			"allowed":  decision.Allowed,
			"reason":   string(decision.Reason),
		})

		if !decision.Allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), decisionKey, decision)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (g *GuildGate) resolve(ctx context.Context, principal *Principal, guildID int64) (resolver.Decision, error) {
	sess := principal.Session
	guildIDStr := strconv.FormatInt(guildID, 10)

	var membership *discord.Membership
	err := discord.WithRetry(ctx, func() error {
		var err error
		membership, err = g.Memberships.Membership(ctx, sess.AccessToken, sess.UserID, guildIDStr)
		return err
	})
	if err != nil {
		return resolver.Decision{}, err
	}
	if membership == nil {
		// Not a member of the guild at all.
		return resolver.Decision{Allowed: false, Reason: resolver.ReasonDenied}, nil
	}

	extraRoles, err := g.Roles.ExtraAdminRoles(ctx, guildID)
	if err != nil {
		return resolver.Decision{}, err
	}

	return resolver.IsAdministrator(resolver.GuildContext{
		GuildID:           guildID,
		Owner:             membership.Owner,
		Permissions:       membership.Permissions,
		RequesterRoleIDs:  membership.RoleIDs,
		ExtraAdminRoleIDs: extraRoles,
	}), nil
}
