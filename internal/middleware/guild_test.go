package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth/resolver"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth/token"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/discord"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemberships struct {
	snapshot *discord.Membership
	errs     []error // consumed per call before returning snapshot
	calls    int
}

func (f *fakeMemberships) Membership(ctx context.Context, accessToken, userID, guildID string) (*discord.Membership, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.snapshot, nil
}

type fakeRoles struct {
	roles []int64
	err   error
}

func (f *fakeRoles) ExtraAdminRoles(ctx context.Context, guildID int64) ([]int64, error) {
	return f.roles, f.err
}

func userPrincipal(t *testing.T) *Principal {
	t.Helper()
	codec, err := token.NewCodec([]byte("test-signing-secret"))
	require.NoError(t, err)

	tok, err := codec.Issue(testIdentity, "discord-access-token", time.Now())
	require.NoError(t, err)
	sess, err := codec.Verify(tok, time.Now())
	require.NoError(t, err)

	return &Principal{Session: sess}
}

func runGuildGate(t *testing.T, gate *GuildGate, principal *Principal, path string) (*httptest.ResponseRecorder, *resolver.Decision) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var decision *resolver.Decision
	router := gin.New()
	group := router.Group("/api/guilds")
	if principal != nil {
		group.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(
				ContextWithPrincipal(c.Request.Context(), principal),
			)
			c.Next()
		})
	}
	group.Use(gate.RequireGuildAdmin())
	group.GET("/:guild_id/preferences", func(c *gin.Context) {
		if d, ok := DecisionFromContext(c.Request.Context()); ok {
			decision = &d
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec, decision
}

func TestRequireGuildAdminNoPrincipal(t *testing.T) {
	gate := NewGuildGate(&fakeMemberships{}, &fakeRoles{})

	rec, _ := runGuildGate(t, gate, nil, "/api/guilds/100/preferences")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireGuildAdminBotBypasses(t *testing.T) {
	memberships := &fakeMemberships{}
	gate := NewGuildGate(memberships, &fakeRoles{})

	rec, decision := runGuildGate(t, gate, &Principal{Bot: true}, "/api/guilds/100/preferences")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decision)
	assert.Zero(t, memberships.calls, "bot path must not touch discord")
}

func TestRequireGuildAdminInvalidGuildID(t *testing.T) {
	gate := NewGuildGate(&fakeMemberships{}, &fakeRoles{})

	rec, _ := runGuildGate(t, gate, userPrincipal(t), "/api/guilds/not-a-number/preferences")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireGuildAdminOwnerAllowed(t *testing.T) {
	gate := NewGuildGate(&fakeMemberships{
		snapshot: &discord.Membership{GuildID: "100", Owner: true},
	}, &fakeRoles{})

	rec, decision := runGuildGate(t, gate, userPrincipal(t), "/api/guilds/100/preferences")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, decision)
	assert.Equal(t, resolver.ReasonOwner, decision.Reason)
}

func TestRequireGuildAdminExtraRoleAllowed(t *testing.T) {
	gate := NewGuildGate(&fakeMemberships{
		snapshot: &discord.Membership{GuildID: "100", RoleIDs: []int64{555}},
	}, &fakeRoles{roles: []int64{555}})

	rec, decision := runGuildGate(t, gate, userPrincipal(t), "/api/guilds/100/preferences")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, decision)
	assert.Equal(t, resolver.ReasonExtraRole, decision.Reason)
}

func TestRequireGuildAdminDenied(t *testing.T) {
	gate := NewGuildGate(&fakeMemberships{
		snapshot: &discord.Membership{GuildID: "100", Permissions: 0x20},
	}, &fakeRoles{roles: []int64{555}})

	rec, _ := runGuildGate(t, gate, userPrincipal(t), "/api/guilds/100/preferences")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireGuildAdminNotAMember(t *testing.T) {
	gate := NewGuildGate(&fakeMemberships{snapshot: nil}, &fakeRoles{})

	rec, _ := runGuildGate(t, gate, userPrincipal(t), "/api/guilds/100/preferences")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireGuildAdminRetriesUpstream(t *testing.T) {
	memberships := &fakeMemberships{
		snapshot: &discord.Membership{GuildID: "100", Owner: true},
		errs:     []error{auth.ErrUpstreamUnavailable, nil},
	}
	gate := NewGuildGate(memberships, &fakeRoles{})

	rec, _ := runGuildGate(t, gate, userPrincipal(t), "/api/guilds/100/preferences")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, memberships.calls)
}

func TestRequireGuildAdminUpstreamDown(t *testing.T) {
	memberships := &fakeMemberships{
		errs: []error{auth.ErrUpstreamUnavailable, auth.ErrUpstreamUnavailable},
	}
	gate := NewGuildGate(memberships, &fakeRoles{})

	rec, _ := runGuildGate(t, gate, userPrincipal(t), "/api/guilds/100/preferences")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 2, memberships.calls)
}

func TestRequireGuildAdminRevokedUpstreamToken(t *testing.T) {
	memberships := &fakeMemberships{errs: []error{auth.ErrInvalidGrant}}
	gate := NewGuildGate(memberships, &fakeRoles{})

	rec, _ := runGuildGate(t, gate, userPrincipal(t), "/api/guilds/100/preferences")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1, memberships.calls, "invalid grant must not be retried")
}

func TestRequireGuildAdminRoleSourceFailureFailsClosed(t *testing.T) {
	gate := NewGuildGate(&fakeMemberships{
		snapshot: &discord.Membership{GuildID: "100", RoleIDs: []int64{555}},
	}, &fakeRoles{err: assert.AnError})

	rec, _ := runGuildGate(t, gate, userPrincipal(t), "/api/guilds/100/preferences")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
