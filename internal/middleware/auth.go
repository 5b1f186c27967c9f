package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth"
	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth/token"
)

// APIKeyHeader authenticates bot processes. Bearer tokens authenticate
// dashboard users; the gate is the sole validator for both.
const APIKeyHeader = "Plana-API-Key"

// Principal is the authenticated caller attached to the request
// context: either the bot process or a dashboard user session.
type Principal struct {
	Bot     bool
	Session *token.Session // nil when Bot is true
}

type principalContextKeyType struct{}

var principalKey = principalContextKeyType{}

// PrincipalFromContext extracts the authenticated principal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// ContextWithPrincipal is exported for handler tests.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// AuthGate validates credentials on every authenticated request and,
// for guild-scoped routes, resolves administrative permission.
type AuthGate struct {
	Codec   *token.Codec
	APIKeys []string
}

func NewAuthGate(codec *token.Codec, apiKeys []string) *AuthGate {
	return &AuthGate{Codec: codec, APIKeys: apiKeys}
}

// RequireAuth authenticates the request. API keys are checked first
// (bot processes), then the bearer session token. Invalid, expired,
// and missing credentials are indistinguishable to the caller beyond
// a 401.
func (g *AuthGate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get(APIKeyHeader); key != "" {
			if !g.validAPIKey(key) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := ContextWithPrincipal(r.Context(), &Principal{Bot: true})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		bearer, err := bearerToken(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sess, err := g.Codec.Verify(bearer, time.Now())
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := ContextWithPrincipal(r.Context(), &Principal{Session: sess})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", auth.ErrMissingCredentials
	}

	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || value == "" {
		return "", auth.ErrMissingCredentials
	}
	return value, nil
}

func (g *AuthGate) validAPIKey(key string) bool {
	valid := false
	for _, k := range g.APIKeys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			valid = true
		}
	}
	return valid
}
