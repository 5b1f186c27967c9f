package token

import (
	"errors"
	"time"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TTL is the fixed lifetime of an issued session token.
const TTL = 24 * time.Hour

// Session is the decoded content of a valid session token.
type Session struct {
	auth.Identity
	AccessToken string // short-lived Discord access token
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

type claims struct {
	Username    string `json:"username"`
	Avatar      string `json:"avatar,omitempty"`
	AccessToken string `json:"discord_access_token"`
	jwt.RegisteredClaims
}

// Codec issues and verifies self-contained HS256 session tokens.
// It holds no server-side state; validity is signature plus expiry.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: signing secret must not be empty")
	}
	return &Codec{secret: secret}, nil
}

// Issue mints a signed session token for the given identity. The wire
// format carries integer-second timestamps, so now is truncated to
// second granularity before signing.
func (c *Codec) Issue(identity auth.Identity, accessToken string, now time.Time) (string, error) {
	if identity.UserID == "" || identity.Username == "" {
		return "", errors.New("token: identity missing required fields")
	}
	if accessToken == "" {
		return "", errors.New("token: access token must not be empty")
	}

	now = now.Truncate(time.Second)

	cl := claims{
		Username:    identity.Username,
		Avatar:      identity.Avatar,
		AccessToken: accessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
}

// Verify checks signature and expiry against the supplied time and
// returns the decoded session. Failures map onto the auth taxonomy:
// auth.ErrExpired, auth.ErrInvalidSignature, auth.ErrMalformed.
func (c *Codec) Verify(tokenString string, now time.Time) (*Session, error) {
	// Timestamps are second-granular; one second of leeway makes the
	// expiry instant itself valid, so a token dies only once now > exp.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now.Truncate(time.Second) }),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(time.Second),
	)

	var cl claims
	_, err := parser.ParseWithClaims(tokenString, &cl, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, auth.ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, auth.ErrInvalidSignature
		default:
			return nil, auth.ErrMalformed
		}
	}

	if cl.Subject == "" || cl.Username == "" || cl.AccessToken == "" {
		return nil, auth.ErrMalformed
	}
	if cl.IssuedAt == nil || cl.ExpiresAt == nil {
		return nil, auth.ErrMalformed
	}

	return &Session{
		Identity: auth.Identity{
			UserID:   cl.Subject,
			Username: cl.Username,
			Avatar:   cl.Avatar,
		},
		AccessToken: cl.AccessToken,
		IssuedAt:    cl.IssuedAt.Time,
		ExpiresAt:   cl.ExpiresAt.Time,
	}, nil
}
