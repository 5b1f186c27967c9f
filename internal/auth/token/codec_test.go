package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIdentity = auth.Identity{
	UserID:   "80351110224678912",
	Username: "nelly",
	Avatar:   "8342729096ea3675442027381ff50dfe",
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec([]byte("test-signing-secret"))
	require.NoError(t, err)
	return codec
}

func TestNewCodecRejectsEmptySecret(t *testing.T) {
	_, err := NewCodec(nil)
	assert.Error(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 500_000_000, time.UTC)

	tok, err := codec.Issue(testIdentity, "discord-access-token", now)
	require.NoError(t, err)

	sess, err := codec.Verify(tok, now)
	require.NoError(t, err)

	assert.Equal(t, testIdentity, sess.Identity)
	assert.Equal(t, "discord-access-token", sess.AccessToken)

	// Wire format is integer-second timestamps.
	wantIssued := now.Truncate(time.Second)
	assert.True(t, sess.IssuedAt.Equal(wantIssued))
	assert.True(t, sess.ExpiresAt.Equal(wantIssued.Add(TTL)))
}

func TestVerifyAcceptsTokenUntilExpiry(t *testing.T) {
	codec := newTestCodec(t)
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tok, err := codec.Issue(testIdentity, "discord-access-token", issued)
	require.NoError(t, err)

	for _, at := range []time.Time{
		issued,
		issued.Add(12 * time.Hour),
		issued.Add(TTL), // expiry instant is still valid
	} {
		_, err := codec.Verify(tok, at)
		assert.NoError(t, err, "verify at %s", at)
	}
}

func TestVerifyExpired(t *testing.T) {
	codec := newTestCodec(t)
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tok, err := codec.Issue(testIdentity, "discord-access-token", issued)
	require.NoError(t, err)

	_, err = codec.Verify(tok, issued.Add(TTL+time.Second))
	assert.ErrorIs(t, err, auth.ErrExpired)
}

func TestVerifyTamperedPayload(t *testing.T) {
	codec := newTestCodec(t)
	now := time.Now()

	tok, err := codec.Issue(testIdentity, "discord-access-token", now)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	// Alter a claim while keeping the payload well-formed, so only the
	// signature check can catch the change.
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var claimSet map[string]any
	require.NoError(t, json.Unmarshal(payload, &claimSet))
	claimSet["username"] = "mallory"
	forged, err := json.Marshal(claimSet)
	require.NoError(t, err)

	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	_, err = codec.Verify(strings.Join(parts, "."), now)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)
}

func TestVerifyWrongKey(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewCodec([]byte("a-different-secret"))
	require.NoError(t, err)

	now := time.Now()
	tok, err := codec.Issue(testIdentity, "discord-access-token", now)
	require.NoError(t, err)

	_, err = other.Verify(tok, now)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)
}

func TestVerifyMalformed(t *testing.T) {
	codec := newTestCodec(t)
	now := time.Now()

	for _, tok := range []string{
		"",
		"not-a-token",
		"a.b",
		"a.b.c.d",
	} {
		_, err := codec.Verify(tok, now)
		assert.ErrorIs(t, err, auth.ErrMalformed, "token %q", tok)
	}
}

func TestVerifyMissingClaims(t *testing.T) {
	codec := newTestCodec(t)
	now := time.Now()

	// Signed with the right key but missing the access token claim.
	cl := jwt.MapClaims{
		"sub":      testIdentity.UserID,
		"username": testIdentity.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString([]byte("test-signing-secret"))
	require.NoError(t, err)

	_, err = codec.Verify(tok, now)
	assert.ErrorIs(t, err, auth.ErrMalformed)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	codec := newTestCodec(t)
	now := time.Now()

	cl := jwt.MapClaims{
		"sub":                  testIdentity.UserID,
		"username":             testIdentity.Username,
		"discord_access_token": "discord-access-token",
		"iat":                  now.Unix(),
		"exp":                  now.Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, cl).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Verify(tok, now)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrExpired)
}
