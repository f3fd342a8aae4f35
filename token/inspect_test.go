package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/zeropapel/zeropapel-go/token"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestExpiryReadsExpClaim(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signedToken(t, jwt.MapClaims{"sub": "1", "exp": exp.Unix()})

	got, err := token.Expiry(raw)
	require.NoError(t, err)
	require.True(t, got.Equal(exp))
}

func TestExpiryRejectsOpaqueToken(t *testing.T) {
	_, err := token.Expiry("not-a-jwt")
	require.Error(t, err)
}

func TestExpiryRejectsMissingExp(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "1"})
	_, err := token.Expiry(raw)
	require.Error(t, err)
}

func TestExpired(t *testing.T) {
	past := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})
	future := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	require.True(t, token.Expired(past, 0))
	require.False(t, token.Expired(future, 0))

	// Leeway treats a soon-to-expire token as already expired.
	require.True(t, token.Expired(future, 2*time.Hour))
}

func TestExpiredUnknowableForOpaqueTokens(t *testing.T) {
	require.False(t, token.Expired("opaque-session-token", 0))
}
