package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var unverifiedParser = jwt.NewParser(jwt.WithoutClaimsValidation())

// Expiry reads the exp claim of a JWT without verifying its signature.
// The client never validates tokens — the server is the authority — but
// peeking at exp lets the session layer skip calls that are certain to
// be rejected.
func Expiry(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := unverifiedParser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, errors.Wrap(err, "[Expiry] parse token")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "[Expiry] exp claim")
	}
	if exp == nil {
		return time.Time{}, errors.New("[Expiry] token has no exp claim")
	}
	return exp.Time, nil
}

// Expired reports whether the token's exp claim is in the past, with
// leeway subtracted. Opaque (non-JWT) tokens report false: their expiry
// is unknowable client-side.
func Expired(raw string, leeway time.Duration) bool {
	exp, err := Expiry(raw)
	if err != nil {
		return false
	}
	return NowTimeFunc().After(exp.Add(-leeway))
}
