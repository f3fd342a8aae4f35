package googleauth

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"github.com/zeropapel/zeropapel-go/internal/apperrors"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// Exchanger turns a Google authorization code into a verified identity
// token suitable for POST /auth/google-auth. The token's issuer and
// audience are checked client-side before it is presented to the
// platform.
type Exchanger struct {
	oauthConfig oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

// New discovers Google's OIDC configuration and prepares an Exchanger.
func New(ctx context.Context, clientID, clientSecret, redirectURL string) (*Exchanger, error) {
	if clientID == "" {
		return nil, errors.New("[googleauth.New] client ID is required")
	}

	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, errors.Wrap(err, "[googleauth.New] OIDC discovery")
	}

	return &Exchanger{
		oauthConfig: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// AuthCodeURL returns the URL the user visits to grant access. The
// state value is echoed back on the redirect and must be checked by the
// caller.
func (e *Exchanger) AuthCodeURL(state string) string {
	return e.oauthConfig.AuthCodeURL(state)
}

// Exchange swaps the authorization code for tokens and returns the raw
// identity token after verifying it against Google's keys.
func (e *Exchanger) Exchange(ctx context.Context, code string) (string, error) {
	oauth2Token, err := e.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrInvalidIdentityToken, "code exchange: %v", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidIdentityToken, "token response missing id_token")
	}

	if _, err := e.verifier.Verify(ctx, rawIDToken); err != nil {
		return "", apperrors.Wrapf(apperrors.ErrInvalidIdentityToken, "verify id_token: %v", err)
	}

	return rawIDToken, nil
}
