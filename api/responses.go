package api

import "github.com/zeropapel/zeropapel-go/users"

// AuthResponse is the body returned by login, register and google-auth:
// a fresh credential pair plus the authenticated profile.
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *users.User `json:"user"`
}
