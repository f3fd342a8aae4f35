package config

import "time"

type SessionConfig interface {
	GetHTTPTimeout() time.Duration
	GetAccessTokenTTLHint() time.Duration
	GetRefreshTokenTTLHint() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetHTTPTimeout() time.Duration {
	return 30 * time.Second
}

// TTL hints mirror the server-side cookie lifetimes. The server is the
// authority on expiry; the hints only annotate the stored values.
func (Session) GetAccessTokenTTLHint() time.Duration {
	return 24 * time.Hour // 1 day
}

func (Session) GetRefreshTokenTTLHint() time.Duration {
	return 7 * 24 * time.Hour // 7 days
}
