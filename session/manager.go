package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/zeropapel/zeropapel-go/api"
	"github.com/zeropapel/zeropapel-go/credentials"
	"github.com/zeropapel/zeropapel-go/internal/apperrors"
	"github.com/zeropapel/zeropapel-go/token"
	"github.com/zeropapel/zeropapel-go/transport"
	"github.com/zeropapel/zeropapel-go/users"
)

// AuthAPI is the slice of the platform API the session manager drives.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, email, password string) (*api.AuthResponse, error)
	GoogleAuth(ctx context.Context, idToken string) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*users.User, error)
	UpdateProfile(ctx context.Context, fields map[string]any) (*users.User, error)
}

// Invalidator supersedes any in-flight refresh and discards the stored
// credential pair.
type Invalidator interface {
	Invalidate()
}

// Manager owns the session state. It is the sole writer: every
// transition flows through it, and consumers observe the session via
// Snapshot and Subscribe rather than reaching into shared state.
type Manager struct {
	api         AuthAPI
	store       credentials.Store
	invalidator Invalidator

	lock    sync.Mutex
	status  Status
	user    *users.User
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewManager creates a Manager in StatusLoading. When refresher is a
// *Refresher its session-end hook is wired to the manager so a failed
// refresh is observed as a transition to anonymous.
func NewManager(authAPI AuthAPI, store credentials.Store, refresher Invalidator) (*Manager, error) {
	if authAPI == nil {
		return nil, fmt.Errorf("[NewManager] auth API is required")
	}
	if store == nil {
		return nil, fmt.Errorf("[NewManager] credential store is required")
	}

	m := &Manager{
		api:         authAPI,
		store:       store,
		invalidator: refresher,
		status:      StatusLoading,
		subs:        make(map[int]func(Snapshot)),
	}

	if r, ok := refresher.(*Refresher); ok && r != nil {
		r.OnSessionEnd(m.ClearUser)
	}
	return m, nil
}

// Snapshot returns the current session view.
func (m *Manager) Snapshot() Snapshot {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers fn to be called after every committed transition.
// The returned cancel function removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	m.lock.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.lock.Unlock()

	return func() {
		m.lock.Lock()
		delete(m.subs, id)
		m.lock.Unlock()
	}
}

// Resolve performs cold-start resolution. With no stored access
// credential the session is anonymous without any network call.
// Otherwise the cached credential is confirmed against the profile
// endpoint; an authorization failure discards it.
func (m *Manager) Resolve(ctx context.Context) Snapshot {
	pair, err := m.store.Get()
	if err != nil {
		log.Warn().Err(err).Msg("reading stored credentials")
		m.transition(StatusAnonymous, nil)
		return m.Snapshot()
	}
	if pair.Access == "" {
		m.transition(StatusAnonymous, nil)
		return m.Snapshot()
	}

	// A cached access token already past its exp with nothing to
	// refresh it is certain to be rejected; skip the round trip.
	if pair.Refresh == "" && token.Expired(pair.Access, 0) {
		if err := m.store.Clear(); err != nil {
			log.Warn().Err(err).Msg("clearing expired credentials")
		}
		m.transition(StatusAnonymous, nil)
		return m.Snapshot()
	}

	user, err := m.api.Profile(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrAuthorizationExpired) {
			if clearErr := m.store.Clear(); clearErr != nil {
				log.Warn().Err(clearErr).Msg("clearing rejected credentials")
			}
		}
		log.Debug().Err(err).Msg("startup identity confirmation failed")
		m.transition(StatusAnonymous, nil)
		return m.Snapshot()
	}

	m.transition(StatusAuthenticated, user)
	return m.Snapshot()
}

// Login authenticates with an email and password. On success both
// credentials are persisted and the session becomes authenticated; on
// failure the state is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		return m.failure(err, "Login failed")
	}
	return m.establish(resp, "Login failed")
}

// Register creates an account and establishes the session.
func (m *Manager) Register(ctx context.Context, email, password string) Result {
	resp, err := m.api.Register(ctx, email, password)
	if err != nil {
		return m.failure(err, "Registration failed")
	}
	return m.establish(resp, "Registration failed")
}

// LoginWithGoogle establishes the session from a verified Google
// identity token.
func (m *Manager) LoginWithGoogle(ctx context.Context, idToken string) Result {
	resp, err := m.api.GoogleAuth(ctx, idToken)
	if err != nil {
		return m.failure(err, "Google authentication failed")
	}
	return m.establish(resp, "Google authentication failed")
}

// Logout ends the session. The server call is best-effort; credentials
// are discarded and the session becomes anonymous regardless, and any
// refresh still in flight is superseded.
func (m *Manager) Logout(ctx context.Context) Result {
	if err := m.api.Logout(ctx); err != nil {
		log.Warn().Err(err).Msg("logout request failed")
	}

	if m.invalidator != nil {
		m.invalidator.Invalidate()
	} else if err := m.store.Clear(); err != nil {
		log.Warn().Err(err).Msg("clearing credentials on logout")
	}

	m.transition(StatusAnonymous, nil)
	return Result{OK: true}
}

// UpdateProfile pushes profile changes to the server and replaces the
// session user with the returned profile.
func (m *Manager) UpdateProfile(ctx context.Context, fields map[string]any) Result {
	user, err := m.api.UpdateProfile(ctx, fields)
	if err != nil {
		return m.failure(err, "Profile update failed")
	}
	m.transition(StatusAuthenticated, user)
	return Result{OK: true, User: user}
}

// UpdateUser replaces the session user locally, typically after a
// server call elsewhere returned a fresh profile. A nil user forces
// anonymous.
func (m *Manager) UpdateUser(user *users.User) {
	if user == nil {
		m.transition(StatusAnonymous, nil)
		return
	}
	m.transition(StatusAuthenticated, user)
}

// ClearUser forces the session to anonymous without a server round
// trip, for client-detected invalidation.
func (m *Manager) ClearUser() {
	m.transition(StatusAnonymous, nil)
}

func (m *Manager) establish(resp *api.AuthResponse, fallback string) Result {
	err := m.store.Set(credentials.Pair{
		Access:  resp.AccessToken,
		Refresh: resp.RefreshToken,
	})
	if err != nil {
		log.Error().Err(err).Msg("persisting credentials")
		return m.failure(err, fallback)
	}

	m.transition(StatusAuthenticated, resp.User)
	return Result{OK: true, User: resp.User}
}

// failure folds an error into a Result, preferring the server-supplied
// message when one exists. The session state is not touched.
func (m *Manager) failure(err error, fallback string) Result {
	msg := fallback
	var apiErr *transport.APIError
	if apperrors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}
	log.Debug().Err(err).Msg("session operation failed")
	return Result{OK: false, Message: msg}
}

// transition commits a state change and notifies subscribers outside
// the lock. Transitions that would not change the observable snapshot
// are dropped, so a consumer never sees a spurious notification.
func (m *Manager) transition(status Status, user *users.User) {
	m.lock.Lock()
	if m.status == status && m.user.Equal(user) {
		m.lock.Unlock()
		return
	}

	from := m.status
	m.status = status
	m.user = user
	snap := m.snapshotLocked()

	subs := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.lock.Unlock()

	log.Debug().Stringer("from", from).Stringer("to", status).Msg("session transition")
	for _, fn := range subs {
		fn(snap)
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Status:   m.status,
		User:     m.user,
		LoggedIn: m.status == StatusAuthenticated,
	}
}
