package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zeropapel/zeropapel-go/credentials"
	"github.com/zeropapel/zeropapel-go/internal/apperrors"
	"golang.org/x/sync/singleflight"
)

const refreshTimeout = 30 * time.Second

// Refresher exchanges the refresh credential for a new access
// credential. Any number of concurrently failing requests collapse into
// a single upstream call; every waiter observes the one result.
//
// The refresher issues its own plain HTTP call rather than going
// through the retrying transport, so the refresh path can never
// recurse into itself.
type Refresher struct {
	refreshURL string
	http       *http.Client
	store      credentials.Store
	group      singleflight.Group

	lock  sync.Mutex
	epoch uint64
	onEnd func()
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithRefreshHTTPClient sets the HTTP client used for the refresh call.
func WithRefreshHTTPClient(h *http.Client) RefresherOption {
	return func(r *Refresher) {
		r.http = h
	}
}

// NewRefresher creates a Refresher against baseURL's /auth/refresh
// endpoint.
func NewRefresher(baseURL string, store credentials.Store, options ...RefresherOption) (*Refresher, error) {
	if store == nil {
		return nil, fmt.Errorf("[NewRefresher] credential store is required")
	}

	r := &Refresher{
		refreshURL: strings.TrimSuffix(baseURL, "/") + "/auth/refresh",
		http:       &http.Client{Timeout: refreshTimeout},
		store:      store,
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// OnSessionEnd registers the hook invoked when a refresh attempt fails
// and the session has been invalidated. The session manager uses it to
// transition to anonymous.
func (r *Refresher) OnSessionEnd(fn func()) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.onEnd = fn
}

// Refresh obtains a new access credential. Concurrent callers share one
// upstream call. A nil return means the store now holds a fresh access
// credential; any error means the session was invalidated (or, for a
// refresh superseded by logout, already gone).
func (r *Refresher) Refresh(ctx context.Context) error {
	startEpoch := r.currentEpoch()
	_, err, _ := r.group.Do("refresh", func() (interface{}, error) {
		return nil, r.refresh(ctx, startEpoch)
	})
	return err
}

// Invalidate discards the credential pair and supersedes any in-flight
// refresh: a refresh that completes after Invalidate must not
// resurrect the session.
func (r *Refresher) Invalidate() {
	r.lock.Lock()
	r.epoch++
	err := r.store.Clear()
	r.lock.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("clearing credentials on invalidate")
	}
}

func (r *Refresher) currentEpoch() uint64 {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.epoch
}

func (r *Refresher) refresh(ctx context.Context, epoch uint64) error {
	pair, err := r.store.Get()
	if err != nil {
		return r.fail(apperrors.Wrapf(apperrors.ErrRefreshFailed, "read credentials: %v", err))
	}
	if pair.Refresh == "" {
		return r.fail(apperrors.ErrNoRefreshCredential)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.refreshURL, nil)
	if err != nil {
		return r.fail(apperrors.Wrapf(apperrors.ErrRefreshFailed, "build refresh request: %v", err))
	}
	// The refresh credential is the bearer here, never the stale
	// access credential.
	req.Header.Set("Authorization", "Bearer "+pair.Refresh)

	resp, err := r.http.Do(req)
	if err != nil {
		return r.fail(apperrors.Wrapf(apperrors.ErrRefreshFailed, "refresh call: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return r.fail(apperrors.Wrapf(apperrors.ErrRefreshFailed, "refresh rejected: status %d", resp.StatusCode))
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return r.fail(apperrors.Wrapf(apperrors.ErrRefreshFailed, "decode refresh response: %v", err))
	}
	if body.AccessToken == "" {
		return r.fail(apperrors.Wrapf(apperrors.ErrRefreshFailed, "refresh response missing access token"))
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if r.epoch != epoch {
		// A logout superseded this refresh; discard its result
		// without touching the store.
		log.Debug().Msg("discarding refresh result after logout")
		return apperrors.ErrSessionExpired
	}
	if err := r.store.Set(credentials.Pair{Access: body.AccessToken, Refresh: pair.Refresh}); err != nil {
		return apperrors.Wrapf(apperrors.ErrRefreshFailed, "store refreshed credential: %v", err)
	}

	log.Debug().Msg("access credential refreshed")
	return nil
}

// fail clears both credentials and notifies the session manager before
// returning err to the waiters.
func (r *Refresher) fail(err error) error {
	if clearErr := r.store.Clear(); clearErr != nil {
		log.Warn().Err(clearErr).Msg("clearing credentials after failed refresh")
	}

	r.lock.Lock()
	end := r.onEnd
	r.lock.Unlock()
	if end != nil {
		end()
	}

	log.Debug().Err(err).Msg("refresh failed, session invalidated")
	return err
}
