// Package zeropapel is a Go client for the zeropapel document-signing
// platform. Its core is the authentication session manager: credential
// storage, a bearer-attaching transport with single-retry on
// authorization failure, a single-flight token refresher, and an
// observable session state. The typed API surfaces (auth, documents,
// audit) are consumers of that core.
package zeropapel

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/zeropapel/zeropapel-go/api"
	"github.com/zeropapel/zeropapel-go/audit"
	"github.com/zeropapel/zeropapel-go/credentials"
	"github.com/zeropapel/zeropapel-go/documents"
	"github.com/zeropapel/zeropapel-go/internal/config"
	"github.com/zeropapel/zeropapel-go/session"
	"github.com/zeropapel/zeropapel-go/transport"
)

// Client bundles the session core with the typed API surfaces.
type Client struct {
	Session   *session.Manager
	Auth      *api.Client
	Documents *documents.Client
	Audit     *audit.Client

	store credentials.Store
}

type settings struct {
	baseURL    string
	dataFolder string
	store      credentials.Store
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*settings)

// WithBaseURL overrides the platform API base URL.
func WithBaseURL(u string) Option {
	return func(s *settings) {
		s.baseURL = u
	}
}

// WithStore supplies a credential store, replacing the default
// file-backed one.
func WithStore(store credentials.Store) Option {
	return func(s *settings) {
		s.store = store
	}
}

// WithHTTPClient sets the HTTP client used by both the transport and
// the refresher.
func WithHTTPClient(h *http.Client) Option {
	return func(s *settings) {
		s.httpClient = h
	}
}

// WithDataFolder sets where the default file store keeps its state.
func WithDataFolder(folder string) Option {
	return func(s *settings) {
		s.dataFolder = folder
	}
}

// New assembles a Client: credential store, single-flight refresher,
// retrying transport, and the session manager on top. Defaults come
// from the environment.
func New(options ...Option) (*Client, error) {
	cfg := config.New()

	s := &settings{
		baseURL:    cfg.GetBaseURL(),
		dataFolder: cfg.GetDataFolder(),
		httpClient: &http.Client{Timeout: cfg.GetHTTPTimeout()},
	}
	for _, opt := range options {
		opt(s)
	}

	store := s.store
	if store == nil {
		fileStore, err := credentials.NewFileStore(
			s.dataFolder,
			credentials.WithTTLHints(cfg.GetAccessTokenTTLHint(), cfg.GetRefreshTokenTTLHint()),
		)
		if err != nil {
			return nil, errors.Wrap(err, "[zeropapel.New] credential store")
		}
		store = fileStore
	}

	refresher, err := session.NewRefresher(s.baseURL, store, session.WithRefreshHTTPClient(s.httpClient))
	if err != nil {
		return nil, errors.Wrap(err, "[zeropapel.New] refresher")
	}

	t, err := transport.New(s.baseURL, store,
		transport.WithHTTPClient(s.httpClient),
		transport.WithRefresher(refresher),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[zeropapel.New] transport")
	}

	authAPI, err := api.New(t)
	if err != nil {
		return nil, errors.Wrap(err, "[zeropapel.New] auth api")
	}

	manager, err := session.NewManager(authAPI, store, refresher)
	if err != nil {
		return nil, errors.Wrap(err, "[zeropapel.New] session manager")
	}

	docs, err := documents.New(t)
	if err != nil {
		return nil, errors.Wrap(err, "[zeropapel.New] documents api")
	}

	auditClient, err := audit.New(t)
	if err != nil {
		return nil, errors.Wrap(err, "[zeropapel.New] audit api")
	}

	return &Client{
		Session:   manager,
		Auth:      authAPI,
		Documents: docs,
		Audit:     auditClient,
		store:     store,
	}, nil
}

// Store exposes the credential store, mainly for inspection by callers
// that manage persistence themselves.
func (c *Client) Store() credentials.Store {
	return c.store
}
