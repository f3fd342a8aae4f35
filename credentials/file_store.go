package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeropapel/zeropapel-go/internal/apperrors"
)

const storeFileName = "credentials.json"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// storedPair is the on-disk representation. The expiry fields mirror
// the server-side cookie lifetimes (access 1 day, refresh 7 days); they
// annotate the values but are not enforced client-side.
type storedPair struct {
	AccessToken      string    `json:"access_token,omitempty"`
	RefreshToken     string    `json:"refresh_token,omitempty"`
	AccessExpiresAt  time.Time `json:"access_expires_at,omitempty"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
}

// FileStore is a Store backed by a JSON file in the data folder. A
// write-through in-memory copy makes writes immediately visible to
// subsequent reads.
type FileStore struct {
	path       string
	accessTTL  time.Duration
	refreshTTL time.Duration
	lock       sync.Mutex
	cached     *Pair
}

var _ Store = (*FileStore)(nil)

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithTTLHints overrides the expiry hints recorded next to the stored
// values.
func WithTTLHints(access, refresh time.Duration) FileStoreOption {
	return func(fs *FileStore) {
		fs.accessTTL = access
		fs.refreshTTL = refresh
	}
}

// NewFileStore creates a FileStore rooted at folder, creating the
// folder if needed.
func NewFileStore(folder string, options ...FileStoreOption) (*FileStore, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCredentialStore, "create data folder %q: %v", folder, err)
	}

	fs := &FileStore{
		path:       filepath.Join(folder, storeFileName),
		accessTTL:  24 * time.Hour,
		refreshTTL: 7 * 24 * time.Hour,
	}
	for _, opt := range options {
		opt(fs)
	}
	return fs, nil
}

func (fs *FileStore) Set(pair Pair) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	now := NowTimeFunc()
	sp := storedPair{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	}
	if pair.Access != "" {
		sp.AccessExpiresAt = now.Add(fs.accessTTL)
	}
	if pair.Refresh != "" {
		sp.RefreshExpiresAt = now.Add(fs.refreshTTL)
	}

	data, err := json.MarshalIndent(sp, "", "  ")
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrCredentialStore, "marshal credentials: %v", err)
	}
	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return apperrors.Wrapf(apperrors.ErrCredentialStore, "write credentials: %v", err)
	}

	fs.cached = &pair
	return nil
}

func (fs *FileStore) Get() (Pair, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.cached != nil {
		return *fs.cached, nil
	}

	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		fs.cached = &Pair{}
		return Pair{}, nil
	}
	if err != nil {
		return Pair{}, apperrors.Wrapf(apperrors.ErrCredentialStore, "read credentials: %v", err)
	}

	var sp storedPair
	if err := json.Unmarshal(data, &sp); err != nil {
		return Pair{}, apperrors.Wrapf(apperrors.ErrCredentialStore, "parse credentials: %v", err)
	}

	pair := Pair{Access: sp.AccessToken, Refresh: sp.RefreshToken}
	fs.cached = &pair
	return pair, nil
}

func (fs *FileStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.cached = &Pair{}
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return apperrors.Wrapf(apperrors.ErrCredentialStore, "remove credentials: %v", err)
	}
	return nil
}
