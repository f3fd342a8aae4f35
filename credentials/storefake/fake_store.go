package storefake

import (
	"sync"

	"github.com/zeropapel/zeropapel-go/credentials"
)

var _ credentials.Store = (*FakeStore)(nil)

// FakeStore is an in-memory credentials.Store for tests.
type FakeStore struct {
	lock sync.RWMutex
	pair credentials.Pair

	SetErr   error // returned by Set when non-nil
	GetErr   error // returned by Get when non-nil
	ClearErr error // returned by Clear when non-nil
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (f *FakeStore) Set(pair credentials.Pair) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	f.pair = pair
	return nil
}

func (f *FakeStore) Get() (credentials.Pair, error) {
	if f.GetErr != nil {
		return credentials.Pair{}, f.GetErr
	}
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.pair, nil
}

func (f *FakeStore) Clear() error {
	if f.ClearErr != nil {
		return f.ClearErr
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	f.pair = credentials.Pair{}
	return nil
}
