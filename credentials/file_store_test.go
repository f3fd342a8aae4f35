package credentials_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeropapel/zeropapel-go/credentials"
)

func TestFileStoreEmptyOnFirstUse(t *testing.T) {
	store, err := credentials.NewFileStore(t.TempDir())
	require.NoError(t, err)

	pair, err := store.Get()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}

func TestFileStoreWriteIsImmediatelyVisible(t *testing.T) {
	store, err := credentials.NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(credentials.Pair{Access: "access-1", Refresh: "refresh-1"}))

	pair, err := store.Get()
	require.NoError(t, err)
	require.Equal(t, "access-1", pair.Access)
	require.Equal(t, "refresh-1", pair.Refresh)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	folder := t.TempDir()

	store, err := credentials.NewFileStore(folder)
	require.NoError(t, err)
	require.NoError(t, store.Set(credentials.Pair{Access: "access-1", Refresh: "refresh-1"}))

	reopened, err := credentials.NewFileStore(folder)
	require.NoError(t, err)

	pair, err := reopened.Get()
	require.NoError(t, err)
	require.Equal(t, credentials.Pair{Access: "access-1", Refresh: "refresh-1"}, pair)
}

func TestFileStoreClear(t *testing.T) {
	folder := t.TempDir()

	store, err := credentials.NewFileStore(folder)
	require.NoError(t, err)
	require.NoError(t, store.Set(credentials.Pair{Access: "access-1", Refresh: "refresh-1"}))
	require.NoError(t, store.Clear())

	pair, err := store.Get()
	require.NoError(t, err)
	require.True(t, pair.Empty())

	_, statErr := os.Stat(filepath.Join(folder, "credentials.json"))
	require.True(t, os.IsNotExist(statErr))

	// Clearing an already empty store is not an error.
	require.NoError(t, store.Clear())
}

func TestFileStorePartialPair(t *testing.T) {
	store, err := credentials.NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(credentials.Pair{Access: "access-only"}))

	pair, err := store.Get()
	require.NoError(t, err)
	require.Equal(t, "access-only", pair.Access)
	require.Empty(t, pair.Refresh)
	require.False(t, pair.Empty())
}
