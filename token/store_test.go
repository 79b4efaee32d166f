package token

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	require.Empty(t, s.Access())
	require.Empty(t, s.Refresh())

	require.NoError(t, s.Set("a1", "r1"))
	require.Equal(t, "a1", s.Access())
	require.Equal(t, "r1", s.Refresh())

	require.NoError(t, s.Clear())
	require.Empty(t, s.Access())
	require.Empty(t, s.Refresh())
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("a1", "r1"))

	// A new store over the same file sees the persisted pair.
	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	require.Equal(t, "a1", reopened.Access())
	require.Equal(t, "r1", reopened.Refresh())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreClearRemovesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("a1", "r1"))
	require.NoError(t, s.Clear())

	require.Empty(t, s.Access())
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Clearing an already-clear store is not an error.
	require.NoError(t, s.Clear())
}

func TestFileStoreMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.Empty(t, s.Access())
	require.Empty(t, s.Refresh())
}
