package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "cursor", []byte("1725911162329308")))

	value, err := s.Get(ctx, "cursor")
	require.NoError(t, err)
	assert.Equal(t, []byte("1725911162329308"), value)

	require.NoError(t, s.Close())
}

func TestFileStoreGetMissing(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "cursor", []byte("42")))
	require.NoError(t, s.Set(ctx, "other", []byte("x")))
	require.NoError(t, s.Close())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)

	value, err := reopened.Get(ctx, "cursor")
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), value)
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "cursor", []byte("42")))
	require.NoError(t, s.Delete(ctx, "cursor"))

	_, err = s.Get(ctx, "cursor")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "never-written.json"))
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "cursor")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
