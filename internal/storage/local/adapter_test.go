package local_test

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comfortlab/comfortcast/internal/storage"
	"github.com/comfortlab/comfortcast/internal/storage/local"
)

func newStore(t *testing.T) storage.ObjectStore {
	t.Helper()
	store, err := local.New(storage.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestNew_RequiresBaseDir(t *testing.T) {
	_, err := local.New(storage.Config{})
	assert.Error(t, err)
}

func TestNew_CreatesBaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store, err := local.New(storage.Config{BaseDir: dir})
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.NoError(t, store.Close())
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	err := storage.SaveBytes(ctx, store, "datasets/master.csv", []byte("hello"))
	require.NoError(t, err)

	data, err := storage.LoadBytes(ctx, store, "datasets/master.csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	// Overwrite replaces the object atomically.
	err = storage.SaveBytes(ctx, store, "datasets/master.csv", []byte("world"))
	require.NoError(t, err)
	data, err = storage.LoadBytes(ctx, store, "datasets/master.csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), data)
}

func TestDownload_MissingObject(t *testing.T) {
	store := newStore(t)

	_, err := storage.LoadBytes(context.Background(), store, "nope.csv")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrObjectNotFound))
}

func TestList_PrefixFilter(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveBytes(ctx, store, "datasets/a.csv", []byte("a")))
	require.NoError(t, storage.SaveBytes(ctx, store, "datasets/snapshots/b.parquet", []byte("b")))
	require.NoError(t, storage.SaveBytes(ctx, store, "other/c.csv", []byte("c")))

	var keys []string
	err := store.List(ctx, "datasets/", func(key string) error {
		keys = append(keys, key)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"datasets/a.csv", "datasets/snapshots/b.parquet"}, keys)
}

func TestDelete_MissingObjectIsTolerated(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	assert.NoError(t, store.Delete(ctx, "nope.csv"))

	require.NoError(t, storage.SaveBytes(ctx, store, "x.csv", []byte("x")))
	assert.NoError(t, store.Delete(ctx, "x.csv"))
	_, err := storage.LoadBytes(ctx, store, "x.csv")
	assert.True(t, errors.Is(err, storage.ErrObjectNotFound))
}

func TestUpload_RejectsEscapingKeys(t *testing.T) {
	store := newStore(t)

	err := storage.SaveBytes(context.Background(), store, "../escape.csv", []byte("x"))
	assert.Error(t, err)
}
