package filecache_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filexfer/filecache"
	"github.com/rise-and-shine/filexfer/filestate"
)

func newTestStore(t *testing.T) (*filecache.Store, string) {
	t.Helper()
	root := t.TempDir()
	store, err := filecache.New(root)
	require.NoError(t, err)
	return store, root
}

func TestCacheFile(t *testing.T) {
	store, root := newTestStore(t)

	state := filestate.NewBuilder().Name("test_file").Build()
	assert.Equal(t, filepath.Join(root, "test_file"), store.CacheFile(state))
}

func TestIsDataAvailable(t *testing.T) {
	store, root := newTestStore(t)
	state := filestate.NewBuilder().Name("test_file").Build()

	assert.False(t, store.IsDataAvailable(state))

	require.NoError(t, os.WriteFile(filepath.Join(root, "test_file"), nil, 0o600))
	assert.True(t, store.IsDataAvailable(state))
}

func TestIsDataAvailableIgnoresDirectories(t *testing.T) {
	store, root := newTestStore(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir_entry"), 0o755))

	assert.False(t, store.IsDataAvailable(filestate.NewBuilder().Name("dir_entry").Build()))
}

func TestClear(t *testing.T) {
	store, root := newTestStore(t)

	file1 := filepath.Join(root, "test_file_1")
	file2 := filepath.Join(root, "test_file_2")
	require.NoError(t, os.WriteFile(file1, []byte("1"), 0o600))
	require.NoError(t, os.WriteFile(file2, []byte("2"), 0o600))

	require.NoError(t, store.Clear())
	assert.NoFileExists(t, file1)
	assert.NoFileExists(t, file2)

	// second call on an empty root
	require.NoError(t, store.Clear())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClearMissingRoot(t *testing.T) {
	store, root := newTestStore(t)
	require.NoError(t, os.RemoveAll(root))

	assert.NoError(t, store.Clear())
}

func TestDisabledStore(t *testing.T) {
	store, err := filecache.New("")
	require.NoError(t, err)

	state := filestate.NewBuilder().Name("test_file").Build()
	assert.False(t, store.Enabled())
	assert.Empty(t, store.CacheFile(state))
	assert.False(t, store.IsDataAvailable(state))
	assert.NoError(t, store.Clear())

	_, _, err = store.Install(t.Context(), state, bytes.NewReader([]byte("x")), nil)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, filecache.CodeCacheDisabled))
}

func TestInstall(t *testing.T) {
	store, root := newTestStore(t)
	state := filestate.NewBuilder().Name("file_name").Build()

	var reported []int64
	path, n, err := store.Install(t.Context(), state, bytes.NewReader([]byte("hello")), func(written int64) {
		reported = append(reported, written)
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "file_name"), path)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, []int64{5}, reported)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestInstallOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	state := filestate.NewBuilder().Name("file_name").Build()

	_, _, err := store.Install(t.Context(), state, bytes.NewReader([]byte("first")), nil)
	require.NoError(t, err)
	path, _, err := store.Install(t.Context(), state, bytes.NewReader([]byte("second")), nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

type failingReader struct {
	sent bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

func TestInstallFailureLeavesNoFiles(t *testing.T) {
	store, root := newTestStore(t)
	state := filestate.NewBuilder().Name("file_name").Build()

	_, _, err := store.Install(t.Context(), state, &failingReader{}, nil)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, filecache.CodeIOFailure))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInstallCancelled(t *testing.T) {
	store, root := newTestStore(t)
	state := filestate.NewBuilder().Name("file_name").Build()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, _, err := store.Install(ctx, state, bytes.NewReader([]byte("hello")), nil)
	require.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemove(t *testing.T) {
	store, _ := newTestStore(t)
	state := filestate.NewBuilder().Name("file_name").Build()

	_, _, err := store.Install(t.Context(), state, bytes.NewReader([]byte("hello")), nil)
	require.NoError(t, err)

	require.NoError(t, store.Remove(state))
	assert.False(t, store.IsDataAvailable(state))
	assert.NoError(t, store.Remove(state))
}

func TestInstallRejectsNestedNames(t *testing.T) {
	store, root := newTestStore(t)

	for _, name := range []string{"", "..", "dir/file", "../escape"} {
		state := filestate.NewBuilder().Name(name).Build()
		_, _, err := store.Install(t.Context(), state, bytes.NewReader([]byte("x")), nil)
		require.Error(t, err, name)
		assert.True(t, errx.IsCodeIn(err, filecache.CodeIOFailure), name)
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
