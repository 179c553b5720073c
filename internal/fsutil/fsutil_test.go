package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0o600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.lock")

	lock, err := Lock(path)
	require.NoError(t, err)
	require.NoError(t, lock.Unlock())
	// A second unlock is a no-op.
	require.NoError(t, lock.Unlock())

	again, err := Lock(path)
	require.NoError(t, err)
	require.NoError(t, again.Unlock())

	_, err = os.Stat(path)
	assert.NoError(t, err, "lock file stays in place")
}
