// Package testutil holds helpers shared by package tests: log capture,
// logger-carrying contexts and on-disk project fixtures.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/stretchr/testify/require"
)

// Context returns a context carrying a debug-level text logger that writes
// into the returned buffer. Set ASSETGRID_TEST_LOGS=true to also dump the
// captured output when the test finishes.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()

	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() {
		if os.Getenv("ASSETGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return ctxlog.WithLogger(context.Background(), logger), buf
}

// WriteTree materializes files (slash-separated relative path -> content)
// under root, creating intermediate directories. Paths ending in "/" create
// empty directories.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// NewProject creates a temporary project root holding files and returns its path.
func NewProject(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	WriteTree(t, root, files)
	return root
}
