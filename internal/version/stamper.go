package version

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/fsutil"
)

// DefaultFileName is the name of the version file inside the working directory.
const DefaultFileName = ".versioncontrol"

// sentinel is the value a missing version file stands for.
const sentinel = -1

// Token is a cache-busting version number.
type Token int

// String renders the token the way it appears in query strings.
func (t Token) String() string { return strconv.Itoa(int(t)) }

// Stamper issues version tokens backed by a file.
type Stamper struct {
	path string
}

// NewStamper returns a Stamper persisting to path. An empty path selects
// DefaultFileName in the current working directory.
func NewStamper(path string) *Stamper {
	if path == "" {
		path = DefaultFileName
	}
	return &Stamper{path: path}
}

// Path returns the version file location.
func (s *Stamper) Path() string { return s.path }

// Next reads the stored token, increments it and durably stores the result
// under an exclusive lock, returning the new token.
func (s *Stamper) Next(ctx context.Context) (Token, error) {
	logger := ctxlog.FromContext(ctx).With("path", s.path)

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return 0, &PersistError{Path: s.path, Op: "prepare", Err: err}
	}

	lock, err := fsutil.Lock(s.path + ".lock")
	if err != nil {
		return 0, &PersistError{Path: s.path, Op: "lock", Err: err}
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("Failed to release version lock.", "error", err)
		}
	}()

	current, err := s.read()
	if err != nil {
		return 0, err
	}

	next := current + 1
	if err := fsutil.WriteFileAtomic(s.path, []byte(strconv.Itoa(next)), 0o644); err != nil {
		return 0, &PersistError{Path: s.path, Op: "write", Err: err}
	}

	logger.Debug("Version token issued.", "previous", current, "token", next)
	return Token(next), nil
}

func (s *Stamper) read() (int, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return sentinel, nil
	}
	if err != nil {
		return 0, &PersistError{Path: s.path, Op: "read", Err: err}
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return sentinel, nil
	}
	v, err := strconv.Atoi(text)
	if err != nil || v < sentinel {
		return 0, &PersistError{Path: s.path, Op: "parse", Err: fmt.Errorf("malformed content %q", text)}
	}
	return v, nil
}
