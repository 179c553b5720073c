package bundle

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
)

// Discover walks moduleRoot in lexical order and returns one Descriptor per
// distinct bundle, in first-seen order.
//
// A directory is a bundle candidate when one of its path segments contains
// Suffix after at least one leading character; the candidate path runs up to
// and including the first such segment. Candidates seen again through nested
// directories are collapsed, so a bundle's own subtree is never read here.
// Two distinct paths that normalize to the same title are collapsed as well,
// keeping the first one, since their generated outputs would collide.
//
// Walk errors outside bundle directories are fatal.
func Discover(ctx context.Context, moduleRoot string) ([]Descriptor, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Bundle discovery started.", "module_root", moduleRoot)

	info, err := os.Stat(moduleRoot)
	if err != nil {
		return nil, &DiscoveryError{Root: moduleRoot, Err: err}
	}
	if !info.IsDir() {
		return nil, &DiscoveryError{Root: moduleRoot, Err: fmt.Errorf("not a directory")}
	}

	var bundles []Descriptor
	seenPaths := make(map[string]struct{})
	seenTitles := make(map[string]string)

	err = filepath.WalkDir(moduleRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if p == moduleRoot {
			return walkErr
		}
		rel, err := filepath.Rel(moduleRoot, p)
		if err != nil {
			return err
		}
		candidate, ok := candidatePath(filepath.ToSlash(rel))
		if walkErr != nil {
			if !ok {
				return walkErr
			}
			// Unreadable contents are reported when the bundle is classified.
			logger.Warn("Bundle directory unreadable.", "path", candidate, "error", walkErr)
			return filepath.SkipDir
		}
		if !d.IsDir() || !ok {
			return nil
		}
		if _, wasSeen := seenPaths[candidate]; wasSeen {
			return filepath.SkipDir
		}
		seenPaths[candidate] = struct{}{}

		desc := newDescriptor(candidate)
		if first, clash := seenTitles[desc.Title]; clash {
			logger.Warn("Bundle title already taken, collapsing into the first bundle.", "title", desc.Title, "kept", first, "dropped", candidate)
			return filepath.SkipDir
		}
		seenTitles[desc.Title] = candidate

		logger.Info("Bundle found.", "path", desc.Path, "title", desc.Title)
		bundles = append(bundles, desc)
		// Nested directories resolve to the same candidate.
		return filepath.SkipDir
	})
	if err != nil {
		return nil, &DiscoveryError{Root: moduleRoot, Err: err}
	}

	logger.Debug("Bundle discovery complete.", "count", len(bundles))
	return bundles, nil
}

// candidatePath returns the prefix of rel that ends with the first segment
// carrying the bundle suffix at a non-leading position.
func candidatePath(rel string) (string, bool) {
	segments := strings.Split(rel, "/")
	for i, segment := range segments {
		if strings.Index(segment, Suffix) >= 1 {
			return strings.Join(segments[:i+1], "/"), true
		}
	}
	return "", false
}
