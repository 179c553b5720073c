package asset

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/specialistvlad/assetgrid/internal/bundle"
	"github.com/specialistvlad/assetgrid/internal/config"
	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// Classify builds the manifest of one bundle located below moduleRoot.
//
// It only reads the bundle's own subtree. When that subtree cannot be read
// the returned manifest holds an empty entry for every enabled class and the
// error is a *ClassificationWarning.
func Classify(ctx context.Context, moduleRoot string, b bundle.Descriptor, flags config.GlobFlags) (Manifest, error) {
	logger := ctxlog.FromContext(ctx).With("bundle", b.Path)
	enabled := EnabledClasses(flags)

	dir := filepath.Join(moduleRoot, filepath.FromSlash(b.Path))
	info, err := os.Stat(dir)
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("%s is not a directory", dir)
	}
	if err != nil {
		logger.Warn("Bundle subtree unreadable, using an empty manifest.", "error", err)
		return emptyManifest(enabled), &ClassificationWarning{Bundle: b.Path, Err: err}
	}

	fsys := os.DirFS(dir)
	manifest := make(Manifest, len(enabled))
	for _, class := range enabled {
		files, err := expand(fsys, patterns[class])
		if err != nil {
			logger.Warn("Bundle subtree unreadable, using an empty manifest.", "class", class, "error", err)
			return emptyManifest(enabled), &ClassificationWarning{Bundle: b.Path, Err: err}
		}
		manifest[class] = files
		logger.Info("Classified files.", "class", class, "count", len(files))
	}
	return manifest, nil
}

// expand applies the glob groups in order, recording each file at its first
// match. Matches within a group are sorted so the result is deterministic.
func expand(fsys fs.FS, groups []string) ([]string, error) {
	files := []string{}
	seen := make(map[string]struct{})
	for _, pattern := range groups {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	return files, nil
}

// ClassifyAll classifies every bundle with at most workers classifications
// in flight. Each bundle is classified in isolation and the results are
// merged by bundle title once all complete. Warnings never abort the pass;
// they are returned in bundle order.
func ClassifyAll(ctx context.Context, moduleRoot string, bundles []bundle.Descriptor, flags config.GlobFlags, workers int) (map[string]Manifest, []error) {
	logger := ctxlog.FromContext(ctx)
	if workers < 1 {
		workers = 1
	}

	manifests := make([]Manifest, len(bundles))
	warnings := make([]error, len(bundles))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, b := range bundles {
		g.Go(func() error {
			bundleCtx := ctxlog.With(ctx, "bundle_title", b.Title)
			manifests[i], warnings[i] = Classify(bundleCtx, moduleRoot, b, flags)
			return nil
		})
	}
	_ = g.Wait()

	merged := make(map[string]Manifest, len(bundles))
	var errs []error
	for i, b := range bundles {
		merged[b.Title] = manifests[i]
		if warnings[i] != nil {
			errs = append(errs, warnings[i])
		}
	}
	logger.Debug("Classification pass complete.", "bundles", len(bundles), "warnings", len(errs))
	return merged, errs
}
