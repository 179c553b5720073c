package bundle

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/assetgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := testutil.NewProject(t, map[string]string{
		"Acme/FooBundle/Resources/public/js/a.js":   "a",
		"Acme/FooBundle/Resources/public/css/b.css": "b",
		"Acme/FooBundle/Controller/Default.php":     "<?php",
		"Acme/BarBundle/":                           "",
		"AppBundle/Resources/views/index.html.twig": "{{ x }}",
		"Library/Util/helper.php":                   "<?php",
	})

	bundles, err := Discover(ctx, root)
	require.NoError(t, err)

	want := []Descriptor{
		{Path: "Acme/BarBundle", Namespace: "AcmeBarBundle", Title: "bar"},
		{Path: "Acme/FooBundle", Namespace: "AcmeFooBundle", Title: "foo"},
		{Path: "AppBundle", Namespace: "AppBundle", Title: "app"},
	}
	if diff := cmp.Diff(want, bundles); diff != "" {
		t.Errorf("Discover() mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscover_NestedMarkersCollapse(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := testutil.NewProject(t, map[string]string{
		"Acme/FooBundle/Tests/Fixtures/DummyBundle/x.php": "<?php",
		"Acme/FooBundle/Resources/public/js/a.js":         "a",
	})

	bundles, err := Discover(ctx, root)
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	assert.Equal(t, "Acme/FooBundle", bundles[0].Path)
}

func TestDiscover_LeadingMarkerIgnored(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := testutil.NewProject(t, map[string]string{
		"Bundles/shared/x.js": "x",
		"bundle/lower/y.js":   "y",
		"Acme/ShopBundleV2/":  "",
	})

	bundles, err := Discover(ctx, root)
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	assert.Equal(t, Descriptor{Path: "Acme/ShopBundleV2", Namespace: "AcmeShopBundleV2", Title: "shop"}, bundles[0])
}

func TestDiscover_TitleClashKeepsFirst(t *testing.T) {
	ctx, buf := testutil.Context(t)
	root := testutil.NewProject(t, map[string]string{
		"Acme/FooBundle/":  "",
		"Other/FooBundle/": "",
	})

	bundles, err := Discover(ctx, root)
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	assert.Equal(t, "Acme/FooBundle", bundles[0].Path)
	assert.Contains(t, buf.String(), "collapsing into the first bundle")
}

func TestDiscover_Idempotent(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := testutil.NewProject(t, map[string]string{
		"Z/ZedBundle/a/b/c.txt": "",
		"A/AlphaBundle/d.txt":   "",
		"M/MidBundle/":          "",
	})

	first, err := Discover(ctx, root)
	require.NoError(t, err)
	second, err := Discover(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"alpha", "mid", "zed"}, titles(first))
}

func TestDiscover_MatchesIndependentWalk(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := testutil.NewProject(t, map[string]string{
		"Acme/FooBundle/Resources/public/js/a.js": "",
		"Acme/FooBundle/Resources/views/x.twig":   "",
		"Acme/Sub/BarBundle/Entity/E.php":         "",
		"BazBundle/Tests/QuxBundle/y.php":         "",
		"Vendor/Lib/z.php":                        "",
	})

	bundles, err := Discover(ctx, root)
	require.NoError(t, err)

	// Independent count of distinct module paths.
	distinct := make(map[string]struct{})
	require.NoError(t, filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		if !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(root, p)
		parts := strings.Split(filepath.ToSlash(rel), "/")
		for i, part := range parts {
			if idx := strings.Index(part, "Bundle"); idx > 0 {
				distinct[strings.Join(parts[:i+1], "/")] = struct{}{}
				break
			}
		}
		return nil
	}))

	assert.Len(t, bundles, len(distinct))
	seen := make(map[string]bool)
	for _, b := range bundles {
		assert.False(t, seen[b.Title], "duplicate title %q", b.Title)
		seen[b.Title] = true
	}
}

func TestDiscover_Errors(t *testing.T) {
	ctx, _ := testutil.Context(t)

	t.Run("missing root", func(t *testing.T) {
		_, err := Discover(ctx, filepath.Join(t.TempDir(), "src"))
		var discErr *DiscoveryError
		require.True(t, errors.As(err, &discErr))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("root is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "src")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		bundles, err := Discover(ctx, file)
		var discErr *DiscoveryError
		require.True(t, errors.As(err, &discErr))
		assert.Nil(t, bundles)
	})
}

func TestNewDescriptor(t *testing.T) {
	testCases := []struct {
		candidate string
		want      Descriptor
	}{
		{"FooBundle", Descriptor{Path: "FooBundle", Namespace: "FooBundle", Title: "foo"}},
		{"Acme/Blog/PostBundle", Descriptor{Path: "Acme/Blog/PostBundle", Namespace: "AcmeBlogPostBundle", Title: "post"}},
		{"Acme/UserBundleExtra", Descriptor{Path: "Acme/UserBundleExtra", Namespace: "AcmeUserBundleExtra", Title: "user"}},
	}
	for _, tc := range testCases {
		t.Run(tc.candidate, func(t *testing.T) {
			assert.Equal(t, tc.want, newDescriptor(tc.candidate))
		})
	}
}

func titles(bundles []Descriptor) []string {
	out := make([]string, 0, len(bundles))
	for _, b := range bundles {
		out = append(out, b.Title)
	}
	return out
}

func TestDiscover_UnreadableBundleContents(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	ctx, _ := testutil.Context(t)
	root := testutil.NewProject(t, map[string]string{
		"Acme/BarBundle/Resources/public/js/b.js": "b",
		"Acme/FooBundle/Resources/public/js/a.js": "a",
		"Acme/LockedBundle/":                      "",
	})
	for _, dir := range []string{"Acme/BarBundle/Resources", "Acme/LockedBundle"} {
		path := filepath.Join(root, filepath.FromSlash(dir))
		require.NoError(t, os.Chmod(path, 0o000))
		t.Cleanup(func() { _ = os.Chmod(path, 0o755) })
	}

	bundles, err := Discover(ctx, root)
	require.NoError(t, err)

	var titles []string
	for _, b := range bundles {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{"bar", "foo", "locked"}, titles)
}

func TestDiscover_UnreadableOutsideBundlesIsFatal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	ctx, _ := testutil.Context(t)
	root := testutil.NewProject(t, map[string]string{
		"Acme/FooBundle/Resources/public/js/a.js": "a",
	})
	acme := filepath.Join(root, "Acme")
	require.NoError(t, os.Chmod(acme, 0o000))
	t.Cleanup(func() { _ = os.Chmod(acme, 0o755) })

	_, err := Discover(ctx, root)
	var discoveryErr *DiscoveryError
	require.True(t, errors.As(err, &discoveryErr), "expected a DiscoveryError, got %v", err)
}
