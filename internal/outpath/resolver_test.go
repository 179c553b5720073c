package outpath

import (
	"testing"

	"github.com/specialistvlad/assetgrid/internal/asset"
	"github.com/specialistvlad/assetgrid/internal/step"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	r := New("", "")

	testCases := []struct {
		name  string
		class asset.Class
		kind  step.Kind
		want  string
	}{
		{name: "concatenate script", class: asset.Script, kind: step.Concatenate, want: "generated/foo/js/foo.js"},
		{name: "concatenate style", class: asset.Style, kind: step.Concatenate, want: "generated/foo/css/foo.css"},
		{name: "minify style", class: asset.Style, kind: step.MinifyStyle, want: "generated/foo/css/foo.min.css"},
		{name: "rewrite references", class: asset.Style, kind: step.RewriteReferences, want: "generated/foo/css/foo.rewrite.min.css"},
		{name: "bundle script", class: asset.Script, kind: step.BundleScript, want: "generated/foo/js/foo.browserify.js"},
		{name: "minify script", class: asset.Script, kind: step.MinifyScript, want: "generated/foo/js/foo.min.js"},
		{name: "compress image", class: asset.Image, kind: step.CompressImage, want: "generated/foo/images/"},
		{name: "markup", class: asset.Markup, kind: step.RewriteMarkupReferences, want: "generated/foo/twig/"},
		{name: "copy", kind: step.Copy, want: "web/assets/foo/"},
		{name: "lint has no output", class: asset.Script, kind: step.Lint, want: ""},
		{name: "concatenate image is unknown", class: asset.Image, kind: step.Concatenate, want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Resolve("foo", tc.class, tc.kind))
		})
	}
}

func TestResolveCustomRootsAndVariants(t *testing.T) {
	r := New("build/gen/", "public")

	assert.Equal(t, "build/gen/bar/js/bar.browserify.min.js", r.MinifiedScript("bar", step.BundleScript))
	assert.Equal(t, "build/gen/bar/js/bar.min.js", r.MinifiedScript("bar", step.Concatenate))
	assert.Equal(t, "public/assets/bar/", r.Resolve("bar", "", step.Copy))
	assert.Equal(t, "build/gen/bar/", r.BundleDir("bar"))
}

func TestPublicURLs(t *testing.T) {
	assert.Equal(t, "/assets/css/foo.css?version=3", StyleURL("foo", 3))
	assert.Equal(t, "/assets/js/foo.js?version=0", ScriptURL("foo", 0))
}
