// Package outpath computes where generated and deployed artifacts live.
//
// All functions are pure: the same inputs always yield the same slash
// separated path, and nothing touches the filesystem.
package outpath

import (
	"fmt"
	"path"

	"github.com/specialistvlad/assetgrid/internal/asset"
	"github.com/specialistvlad/assetgrid/internal/step"
	"github.com/specialistvlad/assetgrid/internal/version"
)

const (
	DefaultGeneratedRoot = "generated"
	DefaultPublicRoot    = "web"
)

// Resolver maps bundle artifacts to paths below its roots.
type Resolver struct {
	GeneratedRoot string
	PublicRoot    string
}

// New returns a Resolver, substituting the defaults for empty roots.
func New(generatedRoot, publicRoot string) Resolver {
	if generatedRoot == "" {
		generatedRoot = DefaultGeneratedRoot
	}
	if publicRoot == "" {
		publicRoot = DefaultPublicRoot
	}
	return Resolver{GeneratedRoot: path.Clean(generatedRoot), PublicRoot: path.Clean(publicRoot)}
}

// Resolve returns the output of the step of the given kind for bundle title.
// Steps without an output, and unknown combinations, yield "".
//
// A minify-script step resolves to the plain minified script; use
// MinifiedScript to pick the browserify variant.
func (r Resolver) Resolve(title string, class asset.Class, kind step.Kind) string {
	switch kind {
	case step.Concatenate:
		switch class {
		case asset.Script:
			return r.gen(title, "js", title+".js")
		case asset.Style:
			return r.gen(title, "css", title+".css")
		}
	case step.MinifyStyle:
		return r.gen(title, "css", title+".min.css")
	case step.RewriteReferences:
		return r.gen(title, "css", title+".rewrite.min.css")
	case step.BundleScript:
		return r.gen(title, "js", title+".browserify.js")
	case step.MinifyScript:
		return r.MinifiedScript(title, step.Concatenate)
	case step.CompressImage:
		return dir(r.gen(title, "images"))
	case step.RewriteMarkupReferences:
		return dir(r.gen(title, "twig"))
	case step.Copy:
		return dir(path.Join(r.PublicRoot, "assets", title))
	}
	return ""
}

// MinifiedScript returns the minified script produced from the given script
// variant (concatenate or bundle-script).
func (r Resolver) MinifiedScript(title string, variant step.Kind) string {
	if variant == step.BundleScript {
		return r.gen(title, "js", title+".browserify.min.js")
	}
	return r.gen(title, "js", title+".min.js")
}

// BundleDir returns the generated directory holding every artifact of title.
func (r Resolver) BundleDir(title string) string {
	return dir(r.gen(title))
}

func (r Resolver) gen(title string, elem ...string) string {
	return path.Join(append([]string{r.GeneratedRoot, title}, elem...)...)
}

func dir(p string) string {
	return p + "/"
}

// StyleURL is the public, cache-busted URL of a bundle's stylesheet.
func StyleURL(title string, v version.Token) string {
	return fmt.Sprintf("/assets/css/%s.css?version=%s", title, v)
}

// ScriptURL is the public, cache-busted URL of a bundle's script.
func ScriptURL(title string, v version.Token) string {
	return fmt.Sprintf("/assets/js/%s.js?version=%s", title, v)
}
