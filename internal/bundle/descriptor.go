package bundle

import (
	"path"
	"strings"
)

// Suffix is the case-sensitive marker that identifies a bundle directory.
const Suffix = "Bundle"

// Descriptor identifies one discovered bundle. Descriptors are immutable once
// returned by Discover.
type Descriptor struct {
	// Path is the slash-separated path relative to the module root.
	Path string
	// Namespace is Path with the separators removed.
	Namespace string
	// Title is the lower-cased short name used in generated identifiers.
	Title string
}

// newDescriptor derives the namespace and title from a candidate path.
func newDescriptor(candidate string) Descriptor {
	last := path.Base(candidate)
	title := last
	if idx := strings.Index(last, Suffix); idx >= 1 {
		title = last[:idx]
	}
	return Descriptor{
		Path:      candidate,
		Namespace: strings.ReplaceAll(candidate, "/", ""),
		Title:     strings.ToLower(title),
	}
}

// String returns the bundle path.
func (d Descriptor) String() string {
	return d.Path
}
