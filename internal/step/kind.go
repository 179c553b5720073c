package step

import "fmt"

// Kind identifies what a step does. The set is closed; executors switch on it.
type Kind string

const (
	Concatenate             Kind = "concatenate"
	BundleScript            Kind = "bundle-script"
	MinifyStyle             Kind = "minify-style"
	MinifyScript            Kind = "minify-script"
	RewriteReferences       Kind = "rewrite-references"
	RewriteMarkupReferences Kind = "rewrite-markup-references"
	CompressImage           Kind = "compress-image"
	Copy                    Kind = "copy"
	Lint                    Kind = "lint"
	Shell                   Kind = "shell"
)

var kinds = []Kind{
	Concatenate, BundleScript, MinifyStyle, MinifyScript, RewriteReferences,
	RewriteMarkupReferences, CompressImage, Copy, Lint, Shell,
}

// Kinds returns every known step kind.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Diagnostic reports whether steps of this kind only inspect their inputs.
// Diagnostic steps have no output; only a bundle's copy step waits for them.
func (k Kind) Diagnostic() bool {
	return k == Lint
}

// UnmarshalText rejects unknown kinds.
func (k *Kind) UnmarshalText(text []byte) error {
	v := Kind(text)
	if !v.Valid() {
		return fmt.Errorf("unknown step kind %q", text)
	}
	*k = v
	return nil
}
