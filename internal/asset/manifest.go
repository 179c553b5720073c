package asset

// Manifest maps an asset class to the ordered, bundle-relative paths of its
// files. A class that was classified but matched nothing maps to an empty,
// non-nil slice; a disabled class has no entry at all.
type Manifest map[Class][]string

// Has reports whether class c was classified.
func (m Manifest) Has(c Class) bool {
	_, ok := m[c]
	return ok
}

// Files returns the files of class c and whether the class was classified.
func (m Manifest) Files(c Class) ([]string, bool) {
	files, ok := m[c]
	return files, ok
}

// NonEmpty reports whether class c was classified and matched at least one file.
func (m Manifest) NonEmpty(c Class) bool {
	return len(m[c]) > 0
}

// emptyManifest returns a manifest with an empty entry for every class.
func emptyManifest(classes []Class) Manifest {
	m := make(Manifest, len(classes))
	for _, c := range classes {
		m[c] = []string{}
	}
	return m
}
