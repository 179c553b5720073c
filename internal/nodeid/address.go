package nodeid

import "strings"

// String serializes the Address into its canonical dotted representation.
func (a Address) String() string {
	var sb strings.Builder
	sb.WriteString(a.Scope)
	sb.WriteRune('.')
	sb.WriteString(a.Kind)
	if a.Variant != "" {
		sb.WriteRune('.')
		sb.WriteString(a.Variant)
	}
	return sb.String()
}

// IsZero reports whether the address has not been set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// IsProject reports whether the address belongs to a project-level step.
func (a Address) IsProject() bool {
	return a.Scope == ProjectScope
}

// MarshalText implements encoding.TextMarshaler so addresses serialize as
// their canonical string.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
