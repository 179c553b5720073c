package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex is used to validate a single segment of an address.
var segmentRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	return name != "-" && name != "_"
}

func validateSegment(part, value string) error {
	if value == "" {
		return fmt.Errorf("%s segment cannot be empty", part)
	}
	if !segmentRegex.MatchString(value) {
		return fmt.Errorf("invalid %s segment format: %q", part, value)
	}
	if !isValidSegmentName(value) {
		return fmt.Errorf("invalid %s segment name: %q", part, value)
	}
	return nil
}

// New builds a validated Address. The variant may be empty.
func New(scope, kind, variant string) (Address, error) {
	if err := validateSegment("scope", scope); err != nil {
		return Address{}, err
	}
	if err := validateSegment("kind", kind); err != nil {
		return Address{}, err
	}
	if variant != "" {
		if err := validateSegment("variant", variant); err != nil {
			return Address{}, err
		}
	}
	return Address{Scope: scope, Kind: kind, Variant: variant}, nil
}

// MustNew is like New but panics on an invalid address. It is meant for
// identifiers assembled from constants.
func MustNew(scope, kind, variant string) Address {
	addr, err := New(scope, kind, variant)
	if err != nil {
		panic(err)
	}
	return addr
}

// Parse creates a new Address by parsing its canonical string representation.
func Parse(rawID string) (Address, error) {
	if rawID == "" {
		return Address{}, fmt.Errorf("identifier cannot be empty")
	}

	parts := strings.Split(rawID, ".")
	switch len(parts) {
	case 2:
		return New(parts[0], parts[1], "")
	case 3:
		if parts[2] == "" {
			return Address{}, fmt.Errorf("identifier contains empty segment")
		}
		return New(parts[0], parts[1], parts[2])
	default:
		return Address{}, fmt.Errorf("identifier %q must have 2 or 3 segments, got %d", rawID, len(parts))
	}
}
