package nodeid

// ProjectScope is the scope used by steps that do not belong to a bundle.
const ProjectScope = "project"

// Address is the structured representation of a unique step identifier.
type Address struct {
	// Scope is the owning bundle title, or ProjectScope.
	Scope string
	// Kind is the step kind, e.g. "minify-style".
	Kind string
	// Variant distinguishes steps of the same kind within one scope, e.g.
	// the asset class of a concatenation. Empty when not needed.
	Variant string
}
