package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/assetgrid/internal/step"
	"github.com/specialistvlad/assetgrid/internal/version"
)

// Plan is the result of one planning run. It is never mutated after Plan
// returns it.
type Plan struct {
	Version version.Token
	// Steps are in topological order: every dependency precedes its dependents.
	Steps []*step.Step
	// Errors holds the per-bundle failures; the affected bundles have no steps.
	Errors []error
}

// Bundles returns the titles of the bundles that have steps, in plan order.
func (p *Plan) Bundles() []string {
	var titles []string
	seen := make(map[string]bool)
	for _, s := range p.Steps {
		if s.Bundle == "" || seen[s.Bundle] {
			continue
		}
		seen[s.Bundle] = true
		titles = append(titles, s.Bundle)
	}
	return titles
}

// StepsOf returns the steps owned by the bundle with the given title.
func (p *Plan) StepsOf(title string) []*step.Step {
	var out []*step.Step
	for _, s := range p.Steps {
		if s.Bundle == title {
			out = append(out, s)
		}
	}
	return out
}

// Document is the serialized form of a plan.
type Document struct {
	Version version.Token `json:"version"`
	Steps   []*step.Step  `json:"steps"`
	Errors  []ErrorEntry  `json:"errors"`
}

// ErrorEntry is a serialized per-bundle error.
type ErrorEntry struct {
	Bundle  string `json:"bundle,omitempty"`
	Step    string `json:"step,omitempty"`
	Message string `json:"message"`
}

// Document converts the plan into its serialized form.
func (p *Plan) Document() *Document {
	doc := &Document{
		Version: p.Version,
		Steps:   p.Steps,
		Errors:  make([]ErrorEntry, 0, len(p.Errors)),
	}
	if doc.Steps == nil {
		doc.Steps = []*step.Step{}
	}
	for _, err := range p.Errors {
		entry := ErrorEntry{Message: err.Error()}
		var inconsistent *InconsistencyError
		if errors.As(err, &inconsistent) {
			entry.Bundle = inconsistent.Bundle
			entry.Step = inconsistent.Step
		}
		doc.Errors = append(doc.Errors, entry)
	}
	return doc
}

// Encode writes the plan as indented JSON. Markup placeholders and tags are
// written verbatim rather than HTML-escaped.
func (p *Plan) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p.Document()); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return nil
}

// Decode reads a plan document previously written by Encode.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	return &doc, nil
}
