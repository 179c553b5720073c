// Package diff compares the plan of the current run with the previous one.
// It renders unified patches with github.com/pmezard/go-difflib/difflib and
// reports which bundles changed shape between runs.
package diff

import (
	"fmt"
	"sort"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
	"github.com/specialistvlad/assetgrid/internal/plan"
)

// DefaultContext is the number of context lines in unified hunks.
const DefaultContext = 3

// Unified produces a unified patch turning a into b. Identical inputs yield "".
func Unified(aName, bName string, a, b []byte, context int) (string, error) {
	if string(a) == string(b) {
		return "", nil
	}
	if context <= 0 {
		context = DefaultContext
	}

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(a)),
		B:        splitLinesKeepNL(string(b)),
		FromFile: aName,
		ToFile:   bName,
		Context:  context,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("failed to diff %s and %s: %w", aName, bName, err)
	}
	return s, nil
}

// splitLinesKeepNL splits into lines and keeps newline characters,
// which produces better unified hunks.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}

// ChangedBundles returns the sorted titles of the bundles whose steps differ
// between prev and next. Options are ignored because they embed the version
// token, which changes on every run. A nil prev marks every bundle of next
// as changed; bundles that disappeared are reported as well.
func ChangedBundles(prev, next *plan.Document) []string {
	before := fingerprints(prev)
	after := fingerprints(next)

	changed := make(map[string]struct{})
	for title, fp := range after {
		if old, ok := before[title]; !ok || old != fp {
			changed[title] = struct{}{}
		}
	}
	for title := range before {
		if _, ok := after[title]; !ok {
			changed[title] = struct{}{}
		}
	}

	out := make([]string, 0, len(changed))
	for title := range changed {
		out = append(out, title)
	}
	sort.Strings(out)
	return out
}

// fingerprints renders the structure of every bundle's steps as a string.
func fingerprints(doc *plan.Document) map[string]string {
	out := make(map[string]string)
	if doc == nil {
		return out
	}
	builders := make(map[string]*strings.Builder)
	for _, s := range doc.Steps {
		if s.Bundle == "" {
			continue
		}
		sb, ok := builders[s.Bundle]
		if !ok {
			sb = &strings.Builder{}
			builders[s.Bundle] = sb
		}
		deps := make([]string, 0, len(s.DependsOn))
		for _, d := range s.DependsOn {
			deps = append(deps, d.String())
		}
		fmt.Fprintf(sb, "%s|%s|%s|%s|%s|%s|%t\n",
			s.Key(), s.Kind, s.Class, strings.Join(s.Inputs, ","), s.Output, strings.Join(deps, ","), s.NoOp)
	}
	for title, sb := range builders {
		out[title] = sb.String()
	}
	return out
}
