// Package scoring resolves detected object labels into eco-points.
package scoring

import (
	"sort"

	"github.com/okian/ecopoints/internal/domain/catalog"
)

// Result is the outcome of resolving one detection sequence.
type Result struct {
	// TotalPoints is the sum of the credited activities' points.
	TotalPoints int
	// Activities lists credited keys: compound matches in catalog order,
	// then simple matches in detection order.
	Activities []string
	// ConsumedLabels holds the components already attributed to a compound match.
	ConsumedLabels map[string]struct{}
}

// Consumed reports whether label was attributed to a compound activity.
func (r Result) Consumed(label string) bool {
	_, ok := r.ConsumedLabels[label]
	return ok
}

// ConsumedList returns the consumed labels sorted, for stable output.
func (r Result) ConsumedList() []string {
	out := make([]string, 0, len(r.ConsumedLabels))
	for l := range r.ConsumedLabels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Resolve scores a detection sequence against c. It never fails: unknown
// labels are ignored and a nil catalog behaves like an empty one.
//
// Compound rules are tried first, in declaration order. A rule fires only when
// both components were detected and neither was consumed by an earlier rule,
// so a shared component (typically "person") goes to the first declared match.
// Consumed labels are never credited again as simple activities, and each
// simple label is credited once however often it was detected.
func Resolve(labels []string, c *catalog.Catalog) Result {
	res := Result{
		Activities:     []string{},
		ConsumedLabels: make(map[string]struct{}),
	}

	present := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		present[l] = struct{}{}
	}

	for _, rule := range c.CompoundRules() {
		if !has(present, rule.ComponentA) || !has(present, rule.ComponentB) {
			continue
		}
		if res.Consumed(rule.ComponentA) || res.Consumed(rule.ComponentB) {
			continue
		}
		def, _ := c.Lookup(rule.Key)
		res.TotalPoints += def.Points
		res.Activities = append(res.Activities, rule.Key)
		res.ConsumedLabels[rule.ComponentA] = struct{}{}
		res.ConsumedLabels[rule.ComponentB] = struct{}{}
	}

	credited := make(map[string]struct{})
	for _, l := range labels {
		if !c.IsSimple(l) || res.Consumed(l) || has(credited, l) {
			continue
		}
		def, _ := c.Lookup(l)
		res.TotalPoints += def.Points
		res.Activities = append(res.Activities, l)
		credited[l] = struct{}{}
	}

	return res
}

// Distinct returns labels with duplicates removed, keeping first occurrences.
func Distinct(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if has(seen, l) {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

func has(set map[string]struct{}, k string) bool {
	_, ok := set[k]
	return ok
}
