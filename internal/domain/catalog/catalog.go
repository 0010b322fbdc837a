// Package catalog holds the static table of eco-friendly activities.
//
// A Catalog is validated once at construction and is read-only afterwards,
// so it can be shared freely between goroutines.
package catalog

import (
	"strings"
)

// ActivityDefinition is one catalog entry. Simple activities are keyed by a
// detector label; compound activities carry the two component labels that
// must co-occur.
type ActivityDefinition struct {
	Key         string
	Points      int
	Description string
	Icon        string
	Components  []string
}

// IsCompound reports whether the definition requires two component labels.
func (d ActivityDefinition) IsCompound() bool {
	return len(d.Components) > 0
}

// CompoundRule is the (ComponentA, ComponentB) -> Key trigger of a compound activity.
type CompoundRule struct {
	ComponentA string
	ComponentB string
	Key        string
}

// Catalog is an ordered, immutable mapping from activity key to definition.
type Catalog struct {
	defs     []ActivityDefinition
	index    map[string]int
	compound []CompoundRule
	simple   map[string]struct{}
}

// Option tunes catalog construction.
type Option func(*builder)

type builder struct {
	detectorLabels map[string]struct{}
}

// WithDetectorLabels registers labels the detector can emit that have no simple
// activity of their own but may appear as compound components (e.g. "person").
func WithDetectorLabels(labels ...string) Option {
	return func(b *builder) {
		for _, l := range labels {
			if l = strings.TrimSpace(l); l != "" {
				b.detectorLabels[l] = struct{}{}
			}
		}
	}
}

// New builds a catalog from definitions in declaration order. Every compound
// component must be a simple key of the same catalog.
func New(defs ...ActivityDefinition) (*Catalog, error) {
	return NewWithOptions(nil, defs...)
}

// NewWithOptions builds a catalog, applying opts before validation.
func NewWithOptions(opts []Option, defs ...ActivityDefinition) (*Catalog, error) {
	b := &builder{detectorLabels: make(map[string]struct{})}
	for _, opt := range opts {
		opt(b)
	}

	c := &Catalog{
		defs:   make([]ActivityDefinition, 0, len(defs)),
		index:  make(map[string]int, len(defs)),
		simple: make(map[string]struct{}),
	}

	for _, d := range defs {
		if strings.TrimSpace(d.Key) == "" {
			return nil, configErr("", "activity key must not be empty")
		}
		if _, dup := c.index[d.Key]; dup {
			return nil, configErr(d.Key, "duplicate activity key")
		}
		if d.Points < 0 {
			return nil, configErr(d.Key, "points must be non-negative, got %d", d.Points)
		}
		if d.IsCompound() && len(d.Components) != 2 {
			return nil, configErr(d.Key, "compound activity needs exactly two components, got %d", len(d.Components))
		}

		d.Components = append([]string(nil), d.Components...)
		c.index[d.Key] = len(c.defs)
		c.defs = append(c.defs, d)
		if !d.IsCompound() {
			c.simple[d.Key] = struct{}{}
		}
	}

	// Components are checked once every key is known so declaration order
	// between a compound and its simple components does not matter.
	for _, d := range c.defs {
		if !d.IsCompound() {
			continue
		}
		a, bl := d.Components[0], d.Components[1]
		for _, comp := range d.Components {
			if strings.TrimSpace(comp) == "" {
				return nil, configErr(d.Key, "compound component must not be empty")
			}
			if i, ok := c.index[comp]; ok && c.defs[i].IsCompound() {
				return nil, configErr(d.Key, "component %q is itself a compound activity", comp)
			}
			_, simple := c.simple[comp]
			_, external := b.detectorLabels[comp]
			if !simple && !external {
				return nil, configErr(d.Key, "component %q is not a known detector label", comp)
			}
		}
		if a == bl {
			return nil, configErr(d.Key, "compound components must differ")
		}
		c.compound = append(c.compound, CompoundRule{ComponentA: a, ComponentB: bl, Key: d.Key})
	}

	return c, nil
}

// MustNew is New that panics on error. Intended for package-level defaults and tests.
func MustNew(defs ...ActivityDefinition) *Catalog {
	c, err := New(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the definition for key.
func (c *Catalog) Lookup(key string) (ActivityDefinition, bool) {
	if c == nil {
		return ActivityDefinition{}, false
	}
	i, ok := c.index[key]
	if !ok {
		return ActivityDefinition{}, false
	}
	return clone(c.defs[i]), true
}

// CompoundRules returns compound triggers in declaration order.
func (c *Catalog) CompoundRules() []CompoundRule {
	if c == nil {
		return nil
	}
	return append([]CompoundRule(nil), c.compound...)
}

// SimpleKeys returns every key that is not a compound key.
func (c *Catalog) SimpleKeys() map[string]struct{} {
	out := make(map[string]struct{})
	if c == nil {
		return out
	}
	for k := range c.simple {
		out[k] = struct{}{}
	}
	return out
}

// IsSimple reports whether label maps directly to a simple activity.
func (c *Catalog) IsSimple(label string) bool {
	if c == nil {
		return false
	}
	_, ok := c.simple[label]
	return ok
}

// Len returns the number of activities.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.defs)
}

// Definitions returns every activity in declaration order.
func (c *Catalog) Definitions() []ActivityDefinition {
	return c.filter(func(ActivityDefinition) bool { return true })
}

// Simple returns the simple activities in declaration order.
func (c *Catalog) Simple() []ActivityDefinition {
	return c.filter(func(d ActivityDefinition) bool { return !d.IsCompound() })
}

// Compound returns the compound activities in declaration order.
func (c *Catalog) Compound() []ActivityDefinition {
	return c.filter(ActivityDefinition.IsCompound)
}

func (c *Catalog) filter(keep func(ActivityDefinition) bool) []ActivityDefinition {
	if c == nil {
		return nil
	}
	out := make([]ActivityDefinition, 0, len(c.defs))
	for _, d := range c.defs {
		if keep(d) {
			out = append(out, clone(d))
		}
	}
	return out
}

func clone(d ActivityDefinition) ActivityDefinition {
	d.Components = append([]string(nil), d.Components...)
	return d
}
