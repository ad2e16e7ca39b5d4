package catalog

import (
	"fmt"

	"github.com/GriffinCanCode/specfn/internal/rules"
)

// Builder collects descriptors and their rules. It is not safe for
// concurrent use; Build produces the immutable Catalog.
type Builder struct {
	order []string
	descs map[string]Descriptor
	rules map[string][]rules.Rule
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		descs: make(map[string]Descriptor),
		rules: make(map[string][]rules.Rule),
	}
}

// Register adds a descriptor together with its rewrite rules, which must be
// owned by the descriptor.
func (b *Builder) Register(d Descriptor, rs ...rules.Rule) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, exists := b.descs[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFunction, d.Name)
	}
	for _, r := range rs {
		if r.Owner != d.Name {
			return fmt.Errorf("%w: rule %q is owned by %s, not %s", rules.ErrInvalidRule, r.Source, r.Owner, d.Name)
		}
	}
	b.order = append(b.order, d.Name)
	b.descs[d.Name] = d
	b.rules[d.Name] = append(b.rules[d.Name], rs...)
	return nil
}

// AddRules appends rules to already registered functions.
func (b *Builder) AddRules(rs ...rules.Rule) error {
	for _, r := range rs {
		if _, ok := b.descs[r.Owner]; !ok {
			return fmt.Errorf("%w: %s (rule %q)", ErrUnknownFunction, r.Owner, r.Source)
		}
	}
	for _, r := range rs {
		b.rules[r.Owner] = append(b.rules[r.Owner], r)
	}
	return nil
}

// Build freezes the builder into a Catalog.
func (b *Builder) Build() (*Catalog, error) {
	var all []rules.Rule
	for _, name := range b.order {
		all = append(all, b.rules[name]...)
	}
	store, err := rules.NewStore(all...)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		names: append([]string(nil), b.order...),
		descs: make(map[string]Descriptor, len(b.descs)),
		store: store,
	}
	for name, d := range b.descs {
		c.descs[name] = d
	}
	return c, nil
}

// Catalog is the read-only table of function descriptors and rules. It is
// safe for concurrent use.
type Catalog struct {
	names []string
	descs map[string]Descriptor
	store *rules.Store
}

// Lookup returns the descriptor registered under name.
func (c *Catalog) Lookup(name string) (Descriptor, error) {
	d, ok := c.descs[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return d, nil
}

// Has reports whether name is registered.
func (c *Catalog) Has(name string) bool {
	_, ok := c.descs[name]
	return ok
}

// Names returns the registered names in registration order.
func (c *Catalog) Names() []string { return append([]string(nil), c.names...) }

// Rules returns the rule store.
func (c *Catalog) Rules() *rules.Store { return c.store }

// Len returns the number of registered functions.
func (c *Catalog) Len() int { return len(c.names) }
