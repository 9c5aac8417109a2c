// specmodel/definition.go
package specmodel

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Definition is the immutable aggregate of every loaded Category, built
// once per process and held for the process lifetime (spec.md §3
// "Lifecycle"). It is shared by reference among concurrent decodes; nothing
// in this package mutates a Definition after Freeze.
type Definition struct {
	categories map[CategoryID]*Category
	order      []CategoryID
	frozen     bool
}

// NewDefinition creates an empty, mutable Definition for the loader to
// populate.
func NewDefinition() *Definition {
	return &Definition{categories: make(map[CategoryID]*Category)}
}

// AddCategory registers a fully-built, already-validated category.
func (d *Definition) AddCategory(c *Category) error {
	if d.frozen {
		return fmt.Errorf("%w: Definition is frozen, cannot add category %s", ErrSpec, c.ID)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if _, exists := d.categories[c.ID]; exists {
		return fmt.Errorf("%w: category %s already loaded", ErrSpec, c.ID)
	}
	d.categories[c.ID] = c
	d.order = append(d.order, c.ID)
	return nil
}

// Freeze marks the Definition immutable. load_definitions calls this before
// returning (spec.md §3 "Lifecycle": "either the whole catalog loads or
// nothing does").
func (d *Definition) Freeze() { d.frozen = true }

// Category resolves a category id.
func (d *Definition) Category(id CategoryID) (*Category, bool) {
	c, ok := d.categories[id]
	return c, ok
}

// Categories returns every loaded category id in deterministic order
// (supports spec.md §8 P5: "load_definitions called twice with identical
// inputs produces structurally equal Definition objects").
func (d *Definition) Categories() []CategoryID {
	ids := make([]CategoryID, len(d.order))
	copy(ids, d.order)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Fingerprint returns an xxhash-based content fingerprint of this
// Definition's category ids and editions, suitable as a cache key for an
// external consumer deciding whether to reload an unchanged catalog, and as
// the cheap equality check behind the P5 determinism property.
func (d *Definition) Fingerprint() uint64 {
	h := xxhash.New()
	for _, id := range d.Categories() {
		c := d.categories[id]
		fmt.Fprintf(h, "%d:%s:%d\n", id, c.Edition, len(c.order))
	}
	return h.Sum64()
}
