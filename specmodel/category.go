// specmodel/category.go
package specmodel

import "fmt"

// CategoryID is an ASTERIX category number, 1..255.
type CategoryID uint8

func (c CategoryID) String() string {
	return fmt.Sprintf("CAT%03d", uint8(c))
}

// UAPSelector picks a non-default UAP for a record based on the bytes
// decoded for the first present item (e.g. some CAT048 dialects branch on
// the SAC/SIC tuple of I010). It is carried as spec data rather than
// decoder logic, per spec.md §9(a): the selector rule lives in the spec
// model, the decoder only invokes it.
type UAPSelector func(firstItemRaw []byte) (uapName string, ok bool)

// Category is the root of one loaded category specification: an edition, an
// ordered, id-unique set of data item descriptions, and one or more UAPs
// (exactly one of which is the default).
type Category struct {
	ID      CategoryID
	Edition string

	items   map[string]*DataItemDescription
	order   []string // insertion order, for deterministic iteration (P5)
	uaps    map[string]*UAP
	uapOrd  []string
	defUAP  string
	Selector UAPSelector
}

// NewCategory creates an empty category shell; items and UAPs are added by
// the loader as it walks the XML tree.
func NewCategory(id CategoryID, edition string) *Category {
	return &Category{
		ID:      id,
		Edition: edition,
		items:   make(map[string]*DataItemDescription),
		uaps:    make(map[string]*UAP),
	}
}

// AddItem registers a data item description under this category. Returns
// ErrDuplicateItemID if the id was already registered.
func (c *Category) AddItem(item *DataItemDescription) error {
	if _, exists := c.items[item.ID]; exists {
		return fmt.Errorf("%w: %s in category %s", ErrDuplicateItemID, item.ID, c.ID)
	}
	item.category = c
	c.items[item.ID] = item
	c.order = append(c.order, item.ID)
	return nil
}

// Item resolves a data item id to its description. This is the "weak
// reference is a lookup key" pattern of spec.md §9: nested format nodes
// store only the item id and resolve it through the owning category on
// demand, never a pointer.
func (c *Category) Item(id string) (*DataItemDescription, bool) {
	d, ok := c.items[id]
	return d, ok
}

// Items returns all item ids in deterministic (insertion) order.
func (c *Category) Items() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// AddUAP registers a named UAP. The first UAP added, or the one explicitly
// marked default, becomes the category's default.
func (c *Category) AddUAP(name string, uap *UAP, isDefault bool) error {
	if _, exists := c.uaps[name]; exists {
		return fmt.Errorf("%w: duplicate UAP name %q in category %s", ErrSpec, name, c.ID)
	}
	c.uaps[name] = uap
	c.uapOrd = append(c.uapOrd, name)
	if isDefault || c.defUAP == "" {
		c.defUAP = name
	}
	return nil
}

// DefaultUAP returns the category's default UAP.
func (c *Category) DefaultUAP() (*UAP, bool) {
	u, ok := c.uaps[c.defUAP]
	return u, ok
}

// UAPByName resolves a named UAP (used by the UAPSelector branch, spec.md
// §4.3.1).
func (c *Category) UAPByName(name string) (*UAP, bool) {
	u, ok := c.uaps[name]
	return u, ok
}

// Validate checks the category-level invariants from spec.md §3: item ids
// unique within the category (enforced incrementally by AddItem), at least
// one UAP marked default, and every UAP entry's item id resolves within
// this category (§4.2 invariant 6).
func (c *Category) Validate() error {
	if len(c.uaps) == 0 {
		return fmt.Errorf("%w: category %s has no UAP", ErrSpec, c.ID)
	}
	if _, ok := c.DefaultUAP(); !ok {
		return fmt.Errorf("%w: category %s has no default UAP", ErrSpec, c.ID)
	}
	for _, name := range c.uapOrd {
		uap := c.uaps[name]
		for _, e := range uap.Entries {
			if e.Spare() {
				continue
			}
			if _, ok := c.Item(e.ItemID); !ok {
				return fmt.Errorf("%w: UAP %q FRN %d references undefined item %s in category %s", ErrSpec, name, e.FRN, e.ItemID, c.ID)
			}
		}
	}
	return nil
}
