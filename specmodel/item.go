// specmodel/item.go
package specmodel

// Rule states whether a data item must, may, or conditionally appears in a
// record (spec.md §3).
type Rule uint8

const (
	Mandatory Rule = iota
	Optional
	Conditional
)

func (r Rule) String() string {
	switch r {
	case Mandatory:
		return "Mandatory"
	case Conditional:
		return "Conditional"
	default:
		return "Optional"
	}
}

// DataItemDescription is (id, name, definition, format-node, rule) —
// spec.md §3. It owns exactly one format node, its root.
type DataItemDescription struct {
	ID         string // e.g. "048/010"
	Name       string
	Definition string
	Format     FormatNode
	Rule       Rule

	category *Category // set by Category.AddItem; a stored pointer, never serialized
}

// Category returns the owning category, the pointer stored by
// Category.AddItem.
func (d *DataItemDescription) Category() *Category { return d.category }
