// specmodel/compound.go
package specmodel

import "fmt"

// CompoundNode is a Variable-shaped primary subfield whose set bits select
// which Children follow, in order (spec.md §3 "Compound"). Child i
// corresponds to the i-th non-FX bit position of the primary, 1-origin
// MSB-first.
type CompoundNode struct {
	Primary  *VariableNode
	Children []FormatNode
}

// NewCompoundNode validates invariant 4 of spec.md §4.2: Compound declares
// the same number of children as the primary has non-FX bit positions.
func NewCompoundNode(primary *VariableNode, children []FormatNode) (*CompoundNode, error) {
	if primary == nil {
		return nil, fmt.Errorf("%w: Compound primary is required", ErrSpec)
	}
	if want := primary.NonFXBitCount(); len(children) != want {
		return nil, fmt.Errorf("%w: Compound declares %d children, primary has %d non-FX bit positions",
			ErrSpec, len(children), want)
	}
	return &CompoundNode{Primary: primary, Children: children}, nil
}

func (n *CompoundNode) MinByteWidth() int { return n.Primary.MinByteWidth() }

func (n *CompoundNode) Describe() string {
	return fmt.Sprintf("Compound(%d children)", len(n.Children))
}

// Decode decodes the primary, then each child in order for every set,
// non-FX bit position. A position beyond the declared children yields
// ErrCompoundUndefined and stops decoding this item, retaining whatever was
// decoded so far (spec.md §4.3.3).
func (n *CompoundNode) Decode(cur *Cursor) (DecodedItem, error) {
	primary, err := n.Primary.Decode(cur)
	if err != nil {
		return DecodedItem{Kind: KindCompound}, err
	}
	out := DecodedItem{Kind: KindCompound, Children: make(map[int]DecodedItem)}

	for _, k := range SetBits(primary) {
		if k > len(n.Children) {
			return out, fmt.Errorf("%w: bit position %d, only %d children declared", ErrCompoundUndefined, k, len(n.Children))
		}
		child, err := n.Children[k-1].Decode(cur)
		if err != nil {
			return out, err
		}
		out.Children[k] = child
		out.ChildOrder = append(out.ChildOrder, k)
	}
	return out, nil
}
