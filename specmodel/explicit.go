// specmodel/explicit.go
package specmodel

import "fmt"

// ExplicitNode is a 1-octet inclusive length L followed by L-1 bytes
// interpreted by Inner (spec.md §3 "Explicit").
type ExplicitNode struct {
	Inner FormatNode
}

func NewExplicitNode(inner FormatNode) (*ExplicitNode, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: Explicit inner format node is required", ErrSpec)
	}
	return &ExplicitNode{Inner: inner}, nil
}

func (n *ExplicitNode) MinByteWidth() int { return 1 }

func (n *ExplicitNode) Describe() string {
	return fmt.Sprintf("Explicit(inner=%s)", n.Inner.Describe())
}

// Decode enforces 3 <= L <= remaining (spec.md §4.3.3: the lower bound is
// ASTERIX-conventional, the upper bound is the security-critical one) BEFORE
// slicing the inner payload. Any bytes of that slice that Inner leaves
// unconsumed are retained raw, not discarded.
func (n *ExplicitNode) Decode(cur *Cursor) (DecodedItem, error) {
	lenByte, ok := cur.Take(1)
	if !ok {
		return DecodedItem{}, fmt.Errorf("%w: no bytes remaining for Explicit length", ErrMalformedItem)
	}
	l := int(lenByte[0])
	if l < 3 {
		return DecodedItem{}, fmt.Errorf("%w: Explicit length %d < 3", ErrExplicitLength, l)
	}
	if l-1 > cur.Remaining() {
		return DecodedItem{}, fmt.Errorf("%w: Explicit length %d exceeds %d remaining bytes", ErrExplicitLength, l, cur.Remaining())
	}

	innerBytes, _ := cur.Take(l - 1)
	innerCur := NewCursor(innerBytes)
	inner, err := n.Inner.Decode(innerCur)
	out := DecodedItem{Kind: KindExplicit, Inner: &inner}
	if err != nil {
		return out, err
	}
	if innerCur.Remaining() > 0 {
		trailing, _ := innerCur.Take(innerCur.Remaining())
		out.RawTrailing = trailing
		return out, fmt.Errorf("%w: %d bytes", ErrExplicitTrailing, len(trailing))
	}
	return out, nil
}
