// specmodel/fixed.go
package specmodel

import "fmt"

// FixedNode is a run of exactly LenBytes, carved into named bit fields by
// Bits (spec.md §3 "Fixed").
type FixedNode struct {
	LenBytes int
	Bits     []DataItemBits
}

// NewFixedNode validates every declared bit field against lenBytes (spec.md
// §4.2 invariant 1) and returns the node, or a load-time error.
func NewFixedNode(lenBytes int, bits []DataItemBits) (*FixedNode, error) {
	if lenBytes < 1 {
		return nil, fmt.Errorf("%w: Fixed length must be >= 1, got %d", ErrSpec, lenBytes)
	}
	for _, b := range bits {
		if err := b.Validate(lenBytes); err != nil {
			return nil, err
		}
	}
	return &FixedNode{LenBytes: lenBytes, Bits: bits}, nil
}

func (n *FixedNode) MinByteWidth() int { return n.LenBytes }

func (n *FixedNode) Describe() string {
	return fmt.Sprintf("Fixed(%d bytes, %d fields)", n.LenBytes, len(n.Bits))
}

// Decode extracts every declared bit field from the next LenBytes of cur.
// Undeclared bits are not reported (spec.md §4.3.3: "not an error").
func (n *FixedNode) Decode(cur *Cursor) (DecodedItem, error) {
	data, ok := cur.Take(n.LenBytes)
	if !ok {
		return DecodedItem{}, fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedItem, n.LenBytes, cur.Remaining())
	}
	out := DecodedItem{Kind: KindFixed, Fields: make([]FieldValue, 0, len(n.Bits))}
	for _, b := range n.Bits {
		fv, err := b.Decode(data)
		if err != nil {
			return out, err
		}
		out.Fields = append(out.Fields, fv)
	}
	return out, nil
}
