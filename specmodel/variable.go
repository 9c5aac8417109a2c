// specmodel/variable.go
package specmodel

import "fmt"

// VariableNode is a chain of 1-byte Fixed parts terminated by the first
// whose LSB (the FX bit, always bit position 1) is 0 (spec.md §3
// "Variable").
type VariableNode struct {
	Parts []*FixedNode
}

// NewVariableNode validates invariant 2 of spec.md §4.2: at least one part,
// every part exactly 1 byte wide.
func NewVariableNode(parts []*FixedNode) (*VariableNode, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: Variable requires at least one part", ErrSpec)
	}
	for i, p := range parts {
		if p.LenBytes != 1 {
			return nil, fmt.Errorf("%w: Variable part %d is %d bytes, must be 1", ErrSpec, i, p.LenBytes)
		}
	}
	return &VariableNode{Parts: parts}, nil
}

func (n *VariableNode) MinByteWidth() int { return 1 }

func (n *VariableNode) Describe() string {
	return fmt.Sprintf("Variable(%d declared parts)", len(n.Parts))
}

// Decode walks declared parts while the FX bit (LSB of the last decoded
// byte) is set, per spec.md §4.3.3.
func (n *VariableNode) Decode(cur *Cursor) (DecodedItem, error) {
	out := DecodedItem{Kind: KindVariable}
	for i := 0; ; i++ {
		if i >= len(n.Parts) {
			return out, fmt.Errorf("%w: FX set on declared part %d with no further part declared", ErrMalformedVariable, i-1)
		}
		raw, ok := cur.Peek(1)
		if !ok {
			return out, fmt.Errorf("%w: no bytes remaining for Variable part %d", ErrMalformedItem, i)
		}
		part, err := n.Parts[i].Decode(cur)
		if err != nil {
			return out, err
		}
		out.Parts = append(out.Parts, part)
		out.RawBytes = append(out.RawBytes, raw[0])
		if raw[0]&0x01 == 0 {
			return out, nil
		}
	}
}

// NonFXBitCount reports the number of non-FX bit positions across every
// declared part (7 per part), used by Compound to validate its declared children count against
// invariant 4 of spec.md §4.2.
func (n *VariableNode) NonFXBitCount() int {
	if len(n.Parts) == 0 {
		return 0
	}
	return 7 * len(n.Parts)
}

// SetBits enumerates the set, non-FX bits across every decoded part,
// MSB-first, 1-origin across the whole chain — the selection driving
// Compound (spec.md §3 "Compound").
func SetBits(d DecodedItem) []int {
	var positions []int
	pos := 0
	for _, raw := range d.RawBytes {
		for bitInByte := 7; bitInByte >= 1; bitInByte-- { // skip bit 0 (FX)
			pos++
			if raw&(1<<uint(bitInByte)) != 0 {
				positions = append(positions, pos)
			}
		}
	}
	return positions
}
