// specmodel/bds.go
package specmodel

import "fmt"

// BDSNode is a 7-byte Mode-S BDS register; the register number selects
// among sub-Fixed variants (spec.md §3 "BDS"). The XML loader records in
// RegisterFromByte7 whether a shipped category marks the register number as
// supplied externally (spec.md §9(c)). Decode reads the register number from
// byte 7 (0-origin index 6) of the block either way; only an override passed
// to DecodeWithRegister takes the register number from elsewhere.
type BDSNode struct {
	RegisterMap       map[byte]*FixedNode
	RegisterFromByte7 bool // false when the XML marks the register as external; Decode reads the last of the 7 bytes regardless
}

func NewBDSNode(registerMap map[byte]*FixedNode, registerFromByte7 bool) (*BDSNode, error) {
	if len(registerMap) == 0 {
		return nil, fmt.Errorf("%w: BDS requires at least one register entry", ErrSpec)
	}
	for reg, fx := range registerMap {
		if fx.LenBytes != 7 {
			return nil, fmt.Errorf("%w: BDS register %#x sub-spec must be 7 bytes, got %d", ErrSpec, reg, fx.LenBytes)
		}
	}
	return &BDSNode{RegisterMap: registerMap, RegisterFromByte7: registerFromByte7}, nil
}

func (n *BDSNode) MinByteWidth() int { return 7 }

func (n *BDSNode) Describe() string {
	return fmt.Sprintf("BDS(%d registers known)", len(n.RegisterMap))
}

// Decode reads 7 bytes and dispatches on the register number. An unknown
// register yields ErrBdsUnknown with the raw 7 bytes preserved, per
// spec.md §4.3.3.
func (n *BDSNode) Decode(cur *Cursor) (DecodedItem, error) {
	return n.DecodeWithRegister(cur, nil)
}

// DecodeWithRegister decodes using an externally supplied register number
// (the "referenced BDS use" convention of spec.md §9(c)) when override is
// non-nil; otherwise it reads the register number from the last of the 7
// bytes, whatever RegisterFromByte7 holds.
func (n *BDSNode) DecodeWithRegister(cur *Cursor, override *byte) (DecodedItem, error) {
	data, ok := cur.Take(7)
	if !ok {
		return DecodedItem{}, fmt.Errorf("%w: need 7 bytes for BDS register, have %d", ErrMalformedItem, cur.Remaining())
	}

	var register byte
	switch {
	case override != nil:
		register = *override
	case n.RegisterFromByte7:
		register = data[6]
	default:
		register = data[6]
	}

	out := DecodedItem{Kind: KindBDS, BDSRegister: register, BDSRaw: data}

	sub, known := n.RegisterMap[register]
	if !known {
		return out, fmt.Errorf("%w: %#02x", ErrBdsUnknown, register)
	}

	subCur := NewCursor(data)
	decoded, err := sub.Decode(subCur)
	if err != nil {
		return out, err
	}
	out.BDSFields = decoded.Fields
	return out, nil
}
