package specmodel

import (
	"errors"
	"testing"
)

func mustFixed(t *testing.T, lenBytes int, bits []DataItemBits) *FixedNode {
	t.Helper()
	n, err := NewFixedNode(lenBytes, bits)
	if err != nil {
		t.Fatalf("NewFixedNode() error = %v", err)
	}
	return n
}

func TestFixedNodeDecode(t *testing.T) {
	// SAC/SIC style: two 8-bit unsigned fields in a 2-byte Fixed.
	n := mustFixed(t, 2, []DataItemBits{
		{ShortName: "SAC", FromBit: 16, ToBit: 9},
		{ShortName: "SIC", FromBit: 8, ToBit: 1},
	})
	cur := NewCursor([]byte{0x00, 0x01})
	out, err := n.Decode(cur)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out.Fields[0].Raw != 0 || out.Fields[1].Raw != 1 {
		t.Errorf("got SAC=%d SIC=%d, want SAC=0 SIC=1", out.Fields[0].Raw, out.Fields[1].Raw)
	}
	if cur.Remaining() != 0 {
		t.Errorf("cursor should be fully consumed, %d bytes remain", cur.Remaining())
	}
}

func TestFixedNodeInsufficientBytes(t *testing.T) {
	n := mustFixed(t, 2, []DataItemBits{{ShortName: "x", FromBit: 16, ToBit: 1}})
	cur := NewCursor([]byte{0x00})
	if _, err := n.Decode(cur); !errors.Is(err, ErrMalformedItem) {
		t.Fatalf("expected ErrMalformedItem, got %v", err)
	}
}

// S3 — Variable extension.
func TestVariableNodeThreeParts(t *testing.T) {
	part := func() *FixedNode { return mustFixed(t, 1, []DataItemBits{{ShortName: "v", FromBit: 8, ToBit: 1}}) }
	v, err := NewVariableNode([]*FixedNode{part(), part(), part()})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("three parts", func(t *testing.T) {
		cur := NewCursor([]byte{0xAB, 0xCD, 0x00})
		out, err := v.Decode(cur)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if len(out.Parts) != 3 {
			t.Errorf("got %d parts, want 3", len(out.Parts))
		}
	})

	t.Run("one part", func(t *testing.T) {
		cur := NewCursor([]byte{0xAA})
		out, err := v.Decode(cur)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if len(out.Parts) != 1 {
			t.Errorf("got %d parts, want 1", len(out.Parts))
		}
	})

	t.Run("FX set with no more input", func(t *testing.T) {
		cur := NewCursor([]byte{0xAB})
		if _, err := v.Decode(cur); err == nil {
			t.Fatal("expected error when FX set but no bytes remain")
		}
	})
}

func TestVariableNodeMalformedNoMoreDeclaredParts(t *testing.T) {
	part := mustFixed(t, 1, []DataItemBits{{ShortName: "v", FromBit: 8, ToBit: 1}})
	v, err := NewVariableNode([]*FixedNode{part})
	if err != nil {
		t.Fatal(err)
	}
	cur := NewCursor([]byte{0x01, 0x00}) // FX set on the only declared part
	if _, err := v.Decode(cur); !errors.Is(err, ErrMalformedVariable) {
		t.Fatalf("expected ErrMalformedVariable, got %v", err)
	}
}

// S4 — Compound subfield selection.
func TestCompoundNodeSelection(t *testing.T) {
	primaryPart := mustFixed(t, 1, []DataItemBits{{ShortName: "primary", FromBit: 8, ToBit: 1}})
	primary, err := NewVariableNode([]*FixedNode{primaryPart})
	if err != nil {
		t.Fatal(err)
	}

	leaf := func(name string) *FixedNode {
		return mustFixed(t, 1, []DataItemBits{{ShortName: name, FromBit: 8, ToBit: 1}})
	}
	children := []FormatNode{leaf("a"), leaf("b"), leaf("c"), leaf("d"), leaf("e"), leaf("f"), leaf("g")}
	compound, err := NewCompoundNode(primary, children)
	if err != nil {
		t.Fatal(err)
	}

	// 0x50 = 0b0101_0000: bits 7 and 5 set (MSB-first, 1-origin, skipping FX).
	cur := NewCursor([]byte{0x50, 0xAA, 0xBB})
	out, err := compound.Decode(cur)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(out.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(out.Children))
	}
	if _, ok := out.Children[2]; !ok { // F_b
		t.Error("expected child 2 (F_b) present")
	}
	if _, ok := out.Children[4]; !ok { // F_d
		t.Error("expected child 4 (F_d) present")
	}
	if got, want := out.ChildOrder, []int{2, 4}; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ChildOrder = %v, want %v", got, want)
	}
}

func TestCompoundNodeChildCountMismatch(t *testing.T) {
	primaryPart := mustFixed(t, 1, []DataItemBits{{ShortName: "primary", FromBit: 8, ToBit: 1}})
	primary, err := NewVariableNode([]*FixedNode{primaryPart})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewCompoundNode(primary, []FormatNode{}); err == nil {
		t.Fatal("expected error: 0 children declared but primary has 7 non-FX positions")
	}
}

func TestCompoundNodeUndefinedChild(t *testing.T) {
	primaryPart := mustFixed(t, 1, []DataItemBits{{ShortName: "primary", FromBit: 8, ToBit: 1}})
	primary, err := NewVariableNode([]*FixedNode{primaryPart})
	if err != nil {
		t.Fatal(err)
	}
	leaf := mustFixed(t, 1, []DataItemBits{{ShortName: "a", FromBit: 8, ToBit: 1}})
	// Only declare 1 child but primary has 7 non-FX positions — the spec
	// requires matching counts, so to exercise CompoundUndefined we build a
	// node directly (bypassing the constructor's count check) to simulate a
	// category whose loaded XML under-declares children relative to a set
	// bit beyond what was declared.
	compound := &CompoundNode{Primary: primary, Children: []FormatNode{leaf}}
	cur := NewCursor([]byte{0x50, 0xAA}) // bit 7 (position 2) and bit 5 (position 4) set; only position 1 has a child
	if _, err := compound.Decode(cur); !errors.Is(err, ErrCompoundUndefined) {
		t.Fatalf("expected ErrCompoundUndefined, got %v", err)
	}
}

// S2 — Repetitive overflow rejection.
func TestRepetitiveOverflow(t *testing.T) {
	inner := mustFixed(t, 10, []DataItemBits{{ShortName: "x", FromBit: 80, ToBit: 1}})
	rep, err := NewRepetitiveNode(RepCountByte1, inner)
	if err != nil {
		t.Fatal(err)
	}
	data := append([]byte{0xFF}, make([]byte, 200)...) // count=255, only 200 bytes remain
	cur := NewCursor(data)
	if _, err := rep.Decode(cur); !errors.Is(err, ErrRepetitiveOverflow) {
		t.Fatalf("expected ErrRepetitiveOverflow, got %v", err)
	}
}

func TestRepetitiveNormal(t *testing.T) {
	inner := mustFixed(t, 1, []DataItemBits{{ShortName: "x", FromBit: 8, ToBit: 1}})
	rep, err := NewRepetitiveNode(RepCountByte1, inner)
	if err != nil {
		t.Fatal(err)
	}
	cur := NewCursor([]byte{0x03, 0x01, 0x02, 0x03})
	out, err := rep.Decode(cur)
	if err != nil {
		t.Fatal(err)
	}
	if out.Count != 3 || len(out.Items) != 3 {
		t.Errorf("got count=%d items=%d, want 3/3", out.Count, len(out.Items))
	}
}

func TestExplicitNode(t *testing.T) {
	inner := mustFixed(t, 2, []DataItemBits{{ShortName: "x", FromBit: 16, ToBit: 1}})
	ex, err := NewExplicitNode(inner)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("exact fit", func(t *testing.T) {
		cur := NewCursor([]byte{0x03, 0xAA, 0xBB})
		out, err := ex.Decode(cur)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if out.Inner == nil || len(out.RawTrailing) != 0 {
			t.Errorf("unexpected trailing bytes: %v", out.RawTrailing)
		}
	})

	t.Run("length exceeds remaining", func(t *testing.T) {
		cur := NewCursor([]byte{0x05, 0xAA})
		if _, err := ex.Decode(cur); err == nil {
			t.Fatal("expected error when L exceeds remaining bytes")
		}
	})

	t.Run("length below minimum", func(t *testing.T) {
		cur := NewCursor([]byte{0x02, 0xAA})
		if _, err := ex.Decode(cur); err == nil {
			t.Fatal("expected error when L < 3")
		}
	})

	t.Run("trailing retained", func(t *testing.T) {
		// L=5 means 4 inner bytes, but inner only consumes 2.
		cur := NewCursor([]byte{0x05, 0xAA, 0xBB, 0xCC, 0xDD})
		out, err := ex.Decode(cur)
		if !errors.Is(err, ErrExplicitTrailing) {
			t.Fatalf("expected ErrExplicitTrailing, got %v", err)
		}
		if len(out.RawTrailing) != 2 {
			t.Errorf("got %d trailing bytes, want 2", len(out.RawTrailing))
		}
	})
}

func TestBDSNodeUnknownRegisterRetainsRaw(t *testing.T) {
	node, err := NewBDSNode(map[byte]*FixedNode{
		0x40: mustFixed(t, 7, []DataItemBits{{ShortName: "x", FromBit: 56, ToBit: 1}}),
	}, true)
	if err != nil {
		t.Fatal(err)
	}
	data := []byte{1, 2, 3, 4, 5, 6, 0x99}
	cur := NewCursor(data)
	out, err := node.Decode(cur)
	if !errors.Is(err, ErrBdsUnknown) {
		t.Fatalf("expected ErrBdsUnknown, got %v", err)
	}
	if string(out.BDSRaw) != string(data) {
		t.Error("raw 7 bytes not preserved on unknown register")
	}
}

func TestBDSNodeKnownRegister(t *testing.T) {
	node, err := NewBDSNode(map[byte]*FixedNode{
		0x40: mustFixed(t, 7, []DataItemBits{{ShortName: "x", FromBit: 56, ToBit: 49}}),
	}, true)
	if err != nil {
		t.Fatal(err)
	}
	data := []byte{0xAA, 0, 0, 0, 0, 0, 0x40}
	cur := NewCursor(data)
	out, err := node.Decode(cur)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(out.BDSFields) != 1 || out.BDSFields[0].Raw != 0xAA {
		t.Errorf("got %+v, want field x=0xAA", out.BDSFields)
	}
}
