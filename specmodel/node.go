// specmodel/node.go
package specmodel

// Cursor is a read-only view over a borrowed byte slice advancing as format
// nodes consume bytes. It never allocates and never copies its backing
// array (spec.md §4.3: "it never allocates on the input side").
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor wraps data for decoding starting at offset 0.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Remaining returns the number of unconsumed bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// Pos returns the current byte offset from the start of data.
func (c *Cursor) Pos() int { return c.pos }

// Peek returns the next n bytes without advancing the cursor, or false if
// fewer than n bytes remain.
func (c *Cursor) Peek(n int) ([]byte, bool) {
	if c.Remaining() < n {
		return nil, false
	}
	return c.data[c.pos : c.pos+n], true
}

// Take consumes and returns the next n bytes, advancing the cursor.
func (c *Cursor) Take(n int) ([]byte, bool) {
	b, ok := c.Peek(n)
	if !ok {
		return nil, false
	}
	c.pos += n
	return b, true
}

// DecodedItem is the decoded shape of one format node, mirroring the
// sum-type tree of the spec node that produced it (spec.md §3).
type DecodedItem struct {
	Kind        NodeKind
	Fields      []FieldValue             // Fixed
	Parts       []DecodedItem            // Variable (each part is a Fixed-shaped DecodedItem)
	Items       []DecodedItem            // Repetitive
	Count       int                      // Repetitive
	Children    map[int]DecodedItem      // Compound: 1-origin child position -> decoded item
	ChildOrder  []int                    // Compound: order children were decoded in
	Inner       *DecodedItem             // Explicit
	RawTrailing []byte                   // Explicit: bytes of the inner slice unconsumed by Inner
	BDSRegister byte                     // BDS
	BDSRaw      []byte                   // BDS: raw 7 bytes, always retained
	BDSFields   []FieldValue             // BDS: decoded sub-Fixed fields, if register known

	RawBytes []byte // Variable: raw bytes of every decoded part, in order
}

// NodeKind tags which FormatNode variant produced a DecodedItem.
type NodeKind uint8

const (
	KindFixed NodeKind = iota
	KindVariable
	KindRepetitive
	KindCompound
	KindExplicit
	KindBDS
)

// FormatNode is the polymorphic capability set every variant implements
// (spec.md §3's "sum type"): decode itself off a cursor, report its minimum
// byte width (for the Repetitive overflow guard, spec.md §4.3.3), and
// describe itself for the `describe` API (spec.md §6).
type FormatNode interface {
	Decode(cur *Cursor) (DecodedItem, error)
	MinByteWidth() int
	Describe() string
}
