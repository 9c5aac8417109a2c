package decode

import "github.com/loxasys/asterix/specmodel"

// AsterixRecord is one decoded ASTERIX record: the UAP-ordered items present
// in its FSPEC, plus the bookkeeping needed to report partial-failure
// results (spec.md §4.3.5).
type AsterixRecord struct {
	Category    specmodel.CategoryID
	TimestampUs int64

	// BlockOffset/RecordIndex locate this record for diagnostics.
	BlockOffset int
	RecordIndex int

	// UAPName is the UAP this record was decoded against (the default, or
	// the one chosen by the category's UAPSelector, spec.md §4.3.1).
	UAPName string

	// Items holds one entry per present FSPEC bit, in FRN order.
	Items []RecordItem

	// FormatOK is false when a present FSPEC bit referenced a spare UAP
	// slot or an item failed to decode; earlier items are still retained
	// (spec.md §4.3.5).
	FormatOK bool

	// RawLength is the number of bytes this record consumed, measured from
	// the start of its FSPEC.
	RawLength int

	// RawBytes is this record's own byte span, from the start of its FSPEC
	// through its last consumed byte (spec.md §3).
	RawBytes []byte

	// CRC32 is the IEEE 802.3 polynomial over RawBytes (spec.md §3/§7):
	// exported for integrity reporting, never used to reject a record.
	CRC32 uint32
}

// RecordItem is one data item present in a record, alongside its decoded
// value and, for the partial-failure case, the decode error.
type RecordItem struct {
	FRN    uint8
	ItemID string
	Value  specmodel.DecodedItem
	Err    error // non-nil only for the item that broke format_ok
}

// DecodeOptions configures one DecodeBuffer call (spec.md §6/§9). It is a
// value, not a global: decode is a pure function of its arguments.
type DecodeOptions struct {
	// StrictMode, when true, treats ExtraTrailingBytes at end-of-block as a
	// hard error for the whole buffer: decoding stops after that error is
	// yielded. When false it is a per-block diagnostic, yielded on its own
	// after the block's records, and decoding goes on with the next block.
	StrictMode bool

	// MaxFSPECBytes overrides the 8-byte default bound of spec.md §4.3.2.
	// Zero means use the default.
	MaxFSPECBytes int
}

func (o DecodeOptions) maxFSPECBytes() int {
	if o.MaxFSPECBytes > 0 {
		return o.MaxFSPECBytes
	}
	return 8
}
