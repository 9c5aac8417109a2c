package decode

import (
	"bytes"
	"errors"
	"testing"

	"github.com/loxasys/asterix/bitfield"
	"github.com/loxasys/asterix/specmodel"
)

func mustFixed(t *testing.T, lenBytes int, bits []specmodel.DataItemBits) *specmodel.FixedNode {
	t.Helper()
	n, err := specmodel.NewFixedNode(lenBytes, bits)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

// buildCAT048 mirrors the fixture used by specxml's tests: 048/010 (SAC/SIC,
// FRN1, mandatory) and 048/040 (RHO/THETA, FRN2, optional), with a spare
// FRN3.
func buildCAT048(t *testing.T) *specmodel.Definition {
	t.Helper()
	cat := specmodel.NewCategory(48, "1.32")

	sacsic := &specmodel.DataItemDescription{
		ID:   "048/010",
		Name: "Data Source Identifier",
		Format: mustFixed(t, 2, []specmodel.DataItemBits{
			{ShortName: "SAC", FromBit: 16, ToBit: 9},
			{ShortName: "SIC", FromBit: 8, ToBit: 1},
		}),
		Rule: specmodel.Mandatory,
	}
	if err := cat.AddItem(sacsic); err != nil {
		t.Fatal(err)
	}

	polar := &specmodel.DataItemDescription{
		ID:   "048/040",
		Name: "Measured Position in Polar Coordinates",
		Format: mustFixed(t, 4, []specmodel.DataItemBits{
			{ShortName: "RHO", FromBit: 32, ToBit: 17},
			{ShortName: "THETA", FromBit: 16, ToBit: 1},
		}),
		Rule: specmodel.Optional,
	}
	if err := cat.AddItem(polar); err != nil {
		t.Fatal(err)
	}

	uap, err := specmodel.NewUAP([]specmodel.UAPEntry{
		{FRN: 1, ItemID: "048/010"},
		{FRN: 2, ItemID: "048/040"},
		{FRN: 3, ItemID: ""}, // spare
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := cat.AddUAP("default", uap, true); err != nil {
		t.Fatal(err)
	}

	def := specmodel.NewDefinition()
	if err := def.AddCategory(cat); err != nil {
		t.Fatal(err)
	}
	def.Freeze()
	return def
}

func collect(seq func(func(*AsterixRecord, error) bool)) ([]*AsterixRecord, []error) {
	var recs []*AsterixRecord
	var errs []error
	seq(func(r *AsterixRecord, err error) bool {
		if err != nil {
			errs = append(errs, err)
		} else {
			recs = append(recs, r)
		}
		return true
	})
	return recs, errs
}

// S1: a minimal single-item CAT048 record: cat=0x30, fspec=0x80 (FRN1 only),
// SAC=0x00, SIC=0x01.
func TestDecodeBufferMinimalRecord(t *testing.T) {
	def := buildCAT048(t)
	data := []byte{0x30, 0x00, 0x06, 0x80, 0x00, 0x01}

	recs, errs := collect(DecodeBuffer(def, 48, data, 1000, DecodeOptions{}))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	r := recs[0]
	if !r.FormatOK {
		t.Error("expected FormatOK = true")
	}
	if r.RawLength != 3 {
		t.Errorf("got RawLength %d, want 3", r.RawLength)
	}
	if len(r.Items) != 1 || r.Items[0].ItemID != "048/010" {
		t.Fatalf("unexpected items: %+v", r.Items)
	}
	sac := r.Items[0].Value.Fields[0]
	sic := r.Items[0].Value.Fields[1]
	if sac.Raw != 0 || sic.Raw != 1 {
		t.Errorf("got SAC=%d SIC=%d, want 0,1", sac.Raw, sic.Raw)
	}
	wantRaw := []byte{0x80, 0x00, 0x01}
	if !bytes.Equal(r.RawBytes, wantRaw) {
		t.Errorf("got RawBytes % x, want % x", r.RawBytes, wantRaw)
	}
	if r.CRC32 != bitfield.CRC32(wantRaw) {
		t.Errorf("got CRC32 %08x, want %08x", r.CRC32, bitfield.CRC32(wantRaw))
	}
}

// Two records back to back in one block.
func TestDecodeBufferTwoRecords(t *testing.T) {
	def := buildCAT048(t)
	data := []byte{
		0x30, 0x00, 0x09,
		0x80, 0x00, 0x01, // record 1: FRN1 only
		0x80, 0x00, 0x02, // record 2: FRN1 only
	}
	recs, errs := collect(DecodeBuffer(def, 48, data, 0, DecodeOptions{}))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[1].Items[0].Value.Fields[1].Raw != 2 {
		t.Errorf("second record SIC = %d, want 2", recs[1].Items[0].Value.Fields[1].Raw)
	}
}

// FSPEC bit 3 (spare slot) set: record should be reported with FormatOK
// false and its earlier item retained; decoding of the same block resumes
// at the best-effort position (spec.md §4.3.2 point 2).
func TestDecodeBufferSpareSlotSetsFormatNotOK(t *testing.T) {
	def := buildCAT048(t)
	// single fspec byte: FRN1 set, FRN3 (spare) set, FX=0.
	data := []byte{0x30, 0x00, 0x06, 0xA0, 0x00, 0x01}
	recs, errs := collect(DecodeBuffer(def, 48, data, 0, DecodeOptions{}))
	if len(errs) != 0 {
		t.Fatalf("unexpected top-level errors: %v", errs)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].FormatOK {
		t.Error("expected FormatOK = false due to spare-slot FSPEC bit")
	}
	if len(recs[0].Items) != 1 || recs[0].Items[0].ItemID != "048/010" {
		t.Errorf("expected only 048/010 decoded before the spare slot, got %+v", recs[0].Items)
	}
}

func TestDecodeBufferMalformedBlockLength(t *testing.T) {
	def := buildCAT048(t)
	data := []byte{0x30, 0x00, 0x02} // length 2 < 3
	_, errs := collect(DecodeBuffer(def, 48, data, 0, DecodeOptions{}))
	if len(errs) != 1 || !errors.Is(errs[0], ErrMalformedBlock) {
		t.Fatalf("got errs=%v, want one ErrMalformedBlock", errs)
	}
}

func TestDecodeBufferTruncated(t *testing.T) {
	def := buildCAT048(t)
	data := []byte{0x30, 0x00, 0x0A, 0x80, 0x00, 0x01} // declares 10, has 6
	_, errs := collect(DecodeBuffer(def, 48, data, 0, DecodeOptions{}))
	if len(errs) != 1 || !errors.Is(errs[0], ErrTruncated) {
		t.Fatalf("got errs=%v, want one ErrTruncated", errs)
	}
}

func TestDecodeBufferUnknownCategory(t *testing.T) {
	def := buildCAT048(t)
	_, errs := collect(DecodeBuffer(def, 21, []byte{0x15, 0x00, 0x03}, 0, DecodeOptions{}))
	if len(errs) != 1 || !errors.Is(errs[0], ErrCategoryNotFound) {
		t.Fatalf("got errs=%v, want one ErrCategoryNotFound", errs)
	}
}

// ExtraTrailingBytes: FSPEC claims only FRN1, but the block declares more
// bytes than the record actually consumes.
func TestDecodeBufferExtraTrailingBytes(t *testing.T) {
	def := buildCAT048(t)
	data := []byte{0x30, 0x00, 0x08, 0x80, 0x00, 0x01, 0xFF, 0xFF} // 2 stray bytes
	_, errs := collect(DecodeBuffer(def, 48, data, 0, DecodeOptions{}))
	if len(errs) != 1 || !errors.Is(errs[0], ErrExtraTrailingBytes) {
		t.Fatalf("got errs=%v, want one ErrExtraTrailingBytes", errs)
	}
}

// A malformed FSPEC (9 extension bytes, exceeding the 8-byte bound) aborts
// the record and the rest of the block (spec.md §4.3.5).
func TestDecodeBufferMalformedFspecAbortsBlock(t *testing.T) {
	def := buildCAT048(t)
	fspec := make([]byte, 9)
	for i := range fspec {
		fspec[i] = 0x01 // FX set on every byte, never terminates
	}
	blockLen := 3 + len(fspec)
	data := append([]byte{0x30, byte(blockLen >> 8), byte(blockLen)}, fspec...)
	recs, errs := collect(DecodeBuffer(def, 48, data, 0, DecodeOptions{}))
	if len(recs) != 0 {
		t.Fatalf("expected zero records, got %d", len(recs))
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrMalformedFspec) {
		t.Fatalf("got errs=%v, want one ErrMalformedFspec", errs)
	}
}

// iter.Seq2 contract: the consumer can stop early.
func TestDecodeBufferStopsOnFalseYield(t *testing.T) {
	def := buildCAT048(t)
	data := []byte{
		0x30, 0x00, 0x09,
		0x80, 0x00, 0x01,
		0x80, 0x00, 0x02,
	}
	count := 0
	DecodeBuffer(def, 48, data, 0, DecodeOptions{})(func(r *AsterixRecord, err error) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("got %d callback invocations, want 1 (consumer stopped early)", count)
	}
}
