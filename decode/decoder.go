package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"

	"github.com/loxasys/asterix/bitfield"
	"github.com/loxasys/asterix/specmodel"
)

// DecodeBuffer decodes every ASTERIX block in data belonging to category cat,
// against def, as a lazy sequence of records or errors (spec.md §4.3). It
// never allocates on the input side: every AsterixRecord's decoded items
// borrow from data through specmodel.Cursor.
//
// Iteration stops as soon as the consumer stops ranging (the Go 1.23
// range-over-func contract), and also whenever a MalformedBlock is
// encountered, since that aborts the entire buffer (spec.md §4.3.5).
func DecodeBuffer(def *specmodel.Definition, cat specmodel.CategoryID, data []byte, ts int64, opts DecodeOptions) iter.Seq2[*AsterixRecord, error] {
	return func(yield func(*AsterixRecord, error) bool) {
		category, ok := def.Category(cat)
		if !ok {
			yield(nil, &DecodeError{Category: int(cat), RecordIndex: -1, Err: fmt.Errorf("%w: %s", ErrCategoryNotFound, cat)})
			return
		}

		pos := 0
		for pos < len(data) {
			if len(data)-pos < 3 {
				yield(nil, &DecodeError{Category: int(cat), BlockOffset: pos, RecordIndex: -1,
					Err: fmt.Errorf("%w: need 3 header bytes, have %d", ErrMalformedBlock, len(data)-pos)})
				return
			}
			blockCat := data[pos]
			blockLen := int(binary.BigEndian.Uint16(data[pos+1 : pos+3]))
			if blockLen < 3 {
				yield(nil, &DecodeError{Category: int(cat), BlockOffset: pos, RecordIndex: -1,
					Err: fmt.Errorf("%w: declared length %d < 3", ErrMalformedBlock, blockLen)})
				return
			}
			if blockCat != uint8(cat) {
				yield(nil, &DecodeError{Category: int(cat), BlockOffset: pos, RecordIndex: -1,
					Err: fmt.Errorf("%w: block declares category %d, expected %s", ErrMalformedBlock, blockCat, cat)})
				return
			}
			if blockLen > len(data)-pos {
				yield(nil, &DecodeError{Category: int(cat), BlockOffset: pos, RecordIndex: -1,
					Err: fmt.Errorf("%w: declared length %d, %d available", ErrTruncated, blockLen, len(data)-pos)})
				return
			}

			cont := decodeBlock(category, data[pos:pos+blockLen], pos, ts, opts, yield)
			if !cont {
				return
			}
			pos += blockLen
		}
	}
}

// decodeBlock decodes every record in one block's payload. It returns false
// when the consumer asked the iteration to stop.
func decodeBlock(category *specmodel.Category, block []byte, blockOffset int, ts int64, opts DecodeOptions, yield func(*AsterixRecord, error) bool) bool {
	payload := block[3:]
	end := len(payload)
	cur := specmodel.NewCursor(payload)
	recordIndex := 0

	defaultUAP, ok := category.DefaultUAP()
	if !ok {
		return yield(nil, &DecodeError{Category: int(category.ID), BlockOffset: blockOffset, RecordIndex: -1,
			Err: fmt.Errorf("%w: category %s", ErrUAPNotFound, category.ID)})
	}

	reportedAny := false
	trailingStart := -1
	for cur.Pos() < end {
		recordStart := cur.Pos()
		present, err := parseFSPEC(cur, opts.maxFSPECBytes())
		if err != nil {
			if cur.Pos() == end && cur.Pos()-recordStart < opts.maxFSPECBytes() {
				// The FSPEC ran off the end of the block within its bound:
				// these are leftover bytes, reported as ExtraTrailingBytes below.
				trailingStart = recordStart
				break
			}
			reportedAny = true
			if !yield(nil, &DecodeError{Category: int(category.ID), BlockOffset: blockOffset, RecordIndex: recordIndex, Err: err}) {
				return false
			}
			break // §4.3.5: malformed FSPEC aborts the current record and the rest of this block
		}

		rec := &AsterixRecord{
			Category:    category.ID,
			TimestampUs: ts,
			BlockOffset: blockOffset,
			RecordIndex: recordIndex,
			UAPName:     "default",
			FormatOK:    true,
		}

		uap := defaultUAP
		abortBlock := false
		for frn := 1; frn <= len(present); frn++ {
			if !present[frn-1] {
				continue
			}
			entry, ok := uap.EntryByFRN(frn)
			if !ok || entry.Spare() {
				rec.FormatOK = false
				break
			}
			item, ok := category.Item(entry.ItemID)
			if !ok {
				rec.FormatOK = false
				break
			}

			itemStart := cur.Pos()
			val, derr := item.Format.Decode(cur)
			if frn == 1 && category.Selector != nil {
				raw := payload[itemStart:cur.Pos()]
				if name, ok := category.Selector(raw); ok {
					if alt, ok := category.UAPByName(name); ok {
						uap = alt
						rec.UAPName = name
					}
				}
			}
			if derr != nil {
				rec.Items = append(rec.Items, RecordItem{FRN: uint8(frn), ItemID: entry.ItemID, Value: val, Err: derr})
				rec.FormatOK = false
				if errors.Is(derr, specmodel.ErrRepetitiveOverflow) || errors.Is(derr, specmodel.ErrExplicitLength) {
					abortBlock = true
				}
				break
			}
			rec.Items = append(rec.Items, RecordItem{FRN: uint8(frn), ItemID: entry.ItemID, Value: val})
		}

		rec.RawLength = cur.Pos() - recordStart
		rec.RawBytes = payload[recordStart:cur.Pos()]
		rec.CRC32 = bitfield.CRC32(rec.RawBytes)
		if !rec.FormatOK {
			reportedAny = true
		}
		if !yield(rec, nil) {
			return false
		}
		recordIndex++
		if abortBlock {
			break
		}
	}

	unconsumed := end - cur.Pos()
	if trailingStart >= 0 {
		unconsumed = end - trailingStart
	}
	if !reportedAny && unconsumed > 0 {
		if !yield(nil, &DecodeError{Category: int(category.ID), BlockOffset: blockOffset, RecordIndex: recordIndex,
			Err: fmt.Errorf("%w: %d bytes unconsumed", ErrExtraTrailingBytes, unconsumed)}) || opts.StrictMode {
			return false
		}
	}
	return true
}
