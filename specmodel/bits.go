// specmodel/bits.go
package specmodel

import (
	"fmt"

	"github.com/loxasys/asterix/bitfield"
)

// Encoding identifies how raw bits become a value.
type Encoding uint8

const (
	Unsigned Encoding = iota
	SignedTwosComplement
	ICAO6bitChar
	AsciiChar
	Hex
	Octal
	EnumLookup
)

// Presentation identifies how a decoded value is presented to a consumer.
type Presentation uint8

const (
	PresentInt Presentation = iota
	PresentReal
	PresentEnum
	PresentString
)

// DataItemBits is one logical bit field inside a Fixed run: a plain value
// type, never a node in its own right (spec.md §9).
type DataItemBits struct {
	ShortName    string
	Name         string
	FromBit      int // 1-origin, MSB-first, counted from the LSB of the last byte of the Fixed run
	ToBit        int
	Encoding     Encoding
	Presentation Presentation
	Scale        float64 // applied when Presentation == PresentReal
	Offset       float64
	Unit         string
	Min, Max     *float64
	EnumMap      map[uint64]string // value -> description, disjoint keys enforced at load
	IsFX         bool              // true for the Variable-part FX bit (bit 1)
}

// FieldValue is the decoded result of one DataItemBits.
type FieldValue struct {
	ShortName   string
	Raw         uint64
	SignedRaw   int64
	IsSigned    bool
	Presented   any // float64, string, int64 or uint64 depending on Presentation and signedness
	Description string
}

// Decode extracts and converts this bit field out of data (the bytes of the
// enclosing Fixed run).
func (b DataItemBits) Decode(data []byte) (FieldValue, error) {
	fv := FieldValue{ShortName: b.ShortName}

	switch b.Encoding {
	case ICAO6bitChar:
		startByte := (len(data)*8 - b.FromBit) / 8
		count := (b.FromBit - b.ToBit + 1) / 6
		s, err := bitfield.ExtractICAO6(data, startByte, count)
		if err != nil {
			return fv, err
		}
		fv.Presented = s
		return fv, nil
	case AsciiChar:
		startByte := (len(data)*8 - b.FromBit) / 8
		count := (b.FromBit - b.ToBit + 1) / 8
		s, err := bitfield.ExtractASCII(data, startByte, count)
		if err != nil {
			return fv, err
		}
		fv.Presented = s
		return fv, nil
	case SignedTwosComplement:
		v, err := bitfield.ExtractSigned(data, b.FromBit, b.ToBit)
		if err != nil {
			return fv, err
		}
		fv.SignedRaw = v
		fv.IsSigned = true
		fv.Presented = b.present(uint64(v), true)
		return fv, nil
	default: // Unsigned, Hex, Octal, EnumLookup all extract as unsigned first
		v, err := bitfield.ExtractUnsigned(data, b.FromBit, b.ToBit)
		if err != nil {
			return fv, err
		}
		fv.Raw = v
		fv.Presented = b.present(v, false)
		if b.Encoding == EnumLookup {
			if desc, ok := b.EnumMap[v]; ok {
				fv.Description = desc
			}
		}
		return fv, nil
	}
}

func (b DataItemBits) present(raw uint64, signed bool) any {
	switch b.Presentation {
	case PresentReal:
		var f float64
		if signed {
			f = float64(int64(raw))
		} else {
			f = float64(raw)
		}
		return f*b.Scale + b.Offset
	case PresentEnum:
		if desc, ok := b.EnumMap[raw]; ok {
			return desc
		}
		return fmt.Sprintf("unknown(%d)", raw)
	case PresentString:
		return fmt.Sprintf("%v", raw)
	default:
		if signed {
			return int64(raw)
		}
		return raw
	}
}

// Validate checks bits 2 of spec.md §4.2: the field lies entirely within its
// declared byte width.
func (b DataItemBits) Validate(lenBytes int) error {
	totalBits := lenBytes * 8
	if b.ToBit < 1 || b.FromBit > totalBits || b.FromBit < b.ToBit {
		return fmt.Errorf("%w: bits %q range [%d,%d] outside %d-byte Fixed run",
			ErrBitRangeInvalid, b.ShortName, b.FromBit, b.ToBit, lenBytes)
	}
	return nil
}
