// Package bitfield implements the bit/byte primitives every ASTERIX format
// node decodes through: signed/unsigned N-bit extraction across byte
// boundaries, ICAO 6-bit character decoding, and the checksum/CRC variants
// used by the framing sublayers.
//
// ASTERIX numbers bits 1-origin, MSB-first, counting from the LSB of the
// LAST byte of the containing Fixed run. A field declared "from_bit=14,
// to_bit=9" spans bits 14 down to 9 of that run, width 6. This package is
// the single place that arithmetic is done.
package bitfield

import (
	"fmt"
	"hash/crc32"
)

// ErrFieldOutOfRange is returned when a bit range does not fit inside the
// declared byte width of its enclosing Fixed run.
var ErrFieldOutOfRange = fmt.Errorf("bitfield: field out of range")

// bitWidth returns the width in bits of the declared [fromBit, toBit] range
// and validates it against the byte-width of data.
func bitWidth(data []byte, fromBit, toBit int) (int, error) {
	if fromBit < toBit {
		return 0, fmt.Errorf("%w: from_bit %d < to_bit %d", ErrFieldOutOfRange, fromBit, toBit)
	}
	totalBits := len(data) * 8
	if fromBit > totalBits || toBit < 1 {
		return 0, fmt.Errorf("%w: range [%d,%d] outside %d-bit block", ErrFieldOutOfRange, fromBit, toBit, totalBits)
	}
	width := fromBit - toBit + 1
	if width < 1 || width > 64 {
		return 0, fmt.Errorf("%w: width %d not in [1,64]", ErrFieldOutOfRange, width)
	}
	return width, nil
}

// bitAt returns the value (0 or 1) of the bit numbered 1-origin from the LSB
// of the last byte of data, counting across the whole run MSB-first.
func bitAt(data []byte, n int) int {
	// n=1 is the LSB of the final byte.
	byteFromEnd := (n - 1) / 8
	idx := len(data) - 1 - byteFromEnd
	bitInByte := (n - 1) % 8
	return int(data[idx]>>bitInByte) & 1
}

// ExtractUnsigned extracts an unsigned value from the bit range
// [toBit, fromBit] (inclusive), both 1-origin counting from the LSB of the
// last byte of data.
func ExtractUnsigned(data []byte, fromBit, toBit int) (uint64, error) {
	if _, err := bitWidth(data, fromBit, toBit); err != nil {
		return 0, err
	}
	var v uint64
	for n := fromBit; n >= toBit; n-- {
		v = v<<1 | uint64(bitAt(data, n))
	}
	return v, nil
}

// ExtractSigned extracts a two's-complement signed value from the same bit
// range convention as ExtractUnsigned, sign-extending from the declared
// width.
func ExtractSigned(data []byte, fromBit, toBit int) (int64, error) {
	width, err := bitWidth(data, fromBit, toBit)
	if err != nil {
		return 0, err
	}
	raw, err := ExtractUnsigned(data, fromBit, toBit)
	if err != nil {
		return 0, err
	}
	signBit := uint64(1) << (width - 1)
	if raw&signBit != 0 {
		return int64(raw) - int64(uint64(1)<<width), nil
	}
	return int64(raw), nil
}

// icao6Alphabet is the Mode-S 6-bit character set: A-Z, space, 0-9.
const icao6Alphabet = "?ABCDEFGHIJKLMNOPQRSTUVWXYZ????? ???????????????0123456789??????"

// ExtractICAO6 decodes count 6-bit characters starting at startByte
// (0-origin), 4 characters per 3 bytes, per the ICAO Mode-S alphabet.
func ExtractICAO6(data []byte, startByte, count int) (string, error) {
	needBits := count * 6
	needBytes := (needBits + 7) / 8
	if startByte < 0 || startByte+needBytes > len(data) {
		return "", fmt.Errorf("%w: ICAO6 range [%d,+%d) outside %d bytes", ErrFieldOutOfRange, startByte, needBytes, len(data))
	}
	out := make([]byte, 0, count)
	bitOffset := startByte * 8
	for i := 0; i < count; i++ {
		var v byte
		for b := 0; b < 6; b++ {
			bit := bitOffset + i*6 + b
			byteIdx := bit / 8
			bitInByte := 7 - (bit % 8)
			v = v<<1 | (data[byteIdx]>>bitInByte)&1
		}
		if int(v) >= len(icao6Alphabet) {
			return "", fmt.Errorf("%w: ICAO6 code %d out of alphabet", ErrFieldOutOfRange, v)
		}
		out = append(out, icao6Alphabet[v])
	}
	return string(out), nil
}

// ExtractASCII decodes count plain 8-bit ASCII characters starting at
// startByte.
func ExtractASCII(data []byte, startByte, count int) (string, error) {
	if startByte < 0 || startByte+count > len(data) {
		return "", fmt.Errorf("%w: ASCII range [%d,+%d) outside %d bytes", ErrFieldOutOfRange, startByte, count, len(data))
	}
	return string(data[startByte : startByte+count]), nil
}

// CRC32 computes the IEEE 802.3 CRC32 of data, exported for diagnostics only
// (never used to reject a record, per spec.md §4.1).
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// SumChecksum16 computes the 16-bit big-endian sum of data modulo 2^16, the
// FINAL framing checksum (spec.md §4.4.4).
func SumChecksum16(data []byte) uint16 {
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return uint16(sum)
}

// crc16x25Table is precomputed for the CRC-16/X.25 polynomial (0x1021,
// reflected: 0x8408), used by the HDLC framing sublayer (spec.md §4.4.5).
var crc16x25Table = func() [256]uint16 {
	var t [256]uint16
	for i := 0; i < 256; i++ {
		crc := uint16(i)
		for b := 0; b < 8; b++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0x8408
			} else {
				crc >>= 1
			}
		}
		t[i] = crc
	}
	return t
}()

// CRC16X25 computes the CRC-16/X.25 of data (init 0xFFFF, reflected,
// complemented on output), the variant HDLC frames carry at their tail.
func CRC16X25(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = (crc >> 8) ^ crc16x25Table[byte(crc)^b]
	}
	return ^crc
}
