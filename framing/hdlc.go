package framing

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/loxasys/asterix/bitfield"
)

const (
	hdlcFlag   = 0x7E
	hdlcEscape = 0x7D
	hdlcXOR    = 0x20

	// MaxHDLCFrame is the per-implementation constant of spec.md §4.4.5;
	// 4096 is the safe default it names.
	MaxHDLCFrame = 4096
)

// ErrHDLCFraming reports an HDLC bounds or CRC violation.
var ErrHDLCFraming = fmt.Errorf("%w: HDLC framing", ErrFraming)

// HDLCSource frames byte-stuffed HDLC: 0x7E delimits frames, 0x7D escapes
// the following byte (XOR 0x20), and the last two de-stuffed bytes are a
// CRC-16/X.25 over the payload (spec.md §4.4.5). Every length is validated
// before any copy, per the unbounded-pointer-arithmetic CVE class spec.md
// §9 calls out.
type HDLCSource struct {
	data     []byte
	pos      int
	maxFrame int
}

// NewHDLCSource wraps a byte-stuffed HDLC stream. maxFrame bounds a single
// de-stuffed frame; 0 selects MaxHDLCFrame.
func NewHDLCSource(data []byte, maxFrame int) *HDLCSource {
	if maxFrame <= 0 {
		maxFrame = MaxHDLCFrame
	}
	return &HDLCSource{data: data, maxFrame: maxFrame}
}

func (s *HDLCSource) Name() string { return "hdlc" }
func (s *HDLCSource) Close() error { return nil }

func (s *HDLCSource) Next() (Frame, error) {
	for s.pos < len(s.data) && s.data[s.pos] == hdlcFlag {
		s.pos++ // consecutive flags between frames
	}
	if s.pos >= len(s.data) {
		return Frame{}, io.EOF
	}

	start := s.pos
	end := -1
	for i := start; i < len(s.data); i++ {
		if s.data[i] == hdlcFlag {
			end = i
			break
		}
		if i-start+1 > s.maxFrame*2 { // stuffed bytes can at most double the length
			return Frame{}, fmt.Errorf("%w: frame exceeds %d bytes before a closing flag was found", ErrHDLCFraming, s.maxFrame)
		}
	}
	if end == -1 {
		return Frame{}, fmt.Errorf("%w: unterminated frame at offset %d", ErrHDLCFraming, start)
	}
	s.pos = end + 1

	raw := s.data[start:end]
	destuffed := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if b == hdlcEscape {
			i++
			if i >= len(raw) {
				return Frame{}, fmt.Errorf("%w: dangling escape byte", ErrHDLCFraming)
			}
			b = raw[i] ^ hdlcXOR
		}
		destuffed = append(destuffed, b)
	}

	if len(destuffed) < 4 || len(destuffed) > s.maxFrame {
		return Frame{}, fmt.Errorf("%w: de-stuffed frame length %d outside [4, %d]", ErrHDLCFraming, len(destuffed), s.maxFrame)
	}

	payload := destuffed[:len(destuffed)-2]
	wantCRC := binary.BigEndian.Uint16(destuffed[len(destuffed)-2:])
	if bitfield.CRC16X25(payload) != wantCRC {
		return Frame{}, fmt.Errorf("%w: CRC-16/X.25 mismatch", ErrHDLCFraming)
	}
	return Frame{Bytes: payload}, nil
}
