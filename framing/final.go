package framing

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/loxasys/asterix/bitfield"
)

// ErrChecksum reports a FINAL-framing checksum mismatch (spec.md §4.4.4).
var ErrChecksum = fmt.Errorf("%w: FINAL checksum mismatch", ErrFraming)

// FinalSource frames FINAL-encapsulated ASTERIX: each frame is
// [len:u16 big-endian][asterix bytes: len][checksum:u16], the checksum
// being the 16-bit sum of the payload bytes modulo 2^16. A mismatched
// checksum drops the frame rather than passing it downstream.
type FinalSource struct {
	data []byte
	pos  int
}

func NewFinalSource(data []byte) *FinalSource {
	return &FinalSource{data: data}
}

func (s *FinalSource) Name() string { return "final" }
func (s *FinalSource) Close() error { return nil }

// Next skips any frame that fails its checksum and returns the next
// checksum-valid frame, or io.EOF once the input is exhausted.
func (s *FinalSource) Next() (Frame, error) {
	for {
		if s.pos >= len(s.data) {
			return Frame{}, io.EOF
		}
		if len(s.data)-s.pos < 2 {
			return Frame{}, fmt.Errorf("%w: %d bytes remain, need 2 for length", ErrFraming, len(s.data)-s.pos)
		}
		payloadLen := int(binary.BigEndian.Uint16(s.data[s.pos : s.pos+2]))
		need := 2 + payloadLen + 2
		if need > len(s.data)-s.pos {
			return Frame{}, fmt.Errorf("%w: frame needs %d bytes, %d available", ErrFraming, need, len(s.data)-s.pos)
		}
		payload := s.data[s.pos+2 : s.pos+2+payloadLen]
		wantSum := binary.BigEndian.Uint16(s.data[s.pos+2+payloadLen : s.pos+need])
		s.pos += need

		if bitfield.SumChecksum16(payload) != wantSum {
			continue // drop this frame, try the next one (spec.md §4.4.4)
		}
		return Frame{Bytes: payload}, nil
	}
}
