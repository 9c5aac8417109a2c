package framing

import (
	"encoding/binary"
	"fmt"
)

// oradisMagic identifies an ORADIS-encapsulated frame header.
const oradisMagic = 0x4F52 // "OR"

// oradisHeaderLen is magic(2) + sequence(4) + payload length(2).
const oradisHeaderLen = 8

// ErrORADISFraming reports an ORADIS header violation.
var ErrORADISFraming = fmt.Errorf("%w: ORADIS framing", ErrFraming)

// ORADISSource strips the fixed ORADIS encapsulation header from each
// frame of an underlying Source (raw or PCAP, spec.md §4.4.3), honoring the
// header's own payload-length field rather than the outer transport length.
type ORADISSource struct {
	inner Source
}

// NewORADISSource wraps inner, unwrapping one ORADIS header per frame.
func NewORADISSource(inner Source) *ORADISSource {
	return &ORADISSource{inner: inner}
}

func (s *ORADISSource) Name() string { return "oradis/" + s.inner.Name() }
func (s *ORADISSource) Close() error { return s.inner.Close() }

func (s *ORADISSource) Next() (Frame, error) {
	outer, err := s.inner.Next()
	if err != nil {
		return Frame{}, err
	}
	if len(outer.Bytes) < oradisHeaderLen {
		return Frame{}, fmt.Errorf("%w: frame of %d bytes shorter than %d-byte header", ErrORADISFraming, len(outer.Bytes), oradisHeaderLen)
	}
	magic := binary.BigEndian.Uint16(outer.Bytes[0:2])
	if magic != oradisMagic {
		return Frame{}, fmt.Errorf("%w: bad magic %#04x", ErrORADISFraming, magic)
	}
	payloadLen := int(binary.BigEndian.Uint16(outer.Bytes[6:8]))
	if oradisHeaderLen+payloadLen > len(outer.Bytes) {
		return Frame{}, fmt.Errorf("%w: declared payload length %d exceeds %d available", ErrORADISFraming, payloadLen, len(outer.Bytes)-oradisHeaderLen)
	}
	return Frame{
		Bytes:       outer.Bytes[oradisHeaderLen : oradisHeaderLen+payloadLen],
		TimestampUs: outer.TimestampUs,
	}, nil
}
