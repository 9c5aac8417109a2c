package decode

import (
	"fmt"

	"github.com/loxasys/asterix/specmodel"
)

// parseFSPEC reads FSPEC octets off cur until one with FX (LSB) = 0, per
// spec.md §4.3.2: each byte contributes 7 present/absent flags MSB-first,
// the LSB is the extension bit. It returns one bool per FRN, 1-origin
// (present[0] is FRN 1). FSPEC longer than maxBytes is MalformedFspec, the
// same CVE class the teacher's FSPEC.Decode guards against with its
// eight-byte safety check.
func parseFSPEC(cur *specmodel.Cursor, maxBytes int) ([]bool, error) {
	var present []bool
	n := 0
	for {
		b, ok := cur.Take(1)
		if !ok {
			return nil, fmt.Errorf("%w: no bytes remaining for FSPEC octet %d", ErrMalformedFspec, n+1)
		}
		n++
		octet := b[0]
		for bit := 7; bit >= 1; bit-- {
			present = append(present, octet&(1<<uint(bit)) != 0)
		}
		if octet&0x01 == 0 {
			break
		}
		if n >= maxBytes {
			return nil, fmt.Errorf("%w: exceeded %d extension bytes", ErrMalformedFspec, maxBytes)
		}
	}
	return present, nil
}
