// Package framing implements the framing sublayers of spec.md §4.4: each
// sublayer pulls length-delimited ASTERIX byte spans out of some outer
// encapsulation (raw concatenation, a libpcap capture, ORADIS, FINAL, HDLC,
// or GPS), one frame at a time, restartable when its underlying input is.
package framing

import (
	"fmt"
	"io"
)

// Frame is one ASTERIX block span handed to package decode, plus the
// microsecond timestamp the framing layer attached to it (spec.md §4.4.6
// "the framer propagates the timestamp to the decoder as the record
// timestamp_µs").
type Frame struct {
	Bytes       []byte
	TimestampUs int64
}

// Source is the common pull-style iterator every framing sublayer
// implements, mirroring the teacher's AsterixReader interface
// (idefix/internal/asxreader/reader.go) generalized from one fixed
// transport to any of the sublayers below.
type Source interface {
	io.Closer
	// Next returns the next frame, or io.EOF when the source is exhausted.
	Next() (Frame, error)
	// Name identifies the sublayer, for logging.
	Name() string
}

// ErrFraming is the shared sentinel every sublayer wraps its own framing
// violations with (spec.md §7).
var ErrFraming = fmt.Errorf("framing: error")
