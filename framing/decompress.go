package framing

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/valyala/gozstd"
)

// Codec identifies a capture-file compression format.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecGzip
	CodecLZ4
	CodecZstd
)

var (
	gzipMagic = []byte{0x1F, 0x8B}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

// DetectCodec inspects the leading bytes of a capture file and reports
// which codec produced it, or CodecNone if it looks uncompressed.
func DetectCodec(header []byte) Codec {
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return CodecGzip
	case bytes.HasPrefix(header, lz4Magic):
		return CodecLZ4
	case bytes.HasPrefix(header, zstdMagic):
		return CodecZstd
	default:
		return CodecNone
	}
}

// DecompressingSource wraps r with whichever codec DetectCodec identifies
// from its first few bytes, transparently, before any framing sublayer
// runs. Each compression dependency in the domain stack gets its own magic
// byte sequence and its own call site here, rather than three interfaces to
// the same concern.
func DecompressingSource(r io.Reader) (io.Reader, Codec, error) {
	br := bufReadPeeker{r: r}
	header, err := br.peek(4)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, CodecNone, fmt.Errorf("%w: reading capture header: %v", ErrFraming, err)
	}

	switch DetectCodec(header) {
	case CodecGzip:
		gz, err := gzip.NewReader(br.reader())
		if err != nil {
			return nil, CodecNone, fmt.Errorf("%w: gzip: %v", ErrFraming, err)
		}
		return gz, CodecGzip, nil
	case CodecLZ4:
		return lz4.NewReader(br.reader()), CodecLZ4, nil
	case CodecZstd:
		return gozstd.NewReader(br.reader()), CodecZstd, nil
	default:
		return br.reader(), CodecNone, nil
	}
}

// bufReadPeeker lets DecompressingSource inspect a few leading bytes of r
// without consuming them from the stream the chosen decompressor then
// reads.
type bufReadPeeker struct {
	r   io.Reader
	buf []byte
}

func (p *bufReadPeeker) peek(n int) ([]byte, error) {
	p.buf = make([]byte, n)
	read, err := io.ReadFull(p.r, p.buf)
	p.buf = p.buf[:read]
	return p.buf, err
}

func (p *bufReadPeeker) reader() io.Reader {
	return io.MultiReader(bytes.NewReader(p.buf), p.r)
}
