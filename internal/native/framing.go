package native

import (
	"errors"
	"fmt"
	"io"

	"github.com/tuannm99/verticareader/internal/alias/bx"
)

const (
	// DefaultMaxGroupSize limits memory usage on malformed input.
	DefaultMaxGroupSize = 64 << 20 // 64 MiB
)

// GroupReader yields the raw payload of each length-prefixed row group.
// The returned payload is only valid until the next call.
type GroupReader struct {
	r      io.Reader
	buf    []byte
	off    int64
	max    uint32
	groups int64
}

// NewGroupReader reads row groups from r, which must be positioned right
// after the file header. base is the absolute stream offset of that position.
func NewGroupReader(r io.Reader, base int64, maxSize int) *GroupReader {
	if maxSize <= 0 {
		maxSize = DefaultMaxGroupSize
	}
	return &GroupReader{r: r, off: base, max: uint32(maxSize)}
}

// Next returns the next payload and the absolute offset of its first byte.
// io.EOF is returned only at a length prefix boundary.
func (g *GroupReader) Next() ([]byte, int64, error) {
	var hdr [4]byte
	n, err := io.ReadFull(g.r, hdr[:])
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, fmt.Errorf("%w: truncated length prefix at offset %d (%d of 4 bytes)", ErrFraming, g.off, n)
		}
		return nil, 0, fmt.Errorf("native: read row group length: %w", err)
	}
	g.off += 4

	size := bx.U32(hdr[:])
	if size > g.max {
		return nil, 0, fmt.Errorf("%w: row group at offset %d too large: %d > %d", ErrFraming, g.off-4, size, g.max)
	}

	if cap(g.buf) < int(size) {
		g.buf = make([]byte, size)
	}
	payload := g.buf[:size]
	start := g.off
	if n, err := io.ReadFull(g.r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, fmt.Errorf("%w: row group at offset %d declares %d bytes, stream ended after %d", ErrFraming, start, size, n)
		}
		return nil, 0, fmt.Errorf("native: read row group: %w", err)
	}
	g.off += int64(size)
	g.groups++
	return payload, start, nil
}

// Offset is the absolute stream offset of the next unread byte.
func (g *GroupReader) Offset() int64 { return g.off }

func (g *GroupReader) Groups() int64 { return g.groups }
