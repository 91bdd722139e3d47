package native

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/tuannm99/verticareader/internal/alias/bx"
)

// Signature opens every native file: "NATIVE\n\xFF\r\n\0".
var Signature = [11]byte{0x4e, 0x41, 0x54, 0x49, 0x56, 0x45, 0x0a, 0xff, 0x0d, 0x0a, 0x00}

const (
	FormatVersion = 1

	// VariableWidth marks a column whose values carry a u32 length prefix.
	VariableWidth = math.MaxUint32

	// version(2) + filler(1) + column count(2)
	headerFixedSize = 5
)

// Header layout after the signature (all LE):
//
//	[0..3]  uint32 header length  // bytes that follow, up to the first row group
//	[4..5]  uint16 version        // always 1
//	[6]     filler
//	[7..8]  uint16 column count N
//	[9..]   N x uint32 column width
type Header struct {
	Length  uint32
	Version uint16
	Widths  []uint32
}

func (h Header) NumCols() int { return len(h.Widths) }

// Size is the number of bytes the header occupies, signature included.
func (h Header) Size() int64 {
	return int64(len(Signature)) + 4 + int64(h.Length)
}

// ReadHeader consumes and validates the signature and column definitions.
func ReadHeader(r io.Reader) (Header, error) {
	var sig [len(Signature)]byte
	if err := readFull(r, sig[:], "signature"); err != nil {
		return Header{}, err
	}
	if !bytes.Equal(sig[:], Signature[:]) {
		return Header{}, fmt.Errorf("%w: bad signature % X", ErrHeader, sig[:])
	}

	var fixed [4 + headerFixedSize]byte
	if err := readFull(r, fixed[:], "column definitions"); err != nil {
		return Header{}, err
	}
	length := bx.U32(fixed[0:4])
	h := Header{Length: length, Version: bx.U16(fixed[4:6])}
	// fixed[6] is filler
	ncols := int(bx.U16(fixed[7:9]))

	if h.Version != FormatVersion {
		return Header{}, fmt.Errorf("%w: unsupported version %d", ErrHeader, h.Version)
	}
	want := uint32(headerFixedSize + 4*ncols)
	if length < want {
		return Header{}, fmt.Errorf("%w: header length %d too small for %d columns", ErrHeader, length, ncols)
	}

	widths := make([]byte, 4*ncols)
	if err := readFull(r, widths, "column widths"); err != nil {
		return Header{}, err
	}
	h.Widths = make([]uint32, ncols)
	for i := range h.Widths {
		h.Widths[i] = bx.U32(widths[4*i:])
	}

	// tolerate trailing header bytes from newer writers
	if extra := int64(length - want); extra > 0 {
		if _, err := io.CopyN(io.Discard, r, extra); err != nil {
			return Header{}, fmt.Errorf("%w: skipping %d header bytes: %v", ErrHeader, extra, err)
		}
	}
	return h, nil
}

func readFull(r io.Reader, b []byte, what string) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated %s", ErrHeader, what)
		}
		return fmt.Errorf("native: read %s: %w", what, err)
	}
	return nil
}
