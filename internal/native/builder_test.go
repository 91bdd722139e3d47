package native

import (
	"bytes"
	"math"
	"math/big"

	"github.com/tuannm99/verticareader/internal/alias/bx"
	"github.com/tuannm99/verticareader/internal/record"
)

// fileBuilder assembles native files for tests.
type fileBuilder struct {
	buf bytes.Buffer
}

func newFile(widths ...uint32) *fileBuilder {
	f := &fileBuilder{}
	f.buf.Write(Signature[:])
	f.buf.Write(bx.AppendU32(nil, uint32(headerFixedSize+4*len(widths))))
	f.buf.Write(bx.AppendU16(nil, FormatVersion))
	f.buf.WriteByte(0)
	f.buf.Write(bx.AppendU16(nil, uint16(len(widths))))
	for _, w := range widths {
		f.buf.Write(bx.AppendU32(nil, w))
	}
	return f
}

// group appends one row group holding rows back to back.
func (f *fileBuilder) group(rows ...[]byte) *fileBuilder {
	payload := bytes.Join(rows, nil)
	f.buf.Write(bx.AppendU32(nil, uint32(len(payload))))
	f.buf.Write(payload)
	return f
}

func (f *fileBuilder) bytes() []byte { return f.buf.Bytes() }

func row(bitmap []byte, fields ...[]byte) []byte {
	return append(append([]byte{}, bitmap...), bytes.Join(fields, nil)...)
}

func i64(v int64) []byte   { return bx.AppendU64(nil, uint64(v)) }
func f64(v float64) []byte { return bx.AppendU64(nil, math.Float64bits(v)) }
func u8(v byte) []byte     { return []byte{v} }

func varField(b []byte) []byte {
	return append(bx.AppendU32(nil, uint32(len(b))), b...)
}

// numericBytes encodes v the way NUMERIC is stored: width bytes of two's
// complement, most significant 64-bit word first, each word little-endian.
func numericBytes(v *big.Int, width int) []byte {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Add(u, mod)
	}
	be := u.FillBytes(make([]byte, width))
	out := make([]byte, width)
	for w := 0; w < width; w += 8 {
		for j := 0; j < 8; j++ {
			out[w+j] = be[w+7-j]
		}
	}
	return out
}

func cols(types ...record.ColumnType) record.Schema {
	s := record.Schema{}
	for i, t := range types {
		s.Cols = append(s.Cols, record.Column{Index: i, Type: t})
	}
	return s
}
