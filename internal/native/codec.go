package native

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/tuannm99/verticareader/internal/alias/bx"
	"github.com/tuannm99/verticareader/internal/record"
)

// decodeFunc reads one non-NULL value at the cursor. It must advance the
// cursor by exactly the bytes the value occupies.
type decodeFunc func(c *bx.Cursor) (Value, error)

// columnPlan is the codec chosen for a column when the decoder opens.
type columnPlan struct {
	col    record.Column
	width  uint32
	decode decodeFunc
}

// NumericWidth is the storage size of NUMERIC(precision): one 64-bit word per
// 19 decimal digits, plus one.
func NumericWidth(precision int) uint32 {
	return uint32((precision/19 + 1) * 8)
}

// fixedWidths lists the types whose width never depends on the column.
var fixedWidths = map[record.ColumnType]uint32{
	record.ColFloat:       8,
	record.ColBoolean:     1,
	record.ColDate:        8,
	record.ColTimestamp:   8,
	record.ColTimestampTz: 8,
	record.ColTime:        8,
	record.ColTimeTz:      8,
	record.ColInterval:    8,
}

func planColumn(col record.Column, width uint32) (columnPlan, error) {
	p := columnPlan{col: col, width: width}
	mismatch := func(want string) error {
		return fmt.Errorf("%w: column %d (%s) has width %s in file, want %s",
			ErrSchemaMismatch, col.Index, col.Type, widthString(width), want)
	}

	if w, ok := fixedWidths[col.Type]; ok && w != width {
		return p, mismatch(fmt.Sprint(w))
	}

	switch col.Type {
	case record.ColInteger:
		switch width {
		case 1, 2, 4, 8:
		default:
			return p, mismatch("1, 2, 4 or 8")
		}
		p.decode = fixed(width, decodeInteger)
	case record.ColFloat:
		p.decode = fixed(width, decodeFloat)
	case record.ColBoolean:
		p.decode = fixed(width, decodeBoolean)
	case record.ColDate:
		p.decode = fixed(width, func(b []byte) (Value, error) { return DateValue(bx.I64(b)), nil })
	case record.ColTimestamp:
		p.decode = fixed(width, func(b []byte) (Value, error) { return TimestampValue(bx.I64(b)), nil })
	case record.ColTimestampTz:
		p.decode = fixed(width, func(b []byte) (Value, error) { return TimestampTzValue(bx.I64(b)), nil })
	case record.ColInterval:
		p.decode = fixed(width, func(b []byte) (Value, error) { return IntervalValue(bx.I64(b)), nil })
	case record.ColTime:
		p.decode = fixed(width, decodeTime)
	case record.ColTimeTz:
		p.decode = fixed(width, decodeTimeTz)
	case record.ColChar:
		if width == VariableWidth {
			return p, mismatch("a fixed width")
		}
		p.decode = fixed(width, decodeChar)
	case record.ColBinary:
		if width == VariableWidth {
			return p, mismatch("a fixed width")
		}
		p.decode = fixed(width, decodeBytes)
	case record.ColVarchar:
		if width != VariableWidth {
			return p, mismatch("variable")
		}
		p.decode = variable(decodeText)
	case record.ColVarbinary:
		if width != VariableWidth {
			return p, mismatch("variable")
		}
		p.decode = variable(decodeBytes)
	case record.ColNumeric:
		if col.Precision > 0 {
			if want := NumericWidth(col.Precision); want != width {
				return p, mismatch(fmt.Sprintf("%d for precision %d", want, col.Precision))
			}
		} else if width == VariableWidth || width == 0 || width%8 != 0 {
			return p, mismatch("a positive multiple of 8")
		}
		scale := col.Scale
		p.decode = fixed(width, func(b []byte) (Value, error) { return decodeNumeric(b, scale), nil })
	default:
		return p, fmt.Errorf("%w: column %d has unsupported type %s", ErrSchemaMismatch, col.Index, col.Type)
	}
	return p, nil
}

func widthString(w uint32) string {
	if w == VariableWidth {
		return "variable"
	}
	return fmt.Sprint(w)
}

func fixed(width uint32, fn func(b []byte) (Value, error)) decodeFunc {
	n := int(width)
	return func(c *bx.Cursor) (Value, error) {
		b, err := c.Take(n)
		if err != nil {
			return Value{}, err
		}
		return fn(b)
	}
}

func variable(fn func(b []byte) (Value, error)) decodeFunc {
	return func(c *bx.Cursor) (Value, error) {
		n, err := c.U32()
		if err != nil {
			return Value{}, err
		}
		b, err := c.Take(int(n))
		if err != nil {
			return Value{}, err
		}
		return fn(b)
	}
}

var (
	errBoolean  = errors.New("boolean byte is not 0 or 1")
	errUTF8     = errors.New("invalid UTF-8")
	errTime     = errors.New("time outside 00:00:00..24:00:00")
	errTZOffset = errors.New("timetz offset outside -24h..+24h")
)

func decodeInteger(b []byte) (Value, error) {
	switch len(b) {
	case 1:
		return IntegerValue(int64(bx.I8(b))), nil
	case 2:
		return IntegerValue(int64(bx.I16(b))), nil
	case 4:
		return IntegerValue(int64(bx.I32(b))), nil
	case 8:
		return IntegerValue(bx.I64(b)), nil
	}
	return Value{}, fmt.Errorf("integer width %d", len(b))
}

func decodeFloat(b []byte) (Value, error) {
	return FloatValue(math.Float64frombits(bx.U64(b))), nil
}

func decodeBoolean(b []byte) (Value, error) {
	switch b[0] {
	case 0:
		return BooleanValue(false), nil
	case 1:
		return BooleanValue(true), nil
	}
	return Value{}, fmt.Errorf("%w: 0x%02X", errBoolean, b[0])
}

func decodeText(b []byte) (Value, error) {
	if !utf8.Valid(b) {
		return Value{}, errUTF8
	}
	return TextValue(string(b)), nil
}

// CHAR is padded with spaces up to the declared width.
func decodeChar(b []byte) (Value, error) {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return decodeText(b[:end])
}

// the payload buffer is reused per row group, so bytes are copied out
func decodeBytes(b []byte) (Value, error) {
	cp := make([]byte, len(b))
	copy(cp, b)
	return BytesValue(cp), nil
}

func decodeTime(b []byte) (Value, error) {
	us := bx.I64(b)
	if us < 0 || us > microsPerDay {
		return Value{}, fmt.Errorf("%w: %d us", errTime, us)
	}
	return TimeValue(us), nil
}

// TIMETZ packs microseconds since midnight UTC in the upper 40 bits and
// (24h - offset) in seconds in the lower 24 bits.
func decodeTimeTz(b []byte) (Value, error) {
	raw := bx.U64(b)
	us := int64(raw >> 24)
	shifted := int64(raw & 0xFFFFFF)
	if shifted > 2*86400 {
		return Value{}, fmt.Errorf("%w: stored %d", errTZOffset, shifted)
	}
	if us > microsPerDay {
		return Value{}, fmt.Errorf("%w: %d us", errTime, us)
	}
	return TimeTzValue(us, int32(86400-shifted)), nil
}

// NUMERIC is a sequence of 64-bit little-endian words, most significant word
// first, forming one two's complement integer.
func decodeNumeric(b []byte, scale int) Value {
	be := make([]byte, len(b))
	for w := 0; w+8 <= len(b); w += 8 {
		for j := 0; j < 8; j++ {
			be[w+7-j] = b[w+j]
		}
	}

	neg := len(be) > 0 && be[0]&0x80 != 0
	if neg {
		// two's complement negate: invert, then add one
		for i := range be {
			be[i] = ^be[i]
		}
		for i := len(be) - 1; i >= 0; i-- {
			be[i]++
			if be[i] != 0 {
				break
			}
		}
	}

	start := 0
	for start < len(be) && be[start] == 0 {
		start++
	}
	return NumericValue(Numeric{Negative: neg, Magnitude: be[start:], Scale: scale})
}
