package native

import (
	"errors"
	"fmt"

	"github.com/tuannm99/verticareader/internal/alias/bx"
	"github.com/tuannm99/verticareader/internal/record"
)

// Row is one decoded row. Values holds exactly one entry per schema column,
// NULLs included, in schema order.
type Row struct {
	Ordinal int64
	Values  []Value
	schema  *record.Schema
}

// NewRow builds a row outside a RowDecoder. values must line up with
// schema.Cols.
func NewRow(schema *record.Schema, ordinal int64, values []Value) Row {
	return Row{Ordinal: ordinal, Values: values, schema: schema}
}

func (r Row) Len() int { return len(r.Values) }

func (r Row) Column(i int) record.Column { return r.schema.Cols[i] }

// Text renders column i as canonical text.
func (r Row) Text(i int, opts RenderOptions) string {
	return Format(r.Values[i], r.schema.Cols[i], opts)
}

// Strings renders every column; NULLs become "".
func (r Row) Strings(opts RenderOptions) []string {
	out := make([]string, len(r.Values))
	for i := range r.Values {
		out[i] = r.Text(i, opts)
	}
	return out
}

// NullCount is the number of NULL columns in the row.
func (r Row) NullCount() int {
	n := 0
	for _, v := range r.Values {
		if v.IsNull() {
			n++
		}
	}
	return n
}

// ---- Row decoding ----
// Row group payload:
// [row]...  with row = [nullmap: ceil(N/8) bytes, MSB first, bit=1 => NULL] [field...]
// Variable-width fields are a u32 length (LE) + data.

// RowDecoder decodes the rows packed in a row group payload.
type RowDecoder struct {
	schema    *record.Schema
	plan      []columnPlan
	bitmapLen int
	cur       bx.Cursor
	base      int64
}

// NewRowDecoder resolves one codec per column from the schema and the
// column widths declared in the file header.
func NewRowDecoder(schema record.Schema, widths []uint32) (*RowDecoder, error) {
	if schema.NumCols() != len(widths) {
		return nil, errColumnCount(schema.NumCols(), len(widths))
	}
	if len(widths) == 0 {
		return nil, fmt.Errorf("%w: file declares no columns", ErrSchemaMismatch)
	}

	cols := make([]record.Column, len(widths))
	d := &RowDecoder{
		schema:    &record.Schema{Cols: cols},
		plan:      make([]columnPlan, len(widths)),
		bitmapLen: (len(widths) + 7) / 8,
	}
	for i, col := range schema.Cols {
		col.Index = i
		cols[i] = col
		p, err := planColumn(col, widths[i])
		if err != nil {
			return nil, err
		}
		d.plan[i] = p
	}
	return d, nil
}

// Reset starts decoding a new payload whose first byte sits at absolute
// stream offset base.
func (d *RowDecoder) Reset(payload []byte, base int64) {
	d.cur.Reset(payload)
	d.base = base
}

// More reports whether unread payload bytes remain.
func (d *RowDecoder) More() bool { return !d.cur.Done() }

// Next decodes the row at the cursor and tags it with ordinal.
func (d *RowDecoder) Next(ordinal int64) (Row, error) {
	bitmap, err := d.cur.Take(d.bitmapLen)
	if err != nil {
		return Row{}, d.fail(ErrFraming, -1, ordinal, d.cur.Offset(), err)
	}

	values := make([]Value, len(d.plan))
	for i := range d.plan {
		if bitmap[i/8]&(0x80>>(uint(i)&7)) != 0 {
			continue // zero Value is NULL
		}
		start := d.cur.Offset()
		v, err := d.plan[i].decode(&d.cur)
		if err != nil {
			if errors.Is(err, bx.ErrShort) {
				return Row{}, d.fail(ErrFraming, i, ordinal, start, err)
			}
			return Row{}, d.fail(ErrDecode, i, ordinal, start, err)
		}
		values[i] = v
	}
	return Row{Ordinal: ordinal, Values: values, schema: d.schema}, nil
}

// Decode decodes every row of payload. The payload must end exactly on a
// row boundary.
func (d *RowDecoder) Decode(payload []byte, base int64, first int64, fn func(Row) error) error {
	d.Reset(payload, base)
	for ord := first; d.More(); ord++ {
		row, err := d.Next(ord)
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func (d *RowDecoder) fail(kind error, col int, row int64, off int, err error) error {
	return &ValueError{Kind: kind, Column: col, Row: row, Offset: d.base + int64(off), Err: err}
}
