// Package native decodes Vertica native binary export files.
//
// A file is a fixed header (signature, version, one width per column)
// followed by length-prefixed row groups. Decoding is pull based: the caller
// drives Next, and only the current row group's bytes are held in memory.
package native

import (
	"errors"
	"io"
	"iter"

	"github.com/tuannm99/verticareader/internal/record"
)

type Options struct {
	// Limit stops decoding after this many rows. 0 means no limit.
	Limit int64
	// MaxGroupSize caps a single row group. 0 means DefaultMaxGroupSize.
	MaxGroupSize int
}

// Stats counts what a Decoder has consumed so far.
type Stats struct {
	Rows      int64
	RowGroups int64
	Nulls     int64
	Bytes     int64
}

type Decoder struct {
	src    io.Reader
	header Header
	groups *GroupReader
	rows   *RowDecoder
	opts   Options

	emitted int64
	nulls   int64
	err     error // sticky; io.EOF once exhausted
	closed  bool
}

// Open validates the header of r against schema. No row is decoded until
// Next is called.
func Open(r io.Reader, schema record.Schema, opts Options) (*Decoder, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if schema.NumCols() != h.NumCols() {
		return nil, errColumnCount(schema.NumCols(), h.NumCols())
	}
	rows, err := NewRowDecoder(schema, h.Widths)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		src:    r,
		header: h,
		groups: NewGroupReader(r, h.Size(), opts.MaxGroupSize),
		rows:   rows,
		opts:   opts,
	}, nil
}

func (d *Decoder) Header() Header { return d.header }

// Schema is the schema rows are decoded with, column indexes filled in.
func (d *Decoder) Schema() record.Schema { return *d.rows.schema }

// Next returns the next row, or io.EOF once the stream or the row limit is
// exhausted. Any other error is fatal and returned again on later calls.
func (d *Decoder) Next() (Row, error) {
	if d.err != nil {
		return Row{}, d.err
	}
	if d.opts.Limit > 0 && d.emitted >= d.opts.Limit {
		d.err = io.EOF
		return Row{}, d.err
	}

	for !d.rows.More() {
		payload, start, err := d.groups.Next()
		if err != nil {
			d.err = err
			return Row{}, err
		}
		d.rows.Reset(payload, start)
	}

	row, err := d.rows.Next(d.emitted)
	if err != nil {
		d.err = err
		return Row{}, err
	}
	d.emitted++
	d.nulls += int64(row.NullCount())
	return row, nil
}

// Scan calls fn for every remaining row. It stops at the first error from
// decoding or from fn.
func (d *Decoder) Scan(fn func(row Row) error) error {
	for {
		row, err := d.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

// All yields the remaining rows. A decode error is yielded once, last.
func (d *Decoder) All() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for {
			row, err := d.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

func (d *Decoder) Stats() Stats {
	return Stats{
		Rows:      d.emitted,
		RowGroups: d.groups.Groups(),
		Nulls:     d.nulls,
		Bytes:     d.groups.Offset(),
	}
}

// Close stops decoding and closes the source when it is an io.Closer.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.err == nil {
		d.err = io.EOF
	}
	if c, ok := d.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
