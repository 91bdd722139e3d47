// Package render writes decoded rows as CSV, a JSON array or JSON lines.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/tuannm99/verticareader/internal/native"
	"github.com/tuannm99/verticareader/internal/record"
)

var (
	ErrNamesRequired    = errors.New("render: JSON output requires a name for every column")
	ErrInvalidDelimiter = errors.New("render: invalid field delimiter")
)

// Writer receives the header once, then every row, then Close.
type Writer interface {
	WriteHeader(schema record.Schema) error
	WriteRow(row native.Row) error
	Close() error
}

type Format uint8

const (
	FormatCSV Format = iota
	FormatJSON
	FormatJSONLines
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatJSONLines:
		return "jsonl"
	default:
		return "csv"
	}
}

// Ext is the file extension for the format, without compression.
func (f Format) Ext() string { return "." + f.String() }

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "jsonl", "json-lines", "jsonlines", "ndjson":
		return FormatJSONLines, nil
	}
	return FormatCSV, fmt.Errorf("render: unknown output format %q", s)
}

type Options struct {
	Format Format
	// Delimiter separates CSV fields. 0 means ','.
	Delimiter rune
	// SingleQuote quotes CSV fields with ' instead of ".
	SingleQuote bool
	// NoHeader suppresses the CSV header row.
	NoHeader bool
	Render   native.RenderOptions
}

// New returns a Writer for opts.Format on top of w. Closing the Writer
// flushes it but does not close w.
func New(w io.Writer, schema record.Schema, opts Options) (Writer, error) {
	switch opts.Format {
	case FormatJSON, FormatJSONLines:
		if !schema.HasNames() {
			return nil, ErrNamesRequired
		}
		return newJSONWriter(w, opts), nil
	case FormatCSV:
		if opts.Delimiter == 0 {
			opts.Delimiter = ','
		}
		if !validDelim(opts.Delimiter, opts.quote()) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDelimiter, opts.Delimiter)
		}
		return newCSVWriter(w, opts), nil
	}
	return nil, fmt.Errorf("render: unknown output format %d", opts.Format)
}

func (o Options) quote() rune {
	if o.SingleQuote {
		return '\''
	}
	return '"'
}

func validDelim(r, quote rune) bool {
	return r != 0 && r != quote && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}
