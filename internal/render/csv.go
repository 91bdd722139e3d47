package render

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tuannm99/verticareader/internal/native"
	"github.com/tuannm99/verticareader/internal/record"
)

// fieldWriter is the subset of *csv.Writer the CSV output needs.
type fieldWriter interface {
	Write(record []string) error
	Flush()
	Error() error
}

type csvWriter struct {
	w      fieldWriter
	opts   Options
	fields []string
}

func newCSVWriter(w io.Writer, opts Options) *csvWriter {
	var fw fieldWriter
	if opts.SingleQuote {
		fw = newQuoteWriter(w, opts.Delimiter, '\'')
	} else {
		cw := csv.NewWriter(w)
		cw.Comma = opts.Delimiter
		fw = cw
	}
	return &csvWriter{w: fw, opts: opts}
}

// WriteHeader writes column names only when every column has one.
func (c *csvWriter) WriteHeader(schema record.Schema) error {
	if c.opts.NoHeader || !schema.HasNames() {
		return nil
	}
	return c.w.Write(schema.Names())
}

func (c *csvWriter) WriteRow(row native.Row) error {
	c.fields = c.fields[:0]
	for i := 0; i < row.Len(); i++ {
		c.fields = append(c.fields, row.Text(i, c.opts.Render))
	}
	return c.w.Write(c.fields)
}

func (c *csvWriter) Close() error {
	c.w.Flush()
	return c.w.Error()
}

// quoteWriter follows encoding/csv's quoting rules with a configurable
// quote character.
type quoteWriter struct {
	w     *bufio.Writer
	comma rune
	quote rune
	err   error
}

func newQuoteWriter(w io.Writer, comma, quote rune) *quoteWriter {
	return &quoteWriter{w: bufio.NewWriter(w), comma: comma, quote: quote}
}

func (q *quoteWriter) Write(record []string) error {
	if q.err != nil {
		return q.err
	}
	for i, field := range record {
		if i > 0 {
			q.w.WriteRune(q.comma)
		}
		if !q.needsQuotes(field) {
			q.w.WriteString(field)
			continue
		}
		q.w.WriteRune(q.quote)
		for _, r := range field {
			if r == q.quote {
				q.w.WriteRune(q.quote)
			}
			q.w.WriteRune(r)
		}
		q.w.WriteRune(q.quote)
	}
	_, q.err = q.w.WriteString("\n")
	return q.err
}

func (q *quoteWriter) needsQuotes(field string) bool {
	if field == "" {
		return false
	}
	if strings.ContainsRune(field, q.comma) || strings.ContainsRune(field, q.quote) ||
		strings.ContainsAny(field, "\r\n") {
		return true
	}
	r, _ := utf8.DecodeRuneInString(field)
	return unicode.IsSpace(r)
}

func (q *quoteWriter) Flush() {
	if err := q.w.Flush(); err != nil && q.err == nil {
		q.err = err
	}
}

func (q *quoteWriter) Error() error { return q.err }
