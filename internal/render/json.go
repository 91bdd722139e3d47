package render

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/tuannm99/verticareader/internal/native"
	"github.com/tuannm99/verticareader/internal/record"
)

// jsonWriter emits one object per row with keys in column order. In array
// mode the objects are wrapped in [ ] and separated by commas.
type jsonWriter struct {
	w     *bufio.Writer
	opts  Options
	array bool
	keys  [][]byte
	rows  int64
	buf   bytes.Buffer
	enc   *json.Encoder
}

func newJSONWriter(w io.Writer, opts Options) *jsonWriter {
	j := &jsonWriter{w: bufio.NewWriter(w), opts: opts, array: opts.Format == FormatJSON}
	j.enc = json.NewEncoder(&j.buf)
	j.enc.SetEscapeHTML(false)
	return j
}

func (j *jsonWriter) WriteHeader(schema record.Schema) error {
	j.keys = make([][]byte, schema.NumCols())
	for i, name := range schema.Names() {
		k, err := j.marshal(name)
		if err != nil {
			return err
		}
		j.keys[i] = append(append([]byte(nil), k...), ':')
	}
	if j.array {
		_, err := j.w.WriteString("[")
		return err
	}
	return nil
}

func (j *jsonWriter) WriteRow(row native.Row) error {
	if j.array && j.rows > 0 {
		j.w.WriteByte(',')
	}
	j.rows++

	j.w.WriteByte('{')
	for i := 0; i < row.Len(); i++ {
		if i > 0 {
			j.w.WriteByte(',')
		}
		j.w.Write(j.keys[i])
		v, err := j.value(row, i)
		if err != nil {
			return err
		}
		j.w.Write(v)
	}
	j.w.WriteByte('}')
	if !j.array {
		j.w.WriteByte('\n')
	}
	return nil
}

// value renders column i as a JSON literal. Integers, numerics and finite
// floats are numbers, booleans are booleans, everything else is the
// canonical text as a string.
func (j *jsonWriter) value(row native.Row, i int) ([]byte, error) {
	v := row.Values[i]
	switch v.Kind() {
	case native.KindNull:
		return []byte("null"), nil
	case native.KindInteger:
		return strconv.AppendInt(nil, v.Int(), 10), nil
	case native.KindNumeric:
		return j.marshal(json.Number(v.Numeric().String()))
	case native.KindBoolean:
		return strconv.AppendBool(nil, v.Bool()), nil
	case native.KindFloat:
		if f := v.Float(); !math.IsNaN(f) && !math.IsInf(f, 0) {
			return j.marshal(f)
		}
	}
	return j.marshal(row.Text(i, j.opts.Render))
}

func (j *jsonWriter) marshal(v any) ([]byte, error) {
	j.buf.Reset()
	if err := j.enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(j.buf.Bytes(), []byte("\n")), nil
}

func (j *jsonWriter) Close() error {
	if j.array {
		if j.keys == nil {
			j.w.WriteString("[")
		}
		j.w.WriteString("]\n")
	}
	return j.w.Flush()
}
