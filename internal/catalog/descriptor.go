package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tuannm99/verticareader/internal/alias/util"
	"github.com/tuannm99/verticareader/internal/record"
)

// LoadSchemaFile reads a column descriptor file. See LoadSchema.
func LoadSchemaFile(path string) (record.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return record.Schema{}, fmt.Errorf("open descriptor: %w", err)
	}
	defer util.CloseFunc(f, path)
	return LoadSchema(f)
}

// LoadSchema parses one column per line in file order:
//
//	type[/name[/conversion]]
//
// Blank lines and lines starting with '#' are skipped. Numeric columns may
// declare precision and scale as numeric(p,s).
func LoadSchema(r io.Reader) (record.Schema, error) {
	var schema record.Schema
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, commentPrefix) {
			continue
		}
		col, err := parseColumn(text)
		if err != nil {
			return record.Schema{}, &LineError{Line: lineNo, Text: text, Err: err}
		}
		col.Index = len(schema.Cols)
		schema.Cols = append(schema.Cols, col)
	}
	if err := sc.Err(); err != nil {
		return record.Schema{}, fmt.Errorf("read descriptor: %w", err)
	}
	if schema.NumCols() == 0 {
		return record.Schema{}, fmt.Errorf("%w: no columns", ErrConfig)
	}
	return schema, nil
}

func parseColumn(line string) (record.Column, error) {
	parts := strings.Split(line, fieldSeparator)
	if len(parts) > 3 {
		return record.Column{}, fmt.Errorf("expected type[/name[/conversion]], got %d fields", len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	col, err := parseType(parts[0])
	if err != nil {
		return record.Column{}, err
	}
	if len(parts) > 1 {
		col.Name = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		conv, ok := record.ParseConversion(parts[2])
		if !ok {
			return record.Column{}, fmt.Errorf("unknown conversion %q", parts[2])
		}
		if col.Name == "" {
			return record.Column{}, errors.New("conversion requires a column name")
		}
		if !col.Type.Binary() {
			return record.Column{}, fmt.Errorf("conversion %s does not apply to %s", conv, col.Type)
		}
		col.Conversion = conv
	}
	return col, nil
}

// parseType accepts a bare type name or one followed by a parenthesised
// argument list. Only numeric keeps its arguments; lengths on other types
// are documentation and come from the file header instead.
func parseType(s string) (record.Column, error) {
	name, args, hasArgs := s, "", false
	if i := strings.IndexByte(s, '('); i >= 0 {
		if !strings.HasSuffix(s, ")") {
			return record.Column{}, fmt.Errorf("unterminated type arguments in %q", s)
		}
		name, args, hasArgs = strings.TrimSpace(s[:i]), s[i+1:len(s)-1], true
	}
	if name == "" {
		return record.Column{}, errors.New("missing column type")
	}
	t, ok := record.ParseType(name)
	if !ok {
		return record.Column{}, fmt.Errorf("unknown column type %q", name)
	}
	col := record.Column{Type: t}
	if t != record.ColNumeric || !hasArgs {
		return col, nil
	}

	p, sc, err := parseNumericArgs(args)
	if err != nil {
		return record.Column{}, err
	}
	col.Precision, col.Scale = p, sc
	return col, nil
}

func parseNumericArgs(args string) (precision, scale int, err error) {
	fields := strings.Split(args, ",")
	if len(fields) > 2 {
		return 0, 0, fmt.Errorf("numeric takes (precision[,scale]), got %q", args)
	}
	precision, err = strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("numeric precision %q: %w", fields[0], err)
	}
	if precision < 1 || precision > maxNumericPrecision {
		return 0, 0, fmt.Errorf("numeric precision %d out of range 1..%d", precision, maxNumericPrecision)
	}
	if len(fields) == 2 {
		scale, err = strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("numeric scale %q: %w", fields[1], err)
		}
		if scale < 0 || scale > precision {
			return 0, 0, fmt.Errorf("numeric scale %d out of range 0..%d", scale, precision)
		}
	}
	return precision, scale, nil
}
