package native

import (
	"errors"
	"fmt"
)

// ---- Errors ----
var (
	ErrHeader         = errors.New("native: invalid file header")
	ErrFraming        = errors.New("native: corrupt row group framing")
	ErrSchemaMismatch = errors.New("native: schema does not match file")
	ErrDecode         = errors.New("native: malformed column value")
)

// ValueError locates a framing or decode failure inside a row group.
// Column is -1 when the failure is in the null bitmap.
type ValueError struct {
	Kind   error // ErrFraming or ErrDecode
	Column int
	Row    int64
	Offset int64
	Err    error
}

func (e *ValueError) Error() string {
	msg := fmt.Sprintf("%v: column %d, row %d, offset %d", e.Kind, e.Column, e.Row, e.Offset)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValueError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ErrorKind reports which of the package sentinels err carries, or nil.
func ErrorKind(err error) error {
	for _, k := range []error{ErrHeader, ErrFraming, ErrSchemaMismatch, ErrDecode} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

func errColumnCount(schemaCols, fileCols int) error {
	return fmt.Errorf("%w: schema has %d columns, file has %d", ErrSchemaMismatch, schemaCols, fileCols)
}
