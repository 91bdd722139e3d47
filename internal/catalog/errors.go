package catalog

import (
	"errors"
	"fmt"
)

// ErrConfig marks a malformed column descriptor.
var ErrConfig = errors.New("catalog: invalid column descriptor")

// LineError locates a descriptor problem. Line is 1-based.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%v: line %d %q: %v", ErrConfig, e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() []error { return []error{ErrConfig, e.Err} }

const (
	maxNumericPrecision = 1024
	commentPrefix       = "#"
	fieldSeparator      = "/"
)
