package record

import (
	"fmt"
	"strings"
)

type ColumnType uint8

const (
	ColInteger ColumnType = iota + 1
	ColFloat
	ColChar
	ColVarchar
	ColBoolean
	ColDate
	ColTimestamp
	ColTimestampTz
	ColTime
	ColTimeTz
	ColVarbinary
	ColBinary
	ColNumeric
	ColInterval
)

var typeNames = map[ColumnType]string{
	ColInteger:     "integer",
	ColFloat:       "float",
	ColChar:        "char",
	ColVarchar:     "varchar",
	ColBoolean:     "boolean",
	ColDate:        "date",
	ColTimestamp:   "timestamp",
	ColTimestampTz: "timestamptz",
	ColTime:        "time",
	ColTimeTz:      "timetz",
	ColVarbinary:   "varbinary",
	ColBinary:      "binary",
	ColNumeric:     "numeric",
	ColInterval:    "interval",
}

var typesByName = map[string]ColumnType{
	"int": ColInteger,
}

func init() {
	for t, name := range typeNames {
		typesByName[name] = t
	}
}

func (t ColumnType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ColumnType(%d)", uint8(t))
}

// ParseType resolves a type name case-insensitively.
func ParseType(name string) (ColumnType, bool) {
	t, ok := typesByName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Variable reports whether values of this type carry a u32 length prefix.
func (t ColumnType) Variable() bool {
	return t == ColVarchar || t == ColVarbinary
}

// Binary reports whether values of this type are raw bytes.
func (t ColumnType) Binary() bool {
	return t == ColVarbinary || t == ColBinary
}

// Conversion selects an alternative text rendering for binary columns.
type Conversion uint8

const (
	ConvNone Conversion = iota
	ConvIPAddress
	ConvMACAddress
)

func (c Conversion) String() string {
	switch c {
	case ConvIPAddress:
		return "ip-address"
	case ConvMACAddress:
		return "mac-address"
	default:
		return ""
	}
}

// ParseConversion accepts the hyphenated, compact and short spellings.
func ParseConversion(name string) (Conversion, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ip-address", "ipaddress", "ip":
		return ConvIPAddress, true
	case "mac-address", "macaddress", "mac":
		return ConvMACAddress, true
	}
	return ConvNone, false
}

// Column describes one column of a native file.
// Precision is 0 when the descriptor did not declare one.
type Column struct {
	Index      int
	Name       string
	Type       ColumnType
	Conversion Conversion
	Precision  int
	Scale      int
}

type Schema struct {
	Cols []Column
}

func (s Schema) NumCols() int { return len(s.Cols) }

// HasNames reports whether every column carries a display name.
func (s Schema) HasNames() bool {
	if len(s.Cols) == 0 {
		return false
	}
	for _, c := range s.Cols {
		if c.Name == "" {
			return false
		}
	}
	return true
}

// Names returns the display names in column order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Cols))
	for i, c := range s.Cols {
		out[i] = c.Name
	}
	return out
}
