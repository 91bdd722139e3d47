package native

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

type Kind uint8

// The zero Kind is KindNull so the zero Value is NULL.
const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindText
	KindBoolean
	KindDate
	KindTimestamp
	KindTimestampTz
	KindTime
	KindTimeTz
	KindBytes
	KindNumeric
	KindInterval
)

var kindNames = [...]string{
	KindNull:        "null",
	KindInteger:     "integer",
	KindFloat:       "float",
	KindText:        "text",
	KindBoolean:     "boolean",
	KindDate:        "date",
	KindTimestamp:   "timestamp",
	KindTimestampTz: "timestamptz",
	KindTime:        "time",
	KindTimeTz:      "timetz",
	KindBytes:       "bytes",
	KindNumeric:     "numeric",
	KindInterval:    "interval",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is one decoded column value. Dates hold days since the epoch;
// timestamps, times and intervals hold microseconds.
type Value struct {
	kind   Kind
	i64    int64
	f64    float64
	str    string
	bytes  []byte
	num    Numeric
	offset int32 // TimeTz only, seconds east of UTC
}

func Null() Value                     { return Value{} }
func IntegerValue(v int64) Value      { return Value{kind: KindInteger, i64: v} }
func FloatValue(v float64) Value      { return Value{kind: KindFloat, f64: v} }
func TextValue(v string) Value        { return Value{kind: KindText, str: v} }
func DateValue(days int64) Value      { return Value{kind: KindDate, i64: days} }
func TimestampValue(us int64) Value   { return Value{kind: KindTimestamp, i64: us} }
func TimestampTzValue(us int64) Value { return Value{kind: KindTimestampTz, i64: us} }
func TimeValue(us int64) Value        { return Value{kind: KindTime, i64: us} }
func IntervalValue(us int64) Value    { return Value{kind: KindInterval, i64: us} }
func BytesValue(b []byte) Value       { return Value{kind: KindBytes, bytes: b} }
func NumericValue(n Numeric) Value    { return Value{kind: KindNumeric, num: n} }
func TimeTzValue(us int64, offsetSeconds int32) Value {
	return Value{kind: KindTimeTz, i64: us, offset: offsetSeconds}
}

func BooleanValue(v bool) Value {
	if v {
		return Value{kind: KindBoolean, i64: 1}
	}
	return Value{kind: KindBoolean}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) Int() int64     { return v.i64 }
func (v Value) Float() float64 { return v.f64 }
func (v Value) Bool() bool     { return v.i64 != 0 }
func (v Value) Str() string    { return v.str }
func (v Value) Bytes() []byte  { return v.bytes }
func (v Value) Numeric() Numeric {
	return v.num
}

// Offset is the embedded UTC offset of a TimeTz value, in seconds.
func (v Value) Offset() int32 { return v.offset }

// Epoch is day zero for dates and timestamps.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	microsPerSecond = int64(time.Second / time.Microsecond)
	microsPerDay    = 86400 * microsPerSecond
)

// Time converts a date or timestamp value to a UTC time.
func (v Value) Time() time.Time {
	switch v.kind {
	case KindDate:
		return Epoch.AddDate(0, 0, int(v.i64))
	case KindTimestamp, KindTimestampTz:
		return epochPlusMicros(v.i64)
	}
	return time.Time{}
}

// time.Duration only spans ~292 years, so whole days go through AddDate.
func epochPlusMicros(us int64) time.Time {
	days := us / microsPerDay
	rem := us % microsPerDay
	return Epoch.AddDate(0, 0, int(days)).Add(time.Duration(rem) * time.Microsecond)
}

// Numeric is an exact decimal: (-1)^Negative * Magnitude * 10^-Scale, with
// Magnitude an unsigned big-endian integer.
type Numeric struct {
	Negative  bool
	Magnitude []byte
	Scale     int
}

// Unscaled returns the signed integer before the decimal point is placed.
func (n Numeric) Unscaled() *big.Int {
	i := new(big.Int).SetBytes(n.Magnitude)
	if n.Negative {
		i.Neg(i)
	}
	return i
}

func (n Numeric) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(n.Unscaled(), -int32(n.Scale))
}

// String renders exactly Scale fractional digits.
func (n Numeric) String() string {
	return n.Decimal().StringFixed(int32(n.Scale))
}
