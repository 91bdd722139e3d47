package native

import (
	"encoding/hex"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/verticareader/internal/alias/bx"
	"github.com/tuannm99/verticareader/internal/record"
)

// decodeOne plans a single column and decodes raw through it.
func decodeOne(t *testing.T, col record.Column, width uint32, raw []byte) (Value, int) {
	t.Helper()
	p, err := planColumn(col, width)
	require.NoError(t, err)
	c := bx.NewCursor(raw)
	v, err := p.decode(c)
	require.NoError(t, err)
	return v, c.Offset()
}

func formatOne(t *testing.T, col record.Column, width uint32, raw []byte, opts RenderOptions) string {
	t.Helper()
	v, n := decodeOne(t, col, width, raw)
	require.Equal(t, len(raw), n, "codec must consume exactly the value bytes")
	return Format(v, col, opts)
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestIntegerWidths(t *testing.T) {
	col := record.Column{Type: record.ColInteger}

	for _, v := range []int8{-127, -100, -1, 0, 23, 127} {
		v8, _ := decodeOne(t, col, 1, []byte{byte(v)})
		require.Equal(t, int64(v), v8.Int())
	}
	for _, v := range []int16{-32768, -16600, -1, 0, 256, 16235} {
		v16, _ := decodeOne(t, col, 2, bx.AppendU16(nil, uint16(v)))
		require.Equal(t, int64(v), v16.Int())
	}
	for _, v := range []int32{math.MinInt32, -101010101, -1, 0, 65536, math.MaxInt32} {
		v32, _ := decodeOne(t, col, 4, bx.AppendU32(nil, uint32(v)))
		require.Equal(t, int64(v), v32.Int())
	}
	for _, v := range []int64{math.MinInt64, -12345, 0, 900000, math.MaxInt64} {
		require.Equal(t, big.NewInt(v).String(), formatOne(t, col, 8, i64(v), RenderOptions{}))
	}

	_, err := planColumn(col, 3)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestFloat(t *testing.T) {
	col := record.Column{Type: record.ColFloat}
	inputs := []float64{-123456.123, -23.123, 0, 123.23, 123456.123}
	want := []string{"-123456.123", "-23.123", "0", "123.23", "123456.123"}

	for i, in := range inputs {
		v, _ := decodeOne(t, col, 8, f64(in))
		require.Equal(t, math.Float64bits(in), math.Float64bits(v.Float()))
		require.Equal(t, want[i], Format(v, col, RenderOptions{}))
	}

	require.Equal(t, "-1.11", formatOne(t, col, 8, mustHex(t, "C3F5285C8FC2F1BF"), RenderOptions{}))
}

func TestCharAndVarchar(t *testing.T) {
	char := record.Column{Type: record.ColChar}
	require.Equal(t, "one", formatOne(t, char, 10, []byte("one       "), RenderOptions{}))
	require.Equal(t, "  lead", formatOne(t, char, 6, []byte("  lead"), RenderOptions{}))

	varchar := record.Column{Type: record.ColVarchar}
	for _, s := range []string{"a", "ONE", "🚀", "foo, bar, baz", "trailing "} {
		require.Equal(t, s, formatOne(t, varchar, VariableWidth, varField([]byte(s)), RenderOptions{}))
	}

	p, err := planColumn(varchar, VariableWidth)
	require.NoError(t, err)
	_, err = p.decode(bx.NewCursor(varField([]byte{0xff, 0xfe})))
	require.ErrorIs(t, err, errUTF8)

	_, err = planColumn(char, VariableWidth)
	require.ErrorIs(t, err, ErrSchemaMismatch)
	_, err = planColumn(varchar, 10)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestBoolean(t *testing.T) {
	col := record.Column{Type: record.ColBoolean}
	require.Equal(t, "true", formatOne(t, col, 1, u8(1), RenderOptions{}))
	require.Equal(t, "false", formatOne(t, col, 1, u8(0), RenderOptions{}))

	p, err := planColumn(col, 1)
	require.NoError(t, err)
	_, err = p.decode(bx.NewCursor(u8(2)))
	require.ErrorIs(t, err, errBoolean)
}

func TestDateAndTimestamp(t *testing.T) {
	date := record.Column{Type: record.ColDate}
	require.Equal(t, "1999-01-08", formatOne(t, date, 8, mustHex(t, "9AFEFFFFFFFFFFFF"), RenderOptions{}))
	require.Equal(t, "2000-01-01", formatOne(t, date, 8, i64(0), RenderOptions{}))
	require.Equal(t, "2001-01-01", formatOne(t, date, 8, i64(366), RenderOptions{}))

	ts := record.Column{Type: record.ColTimestamp}
	require.Equal(t, "1999-02-23 03:11:52.35", formatOne(t, ts, 8, mustHex(t, "3085B34F7EE7FFFF"), RenderOptions{}))

	// far enough from the epoch to overflow time.Duration
	old := time.Date(1492, time.April, 5, 12, 12, 12, 0, time.UTC)
	us := (old.Unix() - Epoch.Unix()) * microsPerSecond
	v, _ := decodeOne(t, ts, 8, i64(us))
	require.Equal(t, "1492-04-05 12:12:12", Format(v, ts, RenderOptions{}))
	require.True(t, old.Equal(v.Time()))
}

func TestTimestampTz(t *testing.T) {
	col := record.Column{Type: record.ColTimestampTz}
	raw := mustHex(t, "401F3E64E8E3FFFF")

	require.Equal(t, "1999-01-08 12:04:37+00", formatOne(t, col, 8, raw, RenderOptions{}))
	require.Equal(t, "1999-01-08 07:04:37-05", formatOne(t, col, 8, raw, RenderOptions{TZOffset: -5}))

	// the override only touches rendering
	v, _ := decodeOne(t, col, 8, raw)
	_ = Format(v, col, RenderOptions{TZOffset: 3})
	require.Equal(t, int64(-30887723000000), v.Int())
}

func TestTimeAndTimeTz(t *testing.T) {
	tm := record.Column{Type: record.ColTime}
	require.Equal(t, "07:09:23", formatOne(t, tm, 8, mustHex(t, "C02E98FF05000000"), RenderOptions{}))
	require.Equal(t, "24:00:00", formatOne(t, tm, 8, i64(microsPerDay), RenderOptions{}))
	require.Equal(t, "00:00:00.5", formatOne(t, tm, 8, i64(500000), RenderOptions{}))

	p, err := planColumn(tm, 8)
	require.NoError(t, err)
	_, err = p.decode(bx.NewCursor(i64(-1)))
	require.ErrorIs(t, err, errTime)

	tz := record.Column{Type: record.ColTimeTz}
	raw := mustHex(t, "D0970180F079F010")
	v, _ := decodeOne(t, tz, 8, raw)
	require.Equal(t, int32(-5*3600), v.Offset())
	require.Equal(t, "15:12:34-05", Format(v, tz, RenderOptions{}))
	// an embedded offset wins over the override
	require.Equal(t, "15:12:34-05", Format(v, tz, RenderOptions{TZOffset: 2}))
}

func timeTzBytes(utcMicros int64, offsetSeconds int) []byte {
	return bx.AppendU64(nil, uint64(utcMicros)<<24|uint64(86400-offsetSeconds))
}

func TestTimeTz_ZeroOffsetUsesOverride(t *testing.T) {
	tz := record.Column{Type: record.ColTimeTz}
	raw := timeTzBytes(1*3600*microsPerSecond, 0)

	require.Equal(t, "01:00:00+00", formatOne(t, tz, 8, raw, RenderOptions{}))
	require.Equal(t, "22:00:00-03", formatOne(t, tz, 8, raw, RenderOptions{TZOffset: -3}))
}

func TestTimeTz_HalfHourOffset(t *testing.T) {
	tz := record.Column{Type: record.ColTimeTz}
	raw := timeTzBytes(20*3600*microsPerSecond, 5*3600+1800)
	require.Equal(t, "01:30:00+05:30", formatOne(t, tz, 8, raw, RenderOptions{}))
}

func TestTimeTz_BadOffset(t *testing.T) {
	p, err := planColumn(record.Column{Type: record.ColTimeTz}, 8)
	require.NoError(t, err)
	_, err = p.decode(bx.NewCursor(bx.AppendU64(nil, 0xFFFFFF)))
	require.ErrorIs(t, err, errTZOffset)
}

func TestInterval(t *testing.T) {
	col := record.Column{Type: record.ColInterval}
	require.Equal(t, "03:03:03", formatOne(t, col, 8, mustHex(t, "C047A38E02000000"), RenderOptions{}))
	require.Equal(t, "49:00:01.25", formatOne(t, col, 8, i64((49*3600+1)*microsPerSecond+250000), RenderOptions{}))
	require.Equal(t, "-00:00:05", formatOne(t, col, 8, i64(-5*microsPerSecond), RenderOptions{}))
}

func TestBinaryHex(t *testing.T) {
	varbin := record.Column{Type: record.ColVarbinary}
	require.Equal(t, "ABCD", formatOne(t, varbin, VariableWidth, varField([]byte{0xAB, 0xCD}), RenderOptions{}))
	require.Equal(t, "0xABCD", formatOne(t, varbin, VariableWidth, varField([]byte{0xAB, 0xCD}), RenderOptions{HexPrefix: true}))
	require.Equal(t, "", formatOne(t, varbin, VariableWidth, varField(nil), RenderOptions{}))

	bin := record.Column{Type: record.ColBinary}
	require.Equal(t, "0x0A0000", formatOne(t, bin, 3, []byte{0x0A, 0, 0}, RenderOptions{HexPrefix: true}))

	_, err := planColumn(bin, VariableWidth)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestBinaryConversions(t *testing.T) {
	mac := record.Column{Type: record.ColVarbinary, Conversion: record.ConvMACAddress}
	require.Equal(t, "F4:0F:1B:28:F2:4C", formatOne(t, mac, VariableWidth, varField([]byte{0xF4, 0x0F, 0x1B, 0x28, 0xF2, 0x4C}), RenderOptions{}))
	require.Equal(t, "AABBCCDD", formatOne(t, mac, VariableWidth, varField([]byte{0xAA, 0xBB, 0xCC, 0xDD}), RenderOptions{}))

	ip := record.Column{Type: record.ColBinary, Conversion: record.ConvIPAddress}
	require.Equal(t, "192.168.11.2", formatOne(t, ip, 4, []byte{192, 168, 11, 2}, RenderOptions{}))
	require.Equal(t, "192.168.11.2", formatOne(t, ip, 6, []byte{0xFF, 0xFF, 192, 168, 11, 2}, RenderOptions{}))

	v6 := mustHex(t, "20010402042300FFFE9EF16E00000000")
	require.Equal(t, "2001:402:423:ff:fe9e:f16e::", formatOne(t, ip, 16, v6, RenderOptions{}))

	mapped := mustHex(t, "00000000000000000000FFFF0A000001")
	require.Equal(t, "10.0.0.1", formatOne(t, ip, 16, mapped, RenderOptions{}))

	// no matching length: hex, not an error
	require.Equal(t, "0x0102030405", formatOne(t, ip, 5, []byte{1, 2, 3, 4, 5}, RenderOptions{HexPrefix: true}))
}

func TestNumeric(t *testing.T) {
	cases := []struct {
		unscaled string
		scale    int
		want     string
	}{
		{"1234532", 0, "1234532"},
		{"-1234532", 0, "-1234532"},
		{"12345", 1, "1234.5"},
		{"-12345", 1, "-1234.5"},
		{"5", 5, "0.00005"},
		{"-5", 5, "-0.00005"},
		{"100000", 5, "1.00000"},
		{"0", 2, "0.00"},
		{"0", 0, "0"},
		{"123456789012345678901234567890123456", 6, "123456789012345678901234567890.123456"},
		{"-99999999999999999999999999999999999999", 0, "-99999999999999999999999999999999999999"},
	}

	for _, tc := range cases {
		col := record.Column{Type: record.ColNumeric, Precision: 38, Scale: tc.scale}
		n, ok := new(big.Int).SetString(tc.unscaled, 10)
		require.True(t, ok)

		v, consumed := decodeOne(t, col, 24, numericBytes(n, 24))
		require.Equal(t, 24, consumed)
		require.Equal(t, tc.want, Format(v, col, RenderOptions{}), tc.unscaled)
		require.Equal(t, 0, n.Cmp(v.Numeric().Unscaled()), "round trip %s", tc.unscaled)
	}
}

func TestNumeric_VendorSample(t *testing.T) {
	col := record.Column{Type: record.ColNumeric, Precision: 38}
	raw := mustHex(t, "00000000000000000000000000000000" + "64D6120000000000")
	require.Equal(t, "1234532", formatOne(t, col, 24, raw, RenderOptions{}))
}

func TestNumeric_MostNegative(t *testing.T) {
	col := record.Column{Type: record.ColNumeric, Precision: 18, Scale: 2}
	v, _ := decodeOne(t, col, 8, i64(math.MinInt64))
	require.Equal(t, "-92233720368547758.08", Format(v, col, RenderOptions{}))
}

func TestNumeric_Width(t *testing.T) {
	require.Equal(t, uint32(8), NumericWidth(18))
	require.Equal(t, uint32(16), NumericWidth(19))
	require.Equal(t, uint32(24), NumericWidth(38))
	require.Equal(t, uint32(16), NumericWidth(37))

	_, err := planColumn(record.Column{Type: record.ColNumeric, Precision: 38}, 16)
	require.ErrorIs(t, err, ErrSchemaMismatch)

	// undeclared precision takes the file width
	_, err = planColumn(record.Column{Type: record.ColNumeric}, 16)
	require.NoError(t, err)
	_, err = planColumn(record.Column{Type: record.ColNumeric}, 12)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestFixedWidthMismatch(t *testing.T) {
	for _, typ := range []record.ColumnType{
		record.ColFloat, record.ColBoolean, record.ColDate, record.ColTimestamp,
		record.ColTimestampTz, record.ColTime, record.ColTimeTz, record.ColInterval,
	} {
		_, err := planColumn(record.Column{Type: typ}, 4)
		require.ErrorIs(t, err, ErrSchemaMismatch, typ.String())
	}
}
