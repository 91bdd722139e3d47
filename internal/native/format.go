package native

import (
	"encoding/hex"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/tuannm99/verticareader/internal/record"
)

// RenderOptions control canonical text rendering. They never change a
// decoded value.
type RenderOptions struct {
	// TZOffset is applied, in hours, to values stored without a UTC offset.
	TZOffset int
	// HexPrefix prefixes hex-rendered bytes with 0x.
	HexPrefix bool
}

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05.999999"
	timestampLayout = dateLayout + " " + timeLayout
)

// Format renders v as canonical text for column col. NULL renders as "".
func Format(v Value, col record.Column, opts RenderOptions) string {
	switch v.kind {
	case KindNull:
		return ""
	case KindInteger:
		return strconv.FormatInt(v.i64, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f64, 'f', -1, 64)
	case KindText:
		return v.str
	case KindBoolean:
		return strconv.FormatBool(v.Bool())
	case KindDate:
		return v.Time().Format(dateLayout)
	case KindTimestamp:
		return v.Time().Format(timestampLayout)
	case KindTimestampTz:
		off := opts.TZOffset * 3600
		return v.Time().Add(time.Duration(off)*time.Second).Format(timestampLayout) + formatOffset(off)
	case KindTime:
		return formatClock(v.i64)
	case KindTimeTz:
		off := int(v.offset)
		if off == 0 {
			off = opts.TZOffset * 3600
		}
		local := (v.i64 + int64(off)*microsPerSecond) % microsPerDay
		if local < 0 {
			local += microsPerDay
		}
		return formatClock(local) + formatOffset(off)
	case KindInterval:
		return formatInterval(v.i64)
	case KindBytes:
		return formatBytes(v.bytes, col.Conversion, opts.HexPrefix)
	case KindNumeric:
		return v.num.String()
	}
	return ""
}

// formatClock renders microseconds since midnight; 24:00:00 is legal.
func formatClock(us int64) string {
	if us == microsPerDay {
		return "24:00:00"
	}
	return Epoch.Add(time.Duration(us) * time.Microsecond).Format(timeLayout)
}

func formatOffset(seconds int) string {
	sign := byte('+')
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	h, m := seconds/3600, (seconds%3600)/60
	if m == 0 {
		return fmt.Sprintf("%c%02d", sign, h)
	}
	return fmt.Sprintf("%c%02d:%02d", sign, h, m)
}

func formatInterval(us int64) string {
	var b strings.Builder
	mag := uint64(us)
	if us < 0 {
		b.WriteByte('-')
		mag = uint64(-us)
	}
	const perSec = uint64(microsPerSecond)
	secs, frac := mag/perSec, mag%perSec
	fmt.Fprintf(&b, "%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	if frac != 0 {
		b.WriteByte('.')
		b.WriteString(strings.TrimRight(fmt.Sprintf("%06d", frac), "0"))
	}
	return b.String()
}

func formatBytes(b []byte, conv record.Conversion, hexPrefix bool) string {
	switch conv {
	case record.ConvIPAddress:
		if s, ok := formatIP(b); ok {
			return s
		}
	case record.ConvMACAddress:
		if len(b) == 6 {
			return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
		}
	}
	return FormatHex(b, hexPrefix)
}

// FormatHex renders uppercase hex, two digits per byte.
func FormatHex(b []byte, prefix bool) string {
	s := strings.ToUpper(hex.EncodeToString(b))
	if prefix {
		return "0x" + s
	}
	return s
}

// formatIP accepts 4-byte IPv4, 16-byte IPv6 and the 6-byte FF FF a b c d
// form with an FF FF marker in front of the IPv4 bytes.
func formatIP(b []byte) (string, bool) {
	switch len(b) {
	case 4:
		return netip.AddrFrom4([4]byte(b)).String(), true
	case 6:
		if b[0] == 0xFF && b[1] == 0xFF {
			return netip.AddrFrom4([4]byte(b[2:])).String(), true
		}
	case 16:
		return netip.AddrFrom16([16]byte(b)).Unmap().String(), true
	}
	return "", false
}
