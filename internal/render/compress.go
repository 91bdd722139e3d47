package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

type Compression uint8

const (
	CompressNone Compression = iota
	CompressGzip
	CompressLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressGzip:
		return "gzip"
	case CompressLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// Ext is the suffix appended to output file names.
func (c Compression) Ext() string {
	switch c {
	case CompressGzip:
		return ".gz"
	case CompressLZ4:
		return ".lz4"
	default:
		return ""
	}
}

func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressNone, nil
	case "gzip", "gz":
		return CompressGzip, nil
	case "lz4":
		return CompressLZ4, nil
	}
	return CompressNone, fmt.Errorf("render: unknown compression %q", s)
}

// Compress wraps w. Closing the result finishes the compressed stream but
// leaves w open.
func Compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressNone:
		return nopCloser{w}, nil
	case CompressGzip:
		return gzip.NewWriter(w), nil
	case CompressLZ4:
		return lz4.NewWriter(w), nil
	}
	return nil, fmt.Errorf("render: unknown compression %d", c)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
