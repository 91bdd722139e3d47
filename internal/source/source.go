// Package source opens decoder inputs (local files, stdin, S3 objects) and
// render outputs.
package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	Stdio     = "-"
	s3Scheme  = "s3://"
	bufferLen = 1 << 20
)

var (
	ErrOverwriteInput = errors.New("source: output would overwrite the input file")
	ErrBadS3URL       = errors.New("source: malformed s3 url")
)

// ObjectGetter is the part of *s3.Client used for input.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Input is a buffered input stream. Close releases the underlying file or
// object body.
type Input struct {
	*bufio.Reader
	name   string
	closer io.Closer
}

func (in *Input) Name() string { return in.name }

func (in *Input) Close() error {
	if in.closer == nil {
		return nil
	}
	c := in.closer
	in.closer = nil
	return c.Close()
}

// Opener resolves input names. The zero value loads the default AWS
// configuration the first time an s3:// name is opened.
type Opener struct {
	// S3 overrides the client used for s3:// inputs.
	S3 ObjectGetter

	once sync.Once
	err  error
}

var defaultOpener Opener

// OpenInput opens name with the default Opener.
func OpenInput(ctx context.Context, name string) (*Input, error) {
	return defaultOpener.Open(ctx, name)
}

// Open accepts "-" for stdin, s3://bucket/key, or a local path.
func (o *Opener) Open(ctx context.Context, name string) (*Input, error) {
	switch {
	case name == Stdio:
		return newInput(name, os.Stdin, nil), nil
	case strings.HasPrefix(name, s3Scheme):
		return o.openS3(ctx, name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return newInput(name, f, f), nil
}

func (o *Opener) openS3(ctx context.Context, name string) (*Input, error) {
	bucket, key, err := ParseS3URL(name)
	if err != nil {
		return nil, err
	}
	client, err := o.client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3 object %s: %w", name, err)
	}
	return newInput(name, out.Body, out.Body), nil
}

func (o *Opener) client(ctx context.Context) (ObjectGetter, error) {
	o.once.Do(func() {
		if o.S3 != nil {
			return
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			o.err = fmt.Errorf("load aws config: %w", err)
			return
		}
		o.S3 = s3.NewFromConfig(cfg)
	})
	return o.S3, o.err
}

func newInput(name string, r io.Reader, c io.Closer) *Input {
	return &Input{Reader: bufio.NewReaderSize(r, bufferLen), name: name, closer: c}
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(name string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(name, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrBadS3URL, name)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadS3URL, name)
	}
	return bucket, key, nil
}

// DefaultOutputName derives an output name from the input: the input's
// extension is replaced by ext. S3 inputs land in the working directory and
// stdin maps to stdout.
func DefaultOutputName(input, ext string) string {
	if input == Stdio || input == "" {
		return Stdio
	}
	if strings.HasPrefix(input, s3Scheme) {
		base := path.Base(input)
		return strings.TrimSuffix(base, path.Ext(base)) + ext
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// OpenOutput creates name, or returns stdout for "-" and "". It refuses to
// touch the file that input names.
func OpenOutput(name, input string) (io.WriteCloser, error) {
	if name == "" || name == Stdio {
		return nopWriteCloser{os.Stdout}, nil
	}
	if sameFile(name, input) {
		return nil, fmt.Errorf("%w: %s", ErrOverwriteInput, name)
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

func sameFile(a, b string) bool {
	if b == "" || b == Stdio || strings.HasPrefix(b, s3Scheme) {
		return false
	}
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	sa, err := os.Stat(a)
	if err != nil {
		return false
	}
	sb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(sa, sb)
}
