// Package input opens CSV sources for the CLI, decompressing them according to the file extension.
package input

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// Stdin is the name that selects standard input.
const Stdin = "-"

// Compression identifies how a source is encoded.
type Compression string

const (
	None   Compression = ""
	Gzip   Compression = "gzip"
	Zstd   Compression = "zstd"
	LZ4    Compression = "lz4"
	Brotli Compression = "brotli"
)

// Detect picks the compression from the extension of name.
func Detect(name string) Compression {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".gzip":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	case ".lz4":
		return LZ4
	case ".br":
		return Brotli
	default:
		return None
	}
}

// Open returns a reader over the decompressed content of path. Closing it closes the file as well, except
// for standard input, which is left open.
func Open(path string) (io.ReadCloser, error) {
	if path == Stdin {
		return Wrap(io.NopCloser(os.Stdin), None)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	rc, err := Wrap(f, Detect(path))
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return rc, nil
}

// Wrap layers a decoder for c over src.
func Wrap(src io.ReadCloser, c Compression) (io.ReadCloser, error) {
	switch c {
	case None:
		return src, nil
	case Gzip:
		zr, err := gzip.NewReader(src)
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		return &readCloser{r: zr, closers: []func() error{zr.Close, src.Close}}, nil
	case Zstd:
		dec, err := zstd.NewReader(src)
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		return &readCloser{r: dec, closers: []func() error{closeZstd(dec), src.Close}}, nil
	case LZ4:
		return &readCloser{r: lz4.NewReader(src), closers: []func() error{src.Close}}, nil
	case Brotli:
		return &readCloser{r: brotli.NewReader(src), closers: []func() error{src.Close}}, nil
	default:
		return nil, errors.Errorf("unknown compression %q", c)
	}
}

type readCloser struct {
	r       io.Reader
	closers []func() error
}

func (rc *readCloser) Read(p []byte) (int, error) {
	return rc.r.Read(p)
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func closeZstd(dec *zstd.Decoder) func() error {
	return func() error {
		dec.Close()
		return nil
	}
}
