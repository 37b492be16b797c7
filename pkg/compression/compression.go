// Package compression provides streaming compression codecs for Quanta's
// file formats. Algorithms cover the common trade-offs: gzip for
// compatibility, zstd for ratio, s2 and lz4 for speed.
package compression

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
)

// Algorithm represents a stream compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
	// LZ4 represents lz4 compression
	LZ4 Algorithm = "lz4"
)

// extensions maps file suffixes to algorithms for DetectAlgorithm.
var extensions = map[string]Algorithm{
	".gz":   Gzip,
	".gzip": Gzip,
	".zst":  Zstd,
	".zstd": Zstd,
	".s2":   S2,
	".lz4":  LZ4,
}

// DetectAlgorithm infers the algorithm from a file path's extension,
// defaulting to None.
func DetectAlgorithm(path string) Algorithm {
	ext := strings.ToLower(filepath.Ext(path))
	if alg, ok := extensions[ext]; ok {
		return alg
	}
	return None
}

// StripExtension removes a recognized compression suffix from a path, so
// format detection can look at the inner extension of e.g. data.csv.gz.
func StripExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := extensions[ext]; ok {
		return strings.TrimSuffix(path, filepath.Ext(path))
	}
	return path
}

type nopReadCloser struct{ io.Reader }

func (nopReadCloser) Close() error { return nil }

type writeCloser struct {
	io.Writer
	close func() error
}

func (w writeCloser) Close() error { return w.close() }

// NewReader wraps r with a decompressing reader for the algorithm. The
// returned closer does not close the underlying reader.
func NewReader(alg Algorithm, r io.Reader) (io.ReadCloser, error) {
	switch alg {
	case None:
		return nopReadCloser{r}, nil
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "opening gzip stream")
		}
		return gz, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "opening zstd stream")
		}
		return zr.IOReadCloser(), nil
	case S2:
		return nopReadCloser{s2.NewReader(r)}, nil
	case LZ4:
		return nopReadCloser{lz4.NewReader(r)}, nil
	default:
		return nil, quantaerrors.Newf(quantaerrors.ErrorTypeConfig, "unsupported compression algorithm %q", alg)
	}
}

// NewWriter wraps w with a compressing writer for the algorithm. Close
// flushes the compressed stream but does not close the underlying writer.
func NewWriter(alg Algorithm, w io.Writer) (io.WriteCloser, error) {
	switch alg {
	case None:
		return writeCloser{w, func() error { return nil }}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "opening zstd stream")
		}
		return zw, nil
	case S2:
		return s2.NewWriter(w), nil
	case LZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, quantaerrors.Newf(quantaerrors.ErrorTypeConfig, "unsupported compression algorithm %q", alg)
	}
}
