package formats

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/quanta/pkg/compression"
	"github.com/ajitpratap0/quanta/pkg/frame"
	"github.com/ajitpratap0/quanta/pkg/logger"
	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
)

// Format names a file format for path-based dispatch.
type Format string

const (
	// CSV is comma-separated text with unit headers.
	CSV Format = "csv"
	// ArrowIPC is the Arrow file format with units in field metadata.
	ArrowIPC Format = "arrow"
	// JSON is column-oriented JSON with units per column.
	JSON Format = "json"
)

// DetectFormat infers the format from a path, looking through a
// compression suffix (data.csv.gz is CSV).
func DetectFormat(path string) (Format, error) {
	inner := compression.StripExtension(path)
	switch strings.ToLower(filepath.Ext(inner)) {
	case ".csv":
		return CSV, nil
	case ".arrow", ".arrows", ".ipc":
		return ArrowIPC, nil
	case ".json":
		return JSON, nil
	default:
		return "", quantaerrors.New(quantaerrors.ErrorTypeConfig, "cannot infer format from path").
			WithDetail("path", path)
	}
}

// ReadFile reads a frame from a path, dispatching on format and
// compression extensions.
func ReadFile(path string, opts CSVOptions) (*frame.Frame, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	fh, err := os.Open(path) //nolint:gosec // G304: path is caller-controlled by design
	if err != nil {
		return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "opening input file").
			WithDetail("path", path)
	}
	defer fh.Close()

	rc, err := compression.NewReader(compression.DetectAlgorithm(path), fh)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	logger.Debug("reading frame",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.String("compression", string(compression.DetectAlgorithm(path))))

	switch format {
	case CSV:
		return ReadCSV(rc, opts)
	case ArrowIPC:
		return ReadIPC(rc)
	case JSON:
		return ReadJSON(rc)
	default:
		return nil, quantaerrors.Newf(quantaerrors.ErrorTypeConfig, "unsupported format %q", format)
	}
}

// WriteFile writes a frame to a path, dispatching on format and
// compression extensions.
func WriteFile(path string, f *frame.Frame, opts CSVOptions) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	fh, err := os.Create(path) //nolint:gosec // G304: path is caller-controlled by design
	if err != nil {
		return quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "creating output file").
			WithDetail("path", path)
	}
	defer fh.Close()

	wc, err := compression.NewWriter(compression.DetectAlgorithm(path), fh)
	if err != nil {
		return err
	}

	switch format {
	case CSV:
		err = WriteCSV(wc, f, opts)
	case ArrowIPC:
		err = WriteIPC(wc, f)
	case JSON:
		err = WriteJSON(wc, f)
	default:
		err = quantaerrors.Newf(quantaerrors.ErrorTypeConfig, "unsupported format %q", format)
	}
	if err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "flushing compressed stream")
	}
	return fh.Close()
}
