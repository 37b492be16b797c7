// Package formats provides file round trips for unit-aware frames: CSV
// with unit headers, Arrow IPC with units in field metadata, and JSON
// export. Compressed streams are handled through pkg/compression.
package formats

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/ajitpratap0/quanta/pkg/frame"
	"github.com/ajitpratap0/quanta/pkg/logger"
	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

// CSVOptions configures CSV reading and writing.
type CSVOptions struct {
	// Comma is the field delimiter; zero means ','.
	Comma rune
	// UnitsRow treats the second header row as unit text (reading) or
	// emits one (writing). Without it, single-row header conventions apply.
	UnitsRow bool
	// Quantify converts columns with unit information into unit-aware
	// storage after reading.
	Quantify bool
	// Convention selects the single-row label convention for writing;
	// empty means bracket.
	Convention frame.Convention
	// Sentinel is the "no unit" token; empty means frame.DefaultSentinel.
	Sentinel string
	// Registry resolves unit text; nil means units.Default().
	Registry *units.Registry
}

func (o *CSVOptions) normalize() {
	if o.Comma == 0 {
		o.Comma = ','
	}
	if o.Sentinel == "" {
		o.Sentinel = frame.DefaultSentinel
	}
	if o.Convention == "" {
		o.Convention = frame.ConventionBracket
	}
	if o.Registry == nil {
		o.Registry = units.Default()
	}
}

// ReadCSV reads a table from CSV. The first row is the header; with
// UnitsRow the second row holds per-column unit text (sentinel for none).
// Columns whose body cells all parse as numbers (empty cells are missing)
// become numeric storage, everything else is passthrough text. With
// Quantify set the result is quantified before returning.
func ReadCSV(r io.Reader, opts CSVOptions) (*frame.Frame, error) {
	opts.normalize()

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "reading csv")
	}
	if len(rows) == 0 {
		return nil, quantaerrors.New(quantaerrors.ErrorTypeData, "csv input has no header row")
	}

	header := rows[0]
	body := rows[1:]
	var unitsRow []string
	if opts.UnitsRow {
		if len(body) == 0 {
			return nil, quantaerrors.New(quantaerrors.ErrorTypeData, "csv input has no units row")
		}
		unitsRow = body[0]
		if len(unitsRow) != len(header) {
			return nil, quantaerrors.New(quantaerrors.ErrorTypeData, "units row width mismatch").
				WithDetail("header", len(header)).
				WithDetail("units_row", len(unitsRow))
		}
		body = body[1:]
	}

	for i, row := range body {
		if len(row) != len(header) {
			return nil, quantaerrors.New(quantaerrors.ErrorTypeData, "ragged csv row").
				WithDetail("row", i+1).
				WithDetail("expected", len(header)).
				WithDetail("got", len(row))
		}
	}

	values := make([]frame.Values, len(header))
	for col := range header {
		values[col] = columnFromCells(body, col)
	}

	var index *frame.Index
	if opts.UnitsRow {
		labels := make([]frame.Label, len(header))
		for i := range header {
			labels[i] = frame.Label{header[i], unitsRow[i]}
		}
		index, err = frame.NewIndex(labels)
		if err != nil {
			return nil, err
		}
	} else {
		index = frame.FlatIndex(header...)
	}

	f, err := frame.NewFrame(index, values)
	if err != nil {
		return nil, err
	}

	if !opts.Quantify {
		return f, nil
	}

	logger.Debug("quantifying csv input",
		zap.Int("columns", f.NumCols()),
		zap.Int("rows", f.NumRows()))
	return frame.Quantify(f, frame.QuantifyOptions{
		Sentinel: opts.Sentinel,
		Registry: opts.Registry,
	})
}

// columnFromCells types one column: numeric when every cell parses as a
// float (empty = missing), text otherwise.
func columnFromCells(body [][]string, col int) frame.Values {
	floats := make([]float64, len(body))
	numeric := true
	for i, row := range body {
		cell := row[col]
		if cell == "" {
			floats[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
			break
		}
		floats[i] = v
	}
	if numeric {
		return frame.NewFloatValues(floats)
	}

	strs := make([]string, len(body))
	for i, row := range body {
		strs[i] = row[col]
	}
	return frame.NewStringValues(strs)
}

// WriteCSV writes a frame to CSV. Unit-aware columns are dequantified
// first: with UnitsRow their units form a second header row, otherwise
// they are embedded in the header labels under the configured convention.
func WriteCSV(w io.Writer, f *frame.Frame, opts CSVOptions) error {
	opts.normalize()

	dq := f
	if hasUnitAware(f) {
		var err error
		dq, err = frame.Dequantify(f, frame.DequantifyOptions{Sentinel: opts.Sentinel})
		if err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = opts.Comma

	// Dequantify appended the unit level at the bottom; a frame that was
	// already dequantified carries its units there too. Single-level frames
	// have no unit information at all.
	unitTexts := make([]string, dq.NumCols())
	if dq.Index().Levels() > 1 {
		unitTexts = dq.Index().Level(dq.Index().Levels() - 1)
	} else {
		for i := range unitTexts {
			unitTexts[i] = opts.Sentinel
		}
	}
	names := make([]string, dq.NumCols())
	for i := 0; i < dq.NumCols(); i++ {
		names[i] = dq.Index().Label(i)[0]
	}

	if opts.UnitsRow {
		if err := cw.Write(names); err != nil {
			return quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "writing csv header")
		}
		if err := cw.Write(unitTexts); err != nil {
			return quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "writing csv units row")
		}
	} else {
		combined := make([]string, len(names))
		for i := range names {
			combined[i] = opts.Convention.Join(names[i], unitTexts[i], opts.Sentinel)
		}
		if err := cw.Write(combined); err != nil {
			return quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "writing csv header")
		}
	}

	for row := 0; row < dq.NumRows(); row++ {
		record := make([]string, dq.NumCols())
		for col := 0; col < dq.NumCols(); col++ {
			record[col] = cellText(dq.Column(col), row)
		}
		if err := cw.Write(record); err != nil {
			return quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "writing csv row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "flushing csv")
	}
	return nil
}

func hasUnitAware(f *frame.Frame) bool {
	for i := 0; i < f.NumCols(); i++ {
		if f.Column(i).Dtype().IsPint() {
			return true
		}
	}
	return false
}

func cellText(s *frame.Series, row int) string {
	switch v := s.Values().(type) {
	case *frame.FloatValues:
		f, ok := v.Value(row)
		if !ok {
			return ""
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	case *frame.StringValues:
		return v.Value(row)
	default:
		return ""
	}
}
