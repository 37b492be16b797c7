package frame

import (
	"github.com/ajitpratap0/quanta/pkg/columnar"
	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

// Frame is an ordered collection of equal-length columns under a column
// index. Frames are immutable: transformations return new frames sharing
// column storage where possible.
type Frame struct {
	index  *Index
	values []Values
}

// NewFrame pairs an index with column values, validating shape.
func NewFrame(index *Index, values []Values) (*Frame, error) {
	if index.Len() != len(values) {
		return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation, "index and values length mismatch").
			WithDetail("labels", index.Len()).
			WithDetail("columns", len(values))
	}
	rows := -1
	for i, v := range values {
		if rows == -1 {
			rows = v.Len()
		} else if v.Len() != rows {
			return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation, "ragged columns").
				WithDetail("column", index.Label(i).String()).
				WithDetail("expected", rows).
				WithDetail("got", v.Len())
		}
	}
	return &Frame{index: index, values: append([]Values(nil), values...)}, nil
}

// Index returns the column index.
func (f *Frame) Index() *Index { return f.index }

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.values) }

// NumRows returns the number of rows (0 for an empty frame).
func (f *Frame) NumRows() int {
	if len(f.values) == 0 {
		return 0
	}
	return f.values[0].Len()
}

// Column returns column i as a series view.
func (f *Frame) Column(i int) *Series {
	return &Series{label: f.index.Label(i), values: f.values[i]}
}

// ColumnByName returns the first column whose top label level matches.
func (f *Frame) ColumnByName(name string) (*Series, error) {
	i := f.index.PositionByName(name)
	if i < 0 {
		return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation, "no such column").
			WithDetail("name", name)
	}
	return f.Column(i), nil
}

// Columns iterates all columns as series views.
func (f *Frame) Columns() []*Series {
	out := make([]*Series, f.NumCols())
	for i := range out {
		out[i] = f.Column(i)
	}
	return out
}

// WithColumn returns a new frame with column i's values replaced.
func (f *Frame) WithColumn(i int, values Values) (*Frame, error) {
	if values.Len() != f.NumRows() {
		return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation, "replacement column length mismatch").
			WithDetail("expected", f.NumRows()).
			WithDetail("got", values.Len())
	}
	out := append([]Values(nil), f.values...)
	out[i] = values
	return &Frame{index: f.index, values: out}, nil
}

// ConvertColumn converts the named unit-aware column into a compatible
// unit, returning a new frame.
func (f *Frame) ConvertColumn(name string, target units.Unit) (*Frame, error) {
	i := f.index.PositionByName(name)
	if i < 0 {
		return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation, "no such column").
			WithDetail("name", name)
	}
	conv, err := f.Column(i).To(target)
	if err != nil {
		return nil, err
	}
	return f.WithColumn(i, conv.Values())
}

// AggregateResult is one column's reduction outcome. Missing is true for
// all-missing columns; non-numeric columns are skipped entirely.
type AggregateResult struct {
	Label    Label
	Quantity units.Quantity
	Missing  bool
}

// Aggregate applies one reduction across every numeric column, unwrapping
// each buffer, reducing, and rewrapping in the column's unit. This is the
// frame-level groupby-apply surface: results keep their units.
func (f *Frame) Aggregate(kind columnar.ReduceKind) ([]AggregateResult, error) {
	out := make([]AggregateResult, 0, f.NumCols())
	for i := 0; i < f.NumCols(); i++ {
		s := f.Column(i)
		if s.Dtype().Kind() == columnar.KindString {
			continue
		}
		q, ok, err := s.Reduce(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, AggregateResult{Label: s.Label(), Quantity: q, Missing: !ok})
	}
	return out, nil
}
