package frame

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/quanta/pkg/columnar"
	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

// Values is one column's storage. Implementations carry an explicit dtype
// tag; callers branch on Dtype().Kind() rather than probing structure.
type Values interface {
	Dtype() columnar.Type
	Len() int
}

// FloatValues is plain float64 storage with no unit semantics. Missing
// values are Arrow nulls (NaN inputs are mapped to null on construction).
type FloatValues struct {
	data *array.Float64
}

// NewFloatValues builds plain numeric storage; NaN becomes missing.
func NewFloatValues(values []float64) *FloatValues {
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			b.AppendNull()
		} else {
			b.Append(v)
		}
	}
	return &FloatValues{data: b.NewFloat64Array()}
}

// FloatValuesFromArrow wraps an existing Arrow array without copying.
func FloatValuesFromArrow(data *array.Float64) *FloatValues {
	data.Retain()
	return &FloatValues{data: data}
}

// Dtype implements Values.
func (v *FloatValues) Dtype() columnar.Type { return columnar.Float64Type() }

// Len implements Values.
func (v *FloatValues) Len() int { return v.data.Len() }

// Value returns element i; ok is false for missing.
func (v *FloatValues) Value(i int) (float64, bool) {
	if v.data.IsNull(i) {
		return 0, false
	}
	return v.data.Value(i), true
}

// Float64s copies the buffer out with NaN at missing positions.
func (v *FloatValues) Float64s() []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		if v.data.IsNull(i) {
			out[i] = math.NaN()
		} else {
			out[i] = v.data.Value(i)
		}
	}
	return out
}

// Arrow exposes the underlying Arrow array.
func (v *FloatValues) Arrow() *array.Float64 { return v.data }

// StringValues is passthrough text storage for columns that are not
// numeric. It cannot be quantified.
type StringValues struct {
	data *array.String
}

// NewStringValues builds text storage; empty strings are kept, missing is
// not modeled for text columns.
func NewStringValues(values []string) *StringValues {
	b := array.NewStringBuilder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(len(values))
	for _, s := range values {
		b.Append(s)
	}
	return &StringValues{data: b.NewStringArray()}
}

// Dtype implements Values.
func (v *StringValues) Dtype() columnar.Type { return columnar.StringType() }

// Len implements Values.
func (v *StringValues) Len() int { return v.data.Len() }

// Value returns element i.
func (v *StringValues) Value(i int) string { return v.data.Value(i) }

// Strings copies the column out.
func (v *StringValues) Strings() []string {
	out := make([]string, v.Len())
	for i := range out {
		out[i] = v.data.Value(i)
	}
	return out
}

// Series is one named column: a label tuple plus values. The values may be
// unit-aware (*columnar.UnitArray satisfies Values) or plain.
type Series struct {
	label  Label
	values Values
}

// NewSeries pairs a label with values.
func NewSeries(label Label, values Values) *Series {
	return &Series{label: append(Label(nil), label...), values: values}
}

// Label returns the column's label tuple.
func (s *Series) Label() Label { return s.label }

// Name returns the label's top level.
func (s *Series) Name() string { return s.label[0] }

// Values returns the column's storage.
func (s *Series) Values() Values { return s.values }

// Dtype returns the column's dtype descriptor.
func (s *Series) Dtype() columnar.Type { return s.values.Dtype() }

// Len returns the number of elements.
func (s *Series) Len() int { return s.values.Len() }

// UnitArray returns the unit-aware storage, or an error for plain columns.
func (s *Series) UnitArray() (*columnar.UnitArray, error) {
	ua, ok := s.values.(*columnar.UnitArray)
	if !ok {
		return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation, "column is not unit-aware").
			WithDetail("column", s.label.String()).
			WithDetail("dtype", s.Dtype().String())
	}
	return ua, nil
}

// To converts a unit-aware column into a compatible unit, returning a new
// series with the same label.
func (s *Series) To(target units.Unit) (*Series, error) {
	ua, err := s.UnitArray()
	if err != nil {
		return nil, err
	}
	conv, err := ua.To(target)
	if err != nil {
		return nil, err
	}
	return NewSeries(s.label, conv), nil
}

// Astype casts the column to the dtype named by text, e.g. "pint[mm]" or
// "float64".
func (s *Series) Astype(text string, registry *units.Registry) (*Series, error) {
	t, err := columnar.ParseType(text, registry)
	if err != nil {
		return nil, err
	}
	switch v := s.values.(type) {
	case *columnar.UnitArray:
		out, err := v.AsType(t)
		if err != nil {
			return nil, err
		}
		if t.Kind() == columnar.KindFloat {
			return NewSeries(s.label, NewFloatValues(out.Float64s())), nil
		}
		return NewSeries(s.label, out), nil
	case *FloatValues:
		if t.Kind() == columnar.KindFloat {
			return NewSeries(s.label, v), nil
		}
		if t.Kind() != columnar.KindPint {
			return nil, quantaerrors.New(quantaerrors.ErrorTypeUnsupportedOp, "unsupported cast").
				WithDetail("from", s.Dtype().String()).
				WithDetail("to", t.String())
		}
		// Plain numeric to pint wraps the buffer verbatim: the values are
		// assumed already expressed in the target unit.
		return NewSeries(s.label, columnar.FromArrow(v.Arrow(), t.Unit())), nil
	default:
		return nil, quantaerrors.New(quantaerrors.ErrorTypeUnsupportedOp, "unsupported cast").
			WithDetail("from", s.Dtype().String()).
			WithDetail("to", t.String())
	}
}

// Reduce applies a unit-aware reduction to the column. Plain float columns
// reduce with a dimensionless result unit.
func (s *Series) Reduce(kind columnar.ReduceKind) (units.Quantity, bool, error) {
	switch v := s.values.(type) {
	case *columnar.UnitArray:
		return v.Reduce(kind)
	case *FloatValues:
		wrapped := columnar.FromFloats(v.Float64s(), units.Dimensionless())
		defer wrapped.Release()
		return wrapped.Reduce(kind)
	default:
		return units.Quantity{}, false, quantaerrors.New(quantaerrors.ErrorTypeUnsupportedOp,
			"reduction over non-numeric column").
			WithDetail("column", s.label.String()).
			WithDetail("dtype", s.Dtype().String())
	}
}
