package formats

import (
	"io"
	"math"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/quanta/pkg/columnar"
	"github.com/ajitpratap0/quanta/pkg/frame"
	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

// jsonFrame is the column-oriented JSON form of a frame. Missing numeric
// values serialize as null.
type jsonFrame struct {
	Rows    int          `json:"rows"`
	Columns []jsonColumn `json:"columns"`
}

type jsonColumn struct {
	Label   []string   `json:"label"`
	Dtype   string     `json:"dtype"`
	Unit    string     `json:"unit,omitempty"`
	Floats  []*float64 `json:"values,omitempty"`
	Strings []string   `json:"strings,omitempty"`
}

// MarshalFrame serializes a frame to column-oriented JSON, units included.
func MarshalFrame(f *frame.Frame) ([]byte, error) {
	out := jsonFrame{Rows: f.NumRows(), Columns: make([]jsonColumn, f.NumCols())}
	for i := 0; i < f.NumCols(); i++ {
		s := f.Column(i)
		col := jsonColumn{Label: s.Label(), Dtype: s.Dtype().String()}
		switch v := s.Values().(type) {
		case *columnar.UnitArray:
			col.Unit = v.Unit().Format(units.FormatCompact)
			col.Floats = nullableFloats(v.Float64s(), func(j int) bool { return v.IsNA(j) })
		case *frame.FloatValues:
			col.Floats = nullableFloats(v.Float64s(), func(j int) bool { _, ok := v.Value(j); return !ok })
		case *frame.StringValues:
			col.Strings = v.Strings()
		default:
			return nil, quantaerrors.Newf(quantaerrors.ErrorTypeUnsupportedOp,
				"cannot serialize column dtype %s", s.Dtype())
		}
		out.Columns[i] = col
	}
	return gojson.MarshalIndent(out, "", "  ")
}

func nullableFloats(values []float64, isNA func(int) bool) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if isNA(i) {
			continue
		}
		v := values[i]
		out[i] = &v
	}
	return out
}

// WriteJSON writes a frame as JSON.
func WriteJSON(w io.Writer, f *frame.Frame) error {
	data, err := MarshalFrame(f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "writing json")
	}
	return nil
}

// ReadJSON reads a column-oriented JSON frame back, rehydrating columns
// that carry a unit.
func ReadJSON(r io.Reader) (*frame.Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "reading json")
	}

	var in jsonFrame
	if err := gojson.Unmarshal(data, &in); err != nil {
		return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeData, "parsing json frame")
	}

	registry := units.Default()
	labels := make([]frame.Label, len(in.Columns))
	values := make([]frame.Values, len(in.Columns))
	for i, col := range in.Columns {
		labels[i] = frame.Label(col.Label)
		switch {
		case col.Unit != "":
			unit, err := registry.Parse(col.Unit)
			if err != nil {
				return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeDtypeParse,
					"column unit did not parse").
					WithDetail("column", frame.Label(col.Label).String())
			}
			values[i] = columnar.FromFloats(derefFloats(col.Floats), unit)
		case col.Strings != nil:
			values[i] = frame.NewStringValues(col.Strings)
		default:
			values[i] = frame.NewFloatValues(derefFloats(col.Floats))
		}
	}

	index, err := frame.NewIndex(labels)
	if err != nil {
		return nil, err
	}
	return frame.NewFrame(index, values)
}

func derefFloats(in []*float64) []float64 {
	out := make([]float64, len(in))
	for i, p := range in {
		if p == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *p
		}
	}
	return out
}
