package formats

import (
	"bytes"
	"io"
	"math"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/quanta/pkg/columnar"
	"github.com/ajitpratap0/quanta/pkg/frame"
	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

// Field metadata keys for the Arrow round trip. The unit key is what makes
// a float64 field rehydrate as unit-aware storage.
const (
	metaUnitKey  = "quanta.unit"
	metaLabelKey = "quanta.label"
)

// Label levels are joined with the unit separator control character, which
// cannot appear in header text.
const labelSep = "\x1f"

// WriteIPC writes the frame as an Arrow IPC file. Unit-aware columns
// become float64 fields carrying their canonical unit text in field
// metadata; multi-level labels are preserved in metadata as well.
func WriteIPC(w io.Writer, f *frame.Frame) error {
	mem := memory.NewGoAllocator()

	fields := make([]arrow.Field, f.NumCols())
	for i := 0; i < f.NumCols(); i++ {
		s := f.Column(i)
		keys := []string{metaLabelKey}
		vals := []string{strings.Join(s.Label(), labelSep)}

		var dt arrow.DataType
		switch v := s.Values().(type) {
		case *columnar.UnitArray:
			dt = arrow.PrimitiveTypes.Float64
			keys = append(keys, metaUnitKey)
			vals = append(vals, v.Unit().Format(units.FormatCompact))
		case *frame.FloatValues:
			dt = arrow.PrimitiveTypes.Float64
		case *frame.StringValues:
			dt = arrow.BinaryTypes.String
		default:
			return quantaerrors.Newf(quantaerrors.ErrorTypeUnsupportedOp,
				"cannot serialize column dtype %s", s.Dtype())
		}
		fields[i] = arrow.Field{
			Name:     s.Name(),
			Type:     dt,
			Nullable: true,
			Metadata: arrow.NewMetadata(keys, vals),
		}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for i := 0; i < f.NumCols(); i++ {
		s := f.Column(i)
		switch v := s.Values().(type) {
		case *columnar.UnitArray:
			appendFloats(builder.Field(i).(*array.Float64Builder), v.Float64s())
		case *frame.FloatValues:
			appendFloats(builder.Field(i).(*array.Float64Builder), v.Float64s())
		case *frame.StringValues:
			sb := builder.Field(i).(*array.StringBuilder)
			for _, str := range v.Strings() {
				sb.Append(str)
			}
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "creating arrow writer")
	}
	if err := fw.Write(record); err != nil {
		fw.Close()
		return quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "writing arrow record")
	}
	if err := fw.Close(); err != nil {
		return quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "closing arrow writer")
	}
	return nil
}

func appendFloats(b *array.Float64Builder, values []float64) {
	for _, v := range values {
		if math.IsNaN(v) {
			b.AppendNull()
		} else {
			b.Append(v)
		}
	}
}

// ReadIPC reads an Arrow IPC file back into a frame, rehydrating fields
// with unit metadata as unit-aware storage.
func ReadIPC(r io.Reader) (*frame.Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "reading arrow data")
	}

	fr, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "opening arrow file")
	}
	defer fr.Close()

	schema := fr.Schema()
	ncols := schema.NumFields()
	floats := make([][]float64, ncols)
	strs := make([][]string, ncols)

	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "reading arrow record")
		}
		for c := 0; c < ncols; c++ {
			switch col := rec.Column(c).(type) {
			case *array.Float64:
				for row := 0; row < col.Len(); row++ {
					if col.IsNull(row) {
						floats[c] = append(floats[c], math.NaN())
					} else {
						floats[c] = append(floats[c], col.Value(row))
					}
				}
			case *array.String:
				for row := 0; row < col.Len(); row++ {
					strs[c] = append(strs[c], col.Value(row))
				}
			default:
				return nil, quantaerrors.Newf(quantaerrors.ErrorTypeData,
					"unsupported arrow column type %s", rec.Column(c).DataType())
			}
		}
	}

	registry := units.Default()
	labels := make([]frame.Label, ncols)
	values := make([]frame.Values, ncols)
	for c := 0; c < ncols; c++ {
		field := schema.Field(c)

		label := frame.Label{field.Name}
		if idx := field.Metadata.FindKey(metaLabelKey); idx >= 0 {
			label = frame.Label(strings.Split(field.Metadata.Values()[idx], labelSep))
		}
		labels[c] = label

		if idx := field.Metadata.FindKey(metaUnitKey); idx >= 0 {
			unit, err := registry.Parse(field.Metadata.Values()[idx])
			if err != nil {
				return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeDtypeParse,
					"unit metadata did not parse").
					WithDetail("column", field.Name)
			}
			values[c] = columnar.FromFloats(floats[c], unit)
			continue
		}
		if field.Type.ID() == arrow.STRING {
			values[c] = frame.NewStringValues(strs[c])
		} else {
			values[c] = frame.NewFloatValues(floats[c])
		}
	}

	index, err := frame.NewIndex(labels)
	if err != nil {
		return nil, err
	}
	return frame.NewFrame(index, values)
}
