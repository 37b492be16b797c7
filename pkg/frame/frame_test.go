package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/quanta/pkg/columnar"
	"github.com/ajitpratap0/quanta/pkg/units"
)

func TestNewFrameValidatesShape(t *testing.T) {
	_, err := NewFrame(FlatIndex("a", "b"), []Values{NewFloatValues([]float64{1})})
	assert.Error(t, err)

	_, err = NewFrame(FlatIndex("a", "b"), []Values{
		NewFloatValues([]float64{1}),
		NewFloatValues([]float64{1, 2}),
	})
	assert.Error(t, err)
}

func TestColumnByName(t *testing.T) {
	f := mustFrame(t, FlatIndex("torque", "speed"), []Values{
		NewFloatValues([]float64{1}),
		NewFloatValues([]float64{2}),
	})

	s, err := f.ColumnByName("speed")
	require.NoError(t, err)
	assert.Equal(t, "speed", s.Name())

	_, err = f.ColumnByName("missing")
	assert.Error(t, err)
}

func TestConvertColumn(t *testing.T) {
	r := units.Default()
	f := mustFrame(t, FlatIndex("length", "serial"), []Values{
		columnar.FromFloats([]float64{1, 2}, r.MustParse("m")),
		NewFloatValues([]float64{1, 2}),
	})

	out, err := f.ConvertColumn("length", r.MustParse("mm"))
	require.NoError(t, err)
	assert.Equal(t, "pint[mm]", out.Column(0).Dtype().String())

	// the source frame is untouched
	assert.Equal(t, "pint[m]", f.Column(0).Dtype().String())

	_, err = f.ConvertColumn("serial", r.MustParse("mm"))
	assert.Error(t, err)
}

func TestAggregateKeepsUnits(t *testing.T) {
	r := units.Default()
	f := mustFrame(t, FlatIndex("pressure", "note", "empty"), []Values{
		columnar.FromFloats([]float64{100, 200}, r.MustParse("kPa")),
		NewStringValues([]string{"a", "b"}),
		NewFloatValues([]float64{math.NaN(), math.NaN()}),
	})

	results, err := f.Aggregate(columnar.ReduceMean)
	require.NoError(t, err)
	require.Len(t, results, 2) // the string column is skipped

	assert.Equal(t, Label{"pressure"}, results[0].Label)
	assert.False(t, results[0].Missing)
	assert.Equal(t, 150.0, results[0].Quantity.Magnitude)
	assert.Equal(t, "kPa", results[0].Quantity.Unit.String())

	assert.Equal(t, Label{"empty"}, results[1].Label)
	assert.True(t, results[1].Missing)
}

func TestWithColumnLengthCheck(t *testing.T) {
	f := mustFrame(t, FlatIndex("x"), []Values{NewFloatValues([]float64{1, 2})})

	_, err := f.WithColumn(0, NewFloatValues([]float64{1}))
	assert.Error(t, err)
}
