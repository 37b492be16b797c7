package columnar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

func TestFromFloats(t *testing.T) {
	m := units.Default().MustParse("m")
	a := FromFloats([]float64{1, math.NaN(), 3}, m)

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 1, a.NACount())
	assert.True(t, a.IsNA(1))

	q, ok := a.Value(0)
	require.True(t, ok)
	assert.Equal(t, 1.0, q.Magnitude)
	assert.Equal(t, "m", q.Unit.String())

	_, ok = a.Value(1)
	assert.False(t, ok)
}

func TestFromQuantitiesInference(t *testing.T) {
	r := units.Default()
	m := r.MustParse("m")
	mm := r.MustParse("mm")

	// unit inferred from the first non-missing element; compatible
	// elements convert into it
	a, err := FromQuantities([]units.Quantity{
		units.NewQuantity(math.NaN(), units.Unit{}),
		units.NewQuantity(2, m),
		units.NewQuantity(3000, mm),
	}, units.Unit{}, false)
	require.NoError(t, err)
	assert.Equal(t, "m", a.Unit().String())
	assert.True(t, a.IsNA(0))

	q, _ := a.Value(2)
	assert.InDelta(t, 3, q.Magnitude, 1e-12)
}

func TestFromQuantitiesIncompatible(t *testing.T) {
	r := units.Default()

	_, err := FromQuantities([]units.Quantity{
		units.NewQuantity(1, r.MustParse("m")),
		units.NewQuantity(1, r.MustParse("s")),
	}, units.Unit{}, false)
	require.Error(t, err)
	assert.True(t, quantaerrors.IsType(err, quantaerrors.ErrorTypeIncompatibleUnits))
}

func TestFromQuantitiesExplicitUnit(t *testing.T) {
	r := units.Default()

	a, err := FromQuantities([]units.Quantity{
		units.NewQuantity(2000, r.MustParse("mm")),
	}, r.MustParse("m"), true)
	require.NoError(t, err)
	assert.Equal(t, "m", a.Unit().String())

	q, _ := a.Value(0)
	assert.InDelta(t, 2, q.Magnitude, 1e-12)
}

func TestFromQuantitiesAllMissingNeedsUnit(t *testing.T) {
	_, err := FromQuantities([]units.Quantity{
		units.NewQuantity(math.NaN(), units.Unit{}),
	}, units.Unit{}, false)
	assert.Error(t, err)
}

func TestSliceSharesUnit(t *testing.T) {
	m := units.Default().MustParse("m")
	a := FromFloats([]float64{1, 2, 3, 4}, m)

	s := a.Slice(1, 3)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "m", s.Unit().String())

	q, _ := s.Value(0)
	assert.Equal(t, 2.0, q.Magnitude)
}

func TestTake(t *testing.T) {
	m := units.Default().MustParse("m")
	a := FromFloats([]float64{10, 20, 30}, m)

	got, err := a.Take([]int{2, 0, -1})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())

	q, _ := got.Value(0)
	assert.Equal(t, 30.0, q.Magnitude)
	assert.True(t, got.IsNA(2))

	_, err = a.Take([]int{5})
	assert.Error(t, err)
}

func TestCopyIndependent(t *testing.T) {
	m := units.Default().MustParse("m")
	a := FromFloats([]float64{1, math.NaN()}, m)
	c := a.Copy()

	assert.Equal(t, a.Len(), c.Len())
	assert.True(t, c.IsNA(1))
	assert.True(t, a.Equal(c))
}

func TestConcat(t *testing.T) {
	r := units.Default()
	m := r.MustParse("m")
	mm := r.MustParse("mm")

	a := FromFloats([]float64{1, 2}, m)
	b := FromFloats([]float64{3000}, mm)

	// compatible units convert into the first storage's unit
	got, err := Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
	assert.Equal(t, "m", got.Unit().String())

	q, _ := got.Value(2)
	assert.InDelta(t, 3, q.Magnitude, 1e-12)

	// incompatible units fail
	_, err = Concat(a, FromFloats([]float64{1}, r.MustParse("s")))
	require.Error(t, err)
	assert.True(t, quantaerrors.IsType(err, quantaerrors.ErrorTypeIncompatibleUnits))
}

func TestAsTypeRoundTrip(t *testing.T) {
	r := units.Default()
	a := FromFloats([]float64{1, 2, 3}, r.MustParse("m"))

	inMM, err := a.AsType(PintType(r.MustParse("mm")))
	require.NoError(t, err)

	q, _ := inMM.Value(0)
	assert.InDelta(t, 1000, q.Magnitude, 1e-9)

	back, err := inMM.AsType(PintType(r.MustParse("m")))
	require.NoError(t, err)
	for i := 0; i < a.Len(); i++ {
		want, _ := a.Value(i)
		got, _ := back.Value(i)
		assert.InDelta(t, want.Magnitude, got.Magnitude, 1e-9)
	}
}

func TestAsTypeIncompatible(t *testing.T) {
	r := units.Default()
	a := FromFloats([]float64{1}, r.MustParse("m"))

	_, err := a.AsType(PintType(r.MustParse("s")))
	require.Error(t, err)
	assert.True(t, quantaerrors.IsType(err, quantaerrors.ErrorTypeIncompatibleUnits))
}

func TestAsTypeToPlainKeepsMagnitudes(t *testing.T) {
	r := units.Default()
	a := FromFloats([]float64{1500}, r.MustParse("mm"))

	plain, err := a.AsType(Float64Type())
	require.NoError(t, err)

	// stripping the unit does not rescale
	q, _ := plain.Value(0)
	assert.Equal(t, 1500.0, q.Magnitude)
}

func TestToQuantities(t *testing.T) {
	m := units.Default().MustParse("m")
	a := FromFloats([]float64{1, math.NaN()}, m)

	qs := a.ToQuantities()
	require.Len(t, qs, 2)
	assert.Equal(t, 1.0, qs[0].Magnitude)
	assert.True(t, qs[1].IsNaN())
	assert.Equal(t, "m", qs[1].Unit.String())
}

func TestEqualAcrossUnits(t *testing.T) {
	r := units.Default()

	a := FromFloats([]float64{1, 2}, r.MustParse("m"))
	b := FromFloats([]float64{1000, 2000}, r.MustParse("mm"))
	assert.True(t, a.Equal(b))

	c := FromFloats([]float64{1, 3}, r.MustParse("m"))
	assert.False(t, a.Equal(c))
}
