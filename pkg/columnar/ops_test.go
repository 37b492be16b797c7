package columnar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

func TestAddCompatibleUnits(t *testing.T) {
	r := units.Default()
	a := FromFloats([]float64{1, 2, 3}, r.MustParse("m"))
	b := FromFloats([]float64{1000, 2000, 3000}, r.MustParse("mm"))

	got, err := a.Arith(OpAdd, b)
	require.NoError(t, err)
	assert.Equal(t, "m", got.Unit().String())
	for i, want := range []float64{2, 4, 6} {
		q, ok := got.Value(i)
		require.True(t, ok)
		assert.InDelta(t, want, q.Magnitude, 1e-12)
	}

	// A + B equals A + B.to(A's unit)
	conv, err := b.To(r.MustParse("m"))
	require.NoError(t, err)
	viaConv, err := a.Arith(OpAdd, conv)
	require.NoError(t, err)
	assert.True(t, got.Equal(viaConv))
}

func TestAddIncompatibleUnitsFails(t *testing.T) {
	r := units.Default()
	a := FromFloats([]float64{1}, r.MustParse("m"))
	b := FromFloats([]float64{1}, r.MustParse("s"))

	_, err := a.Arith(OpAdd, b)
	require.Error(t, err)
	assert.True(t, quantaerrors.IsType(err, quantaerrors.ErrorTypeIncompatibleUnits))
}

func TestMulCombinesUnitsSymbolically(t *testing.T) {
	r := units.Default()
	a := FromFloats([]float64{1, 2, 3}, r.MustParse("m"))
	b := FromFloats([]float64{1000, 2000, 3000}, r.MustParse("mm"))

	got, err := a.Arith(OpMul, b)
	require.NoError(t, err)
	assert.Equal(t, "m*mm", got.Unit().String())
	for i, want := range []float64{1000, 4000, 9000} {
		q, _ := got.Value(i)
		assert.InDelta(t, want, q.Magnitude, 1e-9)
	}

	// incompatible units multiply fine
	div, err := a.Arith(OpDiv, FromFloats([]float64{2, 2, 2}, r.MustParse("s")))
	require.NoError(t, err)
	assert.Equal(t, "m/s", div.Unit().String())
}

func TestDivSameUnitIsDimensionless(t *testing.T) {
	m := units.Default().MustParse("m")
	a := FromFloats([]float64{6}, m)
	b := FromFloats([]float64{3}, m)

	got, err := a.Arith(OpDiv, b)
	require.NoError(t, err)
	assert.True(t, got.Unit().IsDimensionless())

	q, _ := got.Value(0)
	assert.InDelta(t, 2, q.Magnitude, 1e-12)
}

func TestFloorDivAndMod(t *testing.T) {
	r := units.Default()
	m := r.MustParse("m")
	a := FromFloats([]float64{7}, m)
	b := FromFloats([]float64{2}, m)

	fd, err := a.Arith(OpFloorDiv, b)
	require.NoError(t, err)
	q, _ := fd.Value(0)
	assert.Equal(t, 3.0, q.Magnitude)
	assert.True(t, fd.Unit().IsDimensionless())

	// remainder keeps the left unit, right operand converts first
	md, err := a.Arith(OpMod, units.NewQuantity(2000, r.MustParse("mm")))
	require.NoError(t, err)
	q, _ = md.Value(0)
	assert.InDelta(t, 1, q.Magnitude, 1e-12)
	assert.Equal(t, "m", md.Unit().String())
}

func TestDivmodIdentity(t *testing.T) {
	m := units.Default().MustParse("m")
	a := FromFloats([]float64{7, -7, 7, -7}, m)
	b := FromFloats([]float64{2, 2, -2, -2}, m)

	quot, err := a.Arith(OpFloorDiv, b)
	require.NoError(t, err)
	rem, err := a.Arith(OpMod, b)
	require.NoError(t, err)

	// the remainder is floored, taking the divisor's sign
	for i, want := range []float64{1, 1, -1, -1} {
		q, ok := rem.Value(i)
		require.True(t, ok)
		assert.Equal(t, want, q.Magnitude, "rem[%d]", i)
	}

	// a == (a // b) * b + a % b elementwise
	for i := 0; i < a.Len(); i++ {
		qv, _ := quot.Value(i)
		rv, _ := rem.Value(i)
		bv, _ := b.Value(i)
		av, _ := a.Value(i)
		assert.Equal(t, av.Magnitude, qv.Magnitude*bv.Magnitude+rv.Magnitude, "row %d", i)
	}
}

func TestPow(t *testing.T) {
	m := units.Default().MustParse("m")
	a := FromFloats([]float64{1, 2, 3}, m)

	got, err := a.Arith(OpPow, 2)
	require.NoError(t, err)
	assert.Equal(t, "m**2", got.Unit().String())

	q, _ := got.Value(2)
	assert.Equal(t, 9.0, q.Magnitude)
}

func TestPowArrayExponentRejected(t *testing.T) {
	r := units.Default()
	a := FromFloats([]float64{1, 2}, r.MustParse("m"))

	_, err := a.Arith(OpPow, []float64{2, 3})
	require.Error(t, err)
	assert.True(t, quantaerrors.IsType(err, quantaerrors.ErrorTypeUnsupportedOp))

	// also rejected for dimensionless storage
	d := FromFloats([]float64{1, 2}, units.Dimensionless())
	_, err = d.Arith(OpPow, FromFloats([]float64{2, 3}, units.Dimensionless()))
	require.Error(t, err)
	assert.True(t, quantaerrors.IsType(err, quantaerrors.ErrorTypeUnsupportedOp))
}

func TestPowUnitExponentRejected(t *testing.T) {
	r := units.Default()
	a := FromFloats([]float64{2}, r.MustParse("m"))

	_, err := a.Arith(OpPow, units.NewQuantity(2, r.MustParse("s")))
	require.Error(t, err)
	assert.True(t, quantaerrors.IsType(err, quantaerrors.ErrorTypeIncompatibleUnits))
}

func TestScalarOperands(t *testing.T) {
	r := units.Default()
	a := FromFloats([]float64{1, 2}, r.MustParse("m"))

	// plain scalars are dimensionless: multiplication always succeeds
	doubled, err := a.Arith(OpMul, 2.0)
	require.NoError(t, err)
	assert.Equal(t, "m", doubled.Unit().String())
	q, _ := doubled.Value(1)
	assert.Equal(t, 4.0, q.Magnitude)

	// addition of a plain scalar to a non-dimensionless unit fails
	_, err = a.Arith(OpAdd, 1.0)
	require.Error(t, err)
	assert.True(t, quantaerrors.IsType(err, quantaerrors.ErrorTypeIncompatibleUnits))

	// addition to a dimensionless (scaled) unit converts the scalar
	pct := FromFloats([]float64{10}, r.MustParse("percent"))
	sum, err := pct.Arith(OpAdd, 0.5)
	require.NoError(t, err)
	q, _ = sum.Value(0)
	assert.InDelta(t, 60, q.Magnitude, 1e-9)
}

func TestQuantityOperand(t *testing.T) {
	r := units.Default()
	a := FromFloats([]float64{1, 2}, r.MustParse("m"))

	got, err := a.Arith(OpSub, units.NewQuantity(500, r.MustParse("mm")))
	require.NoError(t, err)
	q, _ := got.Value(0)
	assert.InDelta(t, 0.5, q.Magnitude, 1e-12)
	assert.Equal(t, "m", got.Unit().String())
}

func TestMissingPropagates(t *testing.T) {
	m := units.Default().MustParse("m")
	a := FromFloats([]float64{1, math.NaN()}, m)
	b := FromFloats([]float64{math.NaN(), 2}, m)

	got, err := a.Arith(OpAdd, b)
	require.NoError(t, err)
	assert.True(t, got.IsNA(0))
	assert.True(t, got.IsNA(1))
}

func TestLengthMismatch(t *testing.T) {
	m := units.Default().MustParse("m")
	a := FromFloats([]float64{1, 2}, m)
	b := FromFloats([]float64{1}, m)

	_, err := a.Arith(OpAdd, b)
	assert.Error(t, err)
}

func TestCompareConvertsUnits(t *testing.T) {
	r := units.Default()
	a := FromFloats([]float64{1, 2, 3}, r.MustParse("m"))
	b := FromFloats([]float64{500, 2000, 9000}, r.MustParse("mm"))

	got, err := a.Compare(OpGt, b)
	require.NoError(t, err)
	defer got.Release()

	assert.True(t, got.Value(0))
	assert.False(t, got.Value(1))
	assert.False(t, got.Value(2))
}

func TestCompareIncompatibleFails(t *testing.T) {
	r := units.Default()
	a := FromFloats([]float64{1}, r.MustParse("m"))
	b := FromFloats([]float64{1}, r.MustParse("s"))

	_, err := a.Compare(OpLt, b)
	require.Error(t, err)
	assert.True(t, quantaerrors.IsType(err, quantaerrors.ErrorTypeIncompatibleUnits))
}

func TestCompareMissingIsNull(t *testing.T) {
	m := units.Default().MustParse("m")
	a := FromFloats([]float64{1, math.NaN()}, m)

	got, err := a.Compare(OpEq, a)
	require.NoError(t, err)
	defer got.Release()

	assert.False(t, got.IsNull(0))
	assert.True(t, got.IsNull(1))
}

func TestUnaryOps(t *testing.T) {
	m := units.Default().MustParse("m")
	a := FromFloats([]float64{-1, 2}, m)

	neg := a.Neg()
	q, _ := neg.Value(0)
	assert.Equal(t, 1.0, q.Magnitude)
	assert.Equal(t, "m", neg.Unit().String())

	abs := a.Abs()
	q, _ = abs.Value(0)
	assert.Equal(t, 1.0, q.Magnitude)
}

func TestUnknownOperator(t *testing.T) {
	m := units.Default().MustParse("m")
	a := FromFloats([]float64{1}, m)

	_, err := a.Arith(Op("@"), a)
	require.Error(t, err)
	assert.True(t, quantaerrors.IsType(err, quantaerrors.ErrorTypeUnsupportedOp))
}
