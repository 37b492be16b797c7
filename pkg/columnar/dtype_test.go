package columnar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

func TestParseTypePint(t *testing.T) {
	dt, err := ParseType("pint[m/s]", nil)
	require.NoError(t, err)
	assert.True(t, dt.IsPint())
	assert.Equal(t, "pint[m/s]", dt.String())

	// registry aliases normalize to the canonical symbol
	dt, err = ParseType("pint[meter]", nil)
	require.NoError(t, err)
	assert.Equal(t, "pint[m]", dt.String())
}

func TestParseTypePlainKinds(t *testing.T) {
	dt, err := ParseType("float64", nil)
	require.NoError(t, err)
	assert.Equal(t, KindFloat, dt.Kind())
	assert.False(t, dt.IsPint())

	dt, err = ParseType("string", nil)
	require.NoError(t, err)
	assert.Equal(t, KindString, dt.Kind())
}

func TestParseTypeErrors(t *testing.T) {
	for _, text := range []string{"pint[", "pint[m", "pint", "int64", "pint[florble]"} {
		_, err := ParseType(text, nil)
		require.Error(t, err, "input %q", text)
		assert.True(t, quantaerrors.IsType(err, quantaerrors.ErrorTypeDtypeParse), "input %q", text)
	}
}

func TestTypeEqualityIsSymbolic(t *testing.T) {
	r := units.Default()
	m := PintType(r.MustParse("m"))
	mm := PintType(r.MustParse("mm"))

	assert.False(t, m.Equal(mm))
	assert.True(t, m.Compatible(mm))
	assert.NotEqual(t, m.Hash(), mm.Hash())

	again, err := ParseType("pint[m]", r)
	require.NoError(t, err)
	assert.True(t, m.Equal(again))
	assert.Equal(t, m.Hash(), again.Hash())
}

func TestTypeCompatibility(t *testing.T) {
	r := units.Default()
	m := PintType(r.MustParse("m"))
	s := PintType(r.MustParse("s"))

	assert.False(t, m.Compatible(s))
	assert.False(t, m.Compatible(Float64Type()))
	assert.True(t, Float64Type().Compatible(Float64Type()))
}

func TestTypeEmpty(t *testing.T) {
	kpa := units.Default().MustParse("kPa")

	a, err := PintType(kpa).Empty(4)
	require.NoError(t, err)
	assert.Equal(t, 4, a.Len())
	assert.Equal(t, 4, a.NACount())
	assert.Equal(t, "kPa", a.Unit().String())

	_, err = Float64Type().Empty(4)
	require.Error(t, err)
	assert.True(t, quantaerrors.IsType(err, quantaerrors.ErrorTypeValidation))
}
