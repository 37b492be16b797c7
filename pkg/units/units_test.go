package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimple(t *testing.T) {
	r := Default()

	m, err := r.Parse("m")
	require.NoError(t, err)
	assert.Equal(t, "m", m.String())
	assert.False(t, m.IsDimensionless())

	mps, err := r.Parse("m/s")
	require.NoError(t, err)
	assert.Equal(t, "m/s", mps.String())

	force, err := r.Parse("kg*m/s**2")
	require.NoError(t, err)
	assert.Equal(t, "kg*m/s**2", force.String())

	// whitespace multiplies
	torque, err := r.Parse("lbf ft")
	require.NoError(t, err)
	assert.Equal(t, "lbf*ft", torque.String())
}

func TestParsePrefixes(t *testing.T) {
	r := Default()

	mm := r.MustParse("mm")
	m := r.MustParse("m")
	assert.True(t, mm.IsCompatibleWith(m))

	f, err := ConversionFactor(mm, m)
	require.NoError(t, err)
	assert.InDelta(t, 0.001, f, 1e-15)

	kPa := r.MustParse("kPa")
	pa := r.MustParse("Pa")
	f, err = ConversionFactor(kPa, pa)
	require.NoError(t, err)
	assert.InDelta(t, 1000, f, 1e-9)

	// "min" is a symbol, not milli-"in"
	min := r.MustParse("min")
	s := r.MustParse("s")
	f, err = ConversionFactor(min, s)
	require.NoError(t, err)
	assert.InDelta(t, 60, f, 1e-12)
}

func TestParseErrors(t *testing.T) {
	r := Default()

	cases := []string{"", "bogus", "m**x", "m/unknownunit"}
	for _, text := range cases {
		_, err := r.Parse(text)
		assert.Error(t, err, "input %q", text)
	}
}

func TestParseInverse(t *testing.T) {
	r := Default()

	hz := r.MustParse("1/s")
	assert.Equal(t, "1/s", hz.String())
	assert.True(t, hz.IsCompatibleWith(r.MustParse("Hz")))
}

func TestUnitAlgebra(t *testing.T) {
	r := Default()
	m := r.MustParse("m")
	mm := r.MustParse("mm")
	s := r.MustParse("s")

	area := m.Mul(mm)
	assert.Equal(t, "m*mm", area.String())
	assert.True(t, area.IsCompatibleWith(m.Pow(2)))

	speed := m.Div(s)
	assert.Equal(t, "m/s", speed.String())

	squared := m.Pow(2)
	assert.Equal(t, "m**2", squared.String())
	assert.Equal(t, "m", squared.Pow(0.5).String())

	// same-symbol division cancels to dimensionless
	ratio := m.Div(m)
	assert.True(t, ratio.IsDimensionless())
	assert.Equal(t, "dimensionless", ratio.String())
}

func TestCompatibility(t *testing.T) {
	r := Default()

	assert.True(t, r.MustParse("m").IsCompatibleWith(r.MustParse("ft")))
	assert.True(t, r.MustParse("rpm").IsCompatibleWith(r.MustParse("Hz")))
	assert.False(t, r.MustParse("m").IsCompatibleWith(r.MustParse("s")))
	assert.False(t, r.MustParse("N").IsCompatibleWith(r.MustParse("Pa")))

	// equality is symbolic, compatibility dimensional
	assert.False(t, r.MustParse("m").Equal(r.MustParse("mm")))
	assert.True(t, r.MustParse("m").Equal(r.MustParse("meter")))
}

func TestDimensionlessDistinctFromCompatible(t *testing.T) {
	r := Default()

	percent := r.MustParse("percent")
	assert.True(t, percent.IsDimensionless())

	f, err := ConversionFactor(Dimensionless(), percent)
	require.NoError(t, err)
	assert.InDelta(t, 100, f, 1e-12)
}

func TestQuantityConversion(t *testing.T) {
	r := Default()

	q := NewQuantity(1500, r.MustParse("mm"))
	conv, err := q.To(r.MustParse("m"))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, conv.Magnitude, 1e-12)
	assert.Equal(t, "m", conv.Unit.String())

	_, err = q.To(r.MustParse("s"))
	assert.Error(t, err)
}

func TestQuantityArithmetic(t *testing.T) {
	r := Default()
	m := r.MustParse("m")
	mm := r.MustParse("mm")

	sum, err := NewQuantity(1, m).Add(NewQuantity(500, mm))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, sum.Magnitude, 1e-12)
	assert.Equal(t, "m", sum.Unit.String())

	_, err = NewQuantity(1, m).Add(NewQuantity(1, r.MustParse("s")))
	assert.Error(t, err)

	prod := NewQuantity(2, m).Mul(NewQuantity(3, r.MustParse("s")))
	assert.InDelta(t, 6, prod.Magnitude, 1e-12)
	assert.Equal(t, "m*s", prod.Unit.String())

	sq := NewQuantity(3, m).Pow(2)
	assert.InDelta(t, 9, sq.Magnitude, 1e-12)
	assert.Equal(t, "m**2", sq.Unit.String())
}

func TestQuantityNaN(t *testing.T) {
	q := NewQuantity(math.NaN(), Dimensionless())
	assert.True(t, q.IsNaN())
}

func TestFormatStyles(t *testing.T) {
	r := Default()

	sq := r.MustParse("m**2")
	assert.Equal(t, "m**2", sq.Format(FormatCompact))
	assert.Equal(t, "m²", sq.Format(FormatPretty))

	area := r.MustParse("m*mm")
	assert.Equal(t, "m*mm", area.Format(FormatCompact))
	assert.Equal(t, "m·mm", area.Format(FormatPretty))

	// negative exponents keep the slash form in both styles
	speed := r.MustParse("m/s")
	assert.Equal(t, "m/s", speed.Format(FormatPretty))
}

func TestDefaultFormatConfig(t *testing.T) {
	prev := DefaultFormat()
	t.Cleanup(func() { SetDefaultFormat(prev) })

	SetDefaultFormat(FormatPretty)
	assert.Equal(t, FormatPretty, DefaultFormat())

	SetDefaultFormat(FormatCompact)
	assert.Equal(t, FormatCompact, DefaultFormat())
}

func TestCustomDefinition(t *testing.T) {
	r := NewRegistry()
	r.Define("widget", 1, Dims{}, false)
	r.Define("m", 1, Dims{Length: 1}, true)

	u, err := r.Parse("widget/m")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if u.String() != "widget/m" {
		t.Errorf("expected 'widget/m', got %q", u.String())
	}
}
