// Package units provides the unit registry backing Quanta's unit-aware
// column types: symbolic units, dimensional analysis, unit algebra, and
// magnitude conversion.
//
// A Unit is an immutable value: a product of registered symbols with
// exponents (e.g. kg*m/s**2), a dimension vector over the seven SI base
// dimensions, and a conversion factor to coherent SI. All units are
// multiplicative: offset scales such as degC are not supported, kelvin is
// the temperature unit.
//
// Units are obtained from a Registry (usually the process-wide Default
// registry) and combined with Mul, Div, and Pow. Two units are compatible
// when their dimension vectors match; conversion between compatible units
// is a pure scale of the magnitude.
package units

import (
	"math"
	"strconv"
	"strings"
)

// Number of SI base dimensions: length, mass, time, current, temperature,
// amount, luminosity.
const numDims = 7

const (
	dimLength = iota
	dimMass
	dimTime
	dimCurrent
	dimTemperature
	dimAmount
	dimLuminosity
)

// Dims describes a dimension vector using named exponents. Fractional
// exponents arise only from Pow and are carried exactly.
type Dims struct {
	Length      float64
	Mass        float64
	Time        float64
	Current     float64
	Temperature float64
	Amount      float64
	Luminosity  float64
}

func (d Dims) vector() [numDims]float64 {
	return [numDims]float64{d.Length, d.Mass, d.Time, d.Current, d.Temperature, d.Amount, d.Luminosity}
}

// component is one symbolic factor of a unit, e.g. {"mm", 1} or {"s", -2}.
// Symbols are kept as written so that m*mm formats as the user composed it
// rather than collapsing to a normalized power of meters.
type component struct {
	symbol string
	exp    float64
}

// Unit is an immutable symbolic unit. The zero value is dimensionless "1".
type Unit struct {
	components []component
	dim        [numDims]float64
	factor     float64 // multiplier to coherent SI; 0 means 1 (zero value)
}

// Dimensionless returns the unit representing "no physical dimension"
// (distinct from "no unit at all", which the frame layer models with the
// no-unit sentinel).
func Dimensionless() Unit {
	return Unit{factor: 1}
}

func (u Unit) scale() float64 {
	if u.factor == 0 {
		return 1
	}
	return u.factor
}

// IsDimensionless reports whether all dimension exponents are zero.
// Scaled dimensionless units (percent, ppm) are dimensionless too.
func (u Unit) IsDimensionless() bool {
	for _, e := range u.dim {
		if e != 0 {
			return false
		}
	}
	return true
}

// IsCompatibleWith reports whether u and v share the same dimension vector,
// i.e. whether magnitudes can be converted between them.
func (u Unit) IsCompatibleWith(v Unit) bool {
	return u.dim == v.dim
}

// Equal reports symbolic equality: same canonical string form. Meters and
// millimeters are compatible but not equal.
func (u Unit) Equal(v Unit) bool {
	return u.String() == v.String()
}

// Mul returns the symbolic product of two units. Shared symbols merge their
// exponents; exponents that cancel to zero drop out.
func (u Unit) Mul(v Unit) Unit {
	out := Unit{factor: u.scale() * v.scale()}
	for i := range out.dim {
		out.dim[i] = u.dim[i] + v.dim[i]
	}
	out.components = mergeComponents(u.components, v.components, 1)
	return out
}

// Div returns the symbolic quotient u/v.
func (u Unit) Div(v Unit) Unit {
	out := Unit{factor: u.scale() / v.scale()}
	for i := range out.dim {
		out.dim[i] = u.dim[i] - v.dim[i]
	}
	out.components = mergeComponents(u.components, v.components, -1)
	return out
}

// Pow raises the unit to a scalar power. Fractional powers are permitted;
// m**2 raised to 0.5 recovers m.
func (u Unit) Pow(p float64) Unit {
	if p == 0 {
		return Dimensionless()
	}
	out := Unit{factor: math.Pow(u.scale(), p)}
	for i := range out.dim {
		out.dim[i] = u.dim[i] * p
	}
	out.components = make([]component, 0, len(u.components))
	for _, c := range u.components {
		out.components = append(out.components, component{symbol: c.symbol, exp: c.exp * p})
	}
	return out
}

// mergeComponents combines two component lists, scaling the second list's
// exponents by sign (+1 for Mul, -1 for Div). Order of first appearance is
// preserved.
func mergeComponents(a, b []component, sign float64) []component {
	out := make([]component, 0, len(a)+len(b))
	idx := make(map[string]int, len(a)+len(b))
	for _, c := range a {
		idx[c.symbol] = len(out)
		out = append(out, c)
	}
	for _, c := range b {
		if i, ok := idx[c.symbol]; ok {
			out[i].exp += sign * c.exp
		} else {
			idx[c.symbol] = len(out)
			out = append(out, component{symbol: c.symbol, exp: sign * c.exp})
		}
	}
	// Drop cancelled symbols
	kept := out[:0]
	for _, c := range out {
		if c.exp != 0 {
			kept = append(kept, c)
		}
	}
	return kept
}

// String returns the canonical compact form: numerator terms joined by "*",
// denominator terms appended as "/sym", exponents as "**n". A unit with no
// components formats as "dimensionless".
func (u Unit) String() string {
	return u.Format(FormatCompact)
}

// Format renders the unit in the given style.
func (u Unit) Format(style FormatStyle) string {
	if len(u.components) == 0 {
		return "dimensionless"
	}

	mulSep := "*"
	if style == FormatPretty {
		mulSep = "·" // middle dot
	}

	var num, den []component
	for _, c := range u.components {
		if c.exp > 0 {
			num = append(num, c)
		} else {
			den = append(den, component{symbol: c.symbol, exp: -c.exp})
		}
	}

	var b strings.Builder
	if len(num) == 0 {
		b.WriteString("1")
	}
	for i, c := range num {
		if i > 0 {
			b.WriteString(mulSep)
		}
		writeComponent(&b, c, style)
	}
	for _, c := range den {
		b.WriteString("/")
		writeComponent(&b, c, style)
	}
	return b.String()
}

func writeComponent(b *strings.Builder, c component, style FormatStyle) {
	b.WriteString(c.symbol)
	if c.exp == 1 {
		return
	}
	if style == FormatPretty {
		if s, ok := superscript(c.exp); ok {
			b.WriteString(s)
			return
		}
	}
	b.WriteString("**")
	b.WriteString(strconv.FormatFloat(c.exp, 'g', -1, 64))
}

var superscriptDigits = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
}

// superscript renders small positive integer exponents as unicode
// superscripts; anything else falls back to the ** form.
func superscript(exp float64) (string, bool) {
	if exp != math.Trunc(exp) || exp < 2 || exp > 9 {
		return "", false
	}
	r, ok := superscriptDigits[rune('0'+int(exp))]
	if !ok {
		return "", false
	}
	return string(r), true
}
