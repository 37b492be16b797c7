package units

import (
	"math"
	"strconv"

	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
)

// Quantity is a numeric magnitude tagged with a unit.
type Quantity struct {
	Magnitude float64
	Unit      Unit
}

// NewQuantity pairs a magnitude with a unit.
func NewQuantity(magnitude float64, unit Unit) Quantity {
	return Quantity{Magnitude: magnitude, Unit: unit}
}

// ConversionFactor returns the multiplier that converts magnitudes expressed
// in from into magnitudes expressed in to. Fails with incompatible_units
// when the dimension vectors differ.
func ConversionFactor(from, to Unit) (float64, error) {
	if !from.IsCompatibleWith(to) {
		return 0, quantaerrors.New(quantaerrors.ErrorTypeIncompatibleUnits, "cannot convert between units").
			WithDetail("from", from.String()).
			WithDetail("to", to.String())
	}
	return from.scale() / to.scale(), nil
}

// To converts the quantity into a compatible target unit.
func (q Quantity) To(target Unit) (Quantity, error) {
	f, err := ConversionFactor(q.Unit, target)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: q.Magnitude * f, Unit: target}, nil
}

// Add returns q + other expressed in q's unit. The operands must be
// dimensionally compatible.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	conv, err := other.To(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: q.Magnitude + conv.Magnitude, Unit: q.Unit}, nil
}

// Sub returns q - other expressed in q's unit.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	conv, err := other.To(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: q.Magnitude - conv.Magnitude, Unit: q.Unit}, nil
}

// Mul returns the product with symbolically combined units.
func (q Quantity) Mul(other Quantity) Quantity {
	return Quantity{Magnitude: q.Magnitude * other.Magnitude, Unit: q.Unit.Mul(other.Unit)}
}

// Div returns the quotient with symbolically combined units.
func (q Quantity) Div(other Quantity) Quantity {
	return Quantity{Magnitude: q.Magnitude / other.Magnitude, Unit: q.Unit.Div(other.Unit)}
}

// Pow raises magnitude and unit to a scalar power.
func (q Quantity) Pow(p float64) Quantity {
	return Quantity{Magnitude: math.Pow(q.Magnitude, p), Unit: q.Unit.Pow(p)}
}

// IsNaN reports whether the magnitude is NaN, the missing sentinel for
// float-backed storage.
func (q Quantity) IsNaN() bool {
	return math.IsNaN(q.Magnitude)
}

// String formats the quantity as "<magnitude> <unit>" using the default
// format style.
func (q Quantity) String() string {
	return strconv.FormatFloat(q.Magnitude, 'g', -1, 64) + " " + q.Unit.Format(DefaultFormat())
}
