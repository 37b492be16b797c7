// Package columnar provides Quanta's unit-aware column storage: Arrow-backed
// numeric buffers that externally behave as sequences of quantities sharing
// one unit per column.
package columnar

import (
	"strings"

	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

// Kind is the explicit storage-kind tag of a column type. Checks for "is
// this dtype unit-aware" go through the tag, never through structural
// probing.
type Kind int

const (
	// KindFloat is plain float64 storage with no unit semantics.
	KindFloat Kind = iota
	// KindPint is unit-aware float64 storage.
	KindPint
	// KindString is passthrough text storage.
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float64"
	case KindPint:
		return "pint"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Type is a column dtype descriptor: a (storage-kind, unit) pair. The unit
// is meaningful only for KindPint. Descriptors are immutable values; their
// identity derives solely from the kind and the canonical unit string, so
// constructing the same descriptor twice yields equal values.
type Type struct {
	kind Kind
	unit units.Unit
}

// Float64Type is the descriptor for plain numeric storage.
func Float64Type() Type { return Type{kind: KindFloat} }

// StringType is the descriptor for passthrough text storage.
func StringType() Type { return Type{kind: KindString} }

// PintType is the descriptor for unit-aware storage carrying the given unit.
func PintType(unit units.Unit) Type {
	return Type{kind: KindPint, unit: unit}
}

// ParseType parses a canonical dtype string. The unit-aware form is
// "pint[<unit-text>]" where the unit text is handed verbatim to the
// registry parser; "float64" and "string" name the plain kinds.
func ParseType(text string, registry *units.Registry) (Type, error) {
	switch text {
	case "float64":
		return Float64Type(), nil
	case "string":
		return StringType(), nil
	}

	inner, ok := strings.CutPrefix(text, "pint[")
	if !ok || !strings.HasSuffix(inner, "]") {
		return Type{}, quantaerrors.New(quantaerrors.ErrorTypeDtypeParse, "malformed dtype string").
			WithDetail("input", text).
			WithDetail("expected", "pint[<unit>]")
	}
	unitText := strings.TrimSuffix(inner, "]")

	if registry == nil {
		registry = units.Default()
	}
	u, err := registry.Parse(unitText)
	if err != nil {
		return Type{}, quantaerrors.Wrap(err, quantaerrors.ErrorTypeDtypeParse, "unit text did not parse").
			WithDetail("input", text)
	}
	return PintType(u), nil
}

// Kind returns the storage-kind tag.
func (t Type) Kind() Kind { return t.kind }

// Unit returns the unit for KindPint descriptors; the zero (dimensionless)
// unit otherwise.
func (t Type) Unit() units.Unit { return t.unit }

// IsPint reports whether the descriptor is unit-aware.
func (t Type) IsPint() bool { return t.kind == KindPint }

// String returns the canonical dtype string, e.g. "pint[m/s]".
func (t Type) String() string {
	if t.kind == KindPint {
		return "pint[" + t.unit.Format(units.FormatCompact) + "]"
	}
	return t.kind.String()
}

// Equal reports descriptor equality: same kind and same symbolic unit.
// Meters and millimeters produce compatible but unequal descriptors.
func (t Type) Equal(other Type) bool {
	return t.String() == other.String()
}

// Hash returns a stable map key for the descriptor.
func (t Type) Hash() string { return t.String() }

// Compatible reports whether storage of this dtype can be cast to the other:
// equal kinds, and for pint kinds dimensionally compatible units.
func (t Type) Compatible(other Type) bool {
	if t.kind != other.kind {
		return false
	}
	if t.kind != KindPint {
		return true
	}
	return t.unit.IsCompatibleWith(other.unit)
}

// Empty constructs an n-length all-missing UnitArray of this dtype. Only
// valid for KindPint descriptors.
func (t Type) Empty(n int) (*UnitArray, error) {
	if t.kind != KindPint {
		return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation, "empty storage requires a pint dtype").
			WithDetail("dtype", t.String())
	}
	return emptyArray(n, t.unit), nil
}
