package columnar

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

// Op names a binary operator with unit semantics.
type Op string

const (
	OpAdd      Op = "+"
	OpSub      Op = "-"
	OpMul      Op = "*"
	OpDiv      Op = "/"
	OpFloorDiv Op = "//"
	OpMod      Op = "%"
	OpPow      Op = "**"
	OpEq       Op = "=="
	OpNe       Op = "!="
	OpLt       Op = "<"
	OpLe       Op = "<="
	OpGt       Op = ">"
	OpGe       Op = ">="
)

// arithRule is one row of the arithmetic dispatch table: whether the
// operands must be dimensionally compatible (in which case the right
// operand is converted into the left unit before apply runs), how the
// result unit derives from the operand units, and the elementwise buffer
// operation.
type arithRule struct {
	requiresCompat bool
	resultUnit     func(l, r units.Unit) units.Unit
	apply          func(l, r float64) float64
}

var arithRules = map[Op]arithRule{
	OpAdd: {
		requiresCompat: true,
		resultUnit:     func(l, _ units.Unit) units.Unit { return l },
		apply:          func(l, r float64) float64 { return l + r },
	},
	OpSub: {
		requiresCompat: true,
		resultUnit:     func(l, _ units.Unit) units.Unit { return l },
		apply:          func(l, r float64) float64 { return l - r },
	},
	OpMul: {
		resultUnit: func(l, r units.Unit) units.Unit { return l.Mul(r) },
		apply:      func(l, r float64) float64 { return l * r },
	},
	OpDiv: {
		resultUnit: func(l, r units.Unit) units.Unit { return l.Div(r) },
		apply:      func(l, r float64) float64 { return l / r },
	},
	OpFloorDiv: {
		resultUnit: func(l, r units.Unit) units.Unit { return l.Div(r) },
		apply:      func(l, r float64) float64 { return math.Floor(l / r) },
	},
	OpMod: {
		// Follows divmod semantics: operands must be convertible, the
		// remainder keeps the left unit and is floored to pair with
		// OpFloorDiv, so a == (a // b) * b + a % b holds for negative
		// dividends too.
		requiresCompat: true,
		resultUnit:     func(l, _ units.Unit) units.Unit { return l },
		apply:          func(l, r float64) float64 { return l - math.Floor(l/r)*r },
	},
}

var compareRules = map[Op]func(l, r float64) bool{
	OpEq: func(l, r float64) bool { return l == r },
	OpNe: func(l, r float64) bool { return l != r },
	OpLt: func(l, r float64) bool { return l < r },
	OpLe: func(l, r float64) bool { return l <= r },
	OpGt: func(l, r float64) bool { return l > r },
	OpGe: func(l, r float64) bool { return l >= r },
}

// operand is a resolved right-hand side: an element accessor, the operand's
// unit, and its length (-1 for scalars, which broadcast).
type operand struct {
	get    func(i int) (float64, bool)
	unit   units.Unit
	length int
}

// resolveOperand normalizes the supported right-hand-side types. Plain
// numeric scalars and slices are dimensionless by definition.
func resolveOperand(rhs interface{}) (*operand, error) {
	switch v := rhs.(type) {
	case *UnitArray:
		return &operand{
			get: func(i int) (float64, bool) {
				if v.data.IsNull(i) {
					return 0, false
				}
				return v.data.Value(i), true
			},
			unit:   v.unit,
			length: v.Len(),
		}, nil
	case units.Quantity:
		return &operand{
			get:    func(int) (float64, bool) { return v.Magnitude, !v.IsNaN() },
			unit:   v.Unit,
			length: -1,
		}, nil
	case float64:
		return scalarOperand(v), nil
	case float32:
		return scalarOperand(float64(v)), nil
	case int:
		return scalarOperand(float64(v)), nil
	case int64:
		return scalarOperand(float64(v)), nil
	case []float64:
		return &operand{
			get: func(i int) (float64, bool) {
				if math.IsNaN(v[i]) {
					return 0, false
				}
				return v[i], true
			},
			unit:   units.Dimensionless(),
			length: len(v),
		}, nil
	default:
		return nil, quantaerrors.Newf(quantaerrors.ErrorTypeUnsupportedOp,
			"unsupported operand type %T", rhs)
	}
}

func scalarOperand(v float64) *operand {
	return &operand{
		get:    func(int) (float64, bool) { return v, !math.IsNaN(v) },
		unit:   units.Dimensionless(),
		length: -1,
	}
}

func (a *UnitArray) checkLength(o *operand, op Op) error {
	if o.length >= 0 && o.length != a.Len() {
		return quantaerrors.New(quantaerrors.ErrorTypeValidation, "operand length mismatch").
			WithDetail("op", string(op)).
			WithDetail("left", a.Len()).
			WithDetail("right", o.length)
	}
	return nil
}

// Arith applies a binary arithmetic operator. The right-hand side may be a
// *UnitArray, a units.Quantity, a plain numeric scalar, or a []float64;
// plain operands are dimensionless, so adding one to storage with a
// non-dimensionless unit fails while multiplying always succeeds. Missing
// on either side yields missing.
func (a *UnitArray) Arith(op Op, rhs interface{}) (*UnitArray, error) {
	if op == OpPow {
		return a.pow(rhs)
	}
	rule, ok := arithRules[op]
	if !ok {
		return nil, quantaerrors.Newf(quantaerrors.ErrorTypeUnsupportedOp,
			"operator %q has no unit semantics", op)
	}

	o, err := resolveOperand(rhs)
	if err != nil {
		return nil, err
	}
	if err := a.checkLength(o, op); err != nil {
		return nil, err
	}

	factor := 1.0
	if rule.requiresCompat {
		factor, err = units.ConversionFactor(o.unit, a.unit)
		if err != nil {
			return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeIncompatibleUnits,
				"operands are not dimensionally compatible").
				WithDetail("op", string(op)).
				WithDetail("left_unit", a.unit.String()).
				WithDetail("right_unit", o.unit.String())
		}
	}

	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(a.Len())
	for i := 0; i < a.Len(); i++ {
		r, rok := o.get(i)
		if a.data.IsNull(i) || !rok {
			b.AppendNull()
			continue
		}
		b.Append(rule.apply(a.data.Value(i), r*factor))
	}
	return &UnitArray{data: b.NewFloat64Array(), unit: rule.resultUnit(a.unit, o.unit)}, nil
}

// pow raises every element to a scalar power; the unit is raised
// symbolically. Array exponents are rejected even for dimensionless
// storage, and exponents carrying a non-dimensionless unit are rejected.
func (a *UnitArray) pow(rhs interface{}) (*UnitArray, error) {
	var exp float64
	switch v := rhs.(type) {
	case float64:
		exp = v
	case float32:
		exp = float64(v)
	case int:
		exp = float64(v)
	case int64:
		exp = float64(v)
	case units.Quantity:
		conv, err := v.To(units.Dimensionless())
		if err != nil {
			return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeIncompatibleUnits,
				"exponent must be dimensionless")
		}
		exp = conv.Magnitude
	case *UnitArray, []float64:
		return nil, quantaerrors.New(quantaerrors.ErrorTypeUnsupportedOp,
			"array exponents are not supported")
	default:
		return nil, quantaerrors.Newf(quantaerrors.ErrorTypeUnsupportedOp,
			"unsupported exponent type %T", rhs)
	}

	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(a.Len())
	for i := 0; i < a.Len(); i++ {
		if a.data.IsNull(i) {
			b.AppendNull()
			continue
		}
		b.Append(math.Pow(a.data.Value(i), exp))
	}
	return &UnitArray{data: b.NewFloat64Array(), unit: a.unit.Pow(exp)}, nil
}

// Compare applies a comparison operator, converting the right operand into
// this storage's unit first. The result is a dimensionless Arrow boolean
// array; positions missing on either side are null.
func (a *UnitArray) Compare(op Op, rhs interface{}) (*array.Boolean, error) {
	cmp, ok := compareRules[op]
	if !ok {
		return nil, quantaerrors.Newf(quantaerrors.ErrorTypeUnsupportedOp,
			"comparison %q has no unit semantics", op)
	}

	o, err := resolveOperand(rhs)
	if err != nil {
		return nil, err
	}
	if err := a.checkLength(o, op); err != nil {
		return nil, err
	}

	factor, err := units.ConversionFactor(o.unit, a.unit)
	if err != nil {
		return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeIncompatibleUnits,
			"cannot compare quantities with incompatible units").
			WithDetail("op", string(op)).
			WithDetail("left_unit", a.unit.String()).
			WithDetail("right_unit", o.unit.String())
	}

	b := array.NewBooleanBuilder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(a.Len())
	for i := 0; i < a.Len(); i++ {
		r, rok := o.get(i)
		if a.data.IsNull(i) || !rok {
			b.AppendNull()
			continue
		}
		b.Append(cmp(a.data.Value(i), r*factor))
	}
	return b.NewBooleanArray(), nil
}

// Neg returns elementwise negation with the same unit.
func (a *UnitArray) Neg() *UnitArray {
	return a.unary(func(v float64) float64 { return -v })
}

// Abs returns elementwise absolute value with the same unit.
func (a *UnitArray) Abs() *UnitArray {
	return a.unary(math.Abs)
}

func (a *UnitArray) unary(f func(float64) float64) *UnitArray {
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(a.Len())
	for i := 0; i < a.Len(); i++ {
		if a.data.IsNull(i) {
			b.AppendNull()
		} else {
			b.Append(f(a.data.Value(i)))
		}
	}
	return &UnitArray{data: b.NewFloat64Array(), unit: a.unit}
}
