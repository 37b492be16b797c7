package columnar

import (
	"math"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

// UnitArray is unit-aware column storage: an Arrow float64 buffer plus
// exactly one unit shared by every element. Missing values live in the
// buffer's validity bitmap. Instances are immutable after construction;
// every operation returns new storage.
type UnitArray struct {
	data *array.Float64
	unit units.Unit
}

// FromQuantities builds storage from a sequence of quantities, inferring
// the shared unit from the first non-missing element unless an explicit
// unit is given. Elements in compatible units are converted into the shared
// unit; incompatible elements fail the construction.
//
// Pass the zero Unit and at least one non-missing element to infer; an
// all-missing sequence requires an explicit unit (or use Type.Empty).
func FromQuantities(quantities []units.Quantity, unit units.Unit, explicit bool) (*UnitArray, error) {
	shared := unit
	if !explicit {
		inferred := false
		for _, q := range quantities {
			if !q.IsNaN() {
				shared = q.Unit
				inferred = true
				break
			}
		}
		if !inferred {
			return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation,
				"cannot infer a unit from an all-missing sequence")
		}
	}

	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(len(quantities))
	for i, q := range quantities {
		if q.IsNaN() {
			b.AppendNull()
			continue
		}
		conv, err := q.To(shared)
		if err != nil {
			return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeIncompatibleUnits,
				"sequence elements carry incompatible units").
				WithDetail("index", i).
				WithDetail("element_unit", q.Unit.String()).
				WithDetail("shared_unit", shared.String())
		}
		b.Append(conv.Magnitude)
	}
	return &UnitArray{data: b.NewFloat64Array(), unit: shared}, nil
}

// FromFloats wraps raw magnitudes with a unit. This is the trusted path:
// values are assumed already expressed in the unit and are not validated.
// NaN values become missing.
func FromFloats(values []float64, unit units.Unit) *UnitArray {
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			b.AppendNull()
		} else {
			b.Append(v)
		}
	}
	return &UnitArray{data: b.NewFloat64Array(), unit: unit}
}

// FromArrow wraps an existing Arrow float64 array without copying. The
// caller's reference is retained.
func FromArrow(data *array.Float64, unit units.Unit) *UnitArray {
	data.Retain()
	return &UnitArray{data: data, unit: unit}
}

func emptyArray(n int, unit units.Unit) *UnitArray {
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(n)
	for i := 0; i < n; i++ {
		b.AppendNull()
	}
	return &UnitArray{data: b.NewFloat64Array(), unit: unit}
}

// Len returns the number of elements.
func (a *UnitArray) Len() int { return a.data.Len() }

// Unit returns the shared unit.
func (a *UnitArray) Unit() units.Unit { return a.unit }

// Dtype returns the descriptor for this storage.
func (a *UnitArray) Dtype() Type { return PintType(a.unit) }

// Value materializes element i as a quantity. ok is false for missing
// elements.
func (a *UnitArray) Value(i int) (q units.Quantity, ok bool) {
	if a.data.IsNull(i) {
		return units.Quantity{}, false
	}
	return units.NewQuantity(a.data.Value(i), a.unit), true
}

// IsNA reports whether element i is missing.
func (a *UnitArray) IsNA(i int) bool { return a.data.IsNull(i) }

// NACount returns the number of missing elements.
func (a *UnitArray) NACount() int { return a.data.NullN() }

// Float64s copies the raw magnitudes out, with NaN at missing positions.
func (a *UnitArray) Float64s() []float64 {
	out := make([]float64, a.Len())
	for i := range out {
		if a.data.IsNull(i) {
			out[i] = math.NaN()
		} else {
			out[i] = a.data.Value(i)
		}
	}
	return out
}

// Slice returns storage over [i, j) sharing the same unit and, through
// Arrow's slice, the same buffer.
func (a *UnitArray) Slice(i, j int) *UnitArray {
	sliced := array.NewSlice(a.data, int64(i), int64(j)).(*array.Float64)
	return &UnitArray{data: sliced, unit: a.unit}
}

// Take gathers elements at the given positions into new storage. Negative
// positions produce missing elements, matching the host framework's take
// semantics for out-of-bounds fills.
func (a *UnitArray) Take(indices []int) (*UnitArray, error) {
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(len(indices))
	for _, idx := range indices {
		if idx < 0 {
			b.AppendNull()
			continue
		}
		if idx >= a.Len() {
			return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation, "take index out of bounds").
				WithDetail("index", idx).
				WithDetail("length", a.Len())
		}
		if a.data.IsNull(idx) {
			b.AppendNull()
		} else {
			b.Append(a.data.Value(idx))
		}
	}
	return &UnitArray{data: b.NewFloat64Array(), unit: a.unit}, nil
}

// Copy returns storage with a freshly materialized buffer.
func (a *UnitArray) Copy() *UnitArray {
	return FromFloats(a.Float64s(), a.unit)
}

// Release drops this storage's reference on the underlying Arrow buffer.
func (a *UnitArray) Release() { a.data.Release() }

// ToQuantities materializes the whole column as quantity values, with NaN
// magnitudes at missing positions.
func (a *UnitArray) ToQuantities() []units.Quantity {
	out := make([]units.Quantity, a.Len())
	for i := range out {
		if a.data.IsNull(i) {
			out[i] = units.NewQuantity(math.NaN(), a.unit)
		} else {
			out[i] = units.NewQuantity(a.data.Value(i), a.unit)
		}
	}
	return out
}

// Equal reports elementwise equality: same length, same unit after
// conversion of the other storage, and equal magnitudes with missing
// positions aligned.
func (a *UnitArray) Equal(other *UnitArray) bool {
	if a.Len() != other.Len() {
		return false
	}
	conv, err := other.To(a.unit)
	if err != nil {
		return false
	}
	defer conv.Release()
	for i := 0; i < a.Len(); i++ {
		if a.data.IsNull(i) != conv.data.IsNull(i) {
			return false
		}
		if !a.data.IsNull(i) && a.data.Value(i) != conv.data.Value(i) {
			return false
		}
	}
	return true
}

// To converts the storage into a compatible target unit, scaling the buffer.
func (a *UnitArray) To(target units.Unit) (*UnitArray, error) {
	f, err := units.ConversionFactor(a.unit, target)
	if err != nil {
		return nil, err
	}
	if f == 1 && a.unit.Equal(target) {
		a.data.Retain()
		return &UnitArray{data: a.data, unit: target}, nil
	}
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Reserve(a.Len())
	for i := 0; i < a.Len(); i++ {
		if a.data.IsNull(i) {
			b.AppendNull()
		} else {
			b.Append(a.data.Value(i) * f)
		}
	}
	return &UnitArray{data: b.NewFloat64Array(), unit: target}, nil
}

// AsType casts the storage to another dtype. Casting to a compatible pint
// dtype converts magnitudes; casting to an incompatible one fails; casting
// to plain float64 strips the unit without scaling.
func (a *UnitArray) AsType(t Type) (*UnitArray, error) {
	switch t.Kind() {
	case KindPint:
		return a.To(t.Unit())
	case KindFloat:
		a.data.Retain()
		return &UnitArray{data: a.data, unit: units.Dimensionless()}, nil
	default:
		return nil, quantaerrors.New(quantaerrors.ErrorTypeUnsupportedOp, "unsupported cast target").
			WithDetail("dtype", t.String())
	}
}

// Concat concatenates storages. Identical units concatenate buffers
// directly; compatible units convert into the first storage's unit first;
// incompatible units fail.
func Concat(arrays ...*UnitArray) (*UnitArray, error) {
	if len(arrays) == 0 {
		return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation, "nothing to concatenate")
	}
	first := arrays[0]

	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	for _, arr := range arrays {
		f, err := units.ConversionFactor(arr.unit, first.unit)
		if err != nil {
			return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeIncompatibleUnits,
				"cannot concatenate storages with incompatible units").
				WithDetail("first_unit", first.unit.String()).
				WithDetail("other_unit", arr.unit.String())
		}
		for i := 0; i < arr.Len(); i++ {
			if arr.data.IsNull(i) {
				b.AppendNull()
			} else {
				b.Append(arr.data.Value(i) * f)
			}
		}
	}
	return &UnitArray{data: b.NewFloat64Array(), unit: first.unit}, nil
}

// String renders the column for debugging: up to the first few elements
// plus the dtype.
func (a *UnitArray) String() string {
	const maxShown = 10
	var sb strings.Builder
	sb.WriteString("[")
	n := a.Len()
	for i := 0; i < n && i < maxShown; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		if a.data.IsNull(i) {
			sb.WriteString("NA")
		} else {
			q, _ := a.Value(i)
			sb.WriteString(q.String())
		}
	}
	if n > maxShown {
		sb.WriteString(" ...")
	}
	sb.WriteString("] dtype=")
	sb.WriteString(a.Dtype().String())
	return sb.String()
}
