package columnar

import (
	"math"
	"sort"

	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

// ReduceKind names a reduction with unit semantics.
type ReduceKind string

const (
	ReduceSum    ReduceKind = "sum"
	ReduceMean   ReduceKind = "mean"
	ReduceMin    ReduceKind = "min"
	ReduceMax    ReduceKind = "max"
	ReduceStd    ReduceKind = "std"
	ReduceVar    ReduceKind = "var"
	ReduceMedian ReduceKind = "median"
	ReduceSkew   ReduceKind = "skew"
	ReduceKurt   ReduceKind = "kurt"
)

// reduceRule pairs the numeric reduction over the raw buffer with the rule
// deriving the result unit from the storage unit.
type reduceRule struct {
	resultUnit func(u units.Unit) units.Unit
	apply      func(values []float64) (float64, bool)
}

var identityUnit = func(u units.Unit) units.Unit { return u }
var dimensionlessUnit = func(units.Unit) units.Unit { return units.Dimensionless() }

var reduceRules = map[ReduceKind]reduceRule{
	ReduceSum:    {identityUnit, reduceSum},
	ReduceMean:   {identityUnit, reduceMean},
	ReduceMin:    {identityUnit, reduceMin},
	ReduceMax:    {identityUnit, reduceMax},
	ReduceMedian: {identityUnit, reduceMedian},
	ReduceVar:    {func(u units.Unit) units.Unit { return u.Pow(2) }, reduceVar},
	ReduceStd:    {identityUnit, reduceStd},
	ReduceSkew:   {dimensionlessUnit, reduceSkew},
	ReduceKurt:   {dimensionlessUnit, reduceKurt},
}

// Reduce unwraps the raw buffer, delegates the numeric reduction, and
// rewraps the scalar in the storage's unit (squared for variance,
// dimensionless for the shape statistics). Missing elements are skipped;
// ok is false when the column is all-missing or has too few observations
// for the statistic, never a computed zero.
func (a *UnitArray) Reduce(kind ReduceKind) (units.Quantity, bool, error) {
	rule, found := reduceRules[kind]
	if !found {
		return units.Quantity{}, false, quantaerrors.Newf(quantaerrors.ErrorTypeUnsupportedOp,
			"reduction %q has no unit semantics", kind)
	}

	values := make([]float64, 0, a.Len())
	for i := 0; i < a.Len(); i++ {
		if !a.data.IsNull(i) {
			values = append(values, a.data.Value(i))
		}
	}

	result, ok := rule.apply(values)
	if !ok {
		return units.Quantity{}, false, nil
	}
	return units.NewQuantity(result, rule.resultUnit(a.unit)), true, nil
}

// Sum returns the total as a quantity in the storage unit.
func (a *UnitArray) Sum() (units.Quantity, bool) { return a.mustReduce(ReduceSum) }

// Mean returns the average as a quantity in the storage unit.
func (a *UnitArray) Mean() (units.Quantity, bool) { return a.mustReduce(ReduceMean) }

// Min returns the smallest value.
func (a *UnitArray) Min() (units.Quantity, bool) { return a.mustReduce(ReduceMin) }

// Max returns the largest value.
func (a *UnitArray) Max() (units.Quantity, bool) { return a.mustReduce(ReduceMax) }

// Median returns the middle value.
func (a *UnitArray) Median() (units.Quantity, bool) { return a.mustReduce(ReduceMedian) }

// Var returns the sample variance; its unit is the storage unit squared.
func (a *UnitArray) Var() (units.Quantity, bool) { return a.mustReduce(ReduceVar) }

// Std returns the sample standard deviation in the storage unit.
func (a *UnitArray) Std() (units.Quantity, bool) { return a.mustReduce(ReduceStd) }

// Skew returns the sample skewness (dimensionless).
func (a *UnitArray) Skew() (units.Quantity, bool) { return a.mustReduce(ReduceSkew) }

// Kurt returns the excess sample kurtosis (dimensionless).
func (a *UnitArray) Kurt() (units.Quantity, bool) { return a.mustReduce(ReduceKurt) }

func (a *UnitArray) mustReduce(kind ReduceKind) (units.Quantity, bool) {
	q, ok, _ := a.Reduce(kind)
	return q, ok
}

// Any reports whether any non-missing element is nonzero. Truthiness only
// has meaning for dimensionless storage.
func (a *UnitArray) Any() (bool, bool, error) {
	return a.truthReduce(func(acc, v bool) bool { return acc || v }, false)
}

// All reports whether every non-missing element is nonzero. Truthiness only
// has meaning for dimensionless storage.
func (a *UnitArray) All() (bool, bool, error) {
	return a.truthReduce(func(acc, v bool) bool { return acc && v }, true)
}

func (a *UnitArray) truthReduce(combine func(acc, v bool) bool, init bool) (bool, bool, error) {
	if !a.unit.IsDimensionless() {
		return false, false, quantaerrors.New(quantaerrors.ErrorTypeUnsupportedOp,
			"truth reduction requires dimensionless storage").
			WithDetail("unit", a.unit.String())
	}
	acc := init
	seen := false
	for i := 0; i < a.Len(); i++ {
		if a.data.IsNull(i) {
			continue
		}
		seen = true
		acc = combine(acc, a.data.Value(i) != 0)
	}
	if !seen {
		return false, false, nil
	}
	return acc, true, nil
}

func reduceSum(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total, true
}

func reduceMean(values []float64) (float64, bool) {
	total, ok := reduceSum(values)
	if !ok {
		return 0, false
	}
	return total / float64(len(values)), true
}

func reduceMin(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m, true
}

func reduceMax(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m, true
}

func reduceMedian(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}

// reduceVar is the unbiased sample variance (n-1 denominator).
func reduceVar(values []float64) (float64, bool) {
	n := len(values)
	if n < 2 {
		return 0, false
	}
	mean, _ := reduceMean(values)
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return ss / float64(n-1), true
}

func reduceStd(values []float64) (float64, bool) {
	v, ok := reduceVar(values)
	if !ok {
		return 0, false
	}
	return math.Sqrt(v), true
}

// reduceSkew is the adjusted Fisher-Pearson sample skewness.
func reduceSkew(values []float64) (float64, bool) {
	n := float64(len(values))
	if n < 3 {
		return 0, false
	}
	mean, _ := reduceMean(values)
	m2, m3 := 0.0, 0.0
	for _, v := range values {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return 0, false
	}
	g1 := m3 / math.Pow(m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2), true
}

// reduceKurt is the bias-corrected excess kurtosis.
func reduceKurt(values []float64) (float64, bool) {
	n := float64(len(values))
	if n < 4 {
		return 0, false
	}
	mean, _ := reduceMean(values)
	m2, m4 := 0.0, 0.0
	for _, v := range values {
		d := v - mean
		m2 += d * d
		m4 += d * d * d * d
	}
	s2 := m2 / (n - 1)
	if s2 == 0 {
		return 0, false
	}
	term := (n * (n + 1)) / ((n - 1) * (n - 2) * (n - 3)) * (m4 / (s2 * s2))
	return term - 3*(n-1)*(n-1)/((n-2)*(n-3)), true
}
