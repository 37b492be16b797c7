package frame

import (
	"regexp"
	"strings"

	"github.com/ajitpratap0/quanta/pkg/columnar"
	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

// DefaultSentinel is the label text marking a column that carries no unit
// at all (distinct from a dimensionless unit).
const DefaultSentinel = "No Unit"

// Convention names a single-row header convention embedding the unit in
// the column label.
type Convention string

const (
	// ConventionBracket is "name [unit]".
	ConventionBracket Convention = "bracket"
	// ConventionParen is "name (unit)".
	ConventionParen Convention = "paren"
	// ConventionSlash is "name / unit".
	ConventionSlash Convention = "slash"
)

var conventionPatterns = map[Convention]*regexp.Regexp{
	ConventionBracket: regexp.MustCompile(`^(.*?)\s*\[(.+)\]$`),
	ConventionParen:   regexp.MustCompile(`^(.*?)\s*\((.+)\)$`),
	ConventionSlash:   regexp.MustCompile(`^(.*?)\s+/\s+(.+)$`),
}

// Split extracts (name, unit) from a combined label. matched is false when
// the label does not follow this convention.
func (c Convention) Split(label string) (name, unit string, matched bool) {
	pat, ok := conventionPatterns[c]
	if !ok {
		return "", "", false
	}
	m := pat.FindStringSubmatch(label)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// Join embeds a unit into a label under this convention. A sentinel unit
// leaves the name bare, so no-unit columns round-trip to their original
// label.
func (c Convention) Join(name, unit, sentinel string) string {
	if unit == sentinel {
		return name
	}
	switch c {
	case ConventionParen:
		return name + " (" + unit + ")"
	case ConventionSlash:
		return name + " / " + unit
	default:
		return name + " [" + unit + "]"
	}
}

// ParseFunc maps a single-row column label to (name, unit-or-sentinel).
type ParseFunc func(label string) (name, unit string, err error)

// WriteFunc produces a single combined label from a column's name levels
// and its unit text (or the sentinel).
type WriteFunc func(name Label, unit string) string

// QuantifyOptions configures Quantify. The zero value uses the bottom
// index level for multi-level frames, all three recognized conventions for
// single-row frames, the default sentinel, and the default registry.
type QuantifyOptions struct {
	// Level is the index level holding unit text in multi-level frames.
	// Negative values count from the bottom (-1 is the bottom level, -n the
	// top of an n-level index); the zero value means the bottom level.
	// Ignored for single-row frames.
	Level int
	// Conventions restricts which single-row conventions are recognized.
	// Empty means all of bracket, paren, slash.
	Conventions []Convention
	// Parser overrides convention matching for single-row frames.
	Parser ParseFunc
	// Sentinel is the "no unit" token; empty means DefaultSentinel.
	Sentinel string
	// Registry resolves unit text; nil means units.Default().
	Registry *units.Registry
}

func (o *QuantifyOptions) normalize() {
	if o.Sentinel == "" {
		o.Sentinel = DefaultSentinel
	}
	if o.Registry == nil {
		o.Registry = units.Default()
	}
	if len(o.Conventions) == 0 {
		o.Conventions = []Convention{ConventionBracket, ConventionParen, ConventionSlash}
	}
}

// Quantify converts a frame whose column labels embed unit information
// into a frame with unit-aware columns. Unit text comes from the configured
// index level (multi-level frames) or from a recognized label convention
// (single-row frames). Columns whose unit token equals the sentinel keep
// their plain dtype. The now-redundant unit level or suffix is collapsed
// out of the labels.
func Quantify(f *Frame, opts QuantifyOptions) (*Frame, error) {
	if opts.Level == 0 {
		opts.Level = -1
	}
	opts.normalize()

	if f.Index().Levels() > 1 {
		return quantifyMultiLevel(f, opts)
	}
	return quantifySingleRow(f, opts)
}

func quantifyMultiLevel(f *Frame, opts QuantifyOptions) (*Frame, error) {
	level, err := f.Index().ResolveLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	tokens := f.Index().Level(level)
	values := make([]Values, f.NumCols())
	for i := 0; i < f.NumCols(); i++ {
		v, err := quantifyColumn(f.Column(i), tokens[i], opts)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	index, err := f.Index().DropLevel(level)
	if err != nil {
		return nil, err
	}
	return NewFrame(index, values)
}

func quantifySingleRow(f *Frame, opts QuantifyOptions) (*Frame, error) {
	names := make([]string, f.NumCols())
	values := make([]Values, f.NumCols())
	for i := 0; i < f.NumCols(); i++ {
		label := f.Index().Label(i)[0]
		name, token, err := splitLabel(label, opts)
		if err != nil {
			return nil, err
		}
		names[i] = name

		v, err := quantifyColumn(f.Column(i), token, opts)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return NewFrame(FlatIndex(names...), values)
}

// splitLabel resolves one single-row label into (name, unit token). Labels
// with no convention delimiters at all are no-unit columns; labels that
// contain delimiter characters but match no convention are malformed.
func splitLabel(label string, opts QuantifyOptions) (string, string, error) {
	if opts.Parser != nil {
		name, unit, err := opts.Parser(label)
		if err != nil {
			return "", "", quantaerrors.Wrap(err, quantaerrors.ErrorTypeHeaderParse,
				"parsing function rejected label").
				WithDetail("label", label)
		}
		return name, unit, nil
	}

	for _, c := range opts.Conventions {
		if name, unit, ok := c.Split(label); ok {
			return name, unit, nil
		}
	}

	if strings.ContainsAny(label, "[]()") {
		return "", "", quantaerrors.New(quantaerrors.ErrorTypeHeaderParse,
			"label matches no recognized unit convention").
			WithDetail("label", label).
			WithDetail("conventions", opts.Conventions)
	}
	// A plain label is a no-unit column.
	return label, opts.Sentinel, nil
}

// quantifyColumn wraps one column in unit-aware storage when its token
// names a unit. The existing buffer is wrapped verbatim; values are assumed
// already expressed in that unit.
func quantifyColumn(s *Series, token string, opts QuantifyOptions) (Values, error) {
	if token == opts.Sentinel || token == "" {
		return s.Values(), nil
	}

	unit, err := opts.Registry.Parse(token)
	if err != nil {
		return nil, quantaerrors.Wrap(err, quantaerrors.ErrorTypeDtypeParse, "unit token did not parse").
			WithDetail("column", s.Label().String()).
			WithDetail("token", token)
	}

	fv, ok := s.Values().(*FloatValues)
	if !ok {
		return nil, quantaerrors.New(quantaerrors.ErrorTypeValidation,
			"column dtype cannot be interpreted as numeric").
			WithDetail("column", s.Label().String()).
			WithDetail("dtype", s.Dtype().String())
	}
	return columnar.FromArrow(fv.Arrow(), unit), nil
}

// DequantifyOptions configures Dequantify.
type DequantifyOptions struct {
	// Sentinel is the "no unit" token; empty means DefaultSentinel.
	Sentinel string
	// Writer collapses (name levels, unit text) into a single combined
	// label instead of appending a unit level.
	Writer WriteFunc
	// Convention, when set and Writer is nil, writes single-row combined
	// labels under the named convention for single-level frames.
	Convention Convention
}

// Dequantify is the inverse of Quantify: unit-aware columns are cast back
// to plain numeric storage and their units (formatted under the registry's
// default style, snapshotted once per call) move into the column labels,
// by default as a new bottom index level, with the sentinel for columns
// that carry no unit.
func Dequantify(f *Frame, opts DequantifyOptions) (*Frame, error) {
	if opts.Sentinel == "" {
		opts.Sentinel = DefaultSentinel
	}
	style := units.DefaultFormat()

	unitTexts := make([]string, f.NumCols())
	values := make([]Values, f.NumCols())
	for i := 0; i < f.NumCols(); i++ {
		s := f.Column(i)
		if ua, ok := s.Values().(*columnar.UnitArray); ok {
			unitTexts[i] = ua.Unit().Format(style)
			values[i] = NewFloatValues(ua.Float64s())
		} else {
			unitTexts[i] = opts.Sentinel
			values[i] = s.Values()
		}
	}

	index, err := dequantifyIndex(f.Index(), unitTexts, opts)
	if err != nil {
		return nil, err
	}
	return NewFrame(index, values)
}

func dequantifyIndex(ix *Index, unitTexts []string, opts DequantifyOptions) (*Index, error) {
	if opts.Writer != nil {
		labels := make([]Label, ix.Len())
		for i := 0; i < ix.Len(); i++ {
			labels[i] = Label{opts.Writer(ix.Label(i), unitTexts[i])}
		}
		return ix.WithLabels(labels)
	}
	if opts.Convention != "" && ix.Levels() == 1 {
		labels := make([]Label, ix.Len())
		for i := 0; i < ix.Len(); i++ {
			labels[i] = Label{opts.Convention.Join(ix.Label(i)[0], unitTexts[i], opts.Sentinel)}
		}
		return ix.WithLabels(labels)
	}
	// Default: the unit level is always the bottom level.
	return ix.AppendLevel(unitTexts)
}
