package units

import (
	"strconv"
	"strings"
	"sync"

	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
)

// definition is a registered base or derived symbol.
type definition struct {
	symbol     string
	factor     float64
	dim        [numDims]float64
	prefixable bool
}

// Registry resolves unit text to Unit values. It holds the symbol table and
// applies SI prefixes to prefixable symbols (mm, kPa, MW, ...).
//
// Registries are safe for concurrent use: Define takes the write lock,
// Parse the read lock. Parsing the same text twice yields value-equal
// units, so concurrent duplicate resolution is harmless.
type Registry struct {
	mu      sync.RWMutex
	defs    map[string]definition
	aliases map[string]string
}

// NewRegistry returns an empty registry with no symbols defined. Most
// callers want Default instead.
func NewRegistry() *Registry {
	return &Registry{
		defs:    make(map[string]definition),
		aliases: make(map[string]string),
	}
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry, populated with SI base and
// derived units plus common engineering units on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.defineBuiltins()
	})
	return defaultRegistry
}

// Define registers a symbol with its conversion factor to coherent SI and
// its dimension vector. Prefixable symbols additionally resolve with SI
// prefixes (k, m, µ, ...). Aliases resolve to the same unit but format
// under the primary symbol.
func (r *Registry) Define(symbol string, factor float64, dim Dims, prefixable bool, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[symbol] = definition{symbol: symbol, factor: factor, dim: dim.vector(), prefixable: prefixable}
	for _, a := range aliases {
		r.aliases[a] = symbol
	}
}

// SI prefixes, longest first so "da" wins over "d".
var prefixes = []struct {
	text  string
	scale float64
}{
	{"da", 1e1},
	{"y", 1e-24}, {"z", 1e-21}, {"a", 1e-18}, {"f", 1e-15}, {"p", 1e-12},
	{"n", 1e-9}, {"µ", 1e-6}, {"u", 1e-6}, {"m", 1e-3}, {"c", 1e-2},
	{"d", 1e-1}, {"h", 1e2}, {"k", 1e3}, {"M", 1e6}, {"G", 1e9},
	{"T", 1e12}, {"P", 1e15}, {"E", 1e18},
}

// lookup resolves a single symbol, trying aliases first, then the symbol
// itself, then prefix + prefixable symbol. The returned unit keeps the
// symbol as written.
func (r *Registry) lookup(symbol string) (Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name := symbol
	if primary, ok := r.aliases[name]; ok {
		name = primary
	}
	if def, ok := r.defs[name]; ok {
		return Unit{
			components: []component{{symbol: def.symbol, exp: 1}},
			dim:        def.dim,
			factor:     def.factor,
		}, true
	}

	for _, p := range prefixes {
		rest, ok := strings.CutPrefix(symbol, p.text)
		if !ok || rest == "" {
			continue
		}
		base := rest
		if primary, ok := r.aliases[base]; ok {
			base = primary
		}
		def, ok := r.defs[base]
		if !ok || !def.prefixable {
			continue
		}
		return Unit{
			components: []component{{symbol: symbol, exp: 1}},
			dim:        def.dim,
			factor:     p.scale * def.factor,
		}, true
	}

	return Unit{}, false
}

// Parse resolves unit text into a Unit. The grammar accepts symbols joined
// by "*", "/", "·", or whitespace (whitespace multiplies: "lbf ft"),
// with optional exponents written "**n" or "^n". "1" is the dimensionless
// numerator, so "1/s" parses as inverse seconds.
func (r *Registry) Parse(text string) (Unit, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Unit{}, quantaerrors.New(quantaerrors.ErrorTypeDtypeParse, "empty unit text")
	}
	if trimmed == "dimensionless" || trimmed == "1" {
		return Dimensionless(), nil
	}

	result := Dimensionless()
	rest := trimmed
	divide := false
	for len(rest) > 0 {
		token, nextDivide, remaining := nextToken(rest)
		if token == "" {
			return Unit{}, quantaerrors.New(quantaerrors.ErrorTypeDtypeParse, "malformed unit text").
				WithDetail("input", text)
		}

		symbol, exp, err := splitExponent(token)
		if err != nil {
			return Unit{}, quantaerrors.Wrap(err, quantaerrors.ErrorTypeDtypeParse, "bad exponent").
				WithDetail("token", token).
				WithDetail("input", text)
		}

		var term Unit
		if symbol == "1" {
			term = Dimensionless()
		} else {
			u, ok := r.lookup(symbol)
			if !ok {
				return Unit{}, quantaerrors.New(quantaerrors.ErrorTypeDtypeParse, "unknown unit symbol").
					WithDetail("symbol", symbol).
					WithDetail("input", text)
			}
			term = u
		}
		if exp != 1 {
			term = term.Pow(exp)
		}

		if divide {
			result = result.Div(term)
		} else {
			result = result.Mul(term)
		}
		divide = nextDivide
		rest = remaining
	}

	return result, nil
}

// MustParse parses unit text against the registry, panicking on failure.
// Intended for tests and static unit tables.
func (r *Registry) MustParse(text string) Unit {
	u, err := r.Parse(text)
	if err != nil {
		panic(err)
	}
	return u
}

// nextToken scans one symbol token. It returns the token, whether the
// following operator is a division, and the unscanned remainder.
func nextToken(s string) (token string, divide bool, rest string) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '/' || c == ' ' || c == '\t' {
			break
		}
		if c == '*' {
			// "**" belongs to the exponent, a single "*" separates tokens
			if i+1 < len(s) && s[i+1] == '*' {
				i += 2
				continue
			}
			break
		}
		if strings.HasPrefix(s[i:], "·") {
			break
		}
		i++
	}
	token = s[:i]
	rest = strings.TrimSpace(s[i:])
	if rest == "" {
		return token, false, ""
	}
	switch {
	case rest[0] == '/':
		divide = true
		rest = strings.TrimSpace(rest[1:])
	case rest[0] == '*':
		rest = strings.TrimSpace(rest[1:])
	case strings.HasPrefix(rest, "·"):
		rest = strings.TrimSpace(rest[len("·"):])
	}
	// bare whitespace between tokens means multiplication, nothing to strip
	return token, divide, rest
}

// splitExponent splits "m**2" or "s^-1" into symbol and exponent.
func splitExponent(token string) (string, float64, error) {
	sep := "**"
	i := strings.Index(token, sep)
	if i < 0 {
		sep = "^"
		i = strings.Index(token, sep)
	}
	if i < 0 {
		return token, 1, nil
	}
	exp, err := strconv.ParseFloat(token[i+len(sep):], 64)
	if err != nil {
		return "", 0, err
	}
	return token[:i], exp, nil
}

// defineBuiltins populates the default registry. Factors are to coherent
// SI (kg, m, s, A, K, mol, cd); mass symbols are defined relative to the
// kilogram.
func (r *Registry) defineBuiltins() {
	// SI base
	r.Define("m", 1, Dims{Length: 1}, true, "meter", "meters", "metre", "metres")
	r.Define("g", 1e-3, Dims{Mass: 1}, true, "gram", "grams")
	r.Define("s", 1, Dims{Time: 1}, true, "second", "seconds", "sec")
	r.Define("A", 1, Dims{Current: 1}, true, "ampere", "amperes", "amp")
	r.Define("K", 1, Dims{Temperature: 1}, true, "kelvin")
	r.Define("mol", 1, Dims{Amount: 1}, true, "mole", "moles")
	r.Define("cd", 1, Dims{Luminosity: 1}, true, "candela")

	// SI derived, prefixable
	r.Define("Hz", 1, Dims{Time: -1}, true, "hertz")
	r.Define("N", 1, Dims{Mass: 1, Length: 1, Time: -2}, true, "newton", "newtons")
	r.Define("Pa", 1, Dims{Mass: 1, Length: -1, Time: -2}, true, "pascal", "pascals")
	r.Define("J", 1, Dims{Mass: 1, Length: 2, Time: -2}, true, "joule", "joules")
	r.Define("W", 1, Dims{Mass: 1, Length: 2, Time: -3}, true, "watt", "watts")
	r.Define("V", 1, Dims{Mass: 1, Length: 2, Time: -3, Current: -1}, true, "volt", "volts")
	r.Define("bar", 1e5, Dims{Mass: 1, Length: -1, Time: -2}, true)
	r.Define("L", 1e-3, Dims{Length: 3}, true, "liter", "liters", "litre", "litres", "l")

	// Time
	r.Define("min", 60, Dims{Time: 1}, false, "minute", "minutes")
	r.Define("h", 3600, Dims{Time: 1}, false, "hour", "hours", "hr")
	r.Define("day", 86400, Dims{Time: 1}, false, "days", "d")
	r.Define("week", 604800, Dims{Time: 1}, false, "weeks")

	// Imperial / engineering
	r.Define("in", 0.0254, Dims{Length: 1}, false, "inch", "inches")
	r.Define("ft", 0.3048, Dims{Length: 1}, false, "foot", "feet")
	r.Define("yd", 0.9144, Dims{Length: 1}, false, "yard", "yards")
	r.Define("mi", 1609.344, Dims{Length: 1}, false, "mile", "miles")
	r.Define("lb", 0.45359237, Dims{Mass: 1}, false, "pound", "pounds", "lbs")
	r.Define("oz", 0.028349523125, Dims{Mass: 1}, false, "ounce", "ounces")
	r.Define("t", 1000, Dims{Mass: 1}, false, "tonne", "tonnes", "ton")
	r.Define("lbf", 4.4482216152605, Dims{Mass: 1, Length: 1, Time: -2}, false)
	r.Define("psi", 6894.757293168362, Dims{Mass: 1, Length: -1, Time: -2}, false)
	r.Define("atm", 101325, Dims{Mass: 1, Length: -1, Time: -2}, false)
	r.Define("mph", 0.44704, Dims{Length: 1, Time: -1}, false)
	r.Define("knot", 0.5144444444444445, Dims{Length: 1, Time: -1}, false, "kn", "knots")

	// Rotation counts as dimensionless; rpm is revolutions per minute.
	r.Define("rev", 1, Dims{}, false, "revolution", "revolutions", "turn")
	r.Define("rpm", 1.0/60.0, Dims{Time: -1}, false)
	r.Define("rad", 1, Dims{}, false, "radian", "radians")
	r.Define("deg", 0.017453292519943295, Dims{}, false, "degree", "degrees", "°")

	// Dimensionless ratios
	r.Define("dimensionless", 1, Dims{}, false)
	r.Define("percent", 1e-2, Dims{}, false, "%")
	r.Define("ppm", 1e-6, Dims{}, false)
}
