package units

import "sync"

// FormatStyle selects how units are rendered as text.
type FormatStyle string

const (
	// FormatCompact renders machine-friendly text: m*mm/s**2. This is the
	// form dtype strings and round-tripped headers use.
	FormatCompact FormatStyle = "compact"
	// FormatPretty renders display text with a middle dot and superscript
	// exponents: m·mm/s².
	FormatPretty FormatStyle = "pretty"
)

// The process-wide default display format. It is the only mutable global
// state in the package; callers that format several units in one logical
// operation should snapshot it once with DefaultFormat rather than reading
// it per unit.
var (
	formatMu      sync.RWMutex
	defaultFormat = FormatCompact
)

// DefaultFormat returns the current process-wide format style.
func DefaultFormat() FormatStyle {
	formatMu.RLock()
	defer formatMu.RUnlock()
	return defaultFormat
}

// SetDefaultFormat sets the process-wide format style.
func SetDefaultFormat(style FormatStyle) {
	formatMu.Lock()
	defer formatMu.Unlock()
	defaultFormat = style
}
