// Package config provides the configuration surface for the quanta CLI and
// library defaults: the no-unit sentinel, the unit display format, header
// conventions, logging, and compression. Settings load from a YAML file,
// QUANTA_* environment variables, and flags via viper, in that order of
// increasing precedence.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/quanta/pkg/quantaerrors"
	"github.com/ajitpratap0/quanta/pkg/units"
)

// Settings is the unified configuration structure.
type Settings struct {
	// Sentinel is the "no unit" header token.
	Sentinel string `yaml:"sentinel" json:"sentinel"`
	// UnitFormat is the default display format: compact or pretty.
	UnitFormat string `yaml:"unit_format" json:"unit_format"`
	// Convention is the single-row header convention: bracket, paren, slash.
	Convention string `yaml:"convention" json:"convention"`
	// UnitsRow reads/writes a dedicated units header row in CSV.
	UnitsRow bool `yaml:"units_row" json:"units_row"`
	// LogLevel is the zap log level.
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogEncoding is json or console.
	LogEncoding string `yaml:"log_encoding" json:"log_encoding"`
}

// DefaultSettings returns the defaults used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Sentinel:    "No Unit",
		UnitFormat:  string(units.FormatCompact),
		Convention:  "bracket",
		UnitsRow:    false,
		LogLevel:    "info",
		LogEncoding: "console",
	}
}

// Validate checks enum-valued fields.
func (s Settings) Validate() error {
	switch units.FormatStyle(s.UnitFormat) {
	case units.FormatCompact, units.FormatPretty:
	default:
		return quantaerrors.Newf(quantaerrors.ErrorTypeConfig, "invalid unit_format %q", s.UnitFormat)
	}
	switch s.Convention {
	case "bracket", "paren", "slash":
	default:
		return quantaerrors.Newf(quantaerrors.ErrorTypeConfig, "invalid convention %q", s.Convention)
	}
	return nil
}

// Load resolves settings from an optional config file and the QUANTA_*
// environment. An empty path skips the file.
func Load(path string) (Settings, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("sentinel", defaults.Sentinel)
	v.SetDefault("unit_format", defaults.UnitFormat)
	v.SetDefault("convention", defaults.Convention)
	v.SetDefault("units_row", defaults.UnitsRow)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_encoding", defaults.LogEncoding)

	v.SetEnvPrefix("QUANTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, quantaerrors.Wrap(err, quantaerrors.ErrorTypeConfig, "reading config file").
				WithDetail("path", path)
		}
	}

	s := Settings{
		Sentinel:    v.GetString("sentinel"),
		UnitFormat:  v.GetString("unit_format"),
		Convention:  v.GetString("convention"),
		UnitsRow:    v.GetBool("units_row"),
		LogLevel:    v.GetString("log_level"),
		LogEncoding: v.GetString("log_encoding"),
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Save writes settings to a YAML file.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return quantaerrors.Wrap(err, quantaerrors.ErrorTypeConfig, "marshaling settings")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return quantaerrors.Wrap(err, quantaerrors.ErrorTypeFile, "writing config file").
			WithDetail("path", path)
	}
	return nil
}

// Apply installs process-wide settings (the default unit format).
func (s Settings) Apply() {
	units.SetDefaultFormat(units.FormatStyle(s.UnitFormat))
}
