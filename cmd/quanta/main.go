package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/quanta/pkg/columnar"
	"github.com/ajitpratap0/quanta/pkg/config"
	"github.com/ajitpratap0/quanta/pkg/formats"
	"github.com/ajitpratap0/quanta/pkg/frame"
	"github.com/ajitpratap0/quanta/pkg/logger"
	"github.com/ajitpratap0/quanta/pkg/units"
)

var version = "0.1.0"

func main() {
	var cfgFile string
	var settings config.Settings

	root := &cobra.Command{
		Use:   "quanta",
		Short: "Quanta - unit-aware columnar data tool",
		Long: `Quanta reads tabular data whose columns carry physical units, converts it
into unit-aware columnar storage, and round-trips it through CSV, Arrow IPC,
and JSON with units preserved.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			settings, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
			settings.Apply()
			return logger.Init(logger.Config{
				Level:    settings.LogLevel,
				Encoding: settings.LogEncoding,
			})
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a quanta config file")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Quanta v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(unitsCommand())
	root.AddCommand(quantifyCommand(&settings))
	root.AddCommand(dequantifyCommand(&settings))
	root.AddCommand(describeCommand(&settings))
	root.AddCommand(configCommand())

	if err := root.Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		logger.Sync() //nolint:errcheck
		os.Exit(1)
	}
	logger.Sync() //nolint:errcheck
}

func unitsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "units",
		Short: "Inspect and convert units",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check <unit> <unit>",
		Short: "Check whether two units are dimensionally compatible",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := units.Default()
			u1, err := registry.Parse(args[0])
			if err != nil {
				return err
			}
			u2, err := registry.Parse(args[1])
			if err != nil {
				return err
			}
			if u1.IsCompatibleWith(u2) {
				f, _ := units.ConversionFactor(u1, u2)
				fmt.Printf("%s and %s are compatible (1 %s = %g %s)\n",
					u1, u2, u1, f, u2)
				return nil
			}
			fmt.Printf("%s and %s are not compatible\n", u1, u2)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "convert <value> <from> <to>",
		Short: "Convert a magnitude between compatible units",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var magnitude float64
			if _, err := fmt.Sscanf(args[0], "%g", &magnitude); err != nil {
				return fmt.Errorf("cannot parse %q as a number: %w", args[0], err)
			}
			registry := units.Default()
			from, err := registry.Parse(args[1])
			if err != nil {
				return err
			}
			to, err := registry.Parse(args[2])
			if err != nil {
				return err
			}
			q, err := units.NewQuantity(magnitude, from).To(to)
			if err != nil {
				return err
			}
			fmt.Println(q)
			return nil
		},
	})

	return cmd
}

func csvOptions(s *config.Settings, quantify bool) formats.CSVOptions {
	return formats.CSVOptions{
		UnitsRow:   s.UnitsRow,
		Quantify:   quantify,
		Convention: frame.Convention(s.Convention),
		Sentinel:   s.Sentinel,
	}
}

func quantifyCommand(s *config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "quantify <input> <output>",
		Short: "Read a table with unit headers and write it with unit-aware columns",
		Long: `Reads the input table, moves unit information from the column labels into
unit-aware column dtypes, and writes the result. Output format follows the
output extension: .csv, .arrow, .json, optionally compressed (.gz, .zst,
.s2, .lz4).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formats.ReadFile(args[0], csvOptions(s, true))
			if err != nil {
				return err
			}
			logger.Info("quantified input",
				zap.String("input", args[0]),
				zap.Int("columns", f.NumCols()),
				zap.Int("rows", f.NumRows()))
			return formats.WriteFile(args[1], f, csvOptions(s, false))
		},
	}
}

func dequantifyCommand(s *config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "dequantify <input> <output>",
		Short: "Move units out of column dtypes back into the column labels",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formats.ReadFile(args[0], csvOptions(s, false))
			if err != nil {
				return err
			}
			dq, err := frame.Dequantify(f, frame.DequantifyOptions{Sentinel: s.Sentinel})
			if err != nil {
				return err
			}
			return formats.WriteFile(args[1], dq, csvOptions(s, false))
		},
	}
}

func describeCommand(s *config.Settings) *cobra.Command {
	reductions := []columnar.ReduceKind{
		columnar.ReduceMean, columnar.ReduceStd, columnar.ReduceMin,
		columnar.ReduceMedian, columnar.ReduceMax,
	}
	return &cobra.Command{
		Use:   "describe <input>",
		Short: "Print per-column summary statistics with units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formats.ReadFile(args[0], csvOptions(s, true))
			if err != nil {
				return err
			}
			for _, kind := range reductions {
				results, err := f.Aggregate(kind)
				if err != nil {
					return err
				}
				fmt.Printf("%-8s", kind)
				for _, res := range results {
					if res.Missing {
						fmt.Printf("  %s=NA", res.Label)
					} else {
						fmt.Printf("  %s=%s", res.Label, res.Quantity)
					}
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage quanta configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init <path>",
		Short: "Write a config file with default settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultSettings())
		},
	})
	return cmd
}
