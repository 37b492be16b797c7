// Package quanta provides unit-aware columnar data handling for Go: tabular
// frames whose numeric columns carry physical units, with safe arithmetic,
// conversion, and file round trips.
//
// A unit-aware column stores plain float64 magnitudes in an Arrow buffer and
// pairs them with a single unit, so a column of [1, 2, 3] meters occupies
// exactly the memory of a float64 column. Units only come into play at the
// boundaries: arithmetic converts or combines them, reductions rewrap their
// results in them, and readers and writers move them between column labels
// and column dtypes.
//
// # Packages
//
//   - pkg/units: unit parsing, conversion, and symbolic algebra (the
//     registry, Unit, and Quantity types)
//   - pkg/columnar: Arrow-backed unit-aware storage with operator and
//     reduction dispatch
//   - pkg/frame: the tabular surface (Frame, Series, Index) and the
//     quantify/dequantify transformations
//   - pkg/formats: CSV, Arrow IPC, and JSON round trips, with optional
//     stream compression via pkg/compression
//
// # Quick Start
//
// Read a CSV whose headers embed units, convert a column, and aggregate:
//
//	f, err := formats.ReadFile("measurements.csv", formats.CSVOptions{Quantify: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f, err = f.ConvertColumn("torque", units.Default().MustParse("N*m"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results, err := f.Aggregate(columnar.ReduceMean)
//
// Column headers follow the usual conventions: "torque [lbf ft]",
// "pressure (psi)", or "speed / mph". A dedicated units header row is
// supported as well, with "No Unit" marking columns that carry none.
//
// # Unit Safety
//
// Adding meters to seconds fails with a structured error; adding meters to
// millimeters converts first. Multiplication and division combine units
// symbolically, so velocity times time yields a length. Errors carry a
// machine-checkable type:
//
//	if quantaerrors.IsType(err, quantaerrors.ErrorTypeIncompatibleUnits) {
//	    // the operands cannot be reconciled
//	}
package quanta
