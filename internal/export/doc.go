// Package export converts an extracted components database into a
// compressed tabular snapshot artifact.
//
// The converter reads the v_components view of the SQLite database and
// writes one of two artifact formats:
//
//   - xz-compressed CSV with the fixed 12-column layout downstream tools
//     consume (the default)
//   - snappy-compressed parquet with the same columns
//
// Row mapping follows the established export conventions: LCSC part
// numbers get a "C" prefix, the basic flag maps to a Basic/Extended
// library type, and the per-component price break JSON is flattened to
// "qFrom-qTo:price" segments.
//
// Conversion is all-or-nothing: a failure part way through leaves the
// output path untouched.
package export
