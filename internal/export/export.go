package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// Format selects the snapshot artifact encoding.
type Format string

const (
	// FormatCSV writes an xz-compressed CSV file.
	FormatCSV Format = "csv"

	// FormatParquet writes a snappy-compressed parquet file.
	FormatParquet Format = "parquet"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatParquet:
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("export: unknown format %q (want csv or parquet)", s)
	}
}

// DetectFormat infers the format from an output file name. Anything that
// is not a parquet file is treated as xz-compressed CSV, the historical
// artifact format.
func DetectFormat(output string) Format {
	if strings.HasSuffix(output, ".parquet") {
		return FormatParquet
	}
	return FormatCSV
}

// record is one exported catalog row.
type record struct {
	LCSC         string
	Category     string
	Subcategory  string
	MFR          string
	Package      string
	Joints       string
	Manufacturer string
	LibraryType  string
	Description  string
	Datasheet    string
	Price        string
	Stock        int64
}

// rowWriter encodes records into an artifact file.
type rowWriter interface {
	Write(rec record) error
	Close() error
}

// componentsQuery reads the export view of the components database.
const componentsQuery = `
SELECT lcsc, category, subcategory, mfr, package, joints, manufacturer,
       basic, description, datasheet, stock, price
FROM v_components`

// Snapshot converts the components database at dbPath into a tabular
// artifact at outPath. The artifact is written to a temporary file and
// renamed into place on success, so outPath is never left holding a
// partial export.
func Snapshot(ctx context.Context, dbPath, outPath string, format Format) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("export: database not found: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("export: open database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, componentsQuery)
	if err != nil {
		return fmt.Errorf("export: query components: %w", err)
	}
	defer rows.Close()

	tmp := outPath + ".partial"
	w, err := newRowWriter(format, tmp)
	if err != nil {
		return err
	}

	if err := writeRows(rows, w); err != nil {
		w.Close()
		os.Remove(tmp)
		return err
	}

	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("export: finalize artifact: %w", err)
	}

	if err := os.Rename(tmp, outPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("export: finalize artifact: %w", err)
	}

	return nil
}

func newRowWriter(format Format, path string) (rowWriter, error) {
	switch format {
	case FormatParquet:
		return newParquetWriter(path)
	default:
		return newCSVWriter(path)
	}
}

func writeRows(rows *sql.Rows, w rowWriter) error {
	for rows.Next() {
		var (
			lcsc                          int64
			basic                         int64
			stock                         sql.NullInt64
			category, subcategory, mfr    sql.NullString
			pkg, joints, manufacturer     sql.NullString
			description, datasheet, price sql.NullString
		)

		if err := rows.Scan(&lcsc, &category, &subcategory, &mfr, &pkg, &joints,
			&manufacturer, &basic, &description, &datasheet, &stock, &price); err != nil {
			return fmt.Errorf("export: scan component: %w", err)
		}

		// The library type flag is historical: 0 marks a basic part.
		libType := "Extended"
		if basic == 0 {
			libType = "Basic"
		}

		priceStr, err := flattenPrice(price.String)
		if err != nil {
			return fmt.Errorf("export: component C%d: %w", lcsc, err)
		}

		rec := record{
			LCSC:         "C" + strconv.FormatInt(lcsc, 10),
			Category:     category.String,
			Subcategory:  subcategory.String,
			MFR:          mfr.String,
			Package:      pkg.String,
			Joints:       joints.String,
			Manufacturer: manufacturer.String,
			LibraryType:  libType,
			Description:  description.String,
			Datasheet:    datasheet.String,
			Price:        priceStr,
			Stock:        stock.Int64,
		}

		if err := w.Write(rec); err != nil {
			return fmt.Errorf("export: write component C%d: %w", lcsc, err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("export: read components: %w", err)
	}

	return nil
}
