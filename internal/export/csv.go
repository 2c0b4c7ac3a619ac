package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ulikunitz/xz"
)

// csvHeader is the fixed column set consumers of the CSV artifact expect.
var csvHeader = []string{
	"LCSC Part",
	"First Category",
	"Second Category",
	"MFR.Part",
	"Package",
	"Solder Joint",
	"Manufacturer",
	"Library Type",
	"Description",
	"Datasheet",
	"Price",
	"Stock",
}

// csvWriter streams records as an xz-compressed CSV file.
type csvWriter struct {
	f  *os.File
	xw *xz.Writer
	cw *csv.Writer
}

func newCSVWriter(path string) (*csvWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export: create artifact: %w", err)
	}

	xw, err := xz.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("export: create xz stream: %w", err)
	}

	w := &csvWriter{
		f:  f,
		xw: xw,
		cw: csv.NewWriter(xw),
	}

	if err := w.cw.Write(csvHeader); err != nil {
		w.Close()
		return nil, fmt.Errorf("export: write header: %w", err)
	}

	return w, nil
}

func (w *csvWriter) Write(rec record) error {
	return w.cw.Write([]string{
		rec.LCSC,
		rec.Category,
		rec.Subcategory,
		rec.MFR,
		rec.Package,
		rec.Joints,
		rec.Manufacturer,
		rec.LibraryType,
		rec.Description,
		rec.Datasheet,
		rec.Price,
		strconv.FormatInt(rec.Stock, 10),
	})
}

func (w *csvWriter) Close() error {
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		w.xw.Close()
		w.f.Close()
		return err
	}
	if err := w.xw.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
