package export

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// parquetRecord mirrors record with parquet schema tags.
type parquetRecord struct {
	LCSC         string `parquet:"name=lcsc_part, type=BYTE_ARRAY, convertedtype=UTF8"`
	Category     string `parquet:"name=first_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	Subcategory  string `parquet:"name=second_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	MFR          string `parquet:"name=mfr_part, type=BYTE_ARRAY, convertedtype=UTF8"`
	Package      string `parquet:"name=package, type=BYTE_ARRAY, convertedtype=UTF8"`
	Joints       string `parquet:"name=solder_joint, type=BYTE_ARRAY, convertedtype=UTF8"`
	Manufacturer string `parquet:"name=manufacturer, type=BYTE_ARRAY, convertedtype=UTF8"`
	LibraryType  string `parquet:"name=library_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Description  string `parquet:"name=description, type=BYTE_ARRAY, convertedtype=UTF8"`
	Datasheet    string `parquet:"name=datasheet, type=BYTE_ARRAY, convertedtype=UTF8"`
	Price        string `parquet:"name=price, type=BYTE_ARRAY, convertedtype=UTF8"`
	Stock        int64  `parquet:"name=stock, type=INT64"`
}

// parquetWriter streams records as a snappy-compressed parquet file.
type parquetWriter struct {
	fw source.ParquetFile
	pw *writer.ParquetWriter
}

func newParquetWriter(path string) (*parquetWriter, error) {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("export: create artifact: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, new(parquetRecord), 1)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("export: create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	return &parquetWriter{fw: fw, pw: pw}, nil
}

func (w *parquetWriter) Write(rec record) error {
	return w.pw.Write(parquetRecord{
		LCSC:         rec.LCSC,
		Category:     rec.Category,
		Subcategory:  rec.Subcategory,
		MFR:          rec.MFR,
		Package:      rec.Package,
		Joints:       rec.Joints,
		Manufacturer: rec.Manufacturer,
		LibraryType:  rec.LibraryType,
		Description:  rec.Description,
		Datasheet:    rec.Datasheet,
		Price:        rec.Price,
		Stock:        rec.Stock,
	})
}

func (w *parquetWriter) Close() error {
	if err := w.pw.WriteStop(); err != nil {
		w.fw.Close()
		return err
	}
	return w.fw.Close()
}
