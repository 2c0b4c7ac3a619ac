package export

import (
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

// createFixtureDB builds a small components database with the export view
// the converter reads.
func createFixtureDB(t *testing.T, dir string) string {
	t.Helper()

	dbPath := filepath.Join(dir, "cache.sqlite3")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE components (
		   lcsc INTEGER PRIMARY KEY,
		   category TEXT, subcategory TEXT, mfr TEXT, package TEXT,
		   joints INTEGER, manufacturer TEXT, basic INTEGER,
		   description TEXT, datasheet TEXT, stock INTEGER, price TEXT
		 )`,
		`CREATE VIEW v_components AS
		   SELECT lcsc, category, subcategory, mfr, package, joints, manufacturer,
		          basic, description, datasheet, stock, price
		   FROM components`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	rows := []struct {
		lcsc  int64
		basic int64
		price string
	}{
		{25804, 0, `[{"qFrom":1,"qTo":199,"price":0.0012},{"qFrom":200,"qTo":null,"price":0.001}]`},
		{2040, 1, `[{"qFrom":1,"qTo":null,"price":0.35}]`},
	}
	for _, r := range rows {
		_, err := db.Exec(
			`INSERT INTO components VALUES (?, 'Resistors', 'Chip Resistor', 'RC0603', '0603', 2,
			 'UNI-ROYAL', ?, '100ohm 1% 0603 resistor', 'https://datasheet.example/r.pdf', 5000, ?)`,
			r.lcsc, r.basic, r.price)
		if err != nil {
			t.Fatalf("insert component: %v", err)
		}
	}

	return dbPath
}

func readCSVArtifact(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		t.Fatalf("open xz stream: %v", err)
	}

	records, err := csv.NewReader(xr).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

func TestSnapshotCSV(t *testing.T) {
	dir := t.TempDir()
	dbPath := createFixtureDB(t, dir)
	outPath := filepath.Join(dir, "parts.csv.xz")

	if err := Snapshot(context.Background(), dbPath, outPath, FormatCSV); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	records := readCSVArtifact(t, outPath)
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}

	if records[0][0] != "LCSC Part" || records[0][11] != "Stock" {
		t.Errorf("unexpected header: %v", records[0])
	}

	first := records[1]
	if first[0] != "C25804" {
		t.Errorf("expected LCSC C25804, got %s", first[0])
	}
	if first[7] != "Basic" {
		t.Errorf("expected library type Basic, got %s", first[7])
	}
	if first[10] != "1-199:0.0012,200-:0.001" {
		t.Errorf("unexpected price column: %s", first[10])
	}
	if first[11] != "5000" {
		t.Errorf("expected stock 5000, got %s", first[11])
	}

	second := records[2]
	if second[0] != "C2040" || second[7] != "Extended" {
		t.Errorf("unexpected second row: %v", second)
	}
}

func TestSnapshotCSVOverwrites(t *testing.T) {
	dir := t.TempDir()
	dbPath := createFixtureDB(t, dir)
	outPath := filepath.Join(dir, "parts.csv.xz")

	for i := 0; i < 2; i++ {
		if err := Snapshot(context.Background(), dbPath, outPath, FormatCSV); err != nil {
			t.Fatalf("Snapshot run %d: %v", i+1, err)
		}
	}

	records := readCSVArtifact(t, outPath)
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows after rerun, got %d", len(records))
	}
}

func TestSnapshotParquet(t *testing.T) {
	dir := t.TempDir()
	dbPath := createFixtureDB(t, dir)
	outPath := filepath.Join(dir, "parts.parquet")

	if err := Snapshot(context.Background(), dbPath, outPath, FormatParquet); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	fr, err := local.NewLocalFileReader(outPath)
	if err != nil {
		t.Fatalf("open parquet: %v", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(parquetRecord), 1)
	if err != nil {
		t.Fatalf("create parquet reader: %v", err)
	}
	defer pr.ReadStop()

	if pr.GetNumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", pr.GetNumRows())
	}

	recs := make([]parquetRecord, 2)
	if err := pr.Read(&recs); err != nil {
		t.Fatalf("read parquet rows: %v", err)
	}
	if recs[0].LCSC != "C25804" || recs[0].LibraryType != "Basic" {
		t.Errorf("unexpected first record: %+v", recs[0])
	}
	if recs[1].Stock != 5000 {
		t.Errorf("expected stock 5000, got %d", recs[1].Stock)
	}
}

func TestSnapshotMissingDatabase(t *testing.T) {
	dir := t.TempDir()
	err := Snapshot(context.Background(), filepath.Join(dir, "missing.sqlite3"),
		filepath.Join(dir, "parts.csv.xz"), FormatCSV)
	if err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestSnapshotBadPriceLeavesNoArtifact(t *testing.T) {
	dir := t.TempDir()
	dbPath := createFixtureDB(t, dir)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`UPDATE components SET price = 'not json' WHERE lcsc = 2040`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	outPath := filepath.Join(dir, "parts.csv.xz")
	if err := Snapshot(context.Background(), dbPath, outPath, FormatCSV); err == nil {
		t.Fatal("expected error for malformed price data")
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Error("artifact should not exist after failed conversion")
	}
	if _, err := os.Stat(outPath + ".partial"); !os.IsNotExist(err) {
		t.Error("partial file should not remain after failed conversion")
	}
}

func TestParseFormat(t *testing.T) {
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if f, err := ParseFormat("CSV"); err != nil || f != FormatCSV {
		t.Errorf("ParseFormat(CSV) = %v, %v", f, err)
	}
	if f, err := ParseFormat("parquet"); err != nil || f != FormatParquet {
		t.Errorf("ParseFormat(parquet) = %v, %v", f, err)
	}
}

func TestDetectFormat(t *testing.T) {
	if DetectFormat("parts.parquet") != FormatParquet {
		t.Error("expected parquet for .parquet output")
	}
	if DetectFormat("parts.csv.xz") != FormatCSV {
		t.Error("expected csv for .csv.xz output")
	}
}
