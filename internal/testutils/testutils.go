//go:build integration

// Package testutils provides shared test infrastructure for integration tests.
package testutils

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gocloud.dev/blob"

	_ "modernc.org/sqlite"
)

// BuildComponentsDB writes a small components database with the
// v_components view and a handful of representative rows. Returns the
// database file path.
func BuildComponentsDB(t *testing.T, dir string) string {
	t.Helper()

	dbPath := filepath.Join(dir, "fixture.sqlite3")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open fixture database: %v", err)
	}
	defer db.Close()

	statements := []string{
		`CREATE TABLE components (
			lcsc INTEGER PRIMARY KEY,
			category_id INTEGER,
			mfr TEXT,
			package TEXT,
			joints INTEGER,
			manufacturer_id INTEGER,
			basic INTEGER,
			description TEXT,
			datasheet TEXT,
			stock INTEGER,
			price TEXT,
			last_update INTEGER,
			extra TEXT,
			flag INTEGER,
			last_on_stock INTEGER
		)`,
		`CREATE TABLE categories (
			id INTEGER PRIMARY KEY,
			category TEXT,
			subcategory TEXT
		)`,
		`CREATE TABLE manufacturers (
			id INTEGER PRIMARY KEY,
			name TEXT
		)`,
		`CREATE VIEW v_components AS
			SELECT c.lcsc, cat.category AS category, cat.subcategory AS subcategory,
			       c.mfr, c.package, c.joints, m.name AS manufacturer,
			       c.basic, c.description, c.datasheet, c.stock, c.price
			FROM components c
			LEFT JOIN categories cat ON cat.id = c.category_id
			LEFT JOIN manufacturers m ON m.id = c.manufacturer_id`,
		`INSERT INTO categories (id, category, subcategory)
			VALUES (1, 'Resistors', 'Chip Resistor - Surface Mount')`,
		`INSERT INTO manufacturers (id, name) VALUES (1, 'UNI-ROYAL(Uniroyal Elec)')`,
		`INSERT INTO components (lcsc, category_id, mfr, package, joints,
			manufacturer_id, basic, description, datasheet, stock, price)
			VALUES
			(25804, 1, '0603WAF1002T5E', '0603', 2, 1, 0,
			 '10kOhm 0603 resistor', 'https://datasheet.example.com/C25804.pdf',
			 5000, '[{"qFrom":1,"qTo":199,"price":0.0012},{"qFrom":200,"qTo":null,"price":0.001}]'),
			(2040, 1, '0805W8F1001T5E', '0805', 2, 1, 1,
			 '1kOhm 0805 resistor', 'https://datasheet.example.com/C2040.pdf',
			 12000, '[{"qFrom":1,"qTo":null,"price":0.002}]')`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("prepare fixture database: %v", err)
		}
	}

	return dbPath
}

// BuildVolumeSet zips the file at srcPath under entryName and slices the
// archive into a split volume layout: continuation volumes first, the base
// volume (holding the central directory) last. The returned map is keyed
// by URL path.
func BuildVolumeSet(t *testing.T, srcPath, baseName, entryName string, segments int) map[string][]byte {
	t.Helper()

	content, err := os.ReadFile(srcPath)
	if err != nil {
		t.Fatalf("read volume source: %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(entryName)
	if err != nil {
		t.Fatalf("create archive entry: %v", err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatalf("write archive entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	archive := buf.Bytes()
	if len(archive) < segments {
		t.Fatalf("archive too small to split into %d segments", segments)
	}

	files := make(map[string][]byte)
	segSize := len(archive) / segments
	for i := 0; i < segments; i++ {
		start := i * segSize
		end := start + segSize
		name := fmt.Sprintf("%s.z%02d", baseName, i+1)
		if i == segments-1 {
			end = len(archive)
			name = baseName + ".zip"
		}
		files["/"+name] = archive[start:end]
	}
	return files
}

// StartVolumeServer starts an HTTP server that serves the given volume
// files and answers 404 for everything else.
func StartVolumeServer(t *testing.T, files map[string][]byte) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", fmt.Sprint(len(data)))
			return
		}
		w.Write(data)
	}))
}

// MinioEnv contains connection information for a Minio test environment.
type MinioEnv struct {
	Container testcontainers.Container
	BucketURL string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Close terminates the Minio container.
func (e *MinioEnv) Close(ctx context.Context) error {
	if e.Container != nil {
		return e.Container.Terminate(ctx)
	}
	return nil
}

// OpenBucket opens a gocloud bucket connection to the Minio environment.
func (e *MinioEnv) OpenBucket(ctx context.Context) (*blob.Bucket, error) {
	return blob.OpenBucket(ctx, e.BucketURL)
}

// StartMinioContainer starts a Minio container with a pre-created bucket.
// Returns a MinioEnv with connection information.
func StartMinioContainer(t *testing.T, ctx context.Context, bucketName string) *MinioEnv {
	t.Helper()

	const (
		accessKey = "minioadmin"
		secretKey = "minioadmin"
	)

	// Create a network for minio and mc to communicate
	networkName := fmt.Sprintf("minio-test-net-%d", time.Now().UnixNano())
	network, err := testcontainers.GenericNetwork(ctx, testcontainers.GenericNetworkRequest{
		NetworkRequest: testcontainers.NetworkRequest{
			Name: networkName,
		},
	})
	if err != nil {
		t.Fatalf("create network: %v", err)
	}
	t.Cleanup(func() { network.Remove(ctx) })

	minioReq := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Networks:     []string{networkName},
		NetworkAliases: map[string][]string{
			networkName: {"minio"},
		},
		Env: map[string]string{
			"MINIO_ROOT_USER":     accessKey,
			"MINIO_ROOT_PASSWORD": secretKey,
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/ready").WithPort("9000"),
	}

	minioContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: minioReq,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start minio container: %v", err)
	}

	createBucketWithMC(t, ctx, networkName, accessKey, secretKey, bucketName)

	host, err := minioContainer.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}

	port, err := minioContainer.MappedPort(ctx, "9000")
	if err != nil {
		t.Fatalf("get container port: %v", err)
	}

	endpoint := fmt.Sprintf("%s:%s", host, port.Port())

	bucketURL := fmt.Sprintf("s3://%s?endpoint=http://%s&use_path_style=true&disable_https=true&region=us-east-1",
		bucketName,
		endpoint,
	)

	// gocloud reads credentials from the environment
	t.Setenv("AWS_ACCESS_KEY_ID", accessKey)
	t.Setenv("AWS_SECRET_ACCESS_KEY", secretKey)

	return &MinioEnv{
		Container: minioContainer,
		BucketURL: bucketURL,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}
}

// createBucketWithMC creates a bucket using a separate minio/mc container.
func createBucketWithMC(t *testing.T, ctx context.Context, networkName, accessKey, secretKey, bucketName string) {
	t.Helper()

	mcReq := testcontainers.ContainerRequest{
		Image:      "minio/mc:latest",
		Networks:   []string{networkName},
		Entrypoint: []string{"/bin/sh", "-c"},
		Cmd: []string{
			fmt.Sprintf(
				"/usr/bin/mc config host add myminio http://minio:9000 %s %s && "+
					"/usr/bin/mc mb myminio/%s && "+
					"/usr/bin/mc policy set download myminio/%s; "+
					"exit 0",
				accessKey, secretKey, bucketName, bucketName,
			),
		},
		WaitingFor: wait.ForExit(),
	}

	mcContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: mcReq,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start mc container: %v", err)
	}
	defer mcContainer.Terminate(ctx)
}
