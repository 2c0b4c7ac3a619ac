package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	snaphttp "github.com/DanielO/kicad-jlcpcb-tools/internal/http"
	"github.com/DanielO/kicad-jlcpcb-tools/pkg/splitzip"
)

// volumeServer serves the given volume files by name and answers 404 for
// anything else, mirroring a static file host.
func volumeServer(t *testing.T, volumes map[string][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := volumes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
}

func fastOptions() snaphttp.Options {
	opts := snaphttp.DefaultOptions()
	opts.RetryAttempts = 1
	opts.RetryBackoff = time.Millisecond
	opts.RetryMaxBackoff = 5 * time.Millisecond
	return opts
}

func TestFetchVolumeRetrieved(t *testing.T) {
	server := volumeServer(t, map[string][]byte{
		"/cache.zip": []byte("base volume bytes"),
	})
	defer server.Close()

	dir := t.TempDir()
	f := New(Options{
		BaseURL:     server.URL + "/cache",
		WorkDir:     dir,
		HTTPOptions: fastOptions(),
	})

	res, err := f.FetchVolume(context.Background(), 0)
	if err != nil {
		t.Fatalf("FetchVolume: %v", err)
	}
	if res.Status != StatusRetrieved {
		t.Fatalf("expected StatusRetrieved, got %v", res.Status)
	}
	if res.Name != "cache.zip" {
		t.Errorf("expected name cache.zip, got %s", res.Name)
	}
	if res.Size != int64(len("base volume bytes")) {
		t.Errorf("unexpected size %d", res.Size)
	}

	data, err := os.ReadFile(filepath.Join(dir, "cache.zip"))
	if err != nil {
		t.Fatalf("read volume file: %v", err)
	}
	if !bytes.Equal(data, []byte("base volume bytes")) {
		t.Error("volume file content mismatch")
	}
}

func TestFetchVolumeReplacesStaleFile(t *testing.T) {
	server := volumeServer(t, map[string][]byte{
		"/cache.z01": []byte("fresh"),
	})
	defer server.Close()

	dir := t.TempDir()
	stale := filepath.Join(dir, "cache.z01")
	if err := os.WriteFile(stale, []byte("stale content from a previous run"), 0644); err != nil {
		t.Fatal(err)
	}

	f := New(Options{BaseURL: server.URL + "/cache", WorkDir: dir, HTTPOptions: fastOptions()})
	res, err := f.FetchVolume(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchVolume: %v", err)
	}
	if res.Status != StatusRetrieved {
		t.Fatalf("expected StatusRetrieved, got %v", res.Status)
	}

	data, _ := os.ReadFile(stale)
	if string(data) != "fresh" {
		t.Errorf("expected stale file replaced, got %q", string(data))
	}
}

func TestFetchVolumeAbsent(t *testing.T) {
	server := volumeServer(t, nil)
	defer server.Close()

	dir := t.TempDir()
	f := New(Options{BaseURL: server.URL + "/cache", WorkDir: dir, HTTPOptions: fastOptions()})

	res, err := f.FetchVolume(context.Background(), 4)
	if err != nil {
		t.Fatalf("FetchVolume: %v", err)
	}
	if res.Status != StatusAbsent {
		t.Fatalf("expected StatusAbsent, got %v", res.Status)
	}
	if _, err := os.Stat(filepath.Join(dir, "cache.z04")); !os.IsNotExist(err) {
		t.Error("no volume file should be written for an absent volume")
	}
}

func TestFetchVolumeTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := New(Options{BaseURL: server.URL + "/cache", WorkDir: t.TempDir(), HTTPOptions: fastOptions()})

	res, err := f.FetchVolume(context.Background(), 0)
	if err != nil {
		t.Fatalf("FetchVolume: %v", err)
	}
	if res.Status != StatusTransportError {
		t.Fatalf("expected StatusTransportError, got %v", res.Status)
	}
	if res.Err == nil {
		t.Error("expected underlying error to be recorded")
	}
}

func TestAssembleDiscoversVolumeSet(t *testing.T) {
	server := volumeServer(t, map[string][]byte{
		"/cache.zip": []byte("base"),
		"/cache.z01": []byte("one"),
		"/cache.z02": []byte("two"),
		"/cache.z03": []byte("three"),
	})
	defer server.Close()

	f := New(Options{BaseURL: server.URL + "/cache", WorkDir: t.TempDir(), HTTPOptions: fastOptions()})

	volumes, err := f.Assemble(context.Background())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(volumes) != 4 {
		t.Fatalf("expected 4 volumes, got %d", len(volumes))
	}
	for i, v := range volumes {
		if v.Index != i {
			t.Errorf("volume %d has index %d, want %d", i, v.Index, i)
		}
	}
}

func TestAssembleBaseOnly(t *testing.T) {
	server := volumeServer(t, map[string][]byte{
		"/cache.zip": []byte("base"),
	})
	defer server.Close()

	f := New(Options{BaseURL: server.URL + "/cache", WorkDir: t.TempDir(), HTTPOptions: fastOptions()})

	volumes, err := f.Assemble(context.Background())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(volumes) != 1 {
		t.Fatalf("expected 1 volume, got %d", len(volumes))
	}
}

func TestAssembleBaseMissing(t *testing.T) {
	server := volumeServer(t, map[string][]byte{
		"/cache.z01": []byte("orphan continuation"),
	})
	defer server.Close()

	f := New(Options{BaseURL: server.URL + "/cache", WorkDir: t.TempDir(), HTTPOptions: fastOptions()})

	_, err := f.Assemble(context.Background())
	if !errors.Is(err, ErrBaseVolume) {
		t.Fatalf("expected ErrBaseVolume, got %v", err)
	}
}

func TestAssembleBaseTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := New(Options{BaseURL: server.URL + "/cache", WorkDir: t.TempDir(), HTTPOptions: fastOptions()})

	_, err := f.Assemble(context.Background())
	if !errors.Is(err, ErrBaseVolume) {
		t.Fatalf("expected ErrBaseVolume, got %v", err)
	}
}

func TestAssembleContinuationTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cache.zip":
			w.Write([]byte("base"))
		case "/cache.z01":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := New(Options{BaseURL: server.URL + "/cache", WorkDir: t.TempDir(), HTTPOptions: fastOptions()})

	_, err := f.Assemble(context.Background())
	if err == nil {
		t.Fatal("expected error for continuation transport failure")
	}
	if errors.Is(err, ErrBaseVolume) {
		t.Error("continuation failure should not be reported as a base volume error")
	}
}

func TestAssembleRespectsMaxVolumes(t *testing.T) {
	volumes := map[string][]byte{"/cache.zip": []byte("base")}
	for i := 1; i <= 12; i++ {
		volumes["/"+splitzip.VolumeName("cache", i)] = []byte("continuation")
	}
	server := volumeServer(t, volumes)
	defer server.Close()

	f := New(Options{
		BaseURL:     server.URL + "/cache",
		WorkDir:     t.TempDir(),
		MaxVolumes:  9,
		HTTPOptions: fastOptions(),
	})

	got, err := f.Assemble(context.Background())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 volumes (base + 9 continuations), got %d", len(got))
	}
}

func TestProbe(t *testing.T) {
	server := volumeServer(t, map[string][]byte{
		"/cache.zip": []byte("base volume"),
	})
	defer server.Close()

	f := New(Options{BaseURL: server.URL + "/cache", WorkDir: t.TempDir(), HTTPOptions: fastOptions()})
	info, err := f.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Size != int64(len("base volume")) {
		t.Errorf("unexpected size %d", info.Size)
	}
}

func TestProbeMissingSource(t *testing.T) {
	server := volumeServer(t, nil)
	defer server.Close()

	f := New(Options{BaseURL: server.URL + "/cache", WorkDir: t.TempDir(), HTTPOptions: fastOptions()})
	if _, err := f.Probe(context.Background()); !errors.Is(err, ErrBaseVolume) {
		t.Fatalf("expected ErrBaseVolume, got %v", err)
	}
}
