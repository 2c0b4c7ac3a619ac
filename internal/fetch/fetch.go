package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	snaphttp "github.com/DanielO/kicad-jlcpcb-tools/internal/http"
	"github.com/DanielO/kicad-jlcpcb-tools/internal/progress"
	"github.com/DanielO/kicad-jlcpcb-tools/pkg/splitzip"
)

// Status classifies the outcome of a single volume fetch. Distinguishing a
// confirmed-absent volume from a transport failure matters: absence beyond
// the true volume count is expected, a transport failure is not.
type Status int

const (
	// StatusRetrieved means the volume was fetched and stored locally.
	StatusRetrieved Status = iota

	// StatusAbsent means the source definitively does not publish this
	// volume (HTTP 404).
	StatusAbsent

	// StatusTransportError means the fetch failed for a reason other than
	// absence (timeout, server error, connection failure).
	StatusTransportError
)

func (s Status) String() string {
	switch s {
	case StatusRetrieved:
		return "retrieved"
	case StatusAbsent:
		return "absent"
	case StatusTransportError:
		return "transport error"
	default:
		return "unknown"
	}
}

// ErrBaseVolume is returned when the mandatory base volume cannot be
// retrieved. Extraction is impossible without it, so this aborts a run.
var ErrBaseVolume = errors.New("fetch: base volume unavailable")

// Result describes the outcome of fetching one volume.
type Result struct {
	Index  int
	Name   string // volume file name, e.g. "cache.z01"
	Path   string // local path, empty unless retrieved
	Size   int64
	Status Status
	Err    error // underlying error for StatusTransportError
}

// Options configures a Fetcher.
type Options struct {
	// BaseURL is the volume URL prefix; ".zip" and ".zNN" suffixes are
	// appended per volume. Example:
	// "https://yaqwsx.github.io/jlcparts/data/cache".
	BaseURL string

	// WorkDir is the session working directory volumes are stored in.
	// Default: current directory.
	WorkDir string

	// MaxVolumes bounds continuation volume discovery. Discovery normally
	// terminates at the first absent volume; the bound is a safety net
	// against a source that never 404s. Default: 9.
	MaxVolumes int

	// HTTPOptions configures the HTTP client.
	HTTPOptions snaphttp.Options

	// Progress is an optional progress reporter.
	Progress *progress.Reporter
}

// Fetcher retrieves the volumes of a split archive from an HTTP source.
type Fetcher struct {
	client *snaphttp.Client
	opts   Options
	name   string // local volume base name, derived from BaseURL
}

// New creates a Fetcher, applying defaults for unset options.
func New(opts Options) *Fetcher {
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.MaxVolumes <= 0 {
		opts.MaxVolumes = 9
	}
	if opts.HTTPOptions.Timeout == 0 {
		opts.HTTPOptions = snaphttp.DefaultOptions()
	}

	return &Fetcher{
		client: snaphttp.NewClient(opts.HTTPOptions),
		opts:   opts,
		name:   path.Base(opts.BaseURL),
	}
}

// Probe checks that the mandatory base volume is reachable and returns its
// metadata without downloading it.
func (f *Fetcher) Probe(ctx context.Context) (*snaphttp.FileInfo, error) {
	info, err := f.client.Head(ctx, splitzip.VolumeName(f.opts.BaseURL, splitzip.BaseIndex))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaseVolume, err)
	}
	return info, nil
}

// FetchVolume retrieves the volume with the given index into the working
// directory, replacing any local file of the same name. The remote outcome
// is reported in the Result; the error return is reserved for local
// failures (the volume file cannot be written).
func (f *Fetcher) FetchVolume(ctx context.Context, index int) (Result, error) {
	res := Result{
		Index: index,
		Name:  splitzip.VolumeName(f.name, index),
	}

	body, err := f.client.Get(ctx, splitzip.VolumeName(f.opts.BaseURL, index))
	if err != nil {
		if errors.Is(err, snaphttp.ErrNotFound) {
			res.Status = StatusAbsent
			return res, nil
		}
		res.Status = StatusTransportError
		res.Err = err
		return res, nil
	}
	defer body.Close()

	localPath := filepath.Join(f.opts.WorkDir, res.Name)
	out, err := os.Create(localPath)
	if err != nil {
		return res, fmt.Errorf("fetch: create volume file: %w", err)
	}

	n, err := io.Copy(out, body)
	if err != nil {
		out.Close()
		os.Remove(localPath)
		return res, fmt.Errorf("fetch: write volume %s: %w", res.Name, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(localPath)
		return res, fmt.Errorf("fetch: close volume %s: %w", res.Name, err)
	}

	res.Status = StatusRetrieved
	res.Path = localPath
	res.Size = n
	return res, nil
}
