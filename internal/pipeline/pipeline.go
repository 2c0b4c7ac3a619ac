package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/DanielO/kicad-jlcpcb-tools/internal/fetch"
	snaphttp "github.com/DanielO/kicad-jlcpcb-tools/internal/http"
	"github.com/DanielO/kicad-jlcpcb-tools/internal/progress"
	"github.com/DanielO/kicad-jlcpcb-tools/pkg/splitzip"
)

// Error categories, used by the CLI to pick exit codes.
var (
	ErrExtract = errors.New("pipeline: extraction failed")
	ErrConvert = errors.New("pipeline: conversion failed")
)

// Converter transforms an extracted database into a snapshot artifact.
// The pipeline treats conversion as an external collaborator: it supplies
// the database path and the destination path and expects an all-or-nothing
// result.
type Converter interface {
	Convert(ctx context.Context, dbPath, outPath string) error
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, dbPath, outPath string) error

func (f ConverterFunc) Convert(ctx context.Context, dbPath, outPath string) error {
	return f(ctx, dbPath, outPath)
}

// Options configures a pipeline run. All file names are resolved against
// WorkDir, so concurrent runs in separate directories do not contend.
type Options struct {
	// BaseURL is the volume URL prefix, e.g.
	// "https://yaqwsx.github.io/jlcparts/data/cache".
	BaseURL string

	// WorkDir is the session working directory for volumes and the
	// database. Default: current directory.
	WorkDir string

	// Database is the extracted database file name. Relative paths are
	// resolved against WorkDir. Default: "cache.sqlite3".
	Database string

	// Output is the snapshot artifact path. Relative paths are resolved
	// against WorkDir. Default: "parts.csv.xz".
	Output string

	// Entry selects the archive entry to extract; empty means the
	// archive's single file entry.
	Entry string

	// MaxVolumes bounds continuation volume discovery. Default: 9.
	MaxVolumes int

	// KeepVolumes leaves the fetched volume files in place after the run.
	KeepVolumes bool

	// HTTPOptions configures the volume fetcher's HTTP client.
	HTTPOptions snaphttp.Options

	// Progress is an optional progress reporter.
	Progress *progress.Reporter
}

// Pipeline produces a snapshot artifact from the published volume set.
type Pipeline struct {
	opts      Options
	fetcher   *fetch.Fetcher
	converter Converter
}

// New creates a Pipeline with the given converter, applying defaults for
// unset options.
func New(opts Options, converter Converter) *Pipeline {
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.Database == "" {
		opts.Database = "cache.sqlite3"
	}
	if opts.Output == "" {
		opts.Output = "parts.csv.xz"
	}

	fetcher := fetch.New(fetch.Options{
		BaseURL:     opts.BaseURL,
		WorkDir:     opts.WorkDir,
		MaxVolumes:  opts.MaxVolumes,
		HTTPOptions: opts.HTTPOptions,
		Progress:    opts.Progress,
	})

	return &Pipeline{opts: opts, fetcher: fetcher, converter: converter}
}

// Run executes the full pipeline: clean stale state, fetch and reassemble
// the volume set, extract the database, convert it to the snapshot
// artifact, then delete the transient volume files. Any fatal error stops
// the run immediately; there is no partial-success state.
func (p *Pipeline) Run(ctx context.Context) error {
	dbPath, volumes, err := p.acquire(ctx)
	if err != nil {
		return err
	}

	outPath := p.OutputPath()
	if p.opts.Progress != nil {
		p.opts.Progress.Stage("Converting database to snapshot artifact")
	}
	if err := p.converter.Convert(ctx, dbPath, outPath); err != nil {
		return fmt.Errorf("%w: %v", ErrConvert, err)
	}

	if !p.opts.KeepVolumes {
		p.removeVolumes(volumes)
	}

	if p.opts.Progress != nil {
		p.opts.Progress.Done(outPath)
	}
	return nil
}

// Fetch executes the acquisition half of the pipeline only: clean stale
// state, fetch the volume set, extract the database. It returns the
// extracted database path.
func (p *Pipeline) Fetch(ctx context.Context) (string, error) {
	dbPath, volumes, err := p.acquire(ctx)
	if err != nil {
		return "", err
	}

	if !p.opts.KeepVolumes {
		p.removeVolumes(volumes)
	}

	return dbPath, nil
}

// acquire fetches the volume set and extracts the database from it.
func (p *Pipeline) acquire(ctx context.Context) (string, []splitzip.Volume, error) {
	dbPath := p.DatabasePath()
	combined := p.combinedPath()

	// A stale database or combined archive from a previous run must not
	// survive into this one.
	removeIfPresent(dbPath)
	removeIfPresent(combined)

	if p.opts.Progress != nil {
		p.opts.Progress.Start(p.opts.BaseURL)
	}

	volumes, err := p.fetcher.Assemble(ctx)
	if err != nil {
		return "", nil, err
	}

	if p.opts.Progress != nil {
		p.opts.Progress.Stage("Extracting database")
	}

	if err := splitzip.Combine(combined, volumes); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrExtract, err)
	}
	if err := splitzip.Extract(combined, p.opts.Entry, dbPath); err != nil {
		removeIfPresent(combined)
		return "", nil, fmt.Errorf("%w: %v", ErrExtract, err)
	}
	removeIfPresent(combined)

	return dbPath, volumes, nil
}

// DatabasePath returns the resolved extracted database path.
func (p *Pipeline) DatabasePath() string {
	return p.resolve(p.opts.Database)
}

// OutputPath returns the resolved snapshot artifact path.
func (p *Pipeline) OutputPath() string {
	return p.resolve(p.opts.Output)
}

// combinedPath is the transient reassembled archive, named after the
// volume base so concurrent sessions in separate directories never clash.
func (p *Pipeline) combinedPath() string {
	return filepath.Join(p.opts.WorkDir, path.Base(p.opts.BaseURL)+".combined.zip")
}

func (p *Pipeline) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.opts.WorkDir, name)
}

// removeVolumes deletes the transient volume files. Cleanup is
// best-effort: a file that is already gone is not an error.
func (p *Pipeline) removeVolumes(volumes []splitzip.Volume) {
	for _, v := range volumes {
		removeIfPresent(v.Path)
	}
}

func removeIfPresent(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "[jlcsnap] Warning: remove %s: %v\n", path, err)
	}
}
