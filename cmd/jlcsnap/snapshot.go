package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/DanielO/kicad-jlcpcb-tools/internal/config"
	"github.com/DanielO/kicad-jlcpcb-tools/internal/export"
	"github.com/DanielO/kicad-jlcpcb-tools/internal/fetch"
	snaphttp "github.com/DanielO/kicad-jlcpcb-tools/internal/http"
	"github.com/DanielO/kicad-jlcpcb-tools/internal/pipeline"
	"github.com/DanielO/kicad-jlcpcb-tools/internal/progress"
	"github.com/DanielO/kicad-jlcpcb-tools/internal/publish"
)

// runSnapshot executes the full pipeline: fetch the volume set, extract the
// database, export the snapshot artifact and optionally publish it.
func runSnapshot(args []string) int {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	baseURL := fs.String("url", "", "Volume URL prefix, without the .zip suffix")
	workDir := fs.String("workdir", "", "Session working directory")
	database := fs.String("database", "", "Extracted database file name")
	output := fs.String("output", "", "Snapshot artifact path")
	format := fs.String("format", "", "Artifact format: csv or parquet (default: from output name)")
	maxVolumes := fs.Int("max-volumes", 0, "Upper bound on continuation volumes")
	keepVolumes := fs.Bool("keep-volumes", false, "Keep fetched volume files after the run")
	bucket := fs.String("bucket", "", "Destination bucket URL for publishing (optional)")
	object := fs.String("object", "", "Destination object path (default: artifact file name)")
	showProgress := fs.Bool("progress", false, "Show progress output")
	retryAttempts := fs.Int("retry-attempts", 0, "Max retry attempts per volume fetch")
	retryBackoff := fs.Duration("retry-backoff", 0, "Initial retry backoff")
	retryMaxBackoff := fs.Duration("retry-max-backoff", 0, "Max retry backoff")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: jlcsnap snapshot [options]

Fetch the published volume set, reassemble and extract the components
database, then export it as a compressed snapshot artifact. With -bucket
the artifact is also copied into object storage.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, code := resolveConfig(*configPath, config.Config{
		BaseURL:     *baseURL,
		WorkDir:     *workDir,
		Database:    *database,
		Output:      *output,
		Format:      *format,
		MaxVolumes:  *maxVolumes,
		KeepVolumes: *keepVolumes,
		Bucket:      *bucket,
		Object:      *object,
		Progress:    *showProgress,
		Retry: config.RetryConfig{
			Attempts:   *retryAttempts,
			Backoff:    *retryBackoff,
			MaxBackoff: *retryMaxBackoff,
		},
	})
	if code != ExitSuccess {
		return code
	}

	ctx, cancel := interruptContext()
	defer cancel()

	p := buildPipeline(cfg)

	// Probe the base volume before touching local state so an unreachable
	// source fails without deleting a previous run's database.
	if _, err := p.Probe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error accessing source: %v\n", err)
		return ExitSourceNotAccess
	}

	if err := p.Run(ctx); err != nil {
		return reportPipelineError(err)
	}

	if cfg.Bucket != "" {
		if err := publish.Publish(ctx, cfg.Bucket, cfg.Object, p.OutputPath()); err != nil {
			fmt.Fprintf(os.Stderr, "Error publishing artifact: %v\n", err)
			return ExitStorageError
		}
		fmt.Fprintf(os.Stderr, "[jlcsnap] Published: %s/%s\n", cfg.Bucket, cfg.Object)
	}

	return ExitSuccess
}

// resolveConfig layers file and environment config under flag overrides
// and validates the result.
func resolveConfig(configPath string, overrides config.Config) (config.Config, int) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return config.Config{}, ExitInvalidArgs
	}
	cfg = cfg.Merge(overrides)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return config.Config{}, ExitInvalidArgs
	}
	return cfg, ExitSuccess
}

// buildPipeline assembles a pipeline whose converter exports the database
// in the configured format.
func buildPipeline(cfg config.Config) *snapshotPipeline {
	var reporter *progress.Reporter
	if cfg.Progress {
		reporter = progress.NewReporter(nil)
	}

	fmtChoice := formatFromConfig(cfg)

	converter := pipeline.ConverterFunc(func(ctx context.Context, dbPath, outPath string) error {
		return export.Snapshot(ctx, dbPath, outPath, fmtChoice)
	})

	p := pipeline.New(pipeline.Options{
		BaseURL:     cfg.BaseURL,
		WorkDir:     cfg.WorkDir,
		Database:    cfg.Database,
		Output:      cfg.Output,
		MaxVolumes:  cfg.MaxVolumes,
		KeepVolumes: cfg.KeepVolumes,
		HTTPOptions: httpOptions(cfg),
		Progress:    reporter,
	}, converter)

	return &snapshotPipeline{Pipeline: p, cfg: cfg}
}

// snapshotPipeline couples a pipeline with a probe of its source URL.
type snapshotPipeline struct {
	*pipeline.Pipeline
	cfg config.Config
}

func (p *snapshotPipeline) Probe(ctx context.Context) (*snaphttp.FileInfo, error) {
	f := fetch.New(fetch.Options{
		BaseURL:     p.cfg.BaseURL,
		WorkDir:     p.cfg.WorkDir,
		MaxVolumes:  p.cfg.MaxVolumes,
		HTTPOptions: httpOptions(p.cfg),
	})
	return f.Probe(ctx)
}

func formatFromConfig(cfg config.Config) export.Format {
	if cfg.Format != "" {
		f, err := export.ParseFormat(cfg.Format)
		if err == nil {
			return f
		}
	}
	return export.DetectFormat(cfg.Output)
}

func httpOptions(cfg config.Config) snaphttp.Options {
	opts := snaphttp.DefaultOptions()
	if cfg.Retry.Attempts != 0 {
		opts.RetryAttempts = cfg.Retry.Attempts
	}
	if cfg.Retry.Backoff != 0 {
		opts.RetryBackoff = cfg.Retry.Backoff
	}
	if cfg.Retry.MaxBackoff != 0 {
		opts.RetryMaxBackoff = cfg.Retry.MaxBackoff
	}
	return opts
}

func reportPipelineError(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	switch {
	case errors.Is(err, fetch.ErrBaseVolume):
		return ExitSourceNotAccess
	case errors.Is(err, pipeline.ErrExtract):
		return ExitExtractError
	case errors.Is(err, pipeline.ErrConvert):
		return ExitExportError
	default:
		return ExitGeneralError
	}
}
