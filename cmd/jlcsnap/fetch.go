package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/DanielO/kicad-jlcpcb-tools/internal/config"
	"github.com/DanielO/kicad-jlcpcb-tools/internal/pipeline"
	"github.com/DanielO/kicad-jlcpcb-tools/internal/progress"
)

// runFetch executes the acquisition half of the pipeline only: fetch the
// volume set and extract the database, leaving conversion to a later run
// of the export command.
func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	baseURL := fs.String("url", "", "Volume URL prefix, without the .zip suffix")
	workDir := fs.String("workdir", "", "Session working directory")
	database := fs.String("database", "", "Extracted database file name")
	maxVolumes := fs.Int("max-volumes", 0, "Upper bound on continuation volumes")
	keepVolumes := fs.Bool("keep-volumes", false, "Keep fetched volume files after extraction")
	showProgress := fs.Bool("progress", false, "Show progress output")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: jlcsnap fetch [options]

Fetch the published volume set, reassemble it and extract the components
database into the working directory.

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
		MaxVolumes:  *maxVolumes,
		KeepVolumes: *keepVolumes,
		Progress:    *showProgress,
	})
	if code != ExitSuccess {
		return code
	}

	ctx, cancel := interruptContext()
	defer cancel()

	var reporter *progress.Reporter
	if cfg.Progress {
		reporter = progress.NewReporter(nil)
	}

	p := pipeline.New(pipeline.Options{
		BaseURL:     cfg.BaseURL,
		WorkDir:     cfg.WorkDir,
		Database:    cfg.Database,
		MaxVolumes:  cfg.MaxVolumes,
		KeepVolumes: cfg.KeepVolumes,
		HTTPOptions: httpOptions(cfg),
		Progress:    reporter,
	}, nil)

	dbPath, err := p.Fetch(ctx)
	if err != nil {
		return reportPipelineError(err)
	}

	fmt.Fprintf(os.Stderr, "[jlcsnap] Database extracted: %s\n", dbPath)
	return ExitSuccess
}
