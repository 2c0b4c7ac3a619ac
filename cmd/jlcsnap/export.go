package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/DanielO/kicad-jlcpcb-tools/internal/config"
	"github.com/DanielO/kicad-jlcpcb-tools/internal/export"
)

// runExport converts an already extracted database into a snapshot
// artifact without touching the network.
func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	workDir := fs.String("workdir", "", "Session working directory")
	database := fs.String("database", "", "Extracted database file name")
	output := fs.String("output", "", "Snapshot artifact path")
	format := fs.String("format", "", "Artifact format: csv or parquet (default: from output name)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: jlcsnap export [options]

Export the components of an already extracted database as a compressed
snapshot artifact.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, code := resolveConfig(*configPath, config.Config{
		WorkDir:  *workDir,
		Database: *database,
		Output:   *output,
		Format:   *format,
	})
	if code != ExitSuccess {
		return code
	}

	ctx, cancel := interruptContext()
	defer cancel()

	dbPath := resolvePath(cfg.WorkDir, cfg.Database)
	outPath := resolvePath(cfg.WorkDir, cfg.Output)

	if err := export.Snapshot(ctx, dbPath, outPath, formatFromConfig(cfg)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitExportError
	}

	fmt.Fprintf(os.Stderr, "[jlcsnap] Artifact written: %s\n", outPath)
	return ExitSuccess
}
