package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/DanielO/kicad-jlcpcb-tools/internal/config"
	"github.com/DanielO/kicad-jlcpcb-tools/internal/publish"
)

// runPublish copies an existing snapshot artifact into object storage.
func runPublish(args []string) int {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	workDir := fs.String("workdir", "", "Session working directory")
	output := fs.String("output", "", "Snapshot artifact path")
	bucket := fs.String("bucket", "", "Destination bucket URL (required)")
	object := fs.String("object", "", "Destination object path (default: artifact file name)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: jlcsnap publish [options]

Copy a snapshot artifact into object storage. The bucket is addressed by
a gocloud.dev URL such as s3://bucket, gs://bucket or file:///path.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, code := resolveConfig(*configPath, config.Config{
		WorkDir: *workDir,
		Output:  *output,
		Bucket:  *bucket,
		Object:  *object,
	})
	if code != ExitSuccess {
		return code
	}

	if cfg.Bucket == "" {
		fmt.Fprintln(os.Stderr, "Error: -bucket is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	ctx, cancel := interruptContext()
	defer cancel()

	artifact := resolvePath(cfg.WorkDir, cfg.Output)
	if err := publish.Publish(ctx, cfg.Bucket, cfg.Object, artifact); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}

	objectName := cfg.Object
	if objectName == "" {
		objectName = filepath.Base(artifact)
	}
	fmt.Fprintf(os.Stderr, "[jlcsnap] Published: %s/%s\n", cfg.Bucket, objectName)
	return ExitSuccess
}

// resolvePath resolves name against the working directory unless absolute.
func resolvePath(workDir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(workDir, name)
}
