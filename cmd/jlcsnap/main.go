package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DanielO/kicad-jlcpcb-tools/internal/config"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitInvalidArgs     = 2
	ExitSourceNotAccess = 3
	ExitExtractError    = 4
	ExitExportError     = 5
	ExitStorageError    = 6
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "snapshot":
		return runSnapshot(cmdArgs)
	case "fetch":
		return runFetch(cmdArgs)
	case "export":
		return runExport(cmdArgs)
	case "publish":
		return runPublish(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: jlcsnap <command> [options]

Commands:
  snapshot  Fetch the volume set, extract the database and export an artifact
  fetch     Fetch the volume set and extract the database only
  export    Export an artifact from an already extracted database
  publish   Copy an artifact into object storage

Run 'jlcsnap <command> -h' for command-specific help.`)
}

// loadConfig layers defaults, an optional YAML file and the environment.
// Flag values are merged on top by the individual commands.
func loadConfig(path string) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		fileCfg, err := config.LoadFromFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// interruptContext returns a context cancelled on SIGINT or SIGTERM.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[jlcsnap] Received interrupt, shutting down...")
		cancel()
	}()

	return ctx, cancel
}
