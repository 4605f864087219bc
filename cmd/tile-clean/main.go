package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/tile-clean/internal/cleaner"
	"github.com/ironsheep/tile-clean/internal/config"
	"github.com/ironsheep/tile-clean/internal/logging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and --help before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("tile-clean %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage(os.Stdout)
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "tile-clean - trim dark margins from tiles and recover missing pixels from their source rasters")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: tile-clean [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -config PATH        YAML configuration file (default tile-clean.yaml)")
	fmt.Fprintln(w, "  -root DIR           Override paths.dataRoot")
	fmt.Fprintln(w, "  -workers N          Override processing.workers")
	fmt.Fprintln(w, "  -write-config       Write the default configuration to -config and exit")
	fmt.Fprintln(w, "  --version, -v       Print version information")
	fmt.Fprintln(w, "  --help, -h          Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=debug    Enable debug logging\n", logging.EnvLevel)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The run report is printed to stdout as JSON; logs go to stderr or the configured log file.")
}

// run executes one batch and returns the process exit code.
func run(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("tile-clean", flag.ContinueOnError)
	configPath := fs.String("config", "tile-clean.yaml", "YAML configuration file")
	root := fs.String("root", "", "override paths.dataRoot")
	workers := fs.Int("workers", 0, "override processing.workers")
	writeConfig := fs.Bool("write-config", false, "write the default configuration and exit")
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { usage(os.Stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "wrote default configuration to %s\n", *configPath)
		return 0
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *root != "" {
		cfg.Paths.DataRoot = *root
	}
	if *workers > 0 {
		cfg.Processing.Workers = *workers
	}

	closer := logging.Configure(cfg.Logging)
	defer closer.Close()
	logging.Debugf("tile-clean v%s (built %s, commit %s)", Version, BuildTime, GitCommit)

	report, err := cleaner.New(cfg).Run(ctx)
	if report != nil {
		if werr := report.WriteJSON(stdout); werr != nil {
			logging.Printf("failed to write report: %v", werr)
			return 1
		}
	}
	if err != nil {
		if errors.Is(err, cleaner.ErrMalformedName) {
			logging.Printf("malformed tile names: %v", err)
		} else {
			logging.Printf("run failed: %v", err)
		}
		return 1
	}
	return 0
}
