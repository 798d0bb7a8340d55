package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/limaJavier/matroids/pkg/combinatorics"
	"github.com/limaJavier/matroids/pkg/config"
	"github.com/limaJavier/matroids/pkg/generator"
	"github.com/limaJavier/matroids/pkg/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "matroids",
		Usage:     "Enumerate the rank-r matroids on n elements up to isomorphism",
		ArgsUsage: "<n> <r> [<num_threads>] (flags taking a value must come before <n>)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (JSON, YAML or TOML)",
			},
			&cli.BoolFlag{
				Name:  "file",
				Usage: "Write the matroids to <output-dir>/nXXrYY instead of the Standard Output",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory of the partition and output files",
			},
			&cli.BoolFlag{
				Name:  "xz",
				Usage: "Compress the output file with xz",
			},
			&cli.BoolFlag{
				Name:  "exhaustive",
				Usage: "Test canonicity against every relabeling instead of the pruned search",
			},
			&cli.StringFlag{
				Name:  "metrics",
				Usage: "Write run metrics to this file in the Prometheus text format",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log every level",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		if errors.Is(err, combinatorics.ErrInvalidParameters) {
			log.Fatalf("invalid parameters: %v", err)
		}
		log.Fatalf("an error occurred during the enumeration: %v", err)
	}
}

func run(c *cli.Context) error {
	settings, err := loadSettings(c)
	if err != nil {
		return err
	}
	parsed, err := parseArguments(c.Args().Slice())
	if err != nil {
		return err
	}
	if parsed.threads > 0 {
		settings.Threads = parsed.threads
	}
	settings.File = settings.File || parsed.fileOutput
	settings.Compress = settings.Compress || parsed.compress
	settings.Exhaustive = settings.Exhaustive || parsed.exhaustive
	settings.Verbose = settings.Verbose || parsed.verbose
	if err := settings.Validate(); err != nil {
		return err
	}

	logger := newLogger(os.Stderr, settings.Verbose)

	var sink storage.Sink
	if settings.File {
		sink = storage.NewFileSink(settings.OutputDir, parsed.n, parsed.r, settings.Compress)
	} else {
		sink = storage.NewWriterSink(os.Stdout)
	}

	enumerator := generator.NewGenerator(generator.Options{
		Threads:    settings.Threads,
		Exhaustive: settings.Exhaustive,
		Logger:     logger,
	})
	summary, err := enumerator.Stream(context.Background(), parsed.n, parsed.r, sink)
	if err != nil {
		return err
	}

	logger.Info("enumeration finished",
		slog.Int("n", summary.N),
		slog.Int("r", summary.R),
		slog.Int("matroids", summary.Total()),
		slog.Int("candidates", summary.Candidates),
		slog.Int("rejected", summary.Rejected()),
		slog.Int("threads", settings.Threads),
		slog.Duration("duration", summary.Duration),
		slog.String("digest", fmt.Sprintf("%016x", summary.Digest)),
		slog.String("output", summary.Path),
	)

	if settings.MetricsFile != "" {
		if err := generator.WriteMetrics(settings.MetricsFile); err != nil {
			return err
		}
	}
	return nil
}

// newLogger builds the run logger without installing it as the default, so fatal errors keep the standard log format
func newLogger(writer io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level}))
}

// loadSettings layers the command-line flags over the config file (or the defaults)
func loadSettings(c *cli.Context) (config.Config, error) {
	settings := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		settings = loaded
	}

	if c.IsSet("file") {
		settings.File = c.Bool("file")
	}
	if c.IsSet("output-dir") {
		settings.OutputDir = c.String("output-dir")
	}
	if c.IsSet("xz") {
		settings.Compress = c.Bool("xz")
	}
	if c.IsSet("exhaustive") {
		settings.Exhaustive = c.Bool("exhaustive")
	}
	if c.IsSet("metrics") {
		settings.MetricsFile = c.String("metrics")
	}
	if c.IsSet("verbose") {
		settings.Verbose = c.Bool("verbose")
	}
	return settings, nil
}
