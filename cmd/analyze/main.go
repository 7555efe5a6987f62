// Command analyze builds the similarity graph of a loan CSV, prints its degree
// distribution and writes the distribution plot.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"loangraph/application/ports"
	"loangraph/application/queries"
	"loangraph/infrastructure/config"
	"loangraph/infrastructure/di"
	"loangraph/infrastructure/ingest"

	"go.uber.org/zap"
)

type options struct {
	configPath string
	input      string
	output     string
	workers    int
	maxRecords int
	noPlot     bool
	watch      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.input, "input", "", "loan CSV to analyze (overrides input.data_path)")
	fs.StringVar(&opts.output, "output", "", "plot destination, .png or .svg (overrides input.output_path)")
	fs.IntVar(&opts.workers, "workers", -1, "graph build workers, 0 for one per CPU")
	fs.IntVar(&opts.maxRecords, "max-records", 0, "reject inputs with more records, 0 for no limit")
	fs.BoolVar(&opts.noPlot, "no-plot", false, "print the distribution without writing a plot")
	fs.BoolVar(&opts.watch, "watch", false, "rerun whenever the input file changes")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.NewLoader(opts.configPath).Load()
	if err != nil {
		return err
	}
	if opts.input != "" {
		cfg.Input.DataPath = opts.input
	}
	if opts.output != "" {
		cfg.Input.OutputPath = opts.output
	}
	if opts.workers >= 0 {
		cfg.Analysis.Workers = opts.workers
	}
	cfg.Analysis.MaxRecords = opts.maxRecords

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer container.Shutdown(context.Background())

	if err := analyzeOnce(ctx, container, opts.noPlot, stdout); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	watcher, err := ingest.NewSourceWatcher(cfg.Input.DataPath, container.Logger)
	if err != nil {
		return err
	}
	return watcher.Watch(ctx, func(ctx context.Context) {
		if err := analyzeOnce(ctx, container, opts.noPlot, stdout); err != nil {
			container.Logger.Error("Analysis failed", zap.Error(err))
		}
	})
}

func analyzeOnce(ctx context.Context, container *di.Container, noPlot bool, stdout io.Writer) error {
	cfg := container.Config

	if noPlot {
		raw, err := container.QueryBus.Ask(ctx, queries.AnalyzeDistributionQuery{Path: cfg.Input.DataPath})
		if err != nil {
			return err
		}
		printDistribution(stdout, raw.(*queries.AnalyzeDistributionResult))
		return nil
	}

	raw, err := container.QueryBus.Ask(ctx, queries.RenderDistributionQuery{
		Path:   cfg.Input.DataPath,
		Format: formatFor(cfg.Input.OutputPath, cfg.Render.Format),
		Width:  cfg.Render.Width,
		Height: cfg.Render.Height,
		Title:  cfg.Render.Title,
	})
	if err != nil {
		return err
	}
	plot := raw.(*queries.RenderDistributionResult)
	printDistribution(stdout, &plot.Analysis)

	if err := writeFile(cfg.Input.OutputPath, plot.Image); err != nil {
		return err
	}
	container.Logger.Info("Wrote degree distribution plot",
		zap.String("run_id", plot.Analysis.RunID),
		zap.String("path", cfg.Input.OutputPath),
	)
	return nil
}

func printDistribution(w io.Writer, result *queries.AnalyzeDistributionResult) {
	fmt.Fprintf(w, "Using %d loan records\n", result.RecordCount)
	fmt.Fprintln(w, "Degree distribution:")
	for _, entry := range result.Distribution {
		fmt.Fprintf(w, "Degree %d: %d nodes\n", entry.Degree, entry.Count)
	}
}

// formatFor picks the plot format from the output extension
func formatFor(path, fallback string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return ports.FormatSVG
	case ".png":
		return ports.FormatPNG
	}
	return fallback
}

// writeFile replaces path with data through a temporary file in the same
// directory, so a failed write never leaves a partial plot behind.
func writeFile(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
