package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"rpi-index-lab/internal/config"
	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/explorer"
	"rpi-index-lab/internal/lookup"
	"rpi-index-lab/internal/observability"
	"rpi-index-lab/internal/orchestrator"
	"rpi-index-lab/internal/pipeline"
	"rpi-index-lab/internal/reporting"
)

// reportOptions carries the command line flags that shape a report run.
type reportOptions struct {
	outputDir string
	base      string
	start     string
	end       string
	all       bool
	price     string
	noXLSX    bool
}

func main() {
	// Parse flags
	envFile := flag.String("env-file", ".env", "Path to .env file (missing file is ignored)")
	configFile := flag.String("config", "", "Path to YAML config file")
	var opts reportOptions
	flag.StringVar(&opts.outputDir, "output-dir", "docs", "Output directory for generated files")
	flag.StringVar(&opts.base, "base", "", "Base quarter to rebase to, e.g. 2009Q1 (empty keeps published values)")
	flag.StringVar(&opts.start, "start", "", "Range start quarter, e.g. 2009Q1")
	flag.StringVar(&opts.end, "end", "", "Range end quarter, e.g. 2024Q4")
	flag.BoolVar(&opts.all, "all", false, "Plot the full dataset coverage")
	flag.StringVar(&opts.price, "price", "", "Median price lookup: town,flat_type,year,quarter")
	flag.BoolVar(&opts.noXLSX, "no-xlsx", false, "Skip the Excel workbook")
	flag.Parse()

	cfg, err := config.Load(*envFile, *configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(os.Stderr, observability.LogOptions{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.With(slog.String("service", "report"))

	if err := run(context.Background(), cfg, logger, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run loads the datasets, applies the base and writes the report files.
// Loader resources are released before it returns.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts reportOptions, stdout io.Writer) error {
	res, err := orchestrator.New(orchestrator.Options{Config: cfg, Logger: logger}).Run(ctx)
	if err != nil {
		return fmt.Errorf("loading datasets: %w", err)
	}
	defer res.Cleanup()
	exp := res.Explorer

	if opts.base != "" {
		p, err := domain.ParsePeriod(opts.base)
		if err != nil {
			return fmt.Errorf("--base: %w", err)
		}
		if err := exp.SetBase(ctx, p); err != nil {
			if nearest, ok := exp.NearestBase(p); ok {
				return fmt.Errorf("cannot rebase to %s (nearest available: %s): %w", p.Label(), nearest.Label(), err)
			}
			return fmt.Errorf("cannot rebase to %s: %w", p.Label(), err)
		}
	}

	startP, endP, ok, err := resolveRange(exp, opts.start, opts.end, opts.all)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(stdout, explorer.HintNoRange)
		return nil
	}

	gen := reporting.NewGenerator(exp, res.Datasets.IndexStats, res.Datasets.PriceStats)
	p := pipeline.NewReportPipeline(gen, opts.outputDir, startP, endP).
		WithLogger(logger).
		WithXLSX(!opts.noXLSX)

	if opts.price != "" {
		sel, err := parseSelection(opts.price)
		if err != nil {
			return fmt.Errorf("--price: %w", err)
		}
		p.WithSelection(sel)
	}

	result, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("running report: %w", err)
	}

	fmt.Fprintln(stdout, result.Report.Summary)
	if result.Report.Price != nil {
		line := fmt.Sprintf("Median price: %s", result.Report.Price.Text)
		if result.Report.Price.Hint != "" {
			line += " (" + result.Report.Price.Hint + ")"
		}
		fmt.Fprintln(stdout, line)
	}
	for _, f := range result.Files {
		fmt.Fprintf(stdout, "  - %s\n", f)
	}
	return nil
}

// resolveRange returns ok=false when neither endpoint is given and --all is unset.
func resolveRange(exp *explorer.Explorer, start, end string, all bool) (domain.Period, domain.Period, bool, error) {
	if all {
		s, e := exp.DefaultRange()
		return s, e, true, nil
	}
	if start == "" && end == "" {
		return domain.Period{}, domain.Period{}, false, nil
	}
	if start == "" || end == "" {
		return domain.Period{}, domain.Period{}, false, fmt.Errorf("--start and --end must be given together")
	}
	s, err := domain.ParsePeriod(start)
	if err != nil {
		return domain.Period{}, domain.Period{}, false, fmt.Errorf("--start: %w", err)
	}
	e, err := domain.ParsePeriod(end)
	if err != nil {
		return domain.Period{}, domain.Period{}, false, fmt.Errorf("--end: %w", err)
	}
	return s, e, true, nil
}

// parseSelection parses "town,flat_type,year,quarter".
func parseSelection(s string) (lookup.Selection, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return lookup.Selection{}, fmt.Errorf("expected town,flat_type,year,quarter, got %q", s)
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return lookup.Selection{}, fmt.Errorf("bad year %q", parts[2])
	}
	quarter, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(parts[3])), "Q"))
	if err != nil {
		return lookup.Selection{}, fmt.Errorf("bad quarter %q", parts[3])
	}
	return lookup.Selection{
		Town:     strings.TrimSpace(parts[0]),
		FlatType: strings.TrimSpace(parts[1]),
		Year:     year,
		Quarter:  quarter,
	}, nil
}
