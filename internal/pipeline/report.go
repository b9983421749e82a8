package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/idhash"
	"rpi-index-lab/internal/lookup"
	"rpi-index-lab/internal/reporting"
)

// Output file names.
const (
	ReportFile = "REPORT_RPI.md"
	SeriesFile = "rpi_series.csv"
	XLSXFile   = "rpi_report.xlsx"
)

// ReportPipeline renders one plotted range to the output directory.
type ReportPipeline struct {
	generator *reporting.Generator
	outputDir string
	start     domain.Period
	end       domain.Period
	selection *lookup.Selection
	writeXLSX bool
	logger    *slog.Logger
}

// RunResult lists the files written by a run.
type RunResult struct {
	Report *reporting.Report
	Files  []string
}

// NewReportPipeline creates a pipeline plotting [start, end].
func NewReportPipeline(gen *reporting.Generator, outputDir string, start, end domain.Period) *ReportPipeline {
	return &ReportPipeline{
		generator: gen,
		outputDir: outputDir,
		start:     start,
		end:       end,
		writeXLSX: true,
		logger:    slog.Default(),
	}
}

// WithClock sets a custom clock function for deterministic output.
func (p *ReportPipeline) WithClock(clock func() time.Time) *ReportPipeline {
	p.generator.WithClock(clock)
	return p
}

// WithSelection adds a median price lookup to the report.
func (p *ReportPipeline) WithSelection(sel lookup.Selection) *ReportPipeline {
	p.selection = &sel
	return p
}

// WithXLSX toggles the workbook output.
func (p *ReportPipeline) WithXLSX(enabled bool) *ReportPipeline {
	p.writeXLSX = enabled
	return p
}

// WithLogger sets the pipeline logger.
func (p *ReportPipeline) WithLogger(logger *slog.Logger) *ReportPipeline {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Run generates the report and writes all outputs.
func (p *ReportPipeline) Run(ctx context.Context) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	report := p.generator.Generate(p.start, p.end, p.selection)
	csv := reporting.RenderCSV(report.Series)
	report.DataVersion = idhash.ComputeDataVersion(report.Base, report.Rebased, csv)

	result := &RunResult{Report: report}

	seriesPath := filepath.Join(p.outputDir, SeriesFile)
	if err := os.WriteFile(seriesPath, []byte(csv), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", SeriesFile, err)
	}
	result.Files = append(result.Files, seriesPath)

	reportPath := filepath.Join(p.outputDir, ReportFile)
	if err := os.WriteFile(reportPath, []byte(reporting.RenderMarkdown(report)), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", ReportFile, err)
	}
	result.Files = append(result.Files, reportPath)

	if p.writeXLSX {
		xlsxPath := filepath.Join(p.outputDir, XLSXFile)
		if err := reporting.WriteXLSX(xlsxPath, report); err != nil {
			return nil, fmt.Errorf("write %s: %w", XLSXFile, err)
		}
		result.Files = append(result.Files, xlsxPath)
	}

	p.logger.Info("report written",
		slog.String("dir", p.outputDir),
		slog.String("range", fmt.Sprintf("%s..%s", p.start.Label(), p.end.Label())),
		slog.Int("points", report.Series.Len()),
		slog.String("data_version", report.DataVersion),
	)
	return result, nil
}
