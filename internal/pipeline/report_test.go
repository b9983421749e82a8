package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/explorer"
	"rpi-index-lab/internal/idhash"
	"rpi-index-lab/internal/ingestion"
	"rpi-index-lab/internal/lookup"
	"rpi-index-lab/internal/reporting"
)

var fixedTime = time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)

func newPipeline(t *testing.T, dir string) (*ReportPipeline, *explorer.Explorer) {
	t.Helper()
	index := []domain.IndexRecord{
		{Year: 2009, Quarter: 1, RawCPI: 95.2, NominalRPI: 100.0, RealRPI: 99.0},
		{Year: 2009, Quarter: 2, RawCPI: 97.0, NominalRPI: 104.0, RealRPI: 101.0},
		{Year: 2009, Quarter: 3, RawCPI: 98.5, NominalRPI: 107.0, RealRPI: 104.0},
	}
	prices := []domain.PriceRecord{
		{Year: 2015, Quarter: 2, Town: "BEDOK", FlatType: "4 ROOM", Price: 420000},
	}
	exp, err := explorer.New(index, prices, explorer.Options{})
	if err != nil {
		t.Fatalf("Failed to create explorer: %v", err)
	}
	gen := reporting.NewGenerator(exp,
		ingestion.NormalizeStats{Total: 3, Kept: 3},
		ingestion.NormalizeStats{Total: 1, Kept: 1})

	p := NewReportPipeline(gen, dir,
		domain.Period{Year: 2009, Quarter: 1},
		domain.Period{Year: 2009, Quarter: 4},
	).WithClock(func() time.Time { return fixedTime })
	return p, exp
}

func TestReportPipeline_Run(t *testing.T) {
	tempDir := t.TempDir()
	p, exp := newPipeline(t, tempDir)
	if err := exp.SetBase(context.Background(), domain.Period{Year: 2009, Quarter: 1}); err != nil {
		t.Fatalf("SetBase failed: %v", err)
	}
	p.WithSelection(lookup.Selection{Town: "BEDOK", FlatType: "4 ROOM", Year: 2015, Quarter: 2})

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Pipeline run failed: %v", err)
	}

	// Verify all files exist
	for _, f := range []string{ReportFile, SeriesFile, XLSXFile} {
		path := filepath.Join(tempDir, f)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Expected file %s to exist", f)
		}
	}
	if len(res.Files) != 3 {
		t.Errorf("Expected 3 files, got %d", len(res.Files))
	}
	if !res.Report.GeneratedAt.Equal(fixedTime) {
		t.Errorf("Expected GeneratedAt %v from the pipeline clock, got %v", fixedTime, res.Report.GeneratedAt)
	}

	content, err := os.ReadFile(filepath.Join(tempDir, ReportFile))
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	report := string(content)
	for _, want := range []string{
		"# RPI Report",
		"Generated: 2025-01-04T12:00:00Z",
		"Base: 2009 Q1 = 100",
		"Data Version: " + res.Report.DataVersion,
		"## Median Price",
		"420,000",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("Report missing %q", want)
		}
	}

	csv, err := os.ReadFile(filepath.Join(tempDir, SeriesFile))
	if err != nil {
		t.Fatalf("Failed to read series: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	if len(lines) != 4 {
		t.Errorf("Expected header + 3 rows, got %d lines", len(lines))
	}
}

func TestReportPipeline_DataVersionDeterministic(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()

	pa, _ := newPipeline(t, dirA)
	pb, _ := newPipeline(t, dirB)

	ra, err := pa.WithXLSX(false).Run(context.Background())
	if err != nil {
		t.Fatalf("run a: %v", err)
	}
	rb, err := pb.WithXLSX(false).Run(context.Background())
	if err != nil {
		t.Fatalf("run b: %v", err)
	}

	if ra.Report.DataVersion != rb.Report.DataVersion {
		t.Errorf("DataVersion differs: %s vs %s", ra.Report.DataVersion, rb.Report.DataVersion)
	}
	if len(ra.Report.DataVersion) != idhash.DataVersionLength {
		t.Errorf("Unexpected DataVersion length: %q", ra.Report.DataVersion)
	}
	if _, err := os.Stat(filepath.Join(dirA, XLSXFile)); !os.IsNotExist(err) {
		t.Error("Workbook should not be written when disabled")
	}
}

func TestReportPipeline_BaseChangesDataVersion(t *testing.T) {
	p, exp := newPipeline(t, t.TempDir())
	p.WithXLSX(false)

	before, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := exp.SetBase(context.Background(), domain.Period{Year: 2009, Quarter: 2}); err != nil {
		t.Fatalf("SetBase failed: %v", err)
	}
	after, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if before.Report.DataVersion == after.Report.DataVersion {
		t.Error("Expected DataVersion to change after rebasing")
	}
}

func TestReportPipeline_CancelledContext(t *testing.T) {
	p, _ := newPipeline(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx); err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}
