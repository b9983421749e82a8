package reporting

import (
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbook.
const (
	SheetSeries  = "Series"
	SheetSummary = "Summary"
)

// WriteXLSX writes the report as a two-sheet workbook: the series table and a summary.
func WriteXLSX(path string, r *Report) error {
	f, err := buildWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func buildWorkbook(r *Report) (*excelize.File, error) {
	f := excelize.NewFile()

	// The default sheet becomes the series sheet.
	if err := f.SetSheetName(f.GetSheetName(0), SheetSeries); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeSeriesSheet(f, r); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummarySheet(f, r); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeSeriesSheet(f *excelize.File, r *Report) error {
	header := []interface{}{"Period", "Year", "Quarter", "Nominal", "Real"}
	if err := f.SetSheetRow(SheetSeries, "A1", &header); err != nil {
		return fmt.Errorf("write series header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(SheetSeries, "A1", "E1", bold); err != nil {
		return fmt.Errorf("style series header: %w", err)
	}

	a := r.Series
	for i, label := range a.Labels {
		p := a.Periods[i]
		row := []interface{}{label, p.Year, p.Quarter, cellValue(a.Nominal[i]), cellValue(a.Real[i])}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSeries, cell, &row); err != nil {
			return fmt.Errorf("write series row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, r *Report) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Generated", r.GeneratedAt.Format(time.RFC3339)},
		{"Base", r.Base.Label()},
		{"Rebased", r.Rebased},
		{"Summary", r.Summary},
		{"Index Rows", r.DataSummary.IndexStats.Kept},
		{"Index Rows Dropped", r.DataSummary.IndexStats.Dropped},
		{"Price Rows", r.DataSummary.PriceStats.Kept},
		{"Price Rows Dropped", r.DataSummary.PriceStats.Dropped},
	}
	if r.Price != nil {
		rows = append(rows, []interface{}{
			"Median Price",
			fmt.Sprintf("%s, %s, %s: %s", r.Price.Town, r.Price.FlatType, r.Price.Period.Label(), r.Price.Text),
		})
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSummary, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	return nil
}

// cellValue leaves non-finite values blank.
func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
