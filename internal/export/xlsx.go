package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/banshee-data/fluxpro/internal/fsutil"
	"github.com/banshee-data/fluxpro/internal/table"
)

// XLSXWriter writes a workbook named <stem>_out.xlsx with one sheet per
// sample.
type XLSXWriter struct {
	fs fsutil.FileSystem
}

// Format returns FormatXLSX.
func (*XLSXWriter) Format() Format { return FormatXLSX }

// SheetName names the sheet holding a sample.
func SheetName(sample int) string {
	return fmt.Sprintf("sample_%d", sample)
}

// Write builds the workbook in memory and writes it in one piece.
func (x *XLSXWriter) Write(ctx context.Context, w *table.Wide, dir, stem string) ([]string, error) {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	parts := w.Partition()
	samples := w.Samples()
	if len(samples) == 0 {
		// keep a single sheet with the header
		if err := f.SetSheetName(defaultSheet, "results"); err != nil {
			return nil, fmt.Errorf("failed to rename sheet: %w", err)
		}
		if err := writeSheet(f, "results", w); err != nil {
			return nil, err
		}
	}
	for i, sample := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sheet := SheetName(sample)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeSheet(f, sheet, parts[sample]); err != nil {
			return nil, err
		}
	}
	if len(samples) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return nil, fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}

	path, out, err := create(x.fs, dir, stem+"_out.xlsx")
	if err != nil {
		return nil, err
	}
	if _, err := f.WriteTo(out); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", path, err)
	}
	return []string{path}, nil
}

func writeSheet(f *excelize.File, sheet string, w *table.Wide) error {
	header := w.Header()
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}

	for i, r := range w.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]interface{}, 0, len(header))
		row = append(row, r.Cycle, r.Sample, r.Time.Format(DatetimeLayout))
		for _, v := range r.Values {
			if v.Valid {
				row = append(row, v.Float64)
			} else {
				row = append(row, nil)
			}
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
