package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/rosenbach/stundenplan-api/internal/domain/timetable"
)

const sheetName = "Stundenplan"

// WriteXLSX serializes the timetable as an Excel workbook: weekdays as
// columns, hours as rows, the class name in the top-left corner.
func (e *Exporter) WriteXLSX(res *timetable.ExtractResult, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	days := res.Timetable.Days()
	if err := setCell(f, 1, 1, res.ClassName); err != nil {
		return err
	}
	for di, day := range days {
		if err := setCell(f, 2+di, 1, day); err != nil {
			return err
		}
	}

	for hi, hour := range res.Timetable.Hours() {
		row := 2 + hi
		if err := setCell(f, 1, row, hourLabel(hour)); err != nil {
			return err
		}
		for di, day := range days {
			if err := setCell(f, 2+di, row, cellText(res.Timetable.Entries(day, hour.Number))); err != nil {
				return err
			}
		}
	}

	lastCol, err := excelize.ColumnNumberToName(1 + len(days))
	if err != nil {
		return fmt.Errorf("failed to compute last column: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to set column widths: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}
