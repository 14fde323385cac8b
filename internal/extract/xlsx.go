package extract

import (
	"bytes"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"tsreminder/internal"
	"tsreminder/internal/util"
)

// readXLSX reads the first worksheet with raw cell values so date cells
// arrive as serial numbers rather than display strings.
func readXLSX(data []byte) ([][]internal.Value, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoWorksheet
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	grid := make([][]internal.Value, len(rows))
	for r, row := range rows {
		values := make([]internal.Value, len(row))
		for c, raw := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(sheet, cell)
			if err != nil {
				return nil, err
			}
			values[c] = xlsxValue(raw, typ)
		}
		grid[r] = values
	}
	return grid, nil
}

func xlsxValue(raw string, typ excelize.CellType) internal.Value {
	if raw == "" {
		return internal.Empty()
	}
	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return internal.NumberValue(n)
		}
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return internal.TimeValue(t)
		}
	}
	return internal.TextValue(util.NormalizeCell(raw))
}
