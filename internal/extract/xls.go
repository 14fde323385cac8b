package extract

import (
	"bytes"

	"github.com/extrame/xls"

	"tsreminder/internal"
	"tsreminder/internal/util"
)

// readXLS reads the first sheet of a legacy BIFF workbook. The library
// yields display text only, so every cell comes back as text and the
// normalizer reads numeric-looking dates as serials.
func readXLS(data []byte) ([][]internal.Value, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, ErrNoWorksheet
	}
	plainNumberFormats(wb)

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoWorksheet
	}

	var grid [][]internal.Value
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		values := make([]internal.Value, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			values[c] = internal.TextValue(util.NormalizeCell(row.Col(c)))
		}
		grid = append(grid, values)
	}
	if len(grid) == 0 {
		return nil, ErrEmptySheet
	}
	return grid, nil
}

// plainNumberFormats points every cell style at the General format. The
// library renders built-in date styles as year and month only and any
// custom style as a timestamp, so numeric cells are kept as plain numbers
// and dates reach the normalizer as serials.
func plainNumberFormats(wb *xls.WorkBook) {
	for _, xf := range wb.Xfs {
		switch x := xf.(type) {
		case *xls.Xf8:
			x.Format = 0
		case *xls.Xf5:
			x.Format = 0
		}
	}
}

// sheetRow returns nil for rows the sheet never stored; the library panics
// on them.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
