package extract

import (
	"bytes"
	"encoding/csv"

	"tsreminder/internal"
	"tsreminder/internal/util"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(data []byte) ([][]internal.Value, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptySheet
	}
	grid := make([][]internal.Value, len(records))
	for i, rec := range records {
		values := make([]internal.Value, len(rec))
		for c, field := range rec {
			values[c] = internal.TextValue(util.NormalizeCell(field))
		}
		grid[i] = values
	}
	return grid, nil
}
