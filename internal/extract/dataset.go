package extract

import (
	"strings"

	"tsreminder/internal"
)

// buildDataset treats the first non-blank row as the header and maps every
// later non-blank row onto a RawRecord. Row numbers are 1-based positions
// in the source grid.
func buildDataset(source string, grid [][]internal.Value) (*internal.Dataset, error) {
	headerIdx := -1
	for i, row := range grid {
		if !blankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrEmptySheet
	}

	headers := make([]string, len(grid[headerIdx]))
	columns := map[string]int{}
	for i, v := range grid[headerIdx] {
		headers[i] = v.String()
		if _, dup := columns[headers[i]]; !dup {
			columns[headers[i]] = i
		}
	}

	cell := func(row []internal.Value, name string) internal.Value {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return internal.Empty()
		}
		return row[idx]
	}

	ds := &internal.Dataset{Source: source, Headers: headers}
	for i := headerIdx + 1; i < len(grid); i++ {
		row := grid[i]
		if blankRow(row) {
			continue
		}
		ds.Records = append(ds.Records, internal.RawRecord{
			Row:           i + 1,
			Identifier:    cell(row, internal.ColumnIdentifier),
			Substitute:    cell(row, internal.ColumnSubstitute),
			Email:         cell(row, internal.ColumnEmail),
			Confirmation:  cell(row, internal.ColumnConfirmation),
			School:        cell(row, internal.ColumnSchool),
			Date:          cell(row, internal.ColumnDate),
			DaysOld:       cell(row, internal.ColumnDaysOld),
			ApproverEmail: cell(row, internal.ColumnApprover),
		})
	}
	return ds, nil
}

func blankRow(row []internal.Value) bool {
	for _, v := range row {
		if !v.IsEmpty() && strings.TrimSpace(v.String()) != "" {
			return false
		}
	}
	return true
}
