package extract

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"

	"tsreminder/internal"
	"tsreminder/internal/util"
)

// readHTML takes the first table whose first row has at least two cells.
func readHTML(data []byte) ([][]internal.Value, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var grid [][]internal.Value
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.First().Find("th,td").Length() < 2 {
			return true
		}
		rows.Each(func(_ int, row *goquery.Selection) {
			var values []internal.Value
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				values = append(values, internal.TextValue(util.NormalizeSpaces(util.NormalizeCell(cell.Text()))))
			})
			grid = append(grid, values)
		})
		return false
	})
	if len(grid) == 0 {
		return nil, ErrNoTable
	}
	return grid, nil
}
