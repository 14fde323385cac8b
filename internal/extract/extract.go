// Package extract reads attendance extracts from xlsx, xls, csv and html
// files into typed datasets.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tsreminder/internal"
)

var (
	ErrEmptySheet  = errors.New("worksheet is empty")
	ErrNoWorksheet = errors.New("no worksheet found")
	ErrNoTable     = errors.New("no table with a header row found")
)

func ReadFile(path string) (*internal.Dataset, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(filepath.Base(path), blob)
}

// Read parses data according to its detected format. name is only used for
// the extension fallback and as the dataset source label.
func Read(name string, data []byte) (*internal.Dataset, error) {
	format := DetectFormat(name, data)
	var (
		grid [][]internal.Value
		err  error
	)
	switch format {
	case FormatXLSX:
		grid, err = readXLSX(data)
	case FormatXLS:
		grid, err = readXLS(data)
	case FormatCSV:
		grid, err = readCSV(data)
	case FormatHTML:
		grid, err = readHTML(data)
	default:
		return nil, fmt.Errorf("unsupported input format for %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s as %s: %w", name, format, err)
	}
	return buildDataset(name, grid)
}
