package extract

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type Format string

const (
	FormatXLSX    Format = "xlsx"
	FormatXLS     Format = "xls"
	FormatCSV     Format = "csv"
	FormatHTML    Format = "html"
	FormatUnknown Format = "unknown"
)

var mimeFormats = []struct {
	mime   string
	format Format
}{
	{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatXLSX},
	{"application/vnd.ms-excel", FormatXLS},
	{"text/html", FormatHTML},
	{"text/csv", FormatCSV},
}

// DetectFormat sniffs the content first and falls back to the file
// extension. Payroll systems often export html tables named .xls, which is
// why content wins.
func DetectFormat(name string, data []byte) Format {
	detected := mimetype.Detect(data)
	for _, mf := range mimeFormats {
		if detected.Is(mf.mime) {
			return mf.format
		}
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	case ".csv", ".txt":
		return FormatCSV
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatUnknown
	}
}
