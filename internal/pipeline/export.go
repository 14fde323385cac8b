package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	pendingSheet = "Pending"
)

// ExportSummaryXLSX writes the summary table and the per-date detail of a
// result to an xlsx workbook.
func ExportSummaryXLSX(res *Result, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(pendingSheet); err != nil {
		return err
	}

	writeRow(f, summarySheet, 1, "Substitute", "Email", "Identifier", "Total Pending Dates", "Max Days Old", "Unique Schools", "Over Threshold", "Valid Email")
	for i, row := range res.Summary() {
		g := res.Groups[row.Email]
		writeRow(f, summarySheet, i+2,
			row.Substitute, row.Email, row.Identifier, row.PendingDates, row.MaxDaysOld, row.UniqueSchools,
			yesNo(res.IsOverdue(g)), yesNo(IsValidRecipient(row.Email)))
	}

	writeRow(f, pendingSheet, 1, "Email", "Substitute", "Date", "Schools", "Confirmations", "Approvers")
	r := 2
	for _, email := range res.Emails {
		g := res.Groups[email]
		for _, entry := range g.Dates {
			schools := entry.SortedSchools()
			approvers := make([]string, 0, len(schools))
			for _, s := range schools {
				if a, ok := g.SchoolApprovers[s]; ok {
					approvers = append(approvers, a)
				}
			}
			writeRow(f, pendingSheet, r,
				email, g.Substitute, entry.Date.String(),
				strings.Join(schools, ", "), strings.Join(entry.SortedConfirmations(), ", "), strings.Join(approvers, ", "))
			r++
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save %s: %w", outputPath, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
