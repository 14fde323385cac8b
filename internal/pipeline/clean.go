package pipeline

import (
	"strings"

	"tsreminder/internal"
	"tsreminder/internal/util"
)

// RequiredColumns must be present, spelled exactly, in every input.
var RequiredColumns = []string{
	internal.ColumnIdentifier,
	internal.ColumnSubstitute,
	internal.ColumnEmail,
	internal.ColumnConfirmation,
	internal.ColumnSchool,
	internal.ColumnDate,
	internal.ColumnDaysOld,
}

type CleanStats struct {
	Input           int
	MissingRequired int
	BadDate         int
}

func (s CleanStats) Dropped() int { return s.MissingRequired + s.BadDate }

func (s CleanStats) Kept() int { return s.Input - s.Dropped() }

// CheckColumns returns a *SchemaError naming every required column absent
// from headers.
func CheckColumns(headers []string, requireApprover bool) error {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	required := RequiredColumns
	if requireApprover {
		required = append(append([]string(nil), RequiredColumns...), internal.ColumnApprover)
	}
	var missing []string
	for _, col := range required {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// Clean drops rows lacking an email or date, then rows whose date cannot be
// normalized. Survivors keep their input order.
func Clean(records []internal.RawRecord) ([]internal.CleanRecord, CleanStats) {
	stats := CleanStats{Input: len(records)}
	out := make([]internal.CleanRecord, 0, len(records))
	for _, raw := range records {
		if isBlank(raw.Email) || isBlank(raw.Date) {
			stats.MissingRequired++
			continue
		}
		date, ok := NormalizeDate(raw.Date)
		if !ok {
			stats.BadDate++
			continue
		}
		rec := internal.CleanRecord{
			Row:           raw.Row,
			Email:         NormalizeEmail(raw.Email),
			Date:          date,
			Confirmation:  NormalizeConfirmation(raw.Confirmation),
			Identifier:    strings.TrimSpace(raw.Identifier.String()),
			Substitute:    strings.TrimSpace(raw.Substitute.String()),
			DaysOld:       daysOld(raw.DaysOld),
			ApproverEmail: strings.TrimSpace(raw.ApproverEmail.String()),
		}
		if !raw.School.IsEmpty() {
			rec.School = util.StringPtr(raw.School.String())
		}
		out = append(out, rec)
	}
	return out, stats
}

func isBlank(v internal.Value) bool {
	return v.IsEmpty() || strings.TrimSpace(v.String()) == ""
}

func daysOld(v internal.Value) *float64 {
	switch v.Kind {
	case internal.ValueNumber:
		return util.FloatPtr(v.Number)
	case internal.ValueText:
		return util.ParseNumber(v.Text)
	default:
		return nil
	}
}
