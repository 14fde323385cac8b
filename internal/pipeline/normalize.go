package pipeline

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"tsreminder/internal"
	"tsreminder/internal/util"
)

// serialEpoch is day 0 of spreadsheet date serials.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const (
	minSerial = -693593 // 0001-01-01
	maxSerial = 2958465 // 9999-12-31
)

// fallbackLayouts are tried when dateparse gives up.
var fallbackLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"20060102",
	"January 2 2006",
	"Jan 2, 2006",
	"1-2-2006",
	"1-2-06",
	"2-Jan-2006",
	"2-Jan-06",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
}

// NormalizeDate converts a cell of unknown encoding to a calendar date.
// The bool is false when the value cannot be read as a date.
func NormalizeDate(v internal.Value) (internal.Date, bool) {
	switch v.Kind {
	case internal.ValueTime:
		return dateFromTime(v.Time)
	case internal.ValueNumber:
		return dateFromSerial(v.Number)
	case internal.ValueText:
		return dateFromText(v.Text)
	default:
		return internal.Date{}, false
	}
}

func dateFromTime(t time.Time) (internal.Date, bool) {
	if t.IsZero() {
		return internal.Date{}, false
	}
	return internal.DateOf(t), true
}

func dateFromSerial(serial float64) (internal.Date, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return internal.Date{}, false
	}
	days := math.Round(serial)
	if days < minSerial || days > maxSerial {
		return internal.Date{}, false
	}
	return internal.DateOf(serialEpoch.AddDate(0, 0, int(days))), true
}

func dateFromText(text string) (internal.Date, bool) {
	text = util.NormalizeSpaces(text)
	if text == "" {
		return internal.Date{}, false
	}
	// CSV exports flatten date cells to their serial. Longer digit runs
	// such as 20240201 are compact calendar dates.
	if serial, err := strconv.ParseFloat(text, 64); err == nil && serial >= minSerial && serial <= maxSerial {
		return dateFromSerial(serial)
	}
	if parsed, err := dateparse.ParseIn(text, time.UTC); err == nil {
		return internal.DateOf(parsed), true
	}
	for _, layout := range fallbackLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return internal.DateOf(parsed), true
		}
	}
	return internal.Date{}, false
}

func NormalizeEmail(v internal.Value) string {
	return strings.ToLower(strings.TrimSpace(v.String()))
}

// NormalizeConfirmation renders a confirmation id as an opaque string.
// Text spellings of integral numbers ("123.0") collapse to the same form a
// numeric cell produces ("123").
func NormalizeConfirmation(v internal.Value) string {
	return util.TrimIntegralFraction(strings.TrimSpace(v.String()))
}
