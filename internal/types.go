package internal

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

type ValueKind int

const (
	ValueEmpty ValueKind = iota
	ValueTime
	ValueNumber
	ValueText
)

// Value is one cell of an input row. Readers decide the kind; nothing
// downstream inspects raw cell encodings.
type Value struct {
	Kind   ValueKind
	Time   time.Time
	Number float64
	Text   string
}

func Empty() Value                { return Value{Kind: ValueEmpty} }
func TimeValue(t time.Time) Value { return Value{Kind: ValueTime, Time: t} }
func NumberValue(n float64) Value { return Value{Kind: ValueNumber, Number: n} }
func TextValue(s string) Value {
	if s == "" {
		return Empty()
	}
	return Value{Kind: ValueText, Text: s}
}

func (v Value) IsEmpty() bool { return v.Kind == ValueEmpty }

// String coerces the value to text. Numbers use their shortest decimal
// form, so 123 and 123.0 both render as "123".
func (v Value) String() string {
	switch v.Kind {
	case ValueTime:
		return v.Time.Format(time.DateOnly)
	case ValueNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case ValueText:
		return v.Text
	default:
		return ""
	}
}

// Date is a calendar date with no time-of-day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Input column names, matched verbatim.
const (
	ColumnIdentifier   = "Identifier"
	ColumnSubstitute   = "Substitute"
	ColumnEmail        = "Email"
	ColumnConfirmation = "Confirmation #"
	ColumnSchool       = "School"
	ColumnDate         = "Date"
	ColumnDaysOld      = "Days Old"
	ColumnApprover     = "Primary Approver Email"
)

// Dataset is one parsed input file: the header row as found and every data
// row in source order.
type Dataset struct {
	Source  string
	Headers []string
	Records []RawRecord
}

type RawRecord struct {
	Row           int
	Identifier    Value
	Substitute    Value
	Email         Value
	Confirmation  Value
	School        Value
	Date          Value
	DaysOld       Value
	ApproverEmail Value
}

type CleanRecord struct {
	Row           int
	Email         string
	Date          Date
	Confirmation  string
	Identifier    string
	Substitute    string
	School        *string
	DaysOld       *float64
	ApproverEmail string
}

type DateEntry struct {
	Date          Date
	Confirmations map[string]struct{}
	Schools       map[string]struct{}
}

func (e DateEntry) SortedConfirmations() []string { return sortedKeys(e.Confirmations) }
func (e DateEntry) SortedSchools() []string       { return sortedKeys(e.Schools) }

func (e DateEntry) HasSchool(school string) bool {
	_, ok := e.Schools[school]
	return ok
}

type RecipientGroup struct {
	Email           string
	Substitute      string
	Identifier      string
	Dates           []DateEntry
	MaxDaysOld      float64
	UniqueSchools   int
	SchoolApprovers map[string]string
	// BySchool holds the same date entries restricted to one named school.
	BySchool map[string][]DateEntry
}

func (g *RecipientGroup) PendingDates() int { return len(g.Dates) }

// SortedSchools returns the schools that have an approver mapping.
func (g *RecipientGroup) SortedSchools() []string {
	out := make([]string, 0, len(g.SchoolApprovers))
	for s := range g.SchoolApprovers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

type SummaryRow struct {
	Substitute    string
	Email         string
	Identifier    string
	PendingDates  int
	MaxDaysOld    int
	UniqueSchools int
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type RunRow struct {
	ID         int
	TraceID    string
	Source     string
	SourceHash string
	Status     string
	Error      string
	Counts     map[string]int
	Timings    map[string]float64
	CreatedAt  string
}

type DraftRow struct {
	ID        int
	TraceID   string
	Kind      string
	Recipient string
	Subject   string
	Hash      string
	Path      string
}

type ReportRow struct {
	Hash   string
	Path   string
	Status string
	Error  string
}
