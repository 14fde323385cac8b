package pipeline

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsreminder/internal"
)

type row struct {
	id, name, email, school, approver string
	conf                              internal.Value
	date                              internal.Value
	daysOld                           internal.Value
}

func raw(rows ...row) []internal.RawRecord {
	out := make([]internal.RawRecord, 0, len(rows))
	for i, r := range rows {
		out = append(out, internal.RawRecord{
			Row:           i + 2,
			Identifier:    internal.TextValue(r.id),
			Substitute:    internal.TextValue(r.name),
			Email:         internal.TextValue(r.email),
			Confirmation:  r.conf,
			School:        internal.TextValue(r.school),
			Date:          r.date,
			DaysOld:       r.daysOld,
			ApproverEmail: internal.TextValue(r.approver),
		})
	}
	return out
}

func txt(s string) internal.Value  { return internal.TextValue(s) }
func num(n float64) internal.Value { return internal.NumberValue(n) }

func TestCleanDropsMissingEmailOrDate(t *testing.T) {
	records := raw(
		row{email: "a@x.com", conf: txt("1"), date: txt("2024-01-01")},
		row{email: "", conf: txt("2"), date: txt("2024-01-01")},
		row{email: "   ", conf: txt("3"), date: txt("2024-01-01")},
		row{email: "b@x.com", conf: txt("4"), date: internal.Empty()},
		row{email: "c@x.com", conf: txt("5"), date: txt("someday")},
		row{email: "d@x.com", conf: txt("6"), date: num(45323)},
	)

	cleaned, stats := Clean(records)
	assert.Equal(t, 6, stats.Input)
	assert.Equal(t, 3, stats.MissingRequired)
	assert.Equal(t, 1, stats.BadDate)
	assert.Equal(t, 4, stats.Dropped())
	assert.Equal(t, 2, stats.Kept())
	require.Len(t, cleaned, 2)
	assert.Equal(t, "a@x.com", cleaned[0].Email)
	assert.Equal(t, d(2024, 2, 1), cleaned[1].Date)
}

func TestCleanFields(t *testing.T) {
	records := raw(row{
		id: " ID-9 ", name: " Jane ", email: " JANE@X.COM", school: "Oak ",
		approver: " Boss@X.com ", conf: num(77), date: txt("2024-01-01"), daysOld: txt("12"),
	})
	cleaned, _ := Clean(records)
	require.Len(t, cleaned, 1)
	rec := cleaned[0]
	assert.Equal(t, "jane@x.com", rec.Email)
	assert.Equal(t, "77", rec.Confirmation)
	assert.Equal(t, "ID-9", rec.Identifier)
	assert.Equal(t, "Jane", rec.Substitute)
	require.NotNil(t, rec.School)
	assert.Equal(t, "Oak ", *rec.School)
	require.NotNil(t, rec.DaysOld)
	assert.Equal(t, 12.0, *rec.DaysOld)
	assert.Equal(t, "Boss@X.com", rec.ApproverEmail)
}

func TestCheckColumns(t *testing.T) {
	all := append([]string(nil), RequiredColumns...)
	require.NoError(t, CheckColumns(all, false))

	err := CheckColumns(all, true)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"Primary Approver Email"}, schemaErr.Missing)

	err = CheckColumns([]string{"Identifier", "email", "Date", "School"}, false)
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"Substitute", "Email", "Confirmation #", "Days Old"}, schemaErr.Missing)
	assert.EqualError(t, err, "missing required columns: Substitute, Email, Confirmation #, Days Old")
}

func TestDedup(t *testing.T) {
	cleaned, _ := Clean(raw(
		row{email: "a@x.com", conf: txt("1"), date: txt("2024-01-01"), school: "Oak"},
		row{email: "A@x.com", conf: num(1), date: num(45292), school: "Elm"},
		row{email: "a@x.com", conf: txt("2"), date: txt("2024-01-01")},
		row{email: "a@x.com", conf: txt("1"), date: txt("2024-01-02")},
	))

	once := Dedup(cleaned)
	require.Len(t, once, 3)
	assert.Equal(t, "Oak", *once[0].School)
	assert.Equal(t, once, Dedup(once))
}

func TestAggregateSetMerge(t *testing.T) {
	cleaned, _ := Clean(raw(
		row{email: "a@x.com", conf: txt("200"), date: txt("2024-01-01"), school: "Oak"},
		row{email: "a@x.com", conf: txt("100"), date: txt("2024-01-01"), school: "Oak"},
		row{email: "a@x.com", conf: txt("100"), date: txt("2024-01-01"), school: "Oak"},
	))
	groups := Aggregate(Dedup(cleaned))
	g := groups["a@x.com"]
	require.NotNil(t, g)
	require.Len(t, g.Dates, 1)
	assert.Equal(t, []string{"100", "200"}, g.Dates[0].SortedConfirmations())
	assert.Equal(t, []string{"Oak"}, g.Dates[0].SortedSchools())
}

func TestAggregateFirstSeenResolution(t *testing.T) {
	cleaned, _ := Clean(raw(
		row{email: "a@x.com", conf: txt("1"), date: txt("2024-01-03"), school: "Lincoln", approver: "a@x.com"},
		row{email: "a@x.com", name: "Jane", conf: txt("2"), date: txt("2024-01-02")},
		row{email: "a@x.com", name: "Janet", id: "ID-7", conf: txt("3"), date: txt("2024-01-01"), school: "Lincoln", approver: "b@x.com"},
		row{email: "a@x.com", id: "ID-8", conf: txt("4"), date: txt("2024-01-01"), school: "Elm", approver: "c@x.com"},
	))
	g := Aggregate(cleaned)["a@x.com"]
	require.NotNil(t, g)
	assert.Equal(t, "Jane", g.Substitute)
	assert.Equal(t, "ID-7", g.Identifier)
	assert.Equal(t, map[string]string{"Lincoln": "a@x.com", "Elm": "c@x.com"}, g.SchoolApprovers)
	assert.Equal(t, []string{"Elm", "Lincoln"}, g.SortedSchools())
}

func TestAggregateFallbacks(t *testing.T) {
	cleaned, _ := Clean(raw(
		row{email: "a@x.com", id: "ID-1", conf: txt("1"), date: txt("2024-01-01")},
		row{email: "b@x.com", name: "Bo", conf: txt("2"), date: txt("2024-01-01"), school: "Oak", daysOld: txt("n/a")},
	))
	groups := Aggregate(cleaned)

	a := groups["a@x.com"]
	assert.Equal(t, UnknownPlaceholder, a.Substitute)
	assert.Equal(t, "ID-1", a.Identifier)
	assert.Equal(t, []string{UnknownSchool}, a.Dates[0].SortedSchools())
	assert.Equal(t, 0, a.UniqueSchools)
	assert.Empty(t, a.SchoolApprovers)
	assert.Zero(t, a.MaxDaysOld)

	b := groups["b@x.com"]
	assert.Equal(t, "Bo", b.Substitute)
	assert.Equal(t, UnknownPlaceholder, b.Identifier)
	assert.Equal(t, 1, b.UniqueSchools)
	assert.Zero(t, b.MaxDaysOld)
}

func TestAggregateStats(t *testing.T) {
	cleaned, _ := Clean(raw(
		row{email: "a@x.com", conf: txt("1"), date: txt("2024-01-01"), school: "Oak", daysOld: num(4)},
		row{email: "a@x.com", conf: txt("2"), date: txt("2024-01-02"), school: "Elm", daysOld: txt("22")},
		row{email: "a@x.com", conf: txt("3"), date: txt("2024-01-02"), school: "Oak"},
		row{email: "a@x.com", conf: txt("4"), date: txt("2024-01-03")},
	))
	g := Aggregate(cleaned)["a@x.com"]
	assert.Equal(t, 22.0, g.MaxDaysOld)
	assert.Equal(t, 2, g.UniqueSchools)
	assert.Equal(t, 3, g.PendingDates())
	assert.Equal(t, []string{"Elm", "Oak"}, g.Dates[1].SortedSchools())

	oak := g.BySchool["Oak"]
	require.Len(t, oak, 2)
	assert.Equal(t, []string{"3"}, oak[1].SortedConfirmations())
}

func TestAggregateOrderIndependent(t *testing.T) {
	records := raw(
		row{email: "a@x.com", name: "Ann", conf: txt("1"), date: txt("2024-03-01"), school: "Oak", approver: "p@x.com"},
		row{email: "b@x.com", name: "Bob", conf: txt("2"), date: txt("2024-01-01"), school: "Elm"},
		row{email: "a@x.com", name: "Annie", conf: txt("3"), date: txt("2024-01-15"), school: "Elm"},
		row{email: "a@x.com", conf: txt("4"), date: txt("2024-01-15"), school: "Oak", approver: "q@x.com"},
		row{email: "a@x.com", conf: txt("5"), date: txt("2023-12-31"), school: "Pine"},
	)
	cleaned, _ := Clean(records)
	want := Aggregate(Dedup(cleaned))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]internal.CleanRecord(nil), cleaned...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Aggregate(Dedup(shuffled))
		assert.Equal(t, want, got)
	}

	a := want["a@x.com"]
	assert.Equal(t, "Ann", a.Substitute)
	assert.Equal(t, "p@x.com", a.SchoolApprovers["Oak"])
	dates := make([]string, 0, len(a.Dates))
	for _, e := range a.Dates {
		dates = append(dates, e.Date.String())
	}
	assert.Equal(t, []string{"2023-12-31", "2024-01-15", "2024-03-01"}, dates)
}

func TestEndToEndScenario(t *testing.T) {
	ds := &internal.Dataset{
		Source:  "scenario",
		Headers: append([]string(nil), RequiredColumns...),
		Records: raw(
			row{email: "jane@x.com", date: txt("2/1/2024"), conf: txt("5"), school: "Oak", daysOld: num(10)},
			row{email: "JANE@x.com", date: num(44972), conf: txt("5"), school: "Oak", daysOld: num(3)},
		),
	}

	res, err := Process(ds, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"jane@x.com"}, res.Emails)
	assert.Zero(t, res.Duplicates)

	g := res.Groups["jane@x.com"]
	require.Len(t, g.Dates, 2)
	assert.Equal(t, "2023-02-15", g.Dates[0].Date.String())
	assert.Equal(t, "2024-02-01", g.Dates[1].Date.String())
	assert.Equal(t, 10.0, g.MaxDaysOld)
	assert.Equal(t, 1, g.UniqueSchools)
}
