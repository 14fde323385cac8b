package pipeline

import (
	"sort"

	"tsreminder/internal"
)

const (
	UnknownPlaceholder = "Unknown"
	UnknownSchool      = "Unknown School"
)

// Aggregate groups records by recipient email and then by date. Name,
// identifier and approver resolution is first-seen-wins in source row
// order, so records are folded in Row order regardless of slice order.
func Aggregate(records []internal.CleanRecord) map[string]*internal.RecipientGroup {
	ordered := append([]internal.CleanRecord(nil), records...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Row < ordered[j].Row })

	builders := map[string]*groupBuilder{}
	for _, rec := range ordered {
		b, ok := builders[rec.Email]
		if !ok {
			b = newGroupBuilder(rec.Email)
			builders[rec.Email] = b
		}
		b.add(rec)
	}

	out := make(map[string]*internal.RecipientGroup, len(builders))
	for email, b := range builders {
		out[email] = b.build()
	}
	return out
}

type groupBuilder struct {
	email      string
	substitute string
	identifier string
	dates      map[internal.Date]*internal.DateEntry
	bySchool   map[string]map[internal.Date]*internal.DateEntry
	maxDaysOld *float64
	schools    map[string]struct{}
	approvers  map[string]string
}

func newGroupBuilder(email string) *groupBuilder {
	return &groupBuilder{
		email:     email,
		dates:     map[internal.Date]*internal.DateEntry{},
		bySchool:  map[string]map[internal.Date]*internal.DateEntry{},
		schools:   map[string]struct{}{},
		approvers: map[string]string{},
	}
}

func (b *groupBuilder) add(rec internal.CleanRecord) {
	if b.substitute == "" && rec.Substitute != "" {
		b.substitute = rec.Substitute
	}
	if b.identifier == "" && rec.Identifier != "" {
		b.identifier = rec.Identifier
	}

	school := UnknownSchool
	if rec.School != nil {
		school = *rec.School
		b.schools[school] = struct{}{}

		perSchool, ok := b.bySchool[school]
		if !ok {
			perSchool = map[internal.Date]*internal.DateEntry{}
			b.bySchool[school] = perSchool
		}
		mergeEntry(perSchool, rec.Date, rec.Confirmation, school)

		if rec.ApproverEmail != "" {
			if _, set := b.approvers[school]; !set {
				b.approvers[school] = rec.ApproverEmail
			}
		}
	}
	mergeEntry(b.dates, rec.Date, rec.Confirmation, school)

	if rec.DaysOld != nil && (b.maxDaysOld == nil || *rec.DaysOld > *b.maxDaysOld) {
		v := *rec.DaysOld
		b.maxDaysOld = &v
	}
}

func (b *groupBuilder) build() *internal.RecipientGroup {
	g := &internal.RecipientGroup{
		Email:           b.email,
		Substitute:      b.substitute,
		Identifier:      b.identifier,
		Dates:           sortedEntries(b.dates),
		UniqueSchools:   len(b.schools),
		SchoolApprovers: b.approvers,
		BySchool:        make(map[string][]internal.DateEntry, len(b.bySchool)),
	}
	if g.Substitute == "" {
		g.Substitute = UnknownPlaceholder
	}
	if g.Identifier == "" {
		g.Identifier = UnknownPlaceholder
	}
	if b.maxDaysOld != nil {
		g.MaxDaysOld = *b.maxDaysOld
	}
	for school, entries := range b.bySchool {
		g.BySchool[school] = sortedEntries(entries)
	}
	return g
}

func mergeEntry(entries map[internal.Date]*internal.DateEntry, date internal.Date, confirmation, school string) {
	entry, ok := entries[date]
	if !ok {
		entry = &internal.DateEntry{
			Date:          date,
			Confirmations: map[string]struct{}{},
			Schools:       map[string]struct{}{},
		}
		entries[date] = entry
	}
	entry.Confirmations[confirmation] = struct{}{}
	entry.Schools[school] = struct{}{}
}

func sortedEntries(entries map[internal.Date]*internal.DateEntry) []internal.DateEntry {
	out := make([]internal.DateEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
