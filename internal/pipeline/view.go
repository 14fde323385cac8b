package pipeline

import (
	"fmt"

	"tsreminder/internal"
	"tsreminder/internal/render"
	"tsreminder/internal/util"
)

type RecipientDetail struct {
	Group   *internal.RecipientGroup
	Overdue bool
	Subject string
	Body    string
	CanSend bool
}

type SchoolDetail struct {
	School   string
	Approver string
	Dates    []internal.DateEntry
	Subject  string
	Body     string
	CanSend  bool
}

func (r *Result) Summary() []internal.SummaryRow {
	rows := make([]internal.SummaryRow, 0, len(r.Emails))
	for _, email := range r.Emails {
		g := r.Groups[email]
		rows = append(rows, internal.SummaryRow{
			Substitute:    g.Substitute,
			Email:         g.Email,
			Identifier:    g.Identifier,
			PendingDates:  g.PendingDates(),
			MaxDaysOld:    int(g.MaxDaysOld),
			UniqueSchools: g.UniqueSchools,
		})
	}
	return rows
}

// Filter keeps summary rows whose substitute name or email contains term,
// ignoring case. An empty term keeps everything.
func (r *Result) Filter(term string) []internal.SummaryRow {
	rows := r.Summary()
	if util.NormalizeKey(term) == "" {
		return rows
	}
	out := rows[:0]
	for _, row := range rows {
		if util.ContainsFold(row.Substitute, term) || util.ContainsFold(row.Email, term) {
			out = append(out, row)
		}
	}
	return out
}

// Threshold is the days-old limit above which a recipient counts as overdue.
func (r *Result) Threshold() float64 { return r.threshold }

func (r *Result) IsOverdue(g *internal.RecipientGroup) bool {
	return g.MaxDaysOld > r.threshold
}

func (r *Result) Group(email string) (*internal.RecipientGroup, error) {
	g, ok := r.Groups[NormalizeEmail(internal.TextValue(email))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRecipient, email)
	}
	return g, nil
}

func (r *Result) Detail(email string) (RecipientDetail, error) {
	g, err := r.Group(email)
	if err != nil {
		return RecipientDetail{}, err
	}
	body, err := r.renderer.WorkerNotice(g)
	if err != nil {
		return RecipientDetail{}, err
	}
	return RecipientDetail{
		Group:   g,
		Overdue: r.IsOverdue(g),
		Subject: render.WorkerSubject,
		Body:    body,
		CanSend: IsValidRecipient(g.Email),
	}, nil
}

// SchoolDetails returns one entry per school with a mapped approver, sorted
// by school name. The caller picks which one to act on.
func (r *Result) SchoolDetails(email string) ([]SchoolDetail, error) {
	g, err := r.Group(email)
	if err != nil {
		return nil, err
	}
	out := make([]SchoolDetail, 0, len(g.SchoolApprovers))
	for _, school := range g.SortedSchools() {
		d, err := r.schoolDetail(g, school)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *Result) SchoolDetail(email, school string) (SchoolDetail, error) {
	g, err := r.Group(email)
	if err != nil {
		return SchoolDetail{}, err
	}
	if _, ok := g.SchoolApprovers[school]; !ok {
		return SchoolDetail{}, fmt.Errorf("%w: %s", ErrUnknownSchool, school)
	}
	return r.schoolDetail(g, school)
}

func (r *Result) schoolDetail(g *internal.RecipientGroup, school string) (SchoolDetail, error) {
	approver := g.SchoolApprovers[school]
	dates := g.BySchool[school]
	body, err := r.renderer.ApproverNotice(g.Substitute, dates)
	if err != nil {
		return SchoolDetail{}, err
	}
	return SchoolDetail{
		School:   school,
		Approver: approver,
		Dates:    dates,
		Subject:  render.ApproverSubject(g.Substitute),
		Body:     body,
		CanSend:  IsValidRecipient(approver),
	}, nil
}
