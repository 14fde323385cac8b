package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"tsreminder/internal"
	"tsreminder/internal/drafts"
	"tsreminder/internal/pipeline"
)

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB347")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
)

func printLoaded(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "Loaded %d rows from %s\n", res.Stats.Input, res.Source)
	if res.Stats.MissingRequired > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Dropped %d rows with missing Email or Date", res.Stats.MissingRequired)))
	}
	if res.Stats.BadDate > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Dropped %d rows with an unreadable Date", res.Stats.BadDate)))
	}
}

func printSummary(w io.Writer, rows []internal.SummaryRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "SUBSTITUTE\tEMAIL\tIDENTIFIER\tPENDING DATES\tMAX DAYS OLD\tSCHOOLS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n", r.Substitute, r.Email, r.Identifier, r.PendingDates, r.MaxDaysOld, r.UniqueSchools)
	}
}

func printWorkerDetail(w io.Writer, d pipeline.RecipientDetail, threshold float64) {
	g := d.Group
	fmt.Fprintln(w, headerStyle.Render(g.Substitute))
	fmt.Fprintf(w, "Email: %s\nIdentifier: %s\nPending dates: %d\nMax days old: %d\nUnique schools: %d\n\n",
		g.Email, g.Identifier, g.PendingDates(), int(g.MaxDaysOld), g.UniqueSchools)
	if d.Overdue {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("WARNING: over %d days past due (%d days). Risk of account deactivation!", int(threshold), int(g.MaxDaysOld))))
		fmt.Fprintln(w)
	}
	printMessage(w, g.Email, d.Subject, d.Body, d.CanSend)
}

func printSchoolList(w io.Writer, details []pipeline.SchoolDetail) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "SCHOOL\tAPPROVER\tDATES\tVALID")
	for _, d := range details {
		valid := "yes"
		if !d.CanSend {
			valid = "no"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.School, d.Approver, len(d.Dates), valid)
	}
}

func printSchoolDetail(w io.Writer, d pipeline.SchoolDetail) {
	fmt.Fprintf(w, "School: %s\nApprover: %s\n\n", d.School, d.Approver)
	printMessage(w, d.Approver, d.Subject, d.Body, d.CanSend)
}

func printMessage(w io.Writer, to, subject, body string, canSend bool) {
	fmt.Fprintf(w, "To: %s\nSubject: %s\n\n%s\n\n", to, subject, body)
	if !canSend {
		fmt.Fprintln(w, errorStyle.Render("Invalid email address. Cannot generate mailto link."))
		return
	}
	link, included := drafts.MailtoLink(to, subject, body)
	fmt.Fprintln(w, link)
	if !included {
		fmt.Fprintln(w, detailStyle.Render("Body is too long for a mailto link; paste it into the message by hand."))
	}
}
