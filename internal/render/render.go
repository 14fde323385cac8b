// Package render builds the worker and approver notice bodies. Output is a
// pure function of the input: lines are emitted in date order and every set
// is sorted before joining.
package render

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"

	"tsreminder/internal"
	"tsreminder/internal/util"
)

const (
	DefaultReferenceURL = "https://www.kellyeducation.com/hubfs/kelc/payroll-webtime/index.html#/lessons/3Zo1Sd7m3z2BI8sG-FtRR9Aa0vDukbmD"
	DefaultOrganization = "Kelly Education"

	WorkerSubject = "Past Due Timesheet(s) – Action Required"
)

const workerTemplate = `Hello,

I am reaching out from {{ organization }} payroll department to inform you that your account has some timesheet/s that are PAST DUE. If you worked on the day/s listed below, please log into Frontline and submit the timesheet as SOON as possible:

{{ days_block }}

If you did not work on the specified dates, please respond to this message so that I can update your account accordingly.

This short video walks through some of the basics of the Frontline Absence Management System and can help with submitting your timesheet.
Link to Frontline Reference Video: {{ reference_url }}

NOTE: If your timesheet/s are overdue by more than three weeks, it may result in the deactivation of your account.

If you did not work on this day, please notify me so that I can have it removed from your profile.

Thank you for your prompt attention to this matter.`

const approverTemplate = `Hello,

I am reaching out from {{ organization }} payroll department to verify timesheets for {{ substitute }}. Please confirm whether this substitute worked at your site on each day listed below by answering Yes or No on every line:

{{ lines_block }}

If any of these assignments did not take place, please let me know so that I can update the account accordingly.

Thank you for your help.`

type Options struct {
	Organization string
	ReferenceURL string
}

type Renderer struct {
	opts     Options
	worker   *liquid.Template
	approver *liquid.Template
}

func New(opts Options) (*Renderer, error) {
	opts.Organization = util.FirstNonEmpty(opts.Organization, DefaultOrganization)
	opts.ReferenceURL = util.FirstNonEmpty(opts.ReferenceURL, DefaultReferenceURL)

	engine := liquid.NewEngine()
	worker, err := engine.ParseString(workerTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse worker template: %w", err)
	}
	approver, err := engine.ParseString(approverTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse approver template: %w", err)
	}
	return &Renderer{opts: opts, worker: worker, approver: approver}, nil
}

// Default returns a renderer with the built-in organization and link.
func Default() *Renderer {
	r, err := New(Options{})
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) WorkerNotice(group *internal.RecipientGroup) (string, error) {
	out, err := r.worker.RenderString(liquid.Bindings{
		"organization":  r.opts.Organization,
		"reference_url": r.opts.ReferenceURL,
		"days_block":    strings.Join(DateLines(group.Dates), "\n"),
	})
	if err != nil {
		return "", fmt.Errorf("render worker notice: %w", err)
	}
	return out, nil
}

func (r *Renderer) ApproverNotice(substitute string, dates []internal.DateEntry) (string, error) {
	out, err := r.approver.RenderString(liquid.Bindings{
		"organization": r.opts.Organization,
		"substitute":   substitute,
		"lines_block":  strings.Join(ApproverLines(substitute, dates), "\n"),
	})
	if err != nil {
		return "", fmt.Errorf("render approver notice: %w", err)
	}
	return out, nil
}

func ApproverSubject(substitute string) string {
	return "Timesheet Verification Request – " + substitute
}

// DateLines renders one line per date entry.
func DateLines(dates []internal.DateEntry) []string {
	lines := make([]string, 0, len(dates))
	for _, e := range dates {
		lines = append(lines, DateLine(e))
	}
	return lines
}

func DateLine(e internal.DateEntry) string {
	return fmt.Sprintf("- %s at %s (Confirmation: %s)",
		e.Date, strings.Join(e.SortedSchools(), ", "), strings.Join(e.SortedConfirmations(), ", "))
}

// ApproverLines renders one line per (date, confirmation) pair.
func ApproverLines(substitute string, dates []internal.DateEntry) []string {
	var lines []string
	for _, e := range dates {
		for _, conf := range e.SortedConfirmations() {
			lines = append(lines, fmt.Sprintf("- %s | %s | Confirmation: %s | Worked (Yes/No): ____", e.Date, substitute, conf))
		}
	}
	return lines
}
