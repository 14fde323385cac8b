package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"tsreminder/internal/drafts"
	"tsreminder/internal/extract"
	"tsreminder/internal/inbox"
	"tsreminder/internal/listener"
	"tsreminder/internal/pipeline"
	"tsreminder/internal/render"
)

func (a *app) load(input string) (*pipeline.Result, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errors.New("--input is required")
	}
	ds, err := extract.ReadFile(input)
	if err != nil {
		return nil, err
	}
	renderer, err := render.New(render.Options{Organization: a.cfg.Organization, ReferenceURL: a.cfg.ReferenceURL})
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Process(ds, pipeline.Options{
		RequireApprover:  a.cfg.RequireApprover,
		OverdueThreshold: &a.cfg.OverdueThresholdDays,
		Renderer:         renderer,
	})
	if err != nil {
		return nil, err
	}
	a.log.Debug("report processed", "source", res.Source, "recipients", len(res.Emails), "duplicates", res.Duplicates)
	return res, nil
}

func (a *app) writeDraft(dir string, d drafts.Draft) error {
	db, err := a.store()
	if err != nil {
		return err
	}
	store := drafts.NewStore(db, dir, a.cfg.SenderName, a.cfg.SenderEmail)
	path, err := store.WriteDraft("manual", d)
	if err != nil {
		return err
	}
	fmt.Printf("draft written: %s\n", path)
	return nil
}

func newSummaryCmd(a *app) *cobra.Command {
	var input, search string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "List every recipient with pending timesheets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.load(input)
			if err != nil {
				return err
			}
			printLoaded(os.Stderr, res)
			rows := res.Filter(search)
			if len(rows) == 0 {
				fmt.Fprintln(os.Stderr, warnStyle.Render("No matches found"))
				return nil
			}
			printSummary(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "attendance extract (xlsx, xls, csv or html)")
	cmd.Flags().StringVar(&search, "search", "", "substring of substitute name or email")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var input, email, emlDir string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the worker notice for one recipient",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.load(input)
			if err != nil {
				return err
			}
			detail, err := res.Detail(email)
			if err != nil {
				return err
			}
			printWorkerDetail(cmd.OutOrStdout(), detail, res.Threshold())
			if emlDir == "" || !detail.CanSend {
				return nil
			}
			return a.writeDraft(emlDir, drafts.WorkerDraft(detail))
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "attendance extract")
	cmd.Flags().StringVar(&email, "email", "", "recipient email")
	cmd.Flags().StringVar(&emlDir, "eml-dir", "", "also write the notice as an .eml draft into this directory")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newApproversCmd(a *app) *cobra.Command {
	var input, email, school, emlDir string
	cmd := &cobra.Command{
		Use:   "approvers",
		Short: "List a recipient's school approvers or show one approver notice",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.load(input)
			if err != nil {
				return err
			}
			if school == "" {
				details, err := res.SchoolDetails(email)
				if err != nil {
					return err
				}
				if len(details) == 0 {
					fmt.Fprintln(os.Stderr, warnStyle.Render("No approver emails found for this recipient"))
					return nil
				}
				printSchoolList(cmd.OutOrStdout(), details)
				return nil
			}

			detail, err := res.SchoolDetail(email, school)
			if err != nil {
				return err
			}
			printSchoolDetail(cmd.OutOrStdout(), detail)
			if emlDir == "" || !detail.CanSend {
				return nil
			}
			return a.writeDraft(emlDir, drafts.ApproverDraft(detail))
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "attendance extract")
	cmd.Flags().StringVar(&email, "email", "", "recipient email")
	cmd.Flags().StringVar(&school, "school", "", "school whose approver is notified")
	cmd.Flags().StringVar(&emlDir, "eml-dir", "", "also write the notice as an .eml draft into this directory")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var input, output string
	var withDrafts bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the summary workbook and optionally every draft",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("--input is required")
			}
			report, err := inbox.ReadReport(input)
			if err != nil {
				return err
			}
			if output == "" {
				stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
				output = filepath.Join(a.cfg.OutputDir, stem+"_summary.xlsx")
			}

			db, err := a.store()
			if err != nil {
				return err
			}
			svc, err := listener.NewService(db, a.cfg, a.log)
			if err != nil {
				return err
			}
			outcome, err := svc.ProcessReport(report, output, withDrafts)
			if err != nil {
				return err
			}
			printLoaded(os.Stderr, outcome.Result)
			fmt.Fprintf(cmd.OutOrStdout(), "export done trace=%s recipients=%d output=%s\n", outcome.TraceID, len(outcome.Result.Emails), outcome.ExportPath)
			if withDrafts {
				fmt.Fprintf(cmd.OutOrStdout(), "drafts written=%d skipped=%d dir=%s\n", outcome.Drafts, outcome.Skipped, a.cfg.DraftsDir)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "attendance extract")
	cmd.Flags().StringVar(&output, "output", "", "xlsx output path (default OUTPUT_DIR/<input>_summary.xlsx)")
	cmd.Flags().BoolVar(&withDrafts, "drafts", false, "write an .eml draft for every sendable notice into DRAFTS_DIR")
	return cmd
}

func newRunsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent runs from the ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.store()
			if err != nil {
				return err
			}
			runs, err := db.ListRuns(limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				line := fmt.Sprintf("%s %s %s recipients=%d dropped=%d", r.CreatedAt, r.TraceID, r.Status, r.Counts["recipients"], r.Counts["missingRequired"]+r.Counts["badDate"])
				if r.Error != "" {
					line += " error=" + r.Error
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s source=%s\n", line, r.Source)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Process new reports dropped into INBOX_DIR until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.store()
			if err != nil {
				return err
			}
			svc, err := listener.NewService(db, a.cfg, a.log)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return svc.Run(ctx)
		},
	}
}
