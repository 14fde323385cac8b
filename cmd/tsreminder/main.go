package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tsreminder/internal/config"
	"tsreminder/internal/logger"
	"tsreminder/internal/pipeline"
	"tsreminder/internal/storage"
)

type app struct {
	cfg config.Config
	log logger.Logger
	db  *storage.DB
}

// store opens the run ledger on first use. Read-only commands never touch it.
func (a *app) store() (*storage.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := storage.Open(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open run ledger: %w", err)
	}
	a.db = db
	return db, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func main() {
	cfg, err := config.Load()
	must(err)

	a := &app{
		cfg: cfg,
		log: logger.New(logger.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON}),
	}
	defer a.close()

	if err := newRootCmd(a).Execute(); err != nil {
		a.close()
		must(err)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tsreminder",
		Short:         "Group overdue timesheets and draft reminder notices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&a.cfg.RequireApprover, "require-approver", a.cfg.RequireApprover, "fail when the Primary Approver Email column is missing")
	root.PersistentFlags().Float64Var(&a.cfg.OverdueThresholdDays, "threshold", a.cfg.OverdueThresholdDays, "days old above which a recipient is escalated")

	root.AddCommand(
		newSummaryCmd(a),
		newShowCmd(a),
		newApproversCmd(a),
		newExportCmd(a),
		newRunsCmd(a),
		newWatchCmd(a),
	)
	return root
}

func must(err error) {
	if err == nil {
		return
	}
	var perr *pipeline.ProcessingError
	if errors.As(err, &perr) {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error processing file: "+fmt.Sprint(perr.Value)))
		fmt.Fprintln(os.Stderr, detailStyle.Render(string(perr.Stack)))
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
	os.Exit(1)
}
