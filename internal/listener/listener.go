package listener

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tsreminder/internal"
	"tsreminder/internal/config"
	"tsreminder/internal/drafts"
	"tsreminder/internal/extract"
	"tsreminder/internal/inbox"
	"tsreminder/internal/logger"
	"tsreminder/internal/pipeline"
	"tsreminder/internal/render"
	"tsreminder/internal/storage"
)

type Service struct {
	db        *storage.DB
	cfg       config.Config
	log       logger.Logger
	collector *inbox.Collector
	drafts    *drafts.Store
	renderer  *render.Renderer
}

type CycleResult struct {
	Listed    int
	Processed int
	Failed    int
}

// Outcome is what one report run produced.
type Outcome struct {
	TraceID    string
	Result     *pipeline.Result
	ExportPath string
	Drafts     int
	Skipped    int
}

func NewService(db *storage.DB, cfg config.Config, log logger.Logger) (*Service, error) {
	renderer, err := render.New(render.Options{Organization: cfg.Organization, ReferenceURL: cfg.ReferenceURL})
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		db:        db,
		cfg:       cfg,
		log:       log,
		collector: inbox.NewCollector(db, inbox.DirSource{Dir: cfg.InboxDir}),
		drafts:    drafts.NewStore(db, cfg.DraftsDir, cfg.SenderName, cfg.SenderEmail),
		renderer:  renderer,
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	if err := s.cfg.Require("INBOX_DIR", s.cfg.InboxDir); err != nil {
		return err
	}
	interval := time.Duration(s.cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	s.log.Info("watching inbox", "dir", s.cfg.InboxDir, "interval", interval)

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Error("watch cycle failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// RunOnce processes every new report in the inbox, one after another. A
// failing report is recorded and skipped; it does not stop the cycle.
func (s *Service) RunOnce(ctx context.Context) (CycleResult, error) {
	collected, err := s.collector.Collect()
	if err != nil {
		return CycleResult{}, err
	}

	result := CycleResult{Listed: collected.Listed}
	for _, report := range collected.Pending {
		if err := ctx.Err(); err != nil {
			return result, nil
		}

		log := s.log.With("report", report.Name)
		outputPath := filepath.Join(s.cfg.OutputDir, "watch", exportName(report))
		outcome, err := s.ProcessReport(report, outputPath, s.cfg.WatchWriteDrafts)

		status := inbox.StatusProcessed
		errText := ""
		if err != nil {
			status = inbox.StatusFailed
			errText = err.Error()
			result.Failed++
			log.Error("report failed", "err", err)
		} else {
			result.Processed++
			log.Info("report processed",
				"trace", outcome.TraceID,
				"recipients", len(outcome.Result.Emails),
				"dropped", outcome.Result.Stats.Dropped(),
				"drafts", outcome.Drafts,
				"export", outcome.ExportPath)
		}

		if err := s.db.UpsertReport(internal.ReportRow{Hash: report.Hash, Path: report.Path, Status: status, Error: errText}); err != nil {
			return result, err
		}
	}

	if result.Processed+result.Failed > 0 {
		s.log.Info("watch cycle done", "listed", result.Listed, "processed", result.Processed, "failed", result.Failed)
	}
	return result, nil
}

// ProcessReport runs the whole pipeline over one report, writes the summary
// workbook to outputPath and, when writeDrafts is set, an .eml draft for
// every sendable notice. Every call is recorded as a run in the ledger.
func (s *Service) ProcessReport(report inbox.Report, outputPath string, writeDrafts bool) (Outcome, error) {
	outcome := Outcome{TraceID: uuid.NewString()}
	timings := map[string]float64{}
	start := time.Now()

	err := func() error {
		t := time.Now()
		ds, err := extract.Read(report.Name, report.Data)
		timings["extractMs"] = msSince(t)
		if err != nil {
			return err
		}

		t = time.Now()
		res, err := pipeline.Process(ds, pipeline.Options{
			RequireApprover:  s.cfg.RequireApprover,
			OverdueThreshold: &s.cfg.OverdueThresholdDays,
			Renderer:         s.renderer,
		})
		timings["processMs"] = msSince(t)
		if err != nil {
			return err
		}
		outcome.Result = res

		if res.Stats.Dropped() > 0 {
			s.log.Warn("rows dropped",
				"report", report.Name,
				"missingRequired", res.Stats.MissingRequired,
				"badDate", res.Stats.BadDate)
		}

		t = time.Now()
		if err := pipeline.ExportSummaryXLSX(res, outputPath); err != nil {
			return fmt.Errorf("export summary: %w", err)
		}
		timings["exportMs"] = msSince(t)
		outcome.ExportPath = outputPath

		if writeDrafts {
			if err := s.cfg.Require("SENDER_EMAIL", s.cfg.SenderEmail); err != nil {
				return err
			}
			t = time.Now()
			written, skipped, err := s.writeDrafts(outcome.TraceID, res)
			timings["draftsMs"] = msSince(t)
			outcome.Drafts, outcome.Skipped = written, skipped
			if err != nil {
				return err
			}
		}
		return nil
	}()
	timings["totalMs"] = msSince(start)

	run := internal.RunRow{
		TraceID:    outcome.TraceID,
		Source:     report.Path,
		SourceHash: report.Hash,
		Status:     "ok",
		Counts:     map[string]int{"drafts": outcome.Drafts, "draftsSkipped": outcome.Skipped},
		Timings:    timings,
	}
	if res := outcome.Result; res != nil {
		run.Counts["input"] = res.Stats.Input
		run.Counts["missingRequired"] = res.Stats.MissingRequired
		run.Counts["badDate"] = res.Stats.BadDate
		run.Counts["duplicates"] = res.Duplicates
		run.Counts["recipients"] = len(res.Emails)
	}
	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
	}
	if dbErr := s.db.InsertRun(run); dbErr != nil {
		return outcome, errors.Join(err, dbErr)
	}
	return outcome, err
}

// writeDrafts writes one worker draft per recipient and one approver draft
// per mapped school. Recipients without a usable address are counted as
// skipped.
func (s *Service) writeDrafts(traceID string, res *pipeline.Result) (written, skipped int, err error) {
	for _, email := range res.Emails {
		detail, err := res.Detail(email)
		if err != nil {
			return written, skipped, err
		}
		if !detail.CanSend {
			skipped++
		} else {
			if _, err := s.drafts.WriteDraft(traceID, drafts.WorkerDraft(detail)); err != nil {
				return written, skipped, err
			}
			written++
		}

		schools, err := res.SchoolDetails(email)
		if err != nil {
			return written, skipped, err
		}
		for _, sd := range schools {
			if !sd.CanSend {
				skipped++
				continue
			}
			if _, err := s.drafts.WriteDraft(traceID, drafts.ApproverDraft(sd)); err != nil {
				return written, skipped, err
			}
			written++
		}
	}
	return written, skipped, nil
}

func exportName(r inbox.Report) string {
	stem := strings.TrimSuffix(r.Name, filepath.Ext(r.Name))
	return fmt.Sprintf("%s_%s.xlsx", sanitizeName(stem), r.Hash[:12])
}

func sanitizeName(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
