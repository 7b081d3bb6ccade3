package scheduler

import (
	"context"
	"fmt"
	"time"

	"lead_portal_backend/internal/leads/qualification"
	"lead_portal_backend/platform/config"
	"lead_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Rescorer runs a full rescore pass.
type Rescorer interface {
	RescoreAll(ctx context.Context, pageSize int) (qualification.RescoreReport, error)
}

// ReportSaver stores a finished rescore report and returns its key.
type ReportSaver interface {
	Save(ctx context.Context, startedAt time.Time, report any) (string, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	rescorer Rescorer
	reports  ReportSaver
	pageSize int
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, rescorer Rescorer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
		Logger: newAsynqLogger(log),
	})

	w := &Worker{
		server:   server,
		mux:      asynq.NewServeMux(),
		rescorer: rescorer,
		pageSize: cfg.GetRescorePageSize(),
		log:      log,
	}
	w.mux.HandleFunc(TaskRescoreAll, w.handleRescoreAll)

	return w, nil
}

// SetReportSaver enables report uploads after each rescore run.
func (w *Worker) SetReportSaver(reports ReportSaver) {
	w.reports = reports
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleRescoreAll(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRescoreAllPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	pageSize := payload.PageSize
	if pageSize <= 0 {
		pageSize = w.pageSize
	}

	report, err := w.rescorer.RescoreAll(ctx, pageSize)
	if err != nil {
		w.log.Error("rescore run aborted",
			"pages", report.Pages,
			"scored", report.Scored,
			"error", err,
		)
		return err
	}

	w.log.Info("rescore run finished",
		"pages", report.Pages,
		"scanned", report.Scanned,
		"scored", report.Scored,
		"incomplete", report.Incomplete,
		"failed", report.Failed,
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	)

	if w.reports == nil {
		return nil
	}
	key, err := w.reports.Save(ctx, report.StartedAt, report)
	if err != nil {
		// The scores are already persisted; a missing report is not worth a retry.
		w.log.Warn("failed to store rescore report", "error", err)
		return nil
	}
	w.log.Info("rescore report stored", "key", key)
	return nil
}
