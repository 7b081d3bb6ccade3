package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lead_portal_backend/internal/adapters/storage"
	"lead_portal_backend/internal/email"
	"lead_portal_backend/internal/events"
	"lead_portal_backend/internal/leads"
	"lead_portal_backend/internal/notification"
	"lead_portal_backend/internal/scheduler"
	"lead_portal_backend/platform/config"
	"lead_portal_backend/platform/db"
	"lead_portal_backend/platform/logger"
	"lead_portal_backend/platform/phone"
	"lead_portal_backend/platform/retry"
	"lead_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueue(), "cron", cfg.GetRescoreCron())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := retry.Do(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}
	notification.New(sender, cfg, log).RegisterHandlers(eventBus)

	engine, err := leads.NewEngine(cfg)
	if err != nil {
		log.Error("failed to load scoring weights", "error", err)
		panic("failed to load scoring weights: " + err.Error())
	}

	// Worker-side scoring wiring (no HTTP handlers required).
	leadsModule, err := leads.NewModule(pool, eventBus, engine, phone.NewNormalizer(cfg.GetDefaultPhoneRegion()), validator.New(), log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	worker, err := scheduler.NewWorker(cfg, leadsModule.QualificationService(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}
	if reports := initReportStore(ctx, cfg, log); reports != nil {
		worker.SetReportSaver(reports)
	}

	cron, err := scheduler.NewCron(cfg, log)
	if err != nil {
		log.Error("failed to initialize rescore cron", "error", err)
		panic("failed to initialize rescore cron: " + err.Error())
	}
	if err := cron.Start(ctx); err != nil {
		log.Error("failed to start rescore cron", "error", err)
		panic("failed to start rescore cron: " + err.Error())
	}

	worker.Run(ctx)

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := eventBus.Wait(waitCtx); err != nil {
		log.Warn("event handlers still running at shutdown", "error", err)
	}
	log.Info("scheduler stopped")
}

// initReportStore returns nil when MinIO is not configured or unreachable;
// rescoring still runs without reports.
func initReportStore(ctx context.Context, cfg *config.Config, log *logger.Logger) *storage.ReportStore {
	if !cfg.IsMinIOEnabled() {
		log.Info("MINIO_ENDPOINT not configured; rescore reports disabled")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		return nil
	}

	reports := storage.NewReportStore(storageSvc, cfg.GetMinioBucketScoringReports())
	if err := retry.Do(ctx, log, "ensure scoring reports bucket", 5, 2*time.Second, func() error {
		return reports.Ensure(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketScoringReports())
		return nil
	}
	return reports
}
