package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lead_portal_backend/internal/email"
	"lead_portal_backend/internal/events"
	apphttp "lead_portal_backend/internal/http"
	"lead_portal_backend/internal/http/router"
	"lead_portal_backend/internal/leads"
	"lead_portal_backend/internal/notification"
	"lead_portal_backend/internal/notification/sse"
	"lead_portal_backend/internal/scheduler"
	"lead_portal_backend/migrations"
	"lead_portal_backend/platform/config"
	"lead_portal_backend/platform/db"
	"lead_portal_backend/platform/logger"
	"lead_portal_backend/platform/phone"
	"lead_portal_backend/platform/retry"
	"lead_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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
	log.Info("database connection established")

	applied, err := db.RunMigrations(ctx, pool, migrations.FS)
	if err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete", "applied", len(applied))

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	phones := phone.NewNormalizer(cfg.GetDefaultPhoneRegion())

	engine, err := leads.NewEngine(cfg)
	if err != nil {
		log.Error("failed to load scoring weights", "error", err)
		panic("failed to load scoring weights: " + err.Error())
	}
	log.Info("scoring engine ready",
		"weights_file", cfg.GetScoringWeightsFile(),
		"target_regions", engine.Weights().TargetRegions(),
		"batch_workers", cfg.GetScoringBatchWorkers(),
	)

	// ========================================================================
	// Domain Modules
	// ========================================================================

	leadsModule, err := leads.NewModule(pool, eventBus, engine, phones, val, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	if closeScheduler := initRescoreClient(cfg, leadsModule, log); closeScheduler != nil {
		defer closeScheduler()
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	stream := sse.New(log)
	defer stream.Close()

	notificationModule := notification.New(sender, cfg, log)
	notificationModule.SetSSE(stream)
	notificationModule.RegisterHandlers(eventBus)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewHealthChecker(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			notificationModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// SSE streams never finish on their own; close them before draining.
	stream.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	if err := eventBus.Wait(shutdownCtx); err != nil {
		log.Warn("event handlers still running at shutdown", "error", err)
	}
	log.Info("server stopped")
}

// initRescoreClient wires background rescoring when Redis is configured and
// returns a cleanup func, or nil when rescoring stays disabled.
func initRescoreClient(cfg config.SchedulerConfig, leadsModule *leads.Module, log *logger.Logger) func() {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; background rescoring disabled")
		return nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil
	}
	leadsModule.SetRescoreEnqueuer(client)

	return func() {
		_ = client.Close()
	}
}
