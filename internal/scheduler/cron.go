package scheduler

import (
	"context"
	"fmt"
	"time"

	"lead_portal_backend/platform/config"
	"lead_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Cron periodically enqueues a full rescore on the configured schedule.
type Cron struct {
	scheduler *asynq.Scheduler
	spec      string
	entryID   string
	log       *logger.Logger
}

// NewCron returns nil when no schedule is configured.
func NewCron(cfg config.SchedulerConfig, log *logger.Logger) (*Cron, error) {
	spec := cfg.GetRescoreCron()
	if spec == "" {
		return nil, nil
	}

	opt, err := redisClientOpt(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	task, err := NewRescoreAllTask(RescoreAllPayload{PageSize: cfg.GetRescorePageSize()})
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   newAsynqLogger(log),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Error("scheduled rescore enqueue failed", "error", err)
				return
			}
			log.Info("scheduled rescore enqueued", "task_id", info.ID, "queue", info.Queue)
		},
	})

	entryID, err := scheduler.Register(spec, task, asynq.Queue(queueName(cfg)), asynq.Unique(rescoreUniqueTTL))
	if err != nil {
		return nil, fmt.Errorf("register rescore cron %q: %w", spec, err)
	}

	return &Cron{scheduler: scheduler, spec: spec, entryID: entryID, log: log}, nil
}

// Start runs the cron loop until ctx is cancelled.
func (c *Cron) Start(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.scheduler.Start(); err != nil {
		return err
	}
	c.log.Info("rescore cron started", "spec", c.spec, "entry_id", c.entryID)

	go func() {
		<-ctx.Done()
		c.scheduler.Shutdown()
	}()
	return nil
}
