package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"lead_portal_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// rescoreUniqueTTL collapses duplicate rescore requests while one is pending.
const rescoreUniqueTTL = 10 * time.Minute

type Client struct {
	client   *asynq.Client
	queue    string
	pageSize int
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client:   asynq.NewClient(opt),
		queue:    queueName(cfg),
		pageSize: cfg.GetRescorePageSize(),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueRescoreAll queues a full rescore and returns the task id and queue.
func (c *Client) EnqueueRescoreAll(ctx context.Context) (string, string, error) {
	if c == nil || c.client == nil {
		return "", "", fmt.Errorf("scheduler client not configured")
	}

	task, err := NewRescoreAllTask(RescoreAllPayload{PageSize: c.pageSize})
	if err != nil {
		return "", "", err
	}

	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.Unique(rescoreUniqueTTL))
	if err != nil {
		return "", "", err
	}
	return info.ID, info.Queue, nil
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueue(); queue != "" {
		return queue
	}
	return "default"
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
