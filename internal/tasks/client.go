package tasks

import (
	"fmt"

	"brandops/internal/utils/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// TaskClient handles task enqueuing with improved error handling and context support
type TaskClient struct {
	client       *asynq.Client
	logger       *logger.Logger
	redisOptions *redis.Options
	redisClient  *redis.Client
}

func (c *TaskClient) GetClient() *asynq.Client {
	return c.client
}

// GetRedis exposes the shared redis connection for the rate limiter.
func (c *TaskClient) GetRedis() *redis.Client {
	return c.redisClient
}

// NewTaskClient creates a new TaskClient with the given Redis configuration
func NewTaskClient(redisAddr, username, password string, db int) *TaskClient {
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Username: username,
		Password: password,
		DB:       db,
	}

	redisClient := redis.NewClient(
		&redis.Options{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
	)

	return &TaskClient{
		client: asynq.NewClient(redisOpt),
		redisOptions: &redis.Options{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
		redisClient: redisClient,
		logger:      logger.New("TASKS"),
	}
}

// EnqueueSessionSweep queues an immediate pass over expired sessions.
func (c *TaskClient) EnqueueSessionSweep() error {
	task := asynq.NewTask(TaskTypeSessionSweep, nil,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(RetryMin),
		asynq.Timeout(TimeoutShort),
	)
	if _, err := c.client.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue session sweep: %w", err)
	}
	return nil
}

// EnqueueAuditArchive queues an immediate audit archival batch.
func (c *TaskClient) EnqueueAuditArchive() error {
	task := asynq.NewTask(TaskTypeAuditArchive, nil,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(RetryDefault),
		asynq.Timeout(TimeoutLong),
	)
	if _, err := c.client.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue audit archive: %w", err)
	}
	return nil
}

// Close closes the underlying asynq client
func (c *TaskClient) Close() error {
	return c.client.Close()
}
