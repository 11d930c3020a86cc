package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	defaultQueueKey = "flowgen:jobs"
	popTimeout      = 1 * time.Second
	pingTimeout     = 5 * time.Second
)

// RedisQueue is a Redis list-backed job queue. Producers push to the
// tail; consumers block-pop from the head.
type RedisQueue struct {
	client redis.UniversalClient
	key    string
	logger *slog.Logger
}

// NewRedisQueue connects to Redis using a redis:// URL. An empty key
// selects the default queue.
func NewRedisQueue(ctx context.Context, redisURL, key string, logger *slog.Logger) (*RedisQueue, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if key == "" {
		key = defaultQueueKey
	}

	return &RedisQueue{
		client: client,
		key:    key,
		logger: logger.With("module", "redis_queue", "queue", key),
	}, nil
}

// Enqueue appends the job id to the queue tail.
func (q *RedisQueue) Enqueue(ctx context.Context, jobID string) error {
	err := q.client.RPush(ctx, q.key, jobID).Err()
	if err != nil {
		return fmt.Errorf("failed to push job %s: %w", jobID, err)
	}

	q.logger.DebugContext(ctx, "Enqueued job", "job_id", jobID)

	return nil
}

// Dequeue pops the next job id, blocking up to the poll window. An empty
// id with a nil error means the window elapsed without work.
func (q *RedisQueue) Dequeue(ctx context.Context) (string, error) {
	result, err := q.client.BLPop(ctx, popTimeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}

		return "", fmt.Errorf("failed to pop job: %w", err)
	}

	if len(result) < 2 {
		return "", nil
	}

	return result[1], nil
}

func (q *RedisQueue) HealthCheck(ctx context.Context) error {
	err := q.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}

	return nil
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
