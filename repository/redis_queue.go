package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"debt-coach/domain"
)

const nudgeQueueKey = "nudge:jobs"

// RedisQueue is a Redis-list-backed JobQueue for multi-process
// deployments: the API pushes, worker processes pop.
type RedisQueue struct {
	client *redis.Client
}

func NewRedisQueue(addr string) *RedisQueue {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisQueue{client: rdb}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job domain.NudgeJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding job: %w", err)
	}
	return q.client.LPush(ctx, nudgeQueueKey, raw).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context) (domain.NudgeJob, error) {
	for {
		res, err := q.client.BRPop(ctx, 5*time.Second, nudgeQueueKey).Result()
		if err == redis.Nil {
			// Poll timeout with an empty queue; try again unless canceled.
			if ctx.Err() != nil {
				return domain.NudgeJob{}, ctx.Err()
			}
			continue
		}
		if err != nil {
			return domain.NudgeJob{}, err
		}
		var job domain.NudgeJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return domain.NudgeJob{}, fmt.Errorf("decoding job: %w", err)
		}
		return job, nil
	}
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
