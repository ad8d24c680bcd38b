package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/prismforge/prism-api/internal/domain"
)

const (
	// taskKeyPrefix namespaces task records in the shared Redis keyspace.
	taskKeyPrefix = "prism:task:"

	// DefaultTaskTTL is the retention window for task records. Tasks are
	// polled for at most a few minutes after submission; an hour leaves
	// generous slack without accumulating dead records.
	DefaultTaskTTL = time.Hour

	connectTimeout = 2 * time.Second
)

// RedisTaskStore persists task records as JSON documents in Redis with a
// fixed retention TTL.
type RedisTaskStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTaskStore connects to Redis at the given URL and returns a
// task store over it. The connection is verified with a short ping so an
// unreachable store is reported at startup rather than on first write.
func NewRedisTaskStore(url string, ttl time.Duration) (*RedisTaskStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return NewRedisTaskStoreWithClient(client, ttl), nil
}

// NewRedisTaskStoreWithClient wraps an existing Redis client. Used by
// tests to point the store at an in-process Redis.
func NewRedisTaskStoreWithClient(client *redis.Client, ttl time.Duration) *RedisTaskStore {
	if ttl <= 0 {
		ttl = DefaultTaskTTL
	}
	return &RedisTaskStore{client: client, ttl: ttl}
}

// Close closes the underlying Redis client.
func (s *RedisTaskStore) Close() error {
	return s.client.Close()
}

// WriteTask persists the full task record under its namespaced key,
// resetting the retention window.
func (s *RedisTaskStore) WriteTask(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	if err := s.client.Set(ctx, taskKey(task.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// GetTask retrieves a task record by identifier. An expired record is
// indistinguishable from one that never existed.
func (s *RedisTaskStore) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	data, err := s.client.Get(ctx, taskKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("unmarshal task: %w", err)
	}
	return &task, nil
}

func taskKey(id uuid.UUID) string {
	return taskKeyPrefix + id.String()
}
