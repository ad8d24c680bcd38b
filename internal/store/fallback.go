package store

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/prismforge/prism-api/internal/domain"
)

// FallbackTaskStore decorates a durable TaskStore with an in-process
// fallback. Writes try the durable store first and degrade silently to
// the fallback when it is unreachable; the write is logged, not lost,
// and callers stay oblivious to which backend holds the record. Reads
// consult the durable store and then the fallback, so a record written
// during an outage remains visible to this process.
//
// Known limitation: the fallback is per-process. A record that degraded
// to memory is invisible to other processes, and the completing
// execution's read-modify-write assumes it runs in the same process that
// accepted the submission.
type FallbackTaskStore struct {
	durable  TaskStore
	fallback TaskStore
	logger   *slog.Logger
}

// NewFallbackTaskStore wraps durable with fallback. The logger records
// degradations; it must not be nil.
func NewFallbackTaskStore(durable, fallback TaskStore, logger *slog.Logger) *FallbackTaskStore {
	return &FallbackTaskStore{
		durable:  durable,
		fallback: fallback,
		logger:   logger,
	}
}

// WriteTask writes to the durable store, falling back to the in-process
// store on failure.
func (s *FallbackTaskStore) WriteTask(ctx context.Context, task *domain.Task) error {
	err := s.durable.WriteTask(ctx, task)
	if err == nil {
		return nil
	}

	s.logger.Warn("durable task store write failed, degrading to in-memory fallback",
		"task_id", task.ID,
		"error", err)
	return s.fallback.WriteTask(ctx, task)
}

// GetTask reads from the durable store first and falls through to the
// fallback on any miss or failure.
func (s *FallbackTaskStore) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.durable.GetTask(ctx, id)
	if err == nil {
		return task, nil
	}
	if !IsNotFoundError(err) {
		s.logger.Warn("durable task store read failed, consulting in-memory fallback",
			"task_id", id,
			"error", err)
	}
	return s.fallback.GetTask(ctx, id)
}
