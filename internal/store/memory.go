package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prismforge/prism-api/internal/domain"
)

// MemoryTaskStore is an in-process TaskStore. It backs the durable store
// when Redis is unreachable and the fast path in tests. Records live for
// the same retention window as the durable store but do not survive a
// process restart, and are invisible to other processes.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

type memoryEntry struct {
	task      domain.Task
	expiresAt time.Time
}

// NewMemoryTaskStore creates an empty in-memory task store with the given
// retention window.
func NewMemoryTaskStore(ttl time.Duration) *MemoryTaskStore {
	if ttl <= 0 {
		ttl = DefaultTaskTTL
	}
	return &MemoryTaskStore{
		tasks: make(map[uuid.UUID]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// WriteTask stores a copy of the task record, refreshing its expiry.
func (s *MemoryTaskStore) WriteTask(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = memoryEntry{
		task:      *task,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// GetTask retrieves a task record by identifier, treating expired entries
// as absent. Expired entries are reaped lazily on read.
func (s *MemoryTaskStore) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.RLock()
	entry, ok := s.tasks[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrTaskNotFound
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent write may have
		// refreshed the entry.
		if current, still := s.tasks[id]; still && s.now().After(current.expiresAt) {
			delete(s.tasks, id)
		}
		s.mu.Unlock()
		return nil, ErrTaskNotFound
	}

	task := entry.task
	return &task, nil
}
