package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/prismforge/prism-api/internal/domain"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in
	// the store, including entities that have expired out of it.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("store unavailable")

	// ErrTaskNotFound indicates that the requested task does not exist in
	// the store or has expired from it.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)
)

// TaskStore defines the interface for persisting task records. Records
// are written whole under the task identifier and expire after the
// store's retention window; there is no explicit deletion operation.
//
// Writes are keyed by task identifier and each task has exactly one
// writer (its own background execution), so implementations need no
// cross-key coordination.
type TaskStore interface {
	// WriteTask persists the full task record, refreshing its retention
	// window.
	WriteTask(ctx context.Context, task *domain.Task) error

	// GetTask retrieves a task record by its identifier. Returns
	// ErrTaskNotFound if the identifier is unknown or the record has
	// expired.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
