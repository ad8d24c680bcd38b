package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismforge/prism-api/internal/domain"
)

func TestMemoryTaskStoreWriteAndGet(t *testing.T) {
	t.Parallel()

	s := NewMemoryTaskStore(time.Hour)
	ctx := context.Background()

	task, err := domain.NewTask("user_123", "dalle-3", "hello", nil)
	require.NoError(t, err)
	require.NoError(t, s.WriteTask(ctx, task))

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, domain.TaskStatusProcessing, got.Status)
}

func TestMemoryTaskStoreGetUnknown(t *testing.T) {
	t.Parallel()

	s := NewMemoryTaskStore(time.Hour)

	_, err := s.GetTask(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMemoryTaskStoreReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewMemoryTaskStore(time.Hour)
	ctx := context.Background()

	task, err := domain.NewTask("user_123", "dalle-3", "hello", nil)
	require.NoError(t, err)
	require.NoError(t, s.WriteTask(ctx, task))

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)

	// Mutating the returned record must not affect the stored one.
	got.Status = domain.TaskStatusFailed
	got.Error = "mutated"

	fresh, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusProcessing, fresh.Status)
	assert.Empty(t, fresh.Error)
}

func TestMemoryTaskStoreExpiry(t *testing.T) {
	t.Parallel()

	s := NewMemoryTaskStore(time.Minute)
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	task, err := domain.NewTask("user_123", "dalle-3", "hello", nil)
	require.NoError(t, err)
	require.NoError(t, s.WriteTask(ctx, task))

	_, err = s.GetTask(ctx, task.ID)
	require.NoError(t, err)

	// Advance past the retention window.
	now = now.Add(2 * time.Minute)

	_, err = s.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestMemoryTaskStoreRejectsInvalidTask(t *testing.T) {
	t.Parallel()

	s := NewMemoryTaskStore(time.Hour)

	err := s.WriteTask(context.Background(), &domain.Task{})
	assert.ErrorIs(t, err, ErrInvalidEntity)
}
