package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismforge/prism-api/internal/domain"
)

// faultyStore fails every operation, standing in for an unreachable Redis.
type faultyStore struct{}

func (f *faultyStore) WriteTask(ctx context.Context, task *domain.Task) error {
	return errors.New("connection refused")
}

func (f *faultyStore) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return nil, errors.New("connection refused")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFallbackTaskStorePrefersDurable(t *testing.T) {
	t.Parallel()

	durable := NewMemoryTaskStore(time.Hour)
	fallback := NewMemoryTaskStore(time.Hour)
	s := NewFallbackTaskStore(durable, fallback, discardLogger())
	ctx := context.Background()

	task, err := domain.NewTask("user_123", "dalle-3", "hello", nil)
	require.NoError(t, err)
	require.NoError(t, s.WriteTask(ctx, task))

	// The record landed in the durable store, not the fallback.
	_, err = durable.GetTask(ctx, task.ID)
	require.NoError(t, err)
	_, err = fallback.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
}

func TestFallbackTaskStoreDegradesOnWriteFailure(t *testing.T) {
	t.Parallel()

	fallback := NewMemoryTaskStore(time.Hour)
	s := NewFallbackTaskStore(&faultyStore{}, fallback, discardLogger())
	ctx := context.Background()

	task, err := domain.NewTask("user_123", "dalle-3", "hello", nil)
	require.NoError(t, err)

	// Write degrades silently: no error surfaces to the caller.
	require.NoError(t, s.WriteTask(ctx, task))

	// And the read falls through to the fallback copy.
	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
}

func TestFallbackTaskStoreNotFoundInEither(t *testing.T) {
	t.Parallel()

	s := NewFallbackTaskStore(
		NewMemoryTaskStore(time.Hour),
		NewMemoryTaskStore(time.Hour),
		discardLogger(),
	)

	_, err := s.GetTask(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
