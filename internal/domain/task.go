package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a generation task
type TaskStatus string

// Possible task status values. A task starts in processing and moves
// exactly once to completed or failed; terminal states never revert.
const (
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID      = errors.New("task ID cannot be empty")
	ErrEmptyTaskUserID  = errors.New("task user ID cannot be empty")
	ErrEmptyTaskModel   = errors.New("task model cannot be empty")
	ErrInvalidTaskState = errors.New("invalid task status")
)

// Task represents one submitted generation request and its lifecycle
// record. It carries the submission inputs verbatim plus the output URL
// or error detail written back by the task's own background execution.
type Task struct {
	ID        uuid.UUID      `json:"id"`
	UserID    string         `json:"user_id"`
	Model     string         `json:"model"`
	Prompt    string         `json:"prompt"`
	Params    map[string]any `json:"params,omitempty"`
	Status    TaskStatus     `json:"status"`
	OutputURL string         `json:"output_url,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewTask creates a new Task for the given user, model and prompt.
// It generates a new UUID for the task ID and sets the status to
// processing; the ID is never caller-supplied. The prompt may be empty
// (image-to-image and edit operations carry their inputs in params).
// Returns an error if validation fails.
func NewTask(userID, model, prompt string, params map[string]any) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		UserID:    userID,
		Model:     model,
		Prompt:    prompt,
		Params:    params,
		Status:    TaskStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks that the task data is valid.
// Returns an error describing the first violation found.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.UserID == "" {
		return ErrEmptyTaskUserID
	}
	if t.Model == "" {
		return ErrEmptyTaskModel
	}
	switch t.Status {
	case TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		// valid
	default:
		return ErrInvalidTaskState
	}
	return nil
}

// Terminal reports whether the task has reached a terminal status.
func (t *Task) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// Complete marks the task as completed with the given result locator.
// It is a no-op error if the task is already terminal: status is
// monotonic and has exactly one writer.
func (t *Task) Complete(outputURL string) error {
	if t.Terminal() {
		return ErrInvalidTaskState
	}
	t.Status = TaskStatusCompleted
	t.OutputURL = outputURL
	t.Error = ""
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail marks the task as failed with a human-readable detail.
func (t *Task) Fail(detail string) error {
	if t.Terminal() {
		return ErrInvalidTaskState
	}
	t.Status = TaskStatusFailed
	t.Error = detail
	t.OutputURL = ""
	t.UpdatedAt = time.Now().UTC()
	return nil
}
