// Package dispatch contains the task dispatcher: the component that turns
// a validated generation request into a durable task record and a single
// unit of background work, and that answers status polls from the store.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/prismforge/prism-api/internal/catalog"
	"github.com/prismforge/prism-api/internal/domain"
	"github.com/prismforge/prism-api/internal/provider"
	"github.com/prismforge/prism-api/internal/redact"
	"github.com/prismforge/prism-api/internal/store"
)

// Validation errors surfaced synchronously to the submitter. No task is
// created when one of these is returned.
var (
	ErrUnknownModel  = errors.New("unknown model")
	ErrMissingUserID = errors.New("caller identity required")
)

// RouteResolver resolves a model identifier to an invocation route. It is
// satisfied by *provider.Router and substituted in tests.
type RouteResolver interface {
	Resolve(model string) (provider.Route, error)
}

// SubmitRequest carries one generation submission.
type SubmitRequest struct {
	Model  string
	Prompt string
	UserID string
	Params map[string]any
}

// Dispatcher creates task records and launches their execution without
// blocking the caller. Each submission gets exactly one goroutine; the
// dispatcher imposes no concurrency cap and no ordering between tasks.
type Dispatcher struct {
	catalog *catalog.Catalog
	router  RouteResolver
	store   store.TaskStore
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher wires the dispatcher's collaborators.
func NewDispatcher(
	cat *catalog.Catalog,
	router RouteResolver,
	taskStore store.TaskStore,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		catalog: cat,
		router:  router,
		store:   taskStore,
		logger:  logger,
	}
}

// Submit validates the request, durably writes an initial processing
// record, and schedules execution. It returns as soon as the record is
// written, never after execution completes. Validation failures are
// returned synchronously and leave the store untouched.
func (d *Dispatcher) Submit(ctx context.Context, req SubmitRequest) (*domain.Task, error) {
	if req.UserID == "" {
		return nil, ErrMissingUserID
	}
	if req.Model == "" || !d.catalog.Accepts(req.Model) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, req.Model)
	}

	task, err := domain.NewTask(req.UserID, req.Model, req.Prompt, req.Params)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if err := d.store.WriteTask(ctx, task); err != nil {
		return nil, fmt.Errorf("write initial task record: %w", err)
	}

	d.logger.Info("task submitted",
		"task_id", task.ID,
		"model", task.Model,
		"user_id", task.UserID)

	// One unit of concurrent work per task, detached from the request
	// lifecycle: the submission response must not wait for the provider.
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.execute(task)
	}()

	return task, nil
}

// GetStatus reads the task record from the store. It never blocks on the
// task's execution. Unknown and expired identifiers both read as
// store.ErrTaskNotFound.
func (d *Dispatcher) GetStatus(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return d.store.GetTask(ctx, id)
}

// Wait blocks until all in-flight executions finish. Used on shutdown and
// by tests; callers keep polling through GetStatus in normal operation.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// execute runs one task to its terminal state. Every failure mode
// (unresolvable route, invoker error, panic) ends in a failed record;
// nothing propagates to the submitter or crashes the dispatcher.
func (d *Dispatcher) execute(task *domain.Task) {
	// Detached from the request context: the caller's request ends at
	// submission, the work does not.
	ctx := context.Background()
	logger := d.logger.With("task_id", task.ID, "model", task.Model)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("task execution panicked", "panic", r)
			d.finish(ctx, logger, task, "", fmt.Errorf("internal execution fault: %v", r))
		}
	}()

	route, err := d.router.Resolve(task.Model)
	if err != nil {
		logger.Warn("no route for model", "error", err)
		d.finish(ctx, logger, task, "", err)
		return
	}

	logger.Info("invoking provider", "route_kind", route.Kind, "slug", route.Slug)

	outputURL, err := route.Invoker.Invoke(ctx, task.Prompt, task.Params)
	d.finish(ctx, logger, task, outputURL, err)
}

// finish performs the task's single read-modify-write: load the current
// record, apply the terminal transition, write it back. The task's own
// execution is the only writer for its key, so no guard is needed against
// concurrent writers.
func (d *Dispatcher) finish(
	ctx context.Context,
	logger *slog.Logger,
	task *domain.Task,
	outputURL string,
	invokeErr error,
) {
	current, err := d.store.GetTask(ctx, task.ID)
	if err != nil {
		// The record may have expired mid-execution or the store may be
		// degraded; fall back to the in-memory copy so the result is not
		// lost.
		logger.Warn("could not re-read task record at completion", "error", err)
		// Work on a copy. The submitter still holds the original pointer
		// and may be serializing it for the 202 response.
		fallback := *task
		current = &fallback
	}

	if invokeErr != nil {
		// Provider errors can echo credentials or connection strings;
		// scrub before the detail lands on the record or in logs.
		detail := redact.Error(invokeErr)
		if err := current.Fail(detail); err != nil {
			logger.Error("task already terminal at failure write", "error", err)
			return
		}
		logger.Info("task failed", "detail", detail)
	} else {
		if err := current.Complete(outputURL); err != nil {
			logger.Error("task already terminal at completion write", "error", err)
			return
		}
		logger.Info("task completed", "output_url", outputURL)
	}

	if err := d.store.WriteTask(ctx, current); err != nil {
		logger.Error("failed to write terminal task state", "error", err)
	}
}
