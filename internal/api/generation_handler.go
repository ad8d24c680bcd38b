package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/prismforge/prism-api/internal/api/shared"
	"github.com/prismforge/prism-api/internal/catalog"
	"github.com/prismforge/prism-api/internal/dispatch"
	"github.com/prismforge/prism-api/internal/domain"
)

// TaskSubmitter is the dispatch surface the handler depends on. It is
// satisfied by *dispatch.Dispatcher and substituted in tests.
type TaskSubmitter interface {
	Submit(ctx context.Context, req dispatch.SubmitRequest) (*domain.Task, error)
	GetStatus(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

// GenerationHandler handles generation-related HTTP requests
type GenerationHandler struct {
	dispatcher TaskSubmitter
	catalog    *catalog.Catalog
	validator  *validator.Validate
}

// NewGenerationHandler creates a new GenerationHandler
func NewGenerationHandler(dispatcher TaskSubmitter, cat *catalog.Catalog) *GenerationHandler {
	return &GenerationHandler{
		dispatcher: dispatcher,
		catalog:    cat,
		validator:  validator.New(),
	}
}

// CreateGeneration handles POST /api/v1/generations requests
func (h *GenerationHandler) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	// Extract user ID from context (set by auth middleware)
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	// Parse request body
	var req GenerationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	// Create the task record and schedule execution; the response never
	// waits for the generation itself.
	task, err := h.dispatcher.Submit(r.Context(), dispatch.SubmitRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		UserID: userID,
		Params: req.Params(),
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	response := SubmitResponse{
		TaskID: task.ID,
		Status: string(task.Status),
	}

	// Return response with 202 Accepted status (since processing happens asynchronously)
	shared.RespondWithJSON(w, r, http.StatusAccepted, response)
}

// GetGeneration handles GET /api/v1/generations/{id} requests
func (h *GenerationHandler) GetGeneration(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserIDFromContext(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathTaskID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.dispatcher.GetStatus(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToDTOResponse(task))
}

// ListModels handles GET /api/v1/models requests
func (h *GenerationHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, ModelsResponse{
		Models: h.catalog.List(),
	})
}

// taskToDTOResponse converts a domain.Task to a TaskResponse
func taskToDTOResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		TaskID:    task.ID,
		UserID:    task.UserID,
		Model:     task.Model,
		Prompt:    task.Prompt,
		Status:    string(task.Status),
		OutputURL: task.OutputURL,
		Error:     task.Error,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}
