package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/prismforge/prism-api/internal/catalog"
)

// Common request/response structures

// GenerationRequest defines the payload for the generation submission endpoint.
// Model and prompt are first-class; every other field is a provider parameter
// that is forwarded opaquely to whichever route handles the model.
type GenerationRequest struct {
	Model  string `json:"model"  validate:"required,min=1"`
	Prompt string `json:"prompt"`

	// Provider parameters. Only fields present in the request are
	// forwarded; zero values are never invented on the caller's behalf.
	Image           *string  `json:"image,omitempty"`
	Mask            *string  `json:"mask,omitempty"`
	AspectRatio     *string  `json:"aspect_ratio,omitempty"`
	GuidanceScale   *float64 `json:"guidance_scale,omitempty"`
	OutputFormat    *string  `json:"output_format,omitempty"`
	SafetyTolerance *int     `json:"safety_tolerance,omitempty"`
	Seed            *int     `json:"seed,omitempty"`
}

// Params flattens the optional provider parameters into the generic map the
// dispatch layer carries. Absent fields stay absent.
func (r *GenerationRequest) Params() map[string]any {
	params := make(map[string]any)
	if r.Image != nil {
		params["image"] = *r.Image
	}
	if r.Mask != nil {
		params["mask"] = *r.Mask
	}
	if r.AspectRatio != nil {
		params["aspect_ratio"] = *r.AspectRatio
	}
	if r.GuidanceScale != nil {
		params["guidance_scale"] = *r.GuidanceScale
	}
	if r.OutputFormat != nil {
		params["output_format"] = *r.OutputFormat
	}
	if r.SafetyTolerance != nil {
		params["safety_tolerance"] = *r.SafetyTolerance
	}
	if r.Seed != nil {
		params["seed"] = *r.Seed
	}
	if len(params) == 0 {
		return nil
	}
	return params
}

// SubmitResponse defines the acknowledgement returned when a generation is
// accepted. The caller polls the status endpoint with the returned task ID.
type SubmitResponse struct {
	TaskID uuid.UUID `json:"task_id"`
	Status string    `json:"status"`
}

// TaskResponse defines the response for the task status endpoint.
type TaskResponse struct {
	TaskID    uuid.UUID `json:"task_id"`
	UserID    string    `json:"user_id"`
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	Status    string    `json:"status"`
	OutputURL string    `json:"output_url,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ModelsResponse defines the response for the model listing endpoint.
type ModelsResponse struct {
	Models []catalog.Model `json:"models"`
}
