// Package openaiimg invokes OpenAI's image generation API through the
// official SDK. It backs the dedicated native route for DALL·E 3.
package openaiimg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/prismforge/prism-api/internal/provider"
)

// Config carries the settings for the OpenAI image invoker.
type Config struct {
	// APIKey is the OpenAI API key. An empty key is reported as a
	// missing-credentials failure at invocation time.
	APIKey string

	// BaseURL overrides the API base URL. Tests point this at a local
	// server.
	BaseURL string
}

// Invoker generates images with DALL·E 3 and returns the hosted result
// URL OpenAI serves the image from.
type Invoker struct {
	cfg    Config
	client openai.Client
	logger *slog.Logger
}

// New constructs the invoker. The underlying SDK client is cheap to
// build and holds no connection state.
func New(cfg Config, logger *slog.Logger) *Invoker {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Invoker{
		cfg:    cfg,
		client: openai.NewClient(opts...),
		logger: logger,
	}
}

// Invoke runs one DALL·E 3 generation. Of the caller's parameters only
// aspect_ratio is recognized (mapped onto the nearest supported size);
// unrecognized keys are dropped, not errors, because submissions share one
// parameter vocabulary across all providers.
func (i *Invoker) Invoke(ctx context.Context, prompt string, params map[string]any) (string, error) {
	if i.cfg.APIKey == "" {
		return "", provider.ErrMissingCredentials
	}

	generateParams := openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModelDallE3,
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
		Size:           sizeForAspectRatio(stringParam(params, "aspect_ratio")),
	}

	resp, err := i.client.Images.Generate(ctx, generateParams)
	if err != nil {
		return "", fmt.Errorf("openai image generation: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", provider.ErrNoResult
	}

	i.logger.Debug("openai image generated", "model", openai.ImageModelDallE3)
	return resp.Data[0].URL, nil
}

// sizeForAspectRatio maps a requested aspect ratio onto the nearest size
// DALL·E 3 supports. Unknown and empty ratios fall back to square.
func sizeForAspectRatio(ratio string) openai.ImageGenerateParamsSize {
	switch ratio {
	case "16:9", "21:9", "3:2", "4:3":
		return openai.ImageGenerateParamsSize1792x1024
	case "9:16", "9:21", "2:3", "3:4":
		return openai.ImageGenerateParamsSize1024x1792
	default:
		return openai.ImageGenerateParamsSize1024x1024
	}
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}
