// Package imagen invokes Google's Imagen models through the genai SDK.
// It backs the dedicated native route for the imagen-3 family.
package imagen

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"

	"google.golang.org/genai"

	"github.com/prismforge/prism-api/internal/provider"
)

// defaultModel is the SDK model identifier behind the catalog's imagen-3
// entry.
const defaultModel = "imagen-3.0-generate-002"

// aspectRatios is the set Imagen accepts; anything else is dropped rather
// than rejected, like every other unrecognized parameter.
var aspectRatios = map[string]bool{
	"1:1": true, "3:4": true, "4:3": true, "9:16": true, "16:9": true,
}

// Config carries the settings for the Imagen invoker.
type Config struct {
	// APIKey is the Gemini API key. An empty key is reported as a
	// missing-credentials failure at invocation time.
	APIKey string

	// Model overrides the SDK model identifier.
	Model string
}

// Invoker generates images with Imagen. Unlike the hosted providers,
// Imagen returns raw image bytes, so the result locator is a data URL
// carrying the encoded image.
type Invoker struct {
	cfg    Config
	logger *slog.Logger

	initOnce sync.Once
	client   *genai.Client
	initErr  error
}

// New constructs the invoker. The SDK client is created lazily on first
// invocation so that a missing key degrades to a per-task failure instead
// of aborting startup.
func New(cfg Config, logger *slog.Logger) *Invoker {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Invoker{cfg: cfg, logger: logger}
}

// Invoke runs one Imagen generation. Recognized parameters: aspect_ratio,
// guidance_scale, seed, safety_tolerance and output_format; all other
// keys are dropped.
func (i *Invoker) Invoke(ctx context.Context, prompt string, params map[string]any) (string, error) {
	if i.cfg.APIKey == "" {
		return "", provider.ErrMissingCredentials
	}

	i.initOnce.Do(func() {
		i.client, i.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  i.cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	if i.initErr != nil {
		return "", fmt.Errorf("create genai client: %w", i.initErr)
	}

	config := buildConfig(params)

	resp, err := i.client.Models.GenerateImages(ctx, i.cfg.Model, prompt, config)
	if err != nil {
		return "", fmt.Errorf("imagen generation: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil ||
		len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return "", provider.ErrNoResult
	}

	image := resp.GeneratedImages[0].Image
	i.logger.Debug("imagen image generated", "model", i.cfg.Model, "mime_type", image.MIMEType)
	return dataURL(image.MIMEType, image.ImageBytes), nil
}

// buildConfig forwards the recognized subset of caller parameters into the
// SDK request.
func buildConfig(params map[string]any) *genai.GenerateImagesConfig {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	}

	if ratio, ok := params["aspect_ratio"].(string); ok && aspectRatios[ratio] {
		config.AspectRatio = ratio
	}
	if guidance, ok := floatParam(params, "guidance_scale"); ok {
		config.GuidanceScale = genai.Ptr(float32(guidance))
	}
	if seed, ok := floatParam(params, "seed"); ok {
		config.Seed = genai.Ptr(int32(seed))
	}
	if tolerance, ok := floatParam(params, "safety_tolerance"); ok {
		config.SafetyFilterLevel = safetyLevel(int(tolerance))
	}
	if format, ok := params["output_format"].(string); ok {
		if mime := mimeType(format); mime != "" {
			config.OutputMIMEType = mime
		}
	}

	return config
}

// safetyLevel maps the caller's 1 (most strict) to 5 (most permissive)
// safety tolerance onto Imagen's filter levels.
func safetyLevel(tolerance int) genai.SafetyFilterLevel {
	switch {
	case tolerance <= 1:
		return genai.SafetyFilterLevelBlockLowAndAbove
	case tolerance <= 3:
		return genai.SafetyFilterLevelBlockMediumAndAbove
	default:
		return genai.SafetyFilterLevelBlockOnlyHigh
	}
}

func mimeType(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

// floatParam reads a numeric parameter, tolerating the float64 that JSON
// decoding produces as well as native ints from internal callers.
func floatParam(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func dataURL(mime string, data []byte) string {
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
