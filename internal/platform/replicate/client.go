// Package replicate invokes hosted models on Replicate addressed by an
// "owner/name" slug. Replicate exposes thousands of community models behind
// one prediction API, which is what makes the hosted-slug route grow through
// configuration alone. The create-and-wait protocol is driven through the
// official replicate-go client; this package layers the prompt merge, the
// result extraction and the detail rewrites on top of it.
package replicate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	replicatego "github.com/replicate/replicate-go"

	"github.com/prismforge/prism-api/internal/provider"
)

const (
	defaultCallTimeout = 60 * time.Second

	// modelAuthFailure is the provider-side detail Replicate returns when
	// the account token has no access to a model's version record. Surfaced
	// verbatim it reads like a credentials bug, so it is rewritten into an
	// actionable message.
	modelAuthFailure = "authentication failure on model record"
)

// ErrModelAccess replaces the raw provider detail for model-access
// failures.
var ErrModelAccess = errors.New(
	"model access not enabled for this account token; enable the model in your Replicate account and retry",
)

// Config carries the client settings sourced from application
// configuration.
type Config struct {
	// Token is the Replicate API token. An empty token is reported as a
	// missing-credentials failure at invocation time, not at startup.
	Token string

	// BaseURL overrides the Replicate API base URL. Tests point this at a
	// local server.
	BaseURL string

	// CallTimeout bounds one whole invocation including the wait for a
	// terminal prediction status.
	CallTimeout time.Duration
}

// Client calls the Replicate predictions API.
type Client struct {
	cfg     Config
	sdk     *replicatego.Client
	initErr error
	logger  *slog.Logger
}

// NewClient constructs a Replicate client. A zero-value timeout falls back
// to the default. With an empty token the client constructs fine and every
// invocation reports missing credentials.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}

	c := &Client{cfg: cfg, logger: logger}
	if cfg.Token == "" {
		return c
	}

	opts := []replicatego.ClientOption{replicatego.WithToken(cfg.Token)}
	if cfg.BaseURL != "" {
		opts = append(opts, replicatego.WithBaseURL(cfg.BaseURL))
	}
	sdk, err := replicatego.NewClient(opts...)
	if err != nil {
		c.initErr = fmt.Errorf("configure replicate client: %w", err)
		return c
	}
	c.sdk = sdk
	return c
}

// ForSlug returns a provider.Invoker bound to one hosted slug. The slug
// belongs to the route, not to the client, so the router binds it per
// resolution.
func (c *Client) ForSlug(slug string) provider.Invoker {
	return &slugInvoker{client: c, slug: slug}
}

type slugInvoker struct {
	client *Client
	slug   string
}

func (s *slugInvoker) Invoke(ctx context.Context, prompt string, params map[string]any) (string, error) {
	return s.client.invoke(ctx, s.slug, prompt, params)
}

// invoke creates a prediction for the slug, waits for a terminal status,
// then extracts the result locator from its output.
func (c *Client) invoke(ctx context.Context, slug, prompt string, params map[string]any) (string, error) {
	if c.cfg.Token == "" {
		return "", provider.ErrMissingCredentials
	}
	if c.initErr != nil {
		return "", c.initErr
	}

	owner, name, ok := strings.Cut(slug, "/")
	if !ok || owner == "" || name == "" {
		return "", fmt.Errorf("malformed hosted model reference %q", slug)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	input := replicatego.PredictionInput(mergeInput(prompt, params))
	pred, err := c.sdk.CreatePredictionWithModel(ctx, owner, name, input, nil, false)
	if err != nil {
		return "", rewriteError(fmt.Errorf("create prediction for %s: %w", slug, err))
	}

	if err := c.sdk.Wait(ctx, pred); err != nil {
		return "", rewriteError(fmt.Errorf("prediction %s did not finish: %w", pred.ID, err))
	}

	if pred.Status != replicatego.Succeeded {
		return "", fmt.Errorf("prediction %s: %s", pred.Status, rewriteDetail(detailString(pred.Error)))
	}

	locator, ok := provider.ExtractURL(pred.Output)
	if !ok {
		return "", provider.ErrNoResult
	}
	return locator, nil
}

// mergeInput merges the prompt into the parameters map. Params win on any
// key they already carry; prompt is force-set when the merged map ends up
// without a non-empty one.
func mergeInput(prompt string, params map[string]any) map[string]any {
	input := make(map[string]any, len(params)+1)
	for k, v := range params {
		input[k] = v
	}
	if existing, ok := input["prompt"].(string); !ok || existing == "" {
		input["prompt"] = prompt
	}
	return input
}

// detailString renders a prediction error field, which Replicate returns
// as either a string or a structured value.
func detailString(v any) string {
	switch e := v.(type) {
	case nil:
		return "unknown provider error"
	case string:
		return e
	default:
		return fmt.Sprintf("%v", e)
	}
}

// rewriteError replaces known misleading API errors with actionable ones.
func rewriteError(err error) error {
	detail := err.Error()
	var apiErr *replicatego.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		detail = apiErr.Detail
	}
	if strings.Contains(detail, modelAuthFailure) {
		return ErrModelAccess
	}
	return err
}

// rewriteDetail replaces known misleading provider details with actionable
// ones.
func rewriteDetail(detail string) string {
	if strings.Contains(detail, modelAuthFailure) {
		return ErrModelAccess.Error()
	}
	return detail
}
