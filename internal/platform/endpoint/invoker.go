// Package endpoint invokes generation backends exposed as plain HTTP
// endpoints: a JSON POST of the prompt to a per-model configured URL.
// This is the escape hatch for self-hosted or bespoke providers that fit
// neither a native SDK nor the hosted-slug API.
package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prismforge/prism-api/internal/provider"
)

const defaultCallTimeout = 45 * time.Second

// Invoker posts generation requests to one configured endpoint.
type Invoker struct {
	url        string
	token      string
	httpClient *http.Client
}

// New builds an invoker for the endpoint configuration resolved by the
// router.
func New(cfg provider.EndpointConfig) *Invoker {
	return &Invoker{
		url:        cfg.URL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: defaultCallTimeout},
	}
}

// Invoke posts {"prompt": ...} and hands the parsed JSON response to the
// response extractor. Non-2xx responses and non-JSON bodies are failures.
func (i *Invoker) Invoke(ctx context.Context, prompt string, params map[string]any) (string, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if i.token != "" {
		req.Header.Set("Authorization", "Bearer "+i.token)
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read endpoint response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", fmt.Errorf("endpoint returned non-JSON body: %w", err)
	}

	locator, ok := provider.ExtractURL(decoded)
	if !ok {
		return "", provider.ErrNoResult
	}
	return locator, nil
}
