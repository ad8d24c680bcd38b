package replicate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismforge/prism-api/internal/provider"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// predictionServer fakes the Replicate predictions API. It answers the
// create call and any status polls with the scripted documents and
// captures the input of the create request.
type predictionServer struct {
	t *testing.T

	created map[string]any   // document returned from the create call
	polled  []map[string]any // documents returned from successive polls

	mu       sync.Mutex
	input    map[string]any
	auth     string
	path     string
	pollHits int
}

func (s *predictionServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodPost:
		s.auth = r.Header.Get("Authorization")
		s.path = r.URL.Path

		var body map[string]any
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&body))
		s.input, _ = body["input"].(map[string]any)

		require.NoError(s.t, json.NewEncoder(w).Encode(s.created))
	case http.MethodGet:
		s.pollHits++
		doc := s.created
		if len(s.polled) > 0 {
			doc = s.polled[0]
			if len(s.polled) > 1 {
				s.polled = s.polled[1:]
			}
		}
		require.NoError(s.t, json.NewEncoder(w).Encode(doc))
	default:
		http.Error(w, "unexpected method", http.StatusMethodNotAllowed)
	}
}

func (s *predictionServer) gotInput() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func newTestClient(t *testing.T, backend *predictionServer) *Client {
	t.Helper()

	backend.t = t
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	return NewClient(Config{
		Token:       "r8_test_token",
		BaseURL:     server.URL,
		CallTimeout: 10 * time.Second,
	}, testLogger())
}

func succeededDoc(id string, output any) map[string]any {
	return map[string]any{"id": id, "status": "succeeded", "output": output}
}

func TestInvokeSuccess(t *testing.T) {
	t.Parallel()

	backend := &predictionServer{
		created: succeededDoc("p1", []any{"https://cdn.replicate.example/out.webp"}),
	}
	client := newTestClient(t, backend)

	invoker := client.ForSlug("black-forest-labs/flux-dev")
	url, err := invoker.Invoke(context.Background(), "a red fox", map[string]any{
		"aspect_ratio": "16:9",
		"seed":         float64(7),
	})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.replicate.example/out.webp", url)
	assert.Equal(t, "/models/black-forest-labs/flux-dev/predictions", backend.path)
	assert.Contains(t, backend.auth, "r8_test_token")

	// Prompt is merged into the input alongside the passthrough params.
	input := backend.gotInput()
	assert.Equal(t, "a red fox", input["prompt"])
	assert.Equal(t, "16:9", input["aspect_ratio"])
}

func TestInvokeParamsWinOverPrompt(t *testing.T) {
	t.Parallel()

	backend := &predictionServer{created: succeededDoc("p1", "https://cdn/out.png")}
	client := newTestClient(t, backend)

	_, err := client.ForSlug("owner/name").Invoke(context.Background(), "ignored prompt",
		map[string]any{"prompt": "param prompt wins"})

	require.NoError(t, err)
	assert.Equal(t, "param prompt wins", backend.gotInput()["prompt"])
}

func TestInvokePromptForcedWhenParamPromptEmpty(t *testing.T) {
	t.Parallel()

	backend := &predictionServer{created: succeededDoc("p1", "https://cdn/out.png")}
	client := newTestClient(t, backend)

	_, err := client.ForSlug("owner/name").Invoke(context.Background(), "the real prompt",
		map[string]any{"prompt": ""})

	require.NoError(t, err)
	assert.Equal(t, "the real prompt", backend.gotInput()["prompt"])
}

func TestInvokePollsUntilTerminal(t *testing.T) {
	t.Parallel()

	backend := &predictionServer{
		created: map[string]any{"id": "p2", "status": "processing"},
		polled: []map[string]any{
			{"id": "p2", "status": "succeeded", "output": map[string]any{"url": "https://cdn/final.png"}},
		},
	}
	client := newTestClient(t, backend)

	url, err := client.ForSlug("owner/name").Invoke(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/final.png", url)
	assert.GreaterOrEqual(t, backend.pollHits, 1)
}

func TestInvokeMissingCredentials(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{BaseURL: "http://unused.invalid"}, testLogger())

	_, err := client.ForSlug("owner/name").Invoke(context.Background(), "x", nil)
	assert.ErrorIs(t, err, provider.ErrMissingCredentials)
}

func TestInvokeMalformedSlug(t *testing.T) {
	t.Parallel()

	backend := &predictionServer{created: succeededDoc("p1", "https://cdn/out.png")}
	client := newTestClient(t, backend)

	_, err := client.ForSlug("no-owner-separator").Invoke(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed hosted model reference")
}

func TestInvokeRewritesModelAccessDetail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"title":  "Unauthenticated",
			"status": 401,
			"detail": "authentication failure on model record owner/name",
		})
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{
		Token:       "r8_test_token",
		BaseURL:     server.URL,
		CallTimeout: 5 * time.Second,
	}, testLogger())

	_, err := client.ForSlug("owner/name").Invoke(context.Background(), "x", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelAccess)
	assert.NotContains(t, err.Error(), "authentication failure on model record")
}

func TestInvokeFailedPrediction(t *testing.T) {
	t.Parallel()

	backend := &predictionServer{
		created: map[string]any{"id": "p3", "status": "failed", "error": "NSFW content detected"},
	}
	client := newTestClient(t, backend)

	_, err := client.ForSlug("owner/name").Invoke(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NSFW content detected")
}

func TestInvokeNoExtractableResult(t *testing.T) {
	t.Parallel()

	backend := &predictionServer{
		created: succeededDoc("p4", map[string]any{"tokens_used": float64(512)}),
	}
	client := newTestClient(t, backend)

	_, err := client.ForSlug("owner/name").Invoke(context.Background(), "x", nil)
	assert.True(t, errors.Is(err, provider.ErrNoResult))
}

func TestInvokeNetworkFault(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	client := NewClient(Config{
		Token:       "r8_test_token",
		BaseURL:     server.URL,
		CallTimeout: time.Second,
	}, testLogger())

	_, err := client.ForSlug("owner/name").Invoke(context.Background(), "x", nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "create prediction"))
}
