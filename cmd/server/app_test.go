package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismforge/prism-api/internal/config"
)

// newTestApplication wires a full application against a miniredis store and
// a fake Replicate backend.
func newTestApplication(t *testing.T, replicateURL string) *application {
	t.Helper()

	mr := miniredis.RunT(t)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "error"},
		Auth:   config.AuthConfig{APIKey: "internal-key"},
		Store: config.StoreConfig{
			RedisURL: "redis://" + mr.Addr(),
			TaskTTL:  time.Hour,
		},
		Provider: config.ProviderConfig{
			ReplicateToken:   "r8_test",
			ReplicateBaseURL: replicateURL,
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplication(cfg, logger)
	require.NoError(t, err)
	return app
}

// fakeReplicate serves synchronous succeeded predictions for any slug.
func fakeReplicate(t *testing.T, outputURL string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Both the create call and any status polls return the same
		// terminal document.
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(map[string]any{
			"id":     "pred-1",
			"status": "succeeded",
			"output": []any{outputURL},
		})
		require.NoError(t, err)
	}))
}

func TestGenerationLifecycle(t *testing.T) {
	backend := fakeReplicate(t, "https://replicate.delivery/out.png")
	defer backend.Close()

	app := newTestApplication(t, backend.URL)
	handler := app.setupRoutes()

	// Submit a generation
	body := `{"model":"flux-dev","prompt":"a quiet harbor"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generations", bytes.NewBufferString(body))
	req.Header.Set("X-API-Key", "internal-key")
	req.Header.Set("X-User-ID", "user-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var submitted struct {
		TaskID string `json:"task_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.TaskID)
	assert.Equal(t, "processing", submitted.Status)

	// Let the background execution finish, then poll status
	app.dispatcher.Wait()

	req = httptest.NewRequest(http.MethodGet, "/api/v1/generations/"+submitted.TaskID, nil)
	req.Header.Set("X-API-Key", "internal-key")
	req.Header.Set("X-User-ID", "user-42")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Status    string `json:"status"`
		OutputURL string `json:"output_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "completed", status.Status)
	assert.Equal(t, "https://replicate.delivery/out.png", status.OutputURL)
}

func TestGenerationRequiresAuth(t *testing.T) {
	backend := fakeReplicate(t, "https://replicate.delivery/out.png")
	defer backend.Close()

	app := newTestApplication(t, backend.URL)
	handler := app.setupRoutes()

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "no headers", headers: nil},
		{
			name:    "wrong key",
			headers: map[string]string{"X-API-Key": "wrong", "X-User-ID": "user-42"},
		},
		{
			name:    "missing identity",
			headers: map[string]string{"X-API-Key": "internal-key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"model":"flux-dev","prompt":"x"}`
			req := httptest.NewRequest(
				http.MethodPost,
				"/api/v1/generations",
				bytes.NewBufferString(body),
			)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestPublicEndpoints(t *testing.T) {
	backend := fakeReplicate(t, "https://replicate.delivery/out.png")
	defer backend.Close()

	app := newTestApplication(t, backend.URL)
	handler := app.setupRoutes()

	// Health check needs no auth
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	// Model listing needs no auth
	req = httptest.NewRequest(http.MethodGet, "/api/v1/models", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var models struct {
		Models []struct {
			ID   string `json:"id"`
			Cost int    `json:"cost"`
		} `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &models))
	assert.NotEmpty(t, models.Models)
}

func TestUnknownModelRejectedAtSubmission(t *testing.T) {
	backend := fakeReplicate(t, "https://replicate.delivery/out.png")
	defer backend.Close()

	app := newTestApplication(t, backend.URL)
	handler := app.setupRoutes()

	body := `{"model":"sparkle-diffusion","prompt":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generations", bytes.NewBufferString(body))
	req.Header.Set("X-API-Key", "internal-key")
	req.Header.Set("X-User-ID", "user-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
