package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestOllama_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest

		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)

		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: `{"ok":true}`},
		})
	}))
	defer server.Close()

	ollama := NewOllama(server.URL, testLogger())

	content, err := ollama.Generate(context.Background(), "plan a workflow", Options{Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, content)
}

func TestOllama_Generate_FallsBackToSecondModel(t *testing.T) {
	var models []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest

		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		models = append(models, req.Model)

		if req.Model == "primary" {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "fallback answer"},
		})
	}))
	defer server.Close()

	ollama := NewOllama(server.URL, testLogger(), WithModels("primary", "secondary"))

	content, err := ollama.Generate(context.Background(), "prompt", Options{})
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", content)
	assert.Equal(t, []string{"primary", "secondary"}, models)
}

func TestOllama_Generate_AllModelsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ollama := NewOllama(server.URL, testLogger(), WithModels("a", "b"))

	_, err := ollama.Generate(context.Background(), "prompt", Options{})
	assert.Error(t, err)
}

func TestOllama_Generate_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Content: "   "}})
	}))
	defer server.Close()

	ollama := NewOllama(server.URL, testLogger())

	_, err := ollama.Generate(context.Background(), "prompt", Options{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOllama_Generate_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ollama := NewOllama(server.URL, testLogger(), WithModels("a", "b"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ollama.Generate(ctx, "prompt", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOllama_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ollama := NewOllama(server.URL, testLogger())
	assert.NoError(t, ollama.HealthCheck(context.Background()))
}

func TestOllama_HealthCheck_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ollama := NewOllama(server.URL, testLogger())
	assert.Error(t, ollama.HealthCheck(context.Background()))
}
