package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGenerateJSONReturnsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "json_schema", req.ResponseFormat.Type)
		require.Equal(t, "quiz_response", req.ResponseFormat.JSONSchema.Name)
		require.True(t, req.ResponseFormat.JSONSchema.Strict)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"questions\":[]}"}}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "test-key", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	raw, err := c.GenerateJSON(context.Background(), "sys", "user", "quiz_response", map[string]any{"type": "object"})
	require.NoError(t, err)
	require.JSONEq(t, `{"questions":[]}`, string(raw))
}

func TestGenerateJSONRefusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"","refusal":"cannot comply"}}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "test-key", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.GenerateJSON(context.Background(), "sys", "user", "quiz", map[string]any{})
	require.ErrorContains(t, err, "refused")
}

func TestGenerateJSONRetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "temporarily down", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "test-key", BaseURL: srv.URL, MaxRetries: 2}, zap.NewNop())
	require.NoError(t, err)

	raw, err := c.GenerateJSON(context.Background(), "sys", "user", "quiz", map[string]any{})
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(raw))
	require.EqualValues(t, 2, calls.Load())
}

func TestGenerateJSONDoesNotRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "test-key", BaseURL: srv.URL, MaxRetries: 3}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.GenerateJSON(context.Background(), "sys", "user", "quiz", map[string]any{})
	require.Error(t, err)
	require.EqualValues(t, 1, calls.Load())
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, zap.NewNop())
	require.Error(t, err)
}
