package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savewise/internal/adapters/config"
	"savewise/pkg/errors"
)

func completion(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []interface{}{map[string]interface{}{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]interface{}{"role": "assistant", "content": content},
		}},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(
		config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"},
		option.WithBaseURL(srv.URL+"/"),
		option.WithMaxRetries(0),
	)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(config.OpenAIConfig{})
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestGenerate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.Equal(t, 512.0, body["max_completion_tokens"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completion("  Save a little more on eating out.  "))
	})

	reply, err := client.Generate(context.Background(), "How am I doing?")
	require.NoError(t, err)
	assert.Equal(t, "Save a little more on eating out.", reply)
	assert.Equal(t, "gpt-4o-mini", client.Model())
}

func TestGenerateEmptyReply(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completion("   "))
	})

	_, err := client.Generate(context.Background(), "hi")
	assert.Error(t, err)
}

func TestGenerateAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
	})

	_, err := client.Generate(context.Background(), "hi")
	assert.Error(t, err)
}
