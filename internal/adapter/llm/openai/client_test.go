package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmhttp "github.com/ppansari/feedbackgen/internal/adapter/llm/http"
	"github.com/ppansari/feedbackgen/internal/usecase/feedback"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient("test-key")
	client.SetBaseURL(server.URL)
	return client
}

func TestGenerateStructuredRequest(t *testing.T) {
	var captured ChatCompletionRequest
	var authHeader string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "{\"annotations\": []}"}}],
			"usage": {
				"prompt_tokens": 120,
				"completion_tokens": 30,
				"total_tokens": 150,
				"prompt_tokens_details": {"cached_tokens": 100}
			}
		}`))
	})

	schema := json.RawMessage(`{"type": "object"}`)
	resp, err := client.Generate(context.Background(), feedback.GenerateRequest{
		Model:        "gpt-4o",
		SystemPrompt: "You are a TA.",
		UserPrompt:   "Annotate this.",
		SchemaName:   "feedback_bundle",
		Schema:       schema,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", authHeader)
	assert.Equal(t, "gpt-4o", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)

	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_schema", captured.ResponseFormat.Type)
	require.NotNil(t, captured.ResponseFormat.JSONSchema)
	assert.Equal(t, "feedback_bundle", captured.ResponseFormat.JSONSchema.Name)
	assert.True(t, captured.ResponseFormat.JSONSchema.Strict)

	assert.Equal(t, `{"annotations": []}`, resp.Text)
	assert.Equal(t, 120, resp.Usage.PromptTokens)
	assert.Equal(t, 100, resp.Usage.CachedTokens)
	assert.Equal(t, 30, resp.Usage.CompletionTokens)
}

func TestGenerateFreeTextOmitsResponseFormat(t *testing.T) {
	var captured ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "digest"}}], "usage": {"prompt_tokens": 5, "completion_tokens": 2}}`))
	})

	resp, err := client.Generate(context.Background(), feedback.GenerateRequest{
		Model:      "gpt-4o-mini",
		UserPrompt: "Condense this.",
	})
	require.NoError(t, err)
	assert.Nil(t, captured.ResponseFormat)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "digest", resp.Text)
}

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		wantType   llmhttp.ErrorType
	}{
		{"unauthorized", http.StatusUnauthorized, llmhttp.ErrTypeAuthentication},
		{"model not found", http.StatusNotFound, llmhttp.ErrTypeModelNotFound},
		{"rate limited", http.StatusTooManyRequests, llmhttp.ErrTypeRateLimit},
		{"server error", http.StatusInternalServerError, llmhttp.ErrTypeServiceUnavailable},
		{"bad request", http.StatusBadRequest, llmhttp.ErrTypeInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte(`{"error": {"message": "boom"}}`))
			})

			_, err := client.Generate(context.Background(), feedback.GenerateRequest{Model: "gpt-4o", UserPrompt: "x"})
			require.Error(t, err)
			var typed *llmhttp.Error
			require.ErrorAs(t, err, &typed)
			assert.Equal(t, tc.wantType, typed.Type)
			assert.Equal(t, "boom", typed.Message)
		})
	}
}

func TestGenerateEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [], "usage": {}}`))
	})

	_, err := client.Generate(context.Background(), feedback.GenerateRequest{Model: "gpt-4o", UserPrompt: "x"})
	require.Error(t, err)
	var typed *llmhttp.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, llmhttp.ErrTypeSchemaViolation, typed.Type)
}
