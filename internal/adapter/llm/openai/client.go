// Package openai is the HTTP client for the generative text-annotation
// service. It supports schema-constrained structured generation and
// free-text generation, both as blocking synchronous calls. There is no
// retry logic: any failure is terminal for the enclosing run.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	llmhttp "github.com/ppansari/feedbackgen/internal/adapter/llm/http"
	"github.com/ppansari/feedbackgen/internal/usecase/feedback"
)

const (
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com"
	defaultTimeout = 120 * time.Second
)

// Client is an HTTP client for the OpenAI chat completions API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a client with default base URL and timeout.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// Generate makes one synchronous chat completion call. When the request
// carries a schema, the response format is pinned to it in strict mode; the
// caller still deserializes and validates the text, treating any mismatch
// like a transport failure.
func (c *Client) Generate(ctx context.Context, req feedback.GenerateRequest) (feedback.GenerateResponse, error) {
	var messages []Message
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: req.UserPrompt})

	body := ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	}
	if req.Schema != nil {
		body.ResponseFormat = &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchema{
				Name:   req.SchemaName,
				Strict: true,
				Schema: req.Schema,
			},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return feedback.GenerateResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return feedback.GenerateResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return feedback.GenerateResponse{}, llmhttp.NewTimeoutError(providerName, "request timed out")
		}
		return feedback.GenerateResponse{}, llmhttp.NewTimeoutError(providerName, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return feedback.GenerateResponse{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return feedback.GenerateResponse{}, c.handleErrorResponse(resp.StatusCode, respBody)
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return feedback.GenerateResponse{}, fmt.Errorf("parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return feedback.GenerateResponse{}, llmhttp.NewSchemaViolationError(providerName, "no choices in response")
	}

	out := feedback.GenerateResponse{Text: chatResp.Choices[0].Message.Content}
	out.Usage.PromptTokens = chatResp.Usage.PromptTokens
	out.Usage.CachedTokens = chatResp.Usage.PromptTokensDetails.CachedTokens
	out.Usage.CompletionTokens = chatResp.Usage.CompletionTokens
	return out, nil
}

// handleErrorResponse converts HTTP error responses to typed errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("HTTP %d", statusCode)
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	switch {
	case statusCode == http.StatusUnauthorized:
		return llmhttp.NewAuthenticationError(providerName, message)
	case statusCode == http.StatusNotFound:
		return llmhttp.NewModelNotFoundError(providerName, message)
	case statusCode == http.StatusTooManyRequests:
		return llmhttp.NewRateLimitError(providerName, message)
	case statusCode >= 500:
		return llmhttp.NewServiceUnavailableError(providerName, message, statusCode)
	default:
		return llmhttp.NewInvalidRequestError(providerName, message)
	}
}
