// Package llm is a streaming client for OpenAI-compatible chat completion APIs
// (OpenAI itself or a local Ollama server).
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/norcalsbdc/advisorflow"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL       = "https://api.openai.com/v1"
	DefaultOllamaBaseURL = "http://localhost:11434/v1"
	DefaultModel         = "gpt-4o-mini"

	// DefaultResponseHeaderTimeout bounds the wait for the response headers.
	// The streamed body is bounded only by the request context.
	DefaultResponseHeaderTimeout = 60 * time.Second
)

// Client streams chat completions over HTTP
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	retry      advisorflow.RetryConfig
	logger     zerolog.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithBaseURL sets the API base URL, e.g. DefaultOllamaBaseURL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAPIKey sets the bearer token
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithModel sets the default model name
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithResponseHeaderTimeout replaces the HTTP client with one that waits at
// most d for response headers and leaves the body to the request context
func WithResponseHeaderTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = newHTTPClient(d)
	}
}

// WithRetryConfig sets retry attempts and backoff for retryable failures
func WithRetryConfig(retry advisorflow.RetryConfig) ClientOption {
	return func(c *Client) {
		c.retry = retry
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client. Without options it targets OpenAI with DefaultModel.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: newHTTPClient(DefaultResponseHeaderTimeout),
		retry:      advisorflow.DefaultRetryConfig,
		logger: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Str("component", "llm").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient(headerTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	return &http.Client{Transport: transport}
}

// Model returns the default model name
func (c *Client) Model() string {
	return c.model
}

type chatCompletionRequest struct {
	Model         string         `json:"model"`
	Messages      []Message      `json:"messages"`
	Stream        bool           `json:"stream"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// StreamChat sends the request and calls onToken for every content delta.
// Failures before the first token are retried per the retry config when retryable;
// once tokens have been delivered the error is returned as is.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest, onToken func(string)) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	body, err := json.Marshal(c.buildRequest(model, req))
	if err != nil {
		return nil, &Error{Type: ErrorTypeUnknown, Message: "failed to marshal request", cause: err}
	}

	var lastErr *Error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := advisorflow.CalculateBackoff(c.retry.RetryDelayMs, attempt, c.retry.RetryBackoff)
			c.logger.Warn().
				Int("attempt", attempt).
				Dur("delay", delay).
				Str("error_type", string(lastErr.Type)).
				Msg("Retrying model call")

			select {
			case <-ctx.Done():
				return nil, &Error{Type: ErrorTypeTimeout, Message: "context cancelled during backoff", cause: ctx.Err()}
			case <-time.After(delay):
			}
		}

		resp, delivered, err := c.streamOnce(ctx, model, body, req, onToken)
		if err == nil {
			return resp, nil
		}

		var llmErr *Error
		if !errors.As(err, &llmErr) {
			llmErr = &Error{Type: ErrorTypeUnknown, Message: err.Error(), cause: err}
		}
		lastErr = llmErr

		if delivered || !llmErr.Retryable() || ctx.Err() != nil {
			return nil, llmErr
		}
	}

	return nil, lastErr
}

func (c *Client) buildRequest(model string, req ChatRequest) chatCompletionRequest {
	messages := make([]Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, req.Messages...)

	return chatCompletionRequest{
		Model:         model,
		Messages:      messages,
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
	}
}

// streamOnce performs one HTTP exchange. delivered reports whether any token reached onToken.
func (c *Client) streamOnce(ctx context.Context, model string, body []byte, req ChatRequest, onToken func(string)) (*ChatResponse, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, false, &Error{Type: ErrorTypeUnknown, Message: "failed to create request", cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, false, transportError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, false, statusError(httpResp, model)
	}

	var content strings.Builder
	var usage Usage
	delivered := false

	scanner := bufio.NewScanner(httpResp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil, delivered, &Error{Type: ErrorTypeStream, Message: "failed to parse chunk", cause: err}
		}

		if chunk.Usage != nil {
			usage.InputTokens = chunk.Usage.PromptTokens
			usage.OutputTokens = chunk.Usage.CompletionTokens
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != nil {
			text := *chunk.Choices[0].Delta.Content
			if text == "" {
				continue
			}
			content.WriteString(text)
			delivered = true
			if onToken != nil {
				onToken(text)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, delivered, &Error{Type: ErrorTypeStream, Message: "stream interrupted", cause: err}
	}

	resp := &ChatResponse{
		Content: content.String(),
		Model:   model,
		Usage:   usage,
	}
	estimateUsage(resp, req)

	c.logger.Debug().
		Str("model", model).
		Int("input_tokens", resp.Usage.InputTokens).
		Int("output_tokens", resp.Usage.OutputTokens).
		Bool("estimated", resp.Usage.Estimated).
		Msg("Model call completed")

	return resp, delivered, nil
}

// estimateUsage fills missing token counts at four characters per token
func estimateUsage(resp *ChatResponse, req ChatRequest) {
	if resp.Usage.InputTokens == 0 {
		chars := len(req.SystemPrompt)
		for _, m := range req.Messages {
			chars += len(m.Content)
		}
		resp.Usage.InputTokens = chars / 4
		resp.Usage.Estimated = true
	}
	if resp.Usage.OutputTokens == 0 {
		resp.Usage.OutputTokens = len(resp.Content) / 4
		resp.Usage.Estimated = true
	}
}

func transportError(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Type: ErrorTypeTimeout, Message: "request timed out", cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Type: ErrorTypeTimeout, Message: "request cancelled", cause: err}
	}
	return &Error{Type: ErrorTypeConnection, Message: "cannot reach model API", cause: err}
}

func statusError(resp *http.Response, model string) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	message := resp.Status
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}

	e := &Error{StatusCode: resp.StatusCode, Message: message}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		e.Type = ErrorTypeAuth
	case resp.StatusCode == http.StatusTooManyRequests:
		e.Type = ErrorTypeRateLimit
	case resp.StatusCode == http.StatusNotFound:
		e.Type = ErrorTypeModel
		e.Message = fmt.Sprintf("model %q not found: %s", model, message)
	case resp.StatusCode == http.StatusBadRequest:
		e.Type = ErrorTypeBadRequest
	case resp.StatusCode >= 500:
		e.Type = ErrorTypeServer
	default:
		e.Type = ErrorTypeUnknown
	}
	return e
}
