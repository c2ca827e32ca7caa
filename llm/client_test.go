package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/norcalsbdc/advisorflow"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(content string) string {
	return fmt.Sprintf(`data: {"choices":[{"delta":{"content":%q}}]}`+"\n\n", content)
}

func writeStream(w http.ResponseWriter, lines ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	for _, line := range lines {
		_, _ = io.WriteString(w, line)
	}
	_, _ = io.WriteString(w, "data: [DONE]\n\n")
}

func testClient(url string, opts ...ClientOption) *Client {
	base := []ClientOption{
		WithBaseURL(url),
		WithLogger(zerolog.Nop()),
		WithRetryConfig(advisorflow.RetryConfig{MaxRetries: 2, RetryDelayMs: 1, RetryBackoff: advisorflow.BackoffNone}),
	}
	return NewClient(append(base, opts...)...)
}

func TestStreamChat(t *testing.T) {
	var received chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		writeStream(w,
			": keep-alive\n\n",
			chunk("Hello"),
			chunk(", advisor"),
			`data: {"choices":[],"usage":{"prompt_tokens":42,"completion_tokens":3}}`+"\n\n",
		)
	}))
	defer server.Close()

	client := testClient(server.URL, WithAPIKey("sk-test"))

	var tokens []string
	resp, err := client.StreamChat(context.Background(), ChatRequest{
		SystemPrompt: "You are helpful.",
		Messages:     []Message{{Role: RoleUser, Content: "hi"}},
	}, func(token string) {
		tokens = append(tokens, token)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Hello", ", advisor"}, tokens)
	assert.Equal(t, "Hello, advisor", resp.Content)
	assert.Equal(t, DefaultModel, resp.Model)
	assert.Equal(t, Usage{InputTokens: 42, OutputTokens: 3}, resp.Usage)

	assert.True(t, received.Stream)
	assert.Equal(t, DefaultModel, received.Model)
	require.Len(t, received.Messages, 2)
	assert.Equal(t, Message{Role: RoleSystem, Content: "You are helpful."}, received.Messages[0])
	assert.Equal(t, Message{Role: RoleUser, Content: "hi"}, received.Messages[1])
}

func TestStreamChat_ModelOverrideAndEstimatedUsage(t *testing.T) {
	var model string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		model = req.Model
		writeStream(w, chunk("12345678"))
	}))
	defer server.Close()

	client := testClient(server.URL, WithModel("llama3"))
	resp, err := client.StreamChat(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: strings.Repeat("a", 40)}},
		Model:    "mistral",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "mistral", model)
	assert.Equal(t, "mistral", resp.Model)
	assert.Equal(t, Usage{InputTokens: 10, OutputTokens: 2, Estimated: true}, resp.Usage)
}

func TestStreamChat_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType ErrorType
		wantMsg  string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, ErrorTypeAuth, "bad key"},
		{"model missing", http.StatusNotFound, `{"error":{"message":"no such model"}}`, ErrorTypeModel, `model "gpt-4o-mini" not found`},
		{"bad request", http.StatusBadRequest, `not json`, ErrorTypeBadRequest, "400 Bad Request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			_, err := testClient(server.URL).StreamChat(context.Background(), ChatRequest{}, nil)
			require.Error(t, err)

			var llmErr *Error
			require.True(t, errors.As(err, &llmErr))
			assert.Equal(t, tt.wantType, llmErr.Type)
			assert.Equal(t, tt.status, llmErr.StatusCode)
			assert.Contains(t, llmErr.Message, tt.wantMsg)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "non-retryable errors are not retried")
		})
	}
}

func TestStreamChat_RetriesBeforeFirstToken(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeStream(w, chunk("ok"))
	}))
	defer server.Close()

	resp, err := testClient(server.URL).StreamChat(context.Background(), ChatRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestStreamChat_ExhaustsRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testClient(server.URL).StreamChat(context.Background(), ChatRequest{}, nil)

	var llmErr *Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, ErrorTypeServer, llmErr.Type)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestStreamChat_NoRetryAfterTokens(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, chunk("partial"))
		_, _ = io.WriteString(w, "data: {broken\n\n")
	}))
	defer server.Close()

	var tokens []string
	_, err := testClient(server.URL).StreamChat(context.Background(), ChatRequest{}, func(s string) {
		tokens = append(tokens, s)
	})

	var llmErr *Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, ErrorTypeStream, llmErr.Type)
	assert.Equal(t, []string{"partial"}, tokens)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStreamChat_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := testClient(url, WithRetryConfig(advisorflow.RetryConfig{})).
		StreamChat(context.Background(), ChatRequest{}, nil)

	var llmErr *Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, ErrorTypeConnection, llmErr.Type)
	assert.True(t, llmErr.Retryable())
}

func TestStreamChat_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := testClient(server.URL, WithRetryConfig(advisorflow.RetryConfig{
		MaxRetries:   5,
		RetryDelayMs: 60_000,
		RetryBackoff: advisorflow.BackoffLinear,
	}))

	done := make(chan error, 1)
	go func() {
		_, err := client.StreamChat(ctx, ChatRequest{}, nil)
		done <- err
	}()
	cancel()

	err := <-done
	var llmErr *Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, ErrorTypeTimeout, llmErr.Type)
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "llm auth error (status 401): bad key",
		(&Error{Type: ErrorTypeAuth, StatusCode: 401, Message: "bad key"}).Error())
	assert.Equal(t, "llm stream error: eof",
		(&Error{Type: ErrorTypeStream, Message: "eof"}).Error())
}

func TestStreamChat_BodyOutlivesHeaderTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !assert.True(t, ok) {
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
		for i := 0; i < 5; i++ {
			time.Sleep(60 * time.Millisecond)
			_, _ = io.WriteString(w, chunk("tok "))
			flusher.Flush()
		}
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := testClient(server.URL, WithResponseHeaderTimeout(100*time.Millisecond))

	var tokens []string
	resp, err := client.StreamChat(context.Background(), ChatRequest{}, func(s string) {
		tokens = append(tokens, s)
	})
	require.NoError(t, err)
	assert.Len(t, tokens, 5)
	assert.Equal(t, strings.Repeat("tok ", 5), resp.Content)
}

func TestStreamChat_ResponseHeaderTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := testClient(server.URL,
		WithResponseHeaderTimeout(50*time.Millisecond),
		WithRetryConfig(advisorflow.RetryConfig{}),
	)

	_, err := client.StreamChat(context.Background(), ChatRequest{}, nil)

	var llmErr *Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, ErrorTypeTimeout, llmErr.Type)
}
