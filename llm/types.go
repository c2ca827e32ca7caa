package llm

import "fmt"

// Role of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat message
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a streaming chat completion request
type ChatRequest struct {
	SystemPrompt string
	Messages     []Message

	// Model overrides the client default when set
	Model string
}

// Usage reports token consumption. Estimated from text length when the provider omits it.
type Usage struct {
	InputTokens  int  `json:"input_tokens"`
	OutputTokens int  `json:"output_tokens"`
	Estimated    bool `json:"estimated"`
}

// ChatResponse is the assembled result of a streamed completion
type ChatResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// ErrorType classifies a failed call
type ErrorType string

const (
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeConnection ErrorType = "connection"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeModel      ErrorType = "model"
	ErrorTypeBadRequest ErrorType = "bad_request"
	ErrorTypeServer     ErrorType = "server"
	ErrorTypeStream     ErrorType = "stream"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error is returned for every failed model call
type Error struct {
	Type       ErrorType
	StatusCode int
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm %s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("llm %s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether another attempt may succeed
func (e *Error) Retryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeServer, ErrorTypeConnection:
		return true
	}
	return false
}
