package providers

import (
	"context"
	"time"
)

// LLMClient is the primary interface for chat/completion requests.
type LLMClient interface {
	// Chat sends a single-shot chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// ChatStream opens a streaming chat completion request.
	// The caller must Close the returned stream.
	ChatStream(ctx context.Context, req *ChatRequest) (Stream, error)

	// Name returns the client identifier (e.g., "groq").
	Name() string
}

// Stream is a sequential, pull-based view of a streamed completion.
// Next advances to the next fragment; Current returns its text, which is
// empty when the provider sent a chunk with no content delta.
type Stream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	// Required
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters. Temperature is a pointer so that an explicit 0
	// (deterministic) is distinguishable from "use the provider default".
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// UserPrompt builds a request carrying a single user message.
func UserPrompt(prompt string) *ChatRequest {
	return &ChatRequest{
		Messages: []Message{{Role: "user", Content: prompt}},
	}
}

// ChatResult is the complete response from an LLM call.
type ChatResult struct {
	Content string `json:"content"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider     string `json:"provider"`
	ModelUsed    string `json:"model_used"`
	FinishReason string `json:"finish_reason,omitempty"`

	RequestID string `json:"request_id"`
}
