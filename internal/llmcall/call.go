// Package llmcall records completions to a local SQLite database so runs
// can be inspected after the fact. Every call is stored with its prompt
// key, a hash of the prompt, the response and token metrics.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/tamer/internal/completion"
	"github.com/jackzampolin/tamer/internal/prompts"
)

// Call represents a recorded LLM API call.
type Call struct {
	// Unique identifier
	ID        string `json:"id" yaml:"id"`
	RequestID string `json:"request_id,omitempty" yaml:"request_id,omitempty"`

	// Timing
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	LatencyMs int       `json:"latency_ms" yaml:"latency_ms"`

	// Prompt traceability
	PromptKey  string `json:"prompt_key" yaml:"prompt_key"`
	PromptHash string `json:"prompt_hash" yaml:"prompt_hash"` // SHA256 of the rendered prompt

	// Model info
	Provider    string   `json:"provider" yaml:"provider"`
	Model       string   `json:"model" yaml:"model"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens" yaml:"max_tokens"`
	Stream      bool     `json:"stream" yaml:"stream"`

	// Token usage
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`
	Attempts     int `json:"attempts" yaml:"attempts"`

	// Response
	Response string `json:"response" yaml:"response"`

	// Status
	Success bool   `json:"success" yaml:"success"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// FromResult creates a Call from a finished completion.
func FromResult(meta completion.CallMeta, res completion.Result) *Call {
	call := &Call{
		ID:           uuid.New().String(),
		RequestID:    res.RequestID,
		Timestamp:    time.Now().UTC(),
		LatencyMs:    int(res.Latency.Milliseconds()),
		PromptKey:    meta.PromptKey,
		PromptHash:   prompts.HashText(meta.Prompt),
		Provider:     res.Provider,
		Model:        res.Model,
		Temperature:  meta.Temperature,
		MaxTokens:    meta.MaxTokens,
		Stream:       meta.Stream,
		InputTokens:  res.PromptTokens,
		OutputTokens: res.CompletionTokens,
		Attempts:     res.Attempts,
		Response:     res.Text,
		Success:      res.OK(),
	}

	if !res.OK() {
		call.Error = res.Err().Error()
	}
	return call
}
