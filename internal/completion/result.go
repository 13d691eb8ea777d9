package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackzampolin/tamer/internal/providers"
)

// FailureKind classifies why a completion produced no usable text.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureStatus    FailureKind = "status"
	FailureEmpty     FailureKind = "empty_response"
	FailureCanceled  FailureKind = "canceled"
	FailureTimeout   FailureKind = "timeout"
	FailureStream    FailureKind = "stream"
)

// Failure is the typed reason attached to an unsuccessful Result.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// newFailure maps an error from the provider layer onto a FailureKind.
func newFailure(err error) *Failure {
	var statusErr *providers.StatusError
	switch {
	case errors.Is(err, context.Canceled):
		return &Failure{Kind: FailureCanceled, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Failure{Kind: FailureTimeout, Err: err}
	case errors.As(err, &statusErr):
		return &Failure{Kind: FailureStatus, Err: err}
	case errors.Is(err, providers.ErrEmptyResponse):
		return &Failure{Kind: FailureEmpty, Err: err}
	default:
		return &Failure{Kind: FailureTransport, Err: err}
	}
}

// Result is the outcome of a single-shot completion. Exactly one of Text
// (possibly empty) or Failure is meaningful; check OK before using Text.
type Result struct {
	Text    string   `json:"text,omitempty" yaml:"text,omitempty"`
	Failure *Failure `json:"-" yaml:"-"`

	RequestID        string        `json:"request_id" yaml:"request_id"`
	Provider         string        `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model            string        `json:"model,omitempty" yaml:"model,omitempty"`
	PromptTokens     int           `json:"prompt_tokens,omitempty" yaml:"prompt_tokens,omitempty"`
	CompletionTokens int           `json:"completion_tokens,omitempty" yaml:"completion_tokens,omitempty"`
	Latency          time.Duration `json:"latency" yaml:"latency"`
	Attempts         int           `json:"attempts" yaml:"attempts"`
}

// OK reports whether the completion succeeded.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// StreamResult is the outcome of a streamed completion. Text holds whatever
// was accumulated, even when Failure is set mid-stream.
type StreamResult struct {
	Text      string   `json:"text" yaml:"text"`
	Stopped   bool     `json:"stopped" yaml:"stopped"` // stop marker observed
	Fragments int      `json:"fragments" yaml:"fragments"`
	Failure   *Failure `json:"-" yaml:"-"`

	RequestID string        `json:"request_id" yaml:"request_id"`
	Model     string        `json:"model,omitempty" yaml:"model,omitempty"`
	Latency   time.Duration `json:"latency" yaml:"latency"`
}

// OK reports whether the stream completed without error.
func (r StreamResult) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil on success.
func (r StreamResult) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}
