// Package completion issues single-shot and streaming completions against
// an LLM provider and turns every failure into an inspectable Result
// instead of an error. Callers never see a panic or a bare error from this
// layer: a failed call degrades to a Result whose Failure is set.
package completion

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/jackzampolin/tamer/internal/providers"
)

// ErrNoClient is the failure reported when Config.LLM was never set.
var ErrNoClient = errors.New("completion: no LLM client configured")

const (
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
	DefaultTimeout     = 60 * time.Second
	DefaultRetryDelay  = time.Second
)

// CallMeta describes the request side of a completion for recorders.
type CallMeta struct {
	PromptKey   string
	Prompt      string
	Temperature *float64
	MaxTokens   int
	Stream      bool
}

// Recorder receives every finished call. Implementations must not block
// for long; they run on the caller's goroutine.
type Recorder interface {
	Record(ctx context.Context, meta CallMeta, res Result)
}

// Config holds configuration for the completion client.
type Config struct {
	LLM        providers.LLMClient // Required; calls fail with ErrNoClient without it
	Model      string        // Passed through to the provider; empty uses its default
	Timeout    time.Duration // Per-call deadline, applied to every attempt
	MaxRetries int           // Extra attempts after the first (default 0)
	RetryDelay time.Duration // Base delay for exponential backoff
	Recorder   Recorder      // Optional
	Logger     *slog.Logger
}

// Client issues completions through an LLMClient.
type Client struct {
	llm        providers.LLMClient
	model      string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	recorder   Recorder
	logger     *slog.Logger
}

// Options are per-call generation parameters. Zero values select defaults;
// a nil Temperature means "provider default", which differs from 0.
type Options struct {
	MaxTokens   int
	Temperature *float64
	PromptKey   string
}

// Temperature returns a pointer suitable for Options.Temperature.
func Temperature(t float64) *float64 {
	return &t
}

// New creates a completion client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		llm:        cfg.LLM,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		recorder:   cfg.Recorder,
		logger:     cfg.Logger,
	}
}

// Complete sends prompt as a single user message and waits for the full
// answer. With MaxRetries == 0 exactly one request is made.
func (c *Client) Complete(ctx context.Context, prompt string, opts Options) Result {
	start := time.Now()
	req := c.request(prompt, opts, DefaultTemperature)

	res := Result{RequestID: req.RequestID, Model: c.model}
	if c.llm == nil {
		res.Failure = newFailure(ErrNoClient)
		res.Latency = time.Since(start)
		c.logger.Warn("completion failed", "request_id", req.RequestID, "error", ErrNoClient)
		return res
	}

	var chat *providers.ChatResult
	err := retry.Do(
		func() error {
			res.Attempts++
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			out, err := c.llm.Chat(callCtx, req)
			if err != nil {
				return err
			}
			chat = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries+1)),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil && retryable(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			if int(n) >= c.maxRetries {
				return
			}
			c.logger.Debug("retrying completion",
				"request_id", req.RequestID,
				"attempt", n+1,
				"error", err)
		}),
	)

	res.Latency = time.Since(start)
	if err != nil {
		res.Failure = newFailure(err)
		c.logger.Warn("completion failed",
			"request_id", req.RequestID,
			"model", c.model,
			"kind", res.Failure.Kind,
			"attempts", res.Attempts,
			"error", err)
	} else {
		res.Text = chat.Content
		res.Provider = chat.Provider
		res.Model = chat.ModelUsed
		res.PromptTokens = chat.PromptTokens
		res.CompletionTokens = chat.CompletionTokens
		c.logger.Debug("completion finished",
			"request_id", req.RequestID,
			"model", res.Model,
			"latency_ms", res.Latency.Milliseconds(),
			"completion_tokens", res.CompletionTokens)
	}

	c.record(ctx, CallMeta{
		PromptKey:   opts.PromptKey,
		Prompt:      prompt,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}, res)
	return res
}

// Stream sends prompt as a streaming request and accumulates fragments
// until stopMarker appears (see AccumulateUntil). Streams are never
// retried: fragments already consumed cannot be replayed.
func (c *Client) Stream(ctx context.Context, prompt, stopMarker string, opts Options) StreamResult {
	start := time.Now()
	// The streaming path leaves temperature to the provider unless asked.
	req := c.request(prompt, opts, -1)

	res := StreamResult{RequestID: req.RequestID, Model: c.model}
	if c.llm == nil {
		res.Failure = newFailure(ErrNoClient)
		res.Latency = time.Since(start)
		c.logger.Warn("stream failed", "request_id", req.RequestID, "error", ErrNoClient)
		return res
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stream, err := c.llm.ChatStream(callCtx, req)
	if err != nil {
		res.Failure = newFailure(err)
	} else {
		acc, streamErr := AccumulateUntil(stream, stopMarker)
		if closeErr := stream.Close(); closeErr != nil {
			c.logger.Debug("closing stream", "request_id", req.RequestID, "error", closeErr)
		}
		res.Text = acc.Text
		res.Stopped = acc.Stopped
		res.Fragments = acc.Fragments
		if streamErr != nil {
			res.Failure = newFailure(streamErr)
			if res.Failure.Kind == FailureTransport {
				res.Failure.Kind = FailureStream
			}
		}
	}

	res.Latency = time.Since(start)
	if res.Failure != nil {
		c.logger.Warn("stream failed",
			"request_id", req.RequestID,
			"model", c.model,
			"kind", res.Failure.Kind,
			"fragments", res.Fragments,
			"error", res.Failure.Err)
	}

	c.record(ctx, CallMeta{
		PromptKey:   opts.PromptKey,
		Prompt:      prompt,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	}, Result{
		Text:      res.Text,
		Failure:   res.Failure,
		RequestID: res.RequestID,
		Model:     res.Model,
		Latency:   res.Latency,
		Attempts:  1,
	})
	return res
}

// request builds the provider request. A negative defaultTemp leaves the
// temperature unset when opts does not carry one.
func (c *Client) request(prompt string, opts Options, defaultTemp float64) *providers.ChatRequest {
	req := providers.UserPrompt(prompt)
	req.Model = c.model
	req.RequestID = uuid.New().String()

	req.MaxTokens = opts.MaxTokens
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}

	switch {
	case opts.Temperature != nil:
		req.Temperature = opts.Temperature
	case defaultTemp >= 0:
		req.Temperature = Temperature(defaultTemp)
	}
	return req
}

func (c *Client) record(ctx context.Context, meta CallMeta, res Result) {
	if c.recorder == nil {
		return
	}
	c.recorder.Record(ctx, meta, res)
}

// retryable reports whether another attempt could plausibly succeed.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, providers.ErrEmptyResponse) {
		return false
	}
	var statusErr *providers.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	// Transport errors, including a per-attempt deadline.
	return true
}
