package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing.
type MockClient struct {
	// Configurable behavior
	Latency    time.Duration
	ShouldFail bool
	FailAfter  int // Fail after N requests (0 = never)

	// ResponseText is returned when Responses is empty.
	ResponseText string
	// Responses are returned in order, one per Chat call.
	Responses []string
	// Respond, when set, computes the response from the request and wins
	// over Responses and ResponseText.
	Respond func(req *ChatRequest) (string, error)

	// Fragments are emitted by ChatStream. StreamErr, when set, is reported
	// after the last fragment.
	Fragments []string
	StreamErr error

	// State
	requestCount atomic.Int64
	mu           sync.Mutex
	requests     []*ChatRequest
	consumed     int // fragments pulled by the last stream
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseText: "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat sends a mock chat request.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count, err := c.begin(ctx, req)
	if err != nil {
		return nil, err
	}

	content, err := c.next(req, count)
	if err != nil {
		return nil, err
	}

	// Simulate token counting
	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(m.Content) / 4 // Rough estimate
	}
	completionTokens := len(content) / 4

	return &ChatResult{
		Content:          content,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		ExecutionTime:    time.Since(start),
		Provider:         MockClientName,
		ModelUsed:        req.Model,
		FinishReason:     "stop",
		RequestID:        fmt.Sprintf("mock-%d", count),
	}, nil
}

// ChatStream emits Fragments one at a time.
func (c *MockClient) ChatStream(ctx context.Context, req *ChatRequest) (Stream, error) {
	if _, err := c.begin(ctx, req); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.consumed = 0
	c.mu.Unlock()
	return &mockStream{ctx: ctx, client: c, fragments: c.Fragments, err: c.StreamErr}, nil
}

func (c *MockClient) begin(ctx context.Context, req *ChatRequest) (int64, error) {
	count := c.requestCount.Add(1)

	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if c.ShouldFail {
		return count, fmt.Errorf("mock client configured to fail")
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		return count, fmt.Errorf("mock client failed after %d requests", c.FailAfter)
	}

	// Simulate latency
	select {
	case <-time.After(c.Latency):
	case <-ctx.Done():
		return count, ctx.Err()
	}
	return count, nil
}

func (c *MockClient) next(req *ChatRequest, count int64) (string, error) {
	if c.Respond != nil {
		return c.Respond(req)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Responses) > 0 {
		idx := int(count-1) % len(c.Responses)
		return c.Responses[idx], nil
	}
	return c.ResponseText, nil
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Requests returns the requests received so far.
func (c *MockClient) Requests() []*ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ChatRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// FragmentsConsumed returns how many fragments the last stream handed out.
func (c *MockClient) FragmentsConsumed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consumed
}

// Reset resets the request counter and captured requests.
func (c *MockClient) Reset() {
	c.requestCount.Store(0)
	c.mu.Lock()
	c.requests = nil
	c.consumed = 0
	c.mu.Unlock()
}

type mockStream struct {
	ctx       context.Context
	client    *MockClient
	fragments []string
	err       error
	pos       int
	current   string
	failed    error
	closed    bool
}

func (s *mockStream) Next() bool {
	if s.closed || s.failed != nil {
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.failed = err
		return false
	}
	if s.pos >= len(s.fragments) {
		s.failed = s.err
		return false
	}
	s.current = s.fragments[s.pos]
	s.pos++
	s.client.mu.Lock()
	s.client.consumed = s.pos
	s.client.mu.Unlock()
	return true
}

func (s *mockStream) Current() string { return s.current }

func (s *mockStream) Err() error { return s.failed }

func (s *mockStream) Close() error {
	s.closed = true
	return nil
}

// Verify interface
var _ LLMClient = (*MockClient)(nil)
