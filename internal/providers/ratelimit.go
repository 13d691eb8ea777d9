package providers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter with a one-minute
// window. The bucket starts full, so short bursts go through unthrottled.
type RateLimiter struct {
	mu sync.Mutex

	// Configuration
	requestsPerMinute int
	windowSeconds     float64

	// Token bucket state
	tokens     float64
	lastUpdate time.Time

	// Statistics
	totalConsumed int64
	totalWaited   time.Duration
	last429Time   time.Time
}

// RateLimiterStatus reports current limiter state.
type RateLimiterStatus struct {
	TokensAvailable int           `json:"tokens_available"`
	TokensLimit     int           `json:"tokens_limit"`
	TotalConsumed   int64         `json:"total_consumed"`
	TotalWaited     time.Duration `json:"total_waited"`
	Last429Time     time.Time     `json:"last_429_time,omitempty"`
}

// NewRateLimiter creates a limiter allowing requestsPerMinute requests.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30 // Groq free tier
	}
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		windowSeconds:     60.0,
		tokens:            float64(requestsPerMinute),
		lastUpdate:        time.Now(),
	}
}

// Wait blocks until a token is available or context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()

		if r.tokens >= 1.0 {
			r.tokens--
			r.totalConsumed++
			r.mu.Unlock()
			return nil
		}

		// Calculate wait time for next token
		tokensNeeded := 1.0 - r.tokens
		refillRate := float64(r.requestsPerMinute) / r.windowSeconds
		waitTime := time.Duration(tokensNeeded/refillRate*1000) * time.Millisecond
		r.mu.Unlock()

		// Wait outside lock
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
			r.mu.Lock()
			r.totalWaited += waitTime
			r.mu.Unlock()
		}
	}
}

// Record429 should be called when a 429 error is received. A retryAfter
// hint drains the bucket so the next caller waits for a refill.
func (r *RateLimiter) Record429(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.last429Time = time.Now()
	if retryAfter > 0 {
		r.tokens = 0 // Drain all tokens
	}
}

// Status returns current limiter status.
func (r *RateLimiter) Status() RateLimiterStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	return RateLimiterStatus{
		TokensAvailable: int(r.tokens),
		TokensLimit:     r.requestsPerMinute,
		TotalConsumed:   r.totalConsumed,
		TotalWaited:     r.totalWaited,
		Last429Time:     r.last429Time,
	}
}

// refill adds tokens based on elapsed time. Must be called with lock held.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastUpdate).Seconds()
	r.lastUpdate = now

	// Add tokens based on elapsed time
	refillRate := float64(r.requestsPerMinute) / r.windowSeconds
	r.tokens += elapsed * refillRate

	// Cap at max
	if r.tokens > float64(r.requestsPerMinute) {
		r.tokens = float64(r.requestsPerMinute)
	}
}

// RateLimitedClient wraps an LLMClient so every request first takes a
// token from a shared limiter.
type RateLimitedClient struct {
	LLMClient
	limiter *RateLimiter
}

// WithRateLimit wraps client with a limiter. A non-positive rate returns
// client unchanged.
func WithRateLimit(client LLMClient, requestsPerMinute int) LLMClient {
	if requestsPerMinute <= 0 {
		return client
	}
	return &RateLimitedClient{LLMClient: client, limiter: NewRateLimiter(requestsPerMinute)}
}

// Limiter returns the underlying limiter.
func (c *RateLimitedClient) Limiter() *RateLimiter {
	return c.limiter
}

// Chat waits for a token, then delegates.
func (c *RateLimitedClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.LLMClient.Chat(ctx, req)
	c.observe(err)
	return res, err
}

// ChatStream waits for a token, then delegates.
func (c *RateLimitedClient) ChatStream(ctx context.Context, req *ChatRequest) (Stream, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	s, err := c.LLMClient.ChatStream(ctx, req)
	if err != nil {
		c.observe(err)
		return nil, err
	}
	return &observedStream{Stream: s, observe: c.observe}, nil
}

// observedStream reports the stream's terminal error to the limiter once.
// SSE clients usually return status failures from Err, not ChatStream.
type observedStream struct {
	Stream
	observe func(error)
	once    sync.Once
}

func (s *observedStream) Err() error {
	err := s.Stream.Err()
	if err != nil {
		s.once.Do(func() { s.observe(err) })
	}
	return err
}

func (c *RateLimitedClient) observe(err error) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
		c.limiter.Record429(statusErr.RetryAfter)
	}
}
