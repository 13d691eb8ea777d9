package providers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
)

// ErrEmptyResponse is returned when the service answers without any choices.
var ErrEmptyResponse = errors.New("no choices in response")

// StatusError is a non-2xx answer from the completion service.
type StatusError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("completion service error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("completion service error (status %d): %s", e.StatusCode, e.Message)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// mapOpenAIError converts SDK errors into StatusError where a status is known.
func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	se := &StatusError{
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
	}
	if apiErr.Response != nil {
		se.RetryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
	}
	return se
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
