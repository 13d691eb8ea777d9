package config

import "errors"

// ErrNoDefault is returned when no default value exists for a config key.
var ErrNoDefault = errors.New("no default exists")

// Entry is a single configuration key with its default and description.
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

// DefaultEntries returns the default configuration entries, one per leaf
// key of Config. Each key can be overridden with TAMER_<KEY>, dots
// replaced by underscores.
func DefaultEntries() []Entry {
	d := DefaultConfig()
	return []Entry{
		// ===================
		// Provider
		// ===================
		{
			Key:         "provider.name",
			Value:       d.Provider.Name,
			Description: "Provider label used in logs and the call log",
		},
		{
			Key:         "provider.api_key",
			Value:       d.Provider.APIKey,
			Description: "Provider API key (uses environment variable)",
		},
		{
			Key:         "provider.model",
			Value:       d.Provider.Model,
			Description: "Chat model identifier",
		},
		{
			Key:         "provider.base_url",
			Value:       d.Provider.BaseURL,
			Description: "OpenAI-compatible API base URL",
		},
		{
			Key:         "provider.timeout_seconds",
			Value:       d.Provider.TimeoutSeconds,
			Description: "Deadline for each completion request",
		},
		{
			Key:         "provider.max_retries",
			Value:       d.Provider.MaxRetries,
			Description: "Extra attempts on transport errors, 429 and 5xx (0 disables retries)",
		},
		{
			Key:         "provider.rate_limit",
			Value:       d.Provider.RateLimit,
			Description: "Client-side request limit per minute (0 = unlimited)",
		},

		// ===================
		// Defaults
		// ===================
		{
			Key:         "defaults.max_tokens",
			Value:       d.Defaults.MaxTokens,
			Description: "Completion token budget",
		},
		{
			Key:         "defaults.temperature",
			Value:       d.Defaults.Temperature,
			Description: "Sampling temperature for plain completions",
		},
		{
			Key:         "defaults.threshold",
			Value:       d.Defaults.Threshold,
			Description: "Classification confidence must exceed this score",
		},
		{
			Key:         "defaults.stop_marker",
			Value:       d.Defaults.StopMarker,
			Description: "Marker that ends a streamed completion",
		},
		{
			Key:         "defaults.concurrency",
			Value:       d.Defaults.Concurrency,
			Description: "In-flight classifications per strategy during compare",
		},
		{
			Key:         "defaults.classify_format",
			Value:       d.Defaults.ClassifyFormat,
			Description: "Classification response format: lines or json",
		},

		{
			Key:         "record_calls",
			Value:       d.RecordCalls,
			Description: "Record every completion to ~/.tamer/calls.db",
		},
	}
}

// GetDefault returns the default entry for a config key.
// Returns nil if no default exists for the key.
func GetDefault(key string) *Entry {
	for _, entry := range DefaultEntries() {
		if entry.Key == key {
			return &entry
		}
	}
	return nil
}
