package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingAPIKey is returned when the provider API key resolves to empty.
var ErrMissingAPIKey = errors.New("provider API key is not set")

// Config holds tamer configuration.
// Stored at: ~/.tamer/config.yaml
type Config struct {
	Provider    ProviderCfg `mapstructure:"provider" yaml:"provider"`
	Defaults    DefaultsCfg `mapstructure:"defaults" yaml:"defaults"`
	RecordCalls bool        `mapstructure:"record_calls" yaml:"record_calls"` // Persist every call to calls.db
}

// ProviderCfg configures the OpenAI-compatible chat endpoint.
type ProviderCfg struct {
	Name           string `mapstructure:"name" yaml:"name"`                       // Label used in logs and the call log
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`                 // API key (supports ${ENV_VAR} syntax)
	Model          string `mapstructure:"model" yaml:"model"`                     // Model name
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`               // OpenAI-compatible endpoint
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // Per-call deadline
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`         // Extra attempts on transient failures
	RateLimit      int    `mapstructure:"rate_limit" yaml:"rate_limit"`           // Requests per minute (0 = unlimited)
}

// DefaultsCfg specifies default generation and classification settings.
type DefaultsCfg struct {
	MaxTokens      int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`
	Threshold      float64 `mapstructure:"threshold" yaml:"threshold"`             // Confidence must exceed this
	StopMarker     string  `mapstructure:"stop_marker" yaml:"stop_marker"`         // Streaming stops here
	Concurrency    int     `mapstructure:"concurrency" yaml:"concurrency"`         // In-flight classifications per strategy
	ClassifyFormat string  `mapstructure:"classify_format" yaml:"classify_format"` // "lines" or "json"
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderCfg{
			Name:           "groq",
			APIKey:         "${GROQ_API_KEY}",
			Model:          "llama3-70b-8192",
			BaseURL:        "https://api.groq.com/openai/v1",
			TimeoutSeconds: 60,
			MaxRetries:     0,
			RateLimit:      0,
		},
		Defaults: DefaultsCfg{
			MaxTokens:      1000,
			Temperature:    0.7,
			Threshold:      0.8,
			StopMarker:     "END",
			Concurrency:    1,
			ClassifyFormat: "lines",
		},
		RecordCalls: false,
	}
}

// ResolveAPIKey returns the provider API key with ${ENV_VAR} references expanded.
func (c *Config) ResolveAPIKey() (string, error) {
	key := ResolveEnvVars(c.Provider.APIKey)
	if key == "" {
		return "", fmt.Errorf("%w (provider.api_key = %q)", ErrMissingAPIKey, c.Provider.APIKey)
	}
	return key, nil
}

// Timeout returns the per-call deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

// Validate range-checks the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.Provider.Model == "" {
		errs = append(errs, errors.New("provider.model must be set"))
	}
	if c.Provider.BaseURL == "" {
		errs = append(errs, errors.New("provider.base_url must be set"))
	}
	if c.Provider.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("provider.timeout_seconds must be > 0, got %d", c.Provider.TimeoutSeconds))
	}
	if c.Provider.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("provider.max_retries must be >= 0, got %d", c.Provider.MaxRetries))
	}
	if c.Provider.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("provider.rate_limit must be >= 0, got %d", c.Provider.RateLimit))
	}
	if c.Defaults.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("defaults.max_tokens must be > 0, got %d", c.Defaults.MaxTokens))
	}
	if c.Defaults.Temperature < 0 || c.Defaults.Temperature > 2 {
		errs = append(errs, fmt.Errorf("defaults.temperature must be in [0,2], got %v", c.Defaults.Temperature))
	}
	if c.Defaults.Threshold < 0 || c.Defaults.Threshold > 1 {
		errs = append(errs, fmt.Errorf("defaults.threshold must be in [0,1], got %v", c.Defaults.Threshold))
	}
	if c.Defaults.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("defaults.concurrency must be >= 1, got %d", c.Defaults.Concurrency))
	}
	switch c.Defaults.ClassifyFormat {
	case "lines", "json":
	default:
		errs = append(errs, fmt.Errorf("defaults.classify_format must be lines or json, got %q", c.Defaults.ClassifyFormat))
	}
	return errors.Join(errs...)
}

// Masked returns a copy safe to print: a literal API key is replaced,
// while ${ENV_VAR} references are kept as written.
func (c *Config) Masked() *Config {
	out := *c
	out.Provider.APIKey = MaskKey(c.Provider.APIKey)
	return &out
}

// MaskKey hides all but the last four characters of a literal key.
func MaskKey(key string) string {
	if key == "" || envRef.MatchString(key) {
		return key
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
