package providers

import (
	"os"
)

// TestConfig holds provider configuration loaded from environment variables.
// This allows integration tests to use the same key as production.
type TestConfig struct {
	GroqAPIKey string
	Model      string
}

// LoadTestConfig loads the provider API key from environment variables.
func LoadTestConfig() TestConfig {
	return TestConfig{
		GroqAPIKey: os.Getenv("GROQ_API_KEY"),
		Model:      os.Getenv("TAMER_TEST_MODEL"),
	}
}

// HasGroq returns true if a Groq API key is configured.
func (c TestConfig) HasGroq() bool {
	return c.GroqAPIKey != ""
}

// NewGroqClient creates a client from test config.
// Returns nil if not configured.
func (c TestConfig) NewGroqClient() *OpenAIClient {
	if !c.HasGroq() {
		return nil
	}
	return NewOpenAIClient(OpenAIConfig{
		APIKey:       c.GroqAPIKey,
		DefaultModel: c.Model,
	})
}
