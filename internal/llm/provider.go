package llm

import (
	"context"
)

// Reasoner defines the interface for LLM reasoning backends
type Reasoner interface {
	// Name returns the provider name
	Name() string

	// Complete runs a single prompt through the model and returns raw text
	Complete(ctx context.Context, req CompleteRequest) (string, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompleteRequest contains the input for a single model call
type CompleteRequest struct {
	// System sets the role instruction for the call (optional)
	System string

	// Prompt is the user-facing prompt text
	Prompt string

	// Model overrides the configured model for this call (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature overrides the configured sampling temperature when > 0
	Temperature float64
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Timeout:     30,
		MaxTokens:   4096,
		Temperature: 0.5,
	}
}
