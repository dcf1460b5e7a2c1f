package llm

import (
	"fmt"
	"strings"
)

// NewReasoner creates a new LLM reasoner based on configuration
func NewReasoner(config Config) (Reasoner, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIReasoner(config)

	case "anthropic", "claude":
		return NewAnthropicReasoner(config)

	case "ollama":
		return NewOllamaReasoner(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}
