package model

import (
	"fmt"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Agent  AgentConfig  `yaml:"agent" mapstructure:"agent"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// AgentConfig bounds the research loop and the judgment gates.
type AgentConfig struct {
	MaxLoops            int     `yaml:"max_loops" mapstructure:"max_loops"`
	MaxReasoningDepth   int     `yaml:"max_reasoning_depth" mapstructure:"max_reasoning_depth"`
	MaxParallelQueries  int     `yaml:"max_parallel_queries" mapstructure:"max_parallel_queries"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	SufficientResults   int     `yaml:"sufficient_results" mapstructure:"sufficient_results"`
	RepeatRateLimit     float64 `yaml:"repeat_rate_limit" mapstructure:"repeat_rate_limit"`
	ActionWindowHours   int     `yaml:"action_window_hours" mapstructure:"action_window_hours"`
}

// SearchConfig configures the evidence provider adapter.
type SearchConfig struct {
	APIKeys        []string      `yaml:"api_keys" mapstructure:"api_keys"`
	BaseURL        string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxResults     int           `yaml:"max_results" mapstructure:"max_results"`
	MaxConcurrent  int           `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	RatePerSecond  float64       `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst      int           `yaml:"rate_burst" mapstructure:"rate_burst"`
	CacheEnabled   bool          `yaml:"cache_enabled" mapstructure:"cache_enabled"`
	CacheTTL       time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// LLMConfig configures the reasoning provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // "openai", "anthropic", "ollama"
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// StoreConfig locates the durable claim/event/hypothesis store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite database path
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns sensible defaults. The loop bounds mirror the agent
// design: three search loops, second-order reasoning at most.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			MaxLoops:            3,
			MaxReasoningDepth:   2,
			MaxParallelQueries:  5,
			ConfidenceThreshold: 0.6,
			SufficientResults:   3,
			RepeatRateLimit:     0.7,
			ActionWindowHours:   24,
		},
		Search: SearchConfig{
			Timeout:       30 * time.Second,
			MaxResults:    5,
			MaxConcurrent: 10,
			RatePerSecond: 2,
			RateBurst:     5,
			CacheEnabled:  true,
			CacheTTL:      15 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Timeout:     30,
			MaxTokens:   4096,
			Temperature: 0.5,
		},
		Store: StoreConfig{
			Path: "argus.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}

// Validate checks the configuration needed before any run begins. Missing
// credentials are the only errors allowed to reach the caller at startup.
func (c *Config) Validate() error {
	if len(c.Search.APIKeys) == 0 {
		return fmt.Errorf("no search API keys configured (set search.api_keys or ARGUS_SEARCH_API_KEYS)")
	}
	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return fmt.Errorf("%s API key not configured", c.LLM.Provider)
	}
	if c.Agent.MaxLoops <= 0 {
		return fmt.Errorf("agent.max_loops must be positive, got %d", c.Agent.MaxLoops)
	}
	return nil
}
