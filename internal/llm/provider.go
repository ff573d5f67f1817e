package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces a completion for a single prompt
	Generate(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request contains the input for one generation call
type Request struct {
	// System is the role instruction for the call (optional)
	System string

	// Prompt is the user-facing content to complete
	Prompt string

	// Model is the specific model to use (provider-specific, overrides config)
	Model string

	// MaxTokens limits the response length (0 uses the configured cap)
	MaxTokens int

	// Temperature overrides the configured sampling temperature when set
	Temperature float64
}

// Response contains the provider's generation output
type Response struct {
	// Text is the generated completion
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Model:       "",
		Timeout:     30 * time.Second,
		MaxTokens:   512,
		Temperature: 0.2,
	}
}

// Fingerprint returns a stable identity for a request, used as a cache key.
func (r Request) Fingerprint() string {
	return fmt.Sprintf("model=%s|max=%d|temp=%.3f|system=%s|prompt=%s",
		r.Model, r.MaxTokens, r.Temperature, r.System, r.Prompt)
}
