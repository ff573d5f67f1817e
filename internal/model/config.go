package model

import (
	"runtime"
	"time"
)

// Config is the complete engine configuration.
type Config struct {
	Retrieval    RetrievalConfig   `yaml:"retrieval"`
	Stance       StanceConfig      `yaml:"stance"`
	Synthesis    SynthesisConfig   `yaml:"synthesis"`
	Validation   ValidationConfig  `yaml:"validation"`
	LLM          LLMConfig         `yaml:"llm"`
	Web          WebConfig         `yaml:"web"`
	Store        StoreConfig       `yaml:"store"`
	Cache        CacheConfig       `yaml:"cache"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting"`
	HTTP         HTTPConfig        `yaml:"http"`
	Metrics      MetricsConfig     `yaml:"metrics"`
	Output       OutputConfig      `yaml:"output"`
}

// RetrievalConfig controls document selection per query.
type RetrievalConfig struct {
	Method         string `yaml:"method"`          // "tfidf" (default) or "vector"
	TopK           int    `yaml:"top_k"`           // Per-query document budget; <=0 uses the default
	VectorPath     string `yaml:"vector_path"`     // chromem persistence dir; empty = in-memory
	EmbeddingModel string `yaml:"embedding_model"` // OpenAI embedding model for the vector method
}

// StanceConfig controls how retrieved documents are split into pools.
type StanceConfig struct {
	Method string  `yaml:"method"` // "lexical" (default), "label", or "llm"
	Margin float64 `yaml:"margin"` // Lexical dominance margin; below it a doc stays neutral
}

// SynthesisConfig controls clustering and claim/perspective generation.
type SynthesisConfig struct {
	MaxPerspectives  int           `yaml:"max_perspectives"`  // Cluster count ceiling per polarity
	ClusterThreshold float64       `yaml:"cluster_threshold"` // Min cosine for merging two clusters
	OverlapThreshold float64       `yaml:"overlap_threshold"` // Cosine at or above = near-duplicate perspectives
	MaxAttempts      int           `yaml:"max_attempts"`      // Regeneration budget per polarity
	PerspectiveWords int           `yaml:"perspective_words"` // Target perspective length
	ClaimWords       int           `yaml:"claim_words"`       // Target claim length
	BackoffBase      time.Duration `yaml:"backoff_base"`      // Base delay between provider-backed retries
}

// ValidationConfig controls the grounding checks.
type ValidationConfig struct {
	OverlapThreshold    float64 `yaml:"overlap_threshold"`     // Near-duplicate rejection threshold
	MaxPerspectiveWords int     `yaml:"max_perspective_words"` // Soft length bound; logged, never rejects
}

// LLMConfig controls the generation provider.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`    // "openai", "anthropic", "ollama", or "" for extractive
	Model       string        `yaml:"model"`       // Model name
	APIKey      string        `yaml:"-"`           // From environment, never serialized
	BaseURL     string        `yaml:"base_url"`    // Override endpoint (required for ollama)
	MaxTokens   int           `yaml:"max_tokens"`  // Completion cap per call
	Temperature float64       `yaml:"temperature"` // Sampling temperature
	Timeout     time.Duration `yaml:"timeout"`     // Per-call deadline
}

// WebConfig controls optional per-query evidence augmentation.
type WebConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Off by default; the engine is fully offline without it
	SearchURL  string `yaml:"search_url"`  // Search API endpoint
	APIKey     string `yaml:"-"`           // From environment, never serialized
	MaxResults int    `yaml:"max_results"` // Pages fetched per query
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // "memory" (default) or "badger"
	Path    string `yaml:"path"`    // Badger directory; required for the badger backend
}

// CacheConfig controls generation/page response caching.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"` // Disk layer location; empty = memory only
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig controls batch parallelism.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// RateLimitConfig bounds outbound request rates (web fetch, LLM calls).
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// HTTPConfig controls the web fetcher's HTTP behavior.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy"`
}

// MetricsConfig controls Prometheus exposition.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // Listen address (e.g., ":9090"); empty disables the endpoint
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose       bool   `yaml:"verbose"`
	Dir           string `yaml:"dir"`            // Batch output directory
	IncludeFooter bool   `yaml:"include_footer"` // Footer on Markdown digests
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Retrieval: RetrievalConfig{
			Method:         "tfidf",
			TopK:           6,
			EmbeddingModel: "text-embedding-3-small",
		},
		Stance: StanceConfig{
			Method: "lexical",
			Margin: 0.25,
		},
		Synthesis: SynthesisConfig{
			MaxPerspectives:  4,
			ClusterThreshold: 0.35,
			OverlapThreshold: 0.80,
			MaxAttempts:      3,
			PerspectiveWords: 12,
			ClaimWords:       5,
			BackoffBase:      500 * time.Millisecond,
		},
		Validation: ValidationConfig{
			OverlapThreshold:    0.80,
			MaxPerspectiveWords: 30,
		},
		LLM: LLMConfig{
			Provider:    "",
			Model:       "gpt-4o-mini",
			MaxTokens:   512,
			Temperature: 0.2,
			Timeout:     30 * time.Second,
		},
		Web: WebConfig{
			Enabled:    false,
			SearchURL:  "https://api.tavily.com/search",
			MaxResults: 3,
		},
		Store: StoreConfig{
			Backend: "memory",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Dialectica/0.1 (+https://github.com/ppiankov/dialectica)",
			MaxBodyBytes: 2_000_000,
		},
		Output: OutputConfig{
			Dir:           "./dialectica-results",
			IncludeFooter: true,
		},
	}
}
