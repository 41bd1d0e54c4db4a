package model

import "time"

// Config is the complete engine configuration. Values are populated from
// defaults, then ~/.veriscope/config.yaml, then VERISCOPE_* env vars, then
// CLI flags.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Fusion      FusionConfig      `yaml:"fusion" mapstructure:"fusion"`
	Validation  ValidationConfig  `yaml:"validation" mapstructure:"validation"`
	Weights     WeightConfig      `yaml:"weights" mapstructure:"weights"`
	Trusted     TrustedConfig     `yaml:"trusted" mapstructure:"trusted"`
	Verify      VerifyConfig      `yaml:"verify" mapstructure:"verify"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// HTTPConfig controls outbound HTTP behavior shared by sources and checkers.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// ConcurrencyConfig bounds the engine's fan-out.
type ConcurrencyConfig struct {
	FetchWorkers      int `yaml:"fetch_workers" mapstructure:"fetch_workers"`           // (variant, source) pairs in flight
	ValidationWorkers int `yaml:"validation_workers" mapstructure:"validation_workers"` // concurrent liveness checks
	ClaimWorkers      int `yaml:"claim_workers" mapstructure:"claim_workers"`           // concurrent claim verifications
}

// FusionConfig holds the hand-tuned rank-fusion constants. The values are
// deliberate; override them rather than re-deriving.
type FusionConfig struct {
	RRFK                int           `yaml:"rrf_k" mapstructure:"rrf_k"`                         // RRF smoothing constant
	MaxItems            int           `yaml:"max_items" mapstructure:"max_items"`                 // output cap after fusion
	PairTimeout         time.Duration `yaml:"pair_timeout" mapstructure:"pair_timeout"`
	CollectionDeadline  time.Duration `yaml:"collection_deadline" mapstructure:"collection_deadline"`
	MinPrimaryItems     int           `yaml:"min_primary_items" mapstructure:"min_primary_items"` // below this, try fallbacks
	TargetItems         int           `yaml:"target_items" mapstructure:"target_items"`           // fallback loop stops at this
	MaxFallbackVariants int           `yaml:"max_fallback_variants" mapstructure:"max_fallback_variants"`
}

// ValidationConfig controls the evidence validator.
type ValidationConfig struct {
	Enabled        bool  `yaml:"enabled" mapstructure:"enabled"`
	Strict         bool  `yaml:"strict" mapstructure:"strict"`
	SlowResponseMs int64 `yaml:"slow_response_ms" mapstructure:"slow_response_ms"`
}

// WeightConfig holds per-source base trust weights and the clamp bounds.
type WeightConfig struct {
	Base map[SourceType]float64 `yaml:"base" mapstructure:"base"`
	Min  float64               `yaml:"min" mapstructure:"min"`
	Max  float64               `yaml:"max" mapstructure:"max"`
}

// TrustedConfig holds the static trusted-source table and trusted domains.
type TrustedConfig struct {
	Sources []TrustedSource `yaml:"sources" mapstructure:"sources"`
	Domains []string        `yaml:"domains" mapstructure:"domains"`
}

// VerifyConfig holds claim-verification thresholds.
type VerifyConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	MaxKeywords         int     `yaml:"max_keywords" mapstructure:"max_keywords"`
}

// LLMConfig configures the synthesis fallback chain. Order lists provider
// names tried sequentially; providers missing credentials self-report
// disabled and are skipped.
type LLMConfig struct {
	Order     []string      `yaml:"order" mapstructure:"order"`     // e.g. ["openai","anthropic","ollama"]
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"` // per-provider streaming budget
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"`

	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Ollama    OllamaConfig    `yaml:"ollama" mapstructure:"ollama"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

type AnthropicConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

type OllamaConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    "Veriscope/0.2 (+https://github.com/veriscope/veriscope)",
			MaxBodyBytes: 2_000_000,
		},
		Concurrency: ConcurrencyConfig{
			FetchWorkers:      10,
			ValidationWorkers: 10,
			ClaimWorkers:      4,
		},
		Fusion: FusionConfig{
			RRFK:                60,
			MaxItems:            60,
			PairTimeout:         8 * time.Second,
			CollectionDeadline:  45 * time.Second,
			MinPrimaryItems:     3,
			TargetItems:         5,
			MaxFallbackVariants: 3,
		},
		Validation: ValidationConfig{
			Enabled:        true,
			Strict:         false,
			SlowResponseMs: 3000,
		},
		Weights: WeightConfig{
			Base: map[SourceType]float64{
				SourceEncyclopedia: 1.3,
				SourceAcademic:     1.2,
				SourceNews:         1.0,
				SourceRealtime:     0.9,
				SourceWeb:          0.8,
			},
			Min: 0.5,
			Max: 2.0,
		},
		Trusted: TrustedConfig{
			Sources: []TrustedSource{
				{ID: "wikipedia", DisplayName: "Wikipedia", BaseURL: "https://en.wikipedia.org/api/rest_v1/page/summary/%s", TrustScore: 0.9},
			},
			Domains: []string{
				"wikipedia.org", "britannica.com", "nature.com", "sciencedirect.com",
				"arxiv.org", "pubmed.ncbi.nlm.nih.gov", "reuters.com", "apnews.com",
				"bbc.com", "gov", "edu",
			},
		},
		Verify: VerifyConfig{
			SimilarityThreshold: 0.25,
			MaxKeywords:         8,
		},
		LLM: LLMConfig{
			Order:     []string{"openai", "anthropic", "ollama"},
			Timeout:   90 * time.Second,
			MaxTokens: 2000,
			OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
			Anthropic: AnthropicConfig{Model: "claude-sonnet-4-20250514"},
			Ollama:    OllamaConfig{BaseURL: "http://localhost:11434", Model: "llama3.1"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
