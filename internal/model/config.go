package model

import "time"

// Version stamped into every published document
const PipelineVersion = "1.1.0"

// Config holds the complete pipeline configuration
type Config struct {
	Models   ModelsConfig   `yaml:"models" json:"models"`
	LLM      LLMConfig      `yaml:"llm" json:"llm"`
	Sanity   SanityConfig   `yaml:"sanity" json:"sanity"`
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline"`
	Output   OutputConfig   `yaml:"output" json:"output"`
}

// ModelsConfig assigns a "provider/model" string to each pipeline stage
type ModelsConfig struct {
	Research string `yaml:"research" json:"research"`
	Outline  string `yaml:"outline" json:"outline"`
	Writer   string `yaml:"writer" json:"writer"`
	Editor   string `yaml:"editor" json:"editor"`

	// Default is used when a stage model names a provider with no
	// configured credential, or carries no provider prefix at all.
	Default string `yaml:"default" json:"default"`
}

// LLMConfig holds provider credentials and call defaults
type LLMConfig struct {
	OpenAIKey    string        `yaml:"-" json:"-"`
	AnthropicKey string        `yaml:"-" json:"-"`
	GoogleKey    string        `yaml:"-" json:"-"`
	Temperature  float64       `yaml:"temperature" json:"temperature"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	MaxRetries   int           `yaml:"max_retries" json:"max_retries"`
}

// SanityConfig identifies the content store dataset
type SanityConfig struct {
	ProjectID  string `yaml:"project_id" json:"project_id"`
	Dataset    string `yaml:"dataset" json:"dataset"`
	Token      string `yaml:"-" json:"-"`
	APIVersion string `yaml:"api_version" json:"api_version"`
}

// PipelineConfig holds run-level thresholds and paths
type PipelineConfig struct {
	PublishThreshold int    `yaml:"publish_threshold" json:"publish_threshold"`
	MaxArticles      int    `yaml:"max_articles" json:"max_articles"`
	MaxLenientIssues int    `yaml:"max_lenient_issues" json:"max_lenient_issues"`
	CatalogPath      string `yaml:"catalog_path" json:"catalog_path"`
}

// OutputConfig controls logging behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Models: ModelsConfig{
			Research: "google/gemini-2.0-flash",
			Outline:  "google/gemini-2.0-flash",
			Writer:   "anthropic/claude-sonnet-4-5-20250929",
			Editor:   "anthropic/claude-sonnet-4-5-20250929",
			Default:  "openai/gpt-4o",
		},
		LLM: LLMConfig{
			Temperature: 0.7,
			Timeout:     120 * time.Second,
			MaxRetries:  2,
		},
		Sanity: SanityConfig{
			Dataset:    "production",
			APIVersion: "2025-06-27",
		},
		Pipeline: PipelineConfig{
			PublishThreshold: 80,
			MaxArticles:      3,
			MaxLenientIssues: 3,
			CatalogPath:      "data/affiliate_products.json",
		},
	}
}
