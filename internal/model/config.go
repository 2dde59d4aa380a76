package model

import (
	"fmt"
	"time"
)

// Config holds the full pipeline configuration
type Config struct {
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Taxonomy   TaxonomyConfig   `yaml:"taxonomy" mapstructure:"taxonomy"`
}

// PipelineConfig controls batching and scoring
type PipelineConfig struct {
	// BatchSize is the number of documents processed per batch
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`

	// MaxTextLength truncates document text before expensive stages
	MaxTextLength int `yaml:"max_text_length" mapstructure:"max_text_length"`

	// SummaryMaxLength caps generated summaries, in characters
	SummaryMaxLength int `yaml:"summary_max_length" mapstructure:"summary_max_length"`

	// AugmentThreshold skips the classifier when the cheap-path score is below it
	AugmentThreshold float64 `yaml:"augment_threshold" mapstructure:"augment_threshold"`

	// AlertThreshold marks documents as high-threat in CLI output; the
	// external rules engine consumes the same value for alert decisions
	AlertThreshold float64 `yaml:"alert_threshold" mapstructure:"alert_threshold"`

	Weights WeightConfig `yaml:"weights" mapstructure:"weights"`
}

// WeightConfig holds the score fusion weights. Overridable for testing;
// they should sum to 1.0.
type WeightConfig struct {
	Category     float64 `yaml:"category" mapstructure:"category"`
	Pattern      float64 `yaml:"pattern" mapstructure:"pattern"`
	Relationship float64 `yaml:"relationship" mapstructure:"relationship"`
}

// ClassifierConfig controls the optional augmentation layer
type ClassifierConfig struct {
	// Provider name: "openai", "local", "" (disabled)
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model is the embedding model name (provider-specific)
	Model string `yaml:"model" mapstructure:"model"`

	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// ArtifactPath locates the trained centroid artifact
	ArtifactPath string `yaml:"artifact_path" mapstructure:"artifact_path"`

	// Threshold is the minimum confidence for a label to be reported
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`

	// Chunking for documents past the length limit
	ChunkSize    int `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`

	// Rate limiting for remote calls
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`

	// Timeout per remote call, seconds
	Timeout int `yaml:"timeout" mapstructure:"timeout"`
}

// CacheConfig controls the embedding cache
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`

	// Dir enables the disk layer so vectors survive across runs
	Dir string `yaml:"dir" mapstructure:"dir"`

	// DiskTTL applies to the disk layer; zero falls back to TTL
	DiskTTL time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// TaxonomyConfig points at optional YAML overrides for the built-in
// category terms and pattern library
type TaxonomyConfig struct {
	CategoriesPath string `yaml:"categories_path" mapstructure:"categories_path"`
	PatternsPath   string `yaml:"patterns_path" mapstructure:"patterns_path"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			BatchSize:        10,
			MaxTextLength:    100000,
			SummaryMaxLength: 150,
			AugmentThreshold: 0.3,
			AlertThreshold:   0.6,
			Weights: WeightConfig{
				Category:     0.4,
				Pattern:      0.4,
				Relationship: 0.2,
			},
		},
		Classifier: ClassifierConfig{
			Provider:          "",
			Model:             "text-embedding-3-small",
			Threshold:         0.4,
			ChunkSize:         512,
			ChunkOverlap:      128,
			RequestsPerSecond: 2,
			Burst:             5,
			Timeout:           30,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
	}
}

// Validate checks option bounds before the pipeline starts
func (c *Config) Validate() error {
	if c.Pipeline.BatchSize < 1 {
		return fmt.Errorf("pipeline.batch_size must be >= 1, got %d", c.Pipeline.BatchSize)
	}
	if c.Pipeline.MaxTextLength < 1 {
		return fmt.Errorf("pipeline.max_text_length must be >= 1, got %d", c.Pipeline.MaxTextLength)
	}
	if c.Pipeline.AugmentThreshold < 0 || c.Pipeline.AugmentThreshold > 1 {
		return fmt.Errorf("pipeline.augment_threshold must be in [0,1], got %g", c.Pipeline.AugmentThreshold)
	}
	if c.Pipeline.AlertThreshold < 0 || c.Pipeline.AlertThreshold > 1 {
		return fmt.Errorf("pipeline.alert_threshold must be in [0,1], got %g", c.Pipeline.AlertThreshold)
	}
	w := c.Pipeline.Weights
	if w.Category < 0 || w.Pattern < 0 || w.Relationship < 0 {
		return fmt.Errorf("pipeline.weights must be non-negative")
	}
	if w.Category+w.Pattern+w.Relationship == 0 {
		return fmt.Errorf("pipeline.weights must not all be zero")
	}
	if c.Classifier.Threshold < 0 || c.Classifier.Threshold > 1 {
		return fmt.Errorf("classifier.threshold must be in [0,1], got %g", c.Classifier.Threshold)
	}
	if c.Classifier.ChunkSize > 0 && c.Classifier.ChunkOverlap >= c.Classifier.ChunkSize {
		return fmt.Errorf("classifier.chunk_overlap must be smaller than chunk_size")
	}
	return nil
}
