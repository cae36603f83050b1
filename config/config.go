// Package config loads process-level QueryMesh configuration from YAML.
// Functional options on the individual constructors remain the in-process
// override mechanism; this package serves entry points that want a single
// file to tune routing thresholds, conversation bounds, and model settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all QueryMesh configuration.
type Config struct {
	// Routing thresholds
	Routing RoutingConfig `yaml:"routing"`

	// Conversation bounds
	Conversation ConversationConfig `yaml:"conversation"`

	// Model configuration
	Model ModelConfig `yaml:"model"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// RoutingConfig tunes the classifier and the clarification policy. The
// thresholds are empirically chosen tunables; no specific value carries
// semantic meaning.
type RoutingConfig struct {
	ConfidenceFloor     float64 `yaml:"confidence_floor"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	TopK                int     `yaml:"top_k"`
	MinQueryTokens      int     `yaml:"min_query_tokens"`
}

// ConversationConfig bounds per-session history.
type ConversationConfig struct {
	MaxTurns    int `yaml:"max_turns"`
	TokenBudget int `yaml:"token_budget"`
}

// ModelConfig configures the inference backend.
type ModelConfig struct {
	Provider          string  `yaml:"provider"` // openai, anthropic, mock
	APIKey            string  `yaml:"api_key"`
	Name              string  `yaml:"name"`
	Temperature       float64 `yaml:"temperature"`
	MaxTokens         int64   `yaml:"max_tokens"`
	ExtendedReasoning bool    `yaml:"extended_reasoning"`

	// TraceMarkers delimit internal reasoning spans stripped from output.
	TraceMarkers TraceMarkersConfig `yaml:"trace_markers"`
}

// TraceMarkersConfig holds the reasoning-trace delimiter pair.
type TraceMarkersConfig struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

// LoggingConfig configures the slog backend.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Routing: RoutingConfig{
			ConfidenceFloor:     0.5,
			SimilarityThreshold: 0.7,
			TopK:                5,
			MinQueryTokens:      4,
		},
		Conversation: ConversationConfig{
			MaxTurns:    20,
			TokenBudget: 8000,
		},
		Model: ModelConfig{
			Provider:    "openai",
			Temperature: 0.3,
			MaxTokens:   500,
			TraceMarkers: TraceMarkersConfig{
				Open:  "<think>",
				Close: "</think>",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	if c.Routing.ConfidenceFloor < 0 || c.Routing.ConfidenceFloor > 1 {
		return fmt.Errorf("routing.confidence_floor must be in [0,1], got %v", c.Routing.ConfidenceFloor)
	}

	if c.Routing.SimilarityThreshold < 0 || c.Routing.SimilarityThreshold > 1 {
		return fmt.Errorf("routing.similarity_threshold must be in [0,1], got %v", c.Routing.SimilarityThreshold)
	}

	if c.Routing.TopK <= 0 {
		return fmt.Errorf("routing.top_k must be positive, got %d", c.Routing.TopK)
	}

	if c.Conversation.MaxTurns <= 0 {
		return fmt.Errorf("conversation.max_turns must be positive, got %d", c.Conversation.MaxTurns)
	}

	return nil
}
