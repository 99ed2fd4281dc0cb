// Package config reads the agent's settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Config holds every tunable of the agent. Values come from the
// environment, with defaults suitable for local use.
type Config struct {
	LLMModel       string  `env:"LLM_MODEL" envDefault:"gpt-4o"`
	LLMTemperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.2"`
	LLMMaxTokens   int     `env:"LLM_MAX_TOKENS" envDefault:"8192"`

	EmbeddingModel     string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDimension int    `env:"EMBEDDING_DIMENSION" envDefault:"1536"`
	EmbedBatchSize     int    `env:"EMBED_BATCH_SIZE" envDefault:"500"`

	MemoryType          string `env:"MEMORY_TYPE" envDefault:"buffer"`
	MemoryMaxTokenLimit int    `env:"MEMORY_MAX_TOKEN_LIMIT" envDefault:"2000"`

	ChunkSize    int `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"200"`
	TopK         int `env:"TOP_K" envDefault:"5"`

	DataDir  string `env:"DATA_DIR" envDefault:"./data"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
