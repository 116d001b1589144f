// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

// Package config loads the application configuration via koanf,
// layering defaults, an optional YAML file, and BOOKGRAPH_ environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/bookgraph/bookgraph/internal/logging"
	"github.com/bookgraph/bookgraph/internal/recommend"
)

// envPrefix is the environment variable namespace, e.g.
// BOOKGRAPH_SERVER_PORT=8080.
const envPrefix = "BOOKGRAPH_"

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed origins. "*" allows all.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimit is requests per client IP per minute. Zero disables.
	RateLimit int `koanf:"rate_limit"`
}

// DatabaseConfig holds the catalog store settings.
type DatabaseConfig struct {
	// Driver selects the store: "duckdb" or "memory".
	Driver    string `koanf:"driver"`
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	BaseURL           string        `koanf:"base_url"`
	Model             string        `koanf:"model"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`

	// CachePath is the Badger directory for query-vector caching.
	// Empty keeps the cache in memory.
	CachePath string `koanf:"cache_path"`

	// CacheTTL bounds cached vectors. Zero means no expiry.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// Config is the full application configuration tree.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Database  DatabaseConfig   `koanf:"database"`
	Embedding EmbeddingConfig  `koanf:"embedding"`
	Engine    recommend.Config `koanf:"engine"`
	Logging   logging.Config   `koanf:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       120,
		},
		Database: DatabaseConfig{
			Driver:    "duckdb",
			Path:      "data/bookgraph.db",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Embedding: EmbeddingConfig{
			BaseURL:           "http://localhost:11434",
			Model:             "nomic-embed-text",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 4,
			Burst:             8,
			CachePath:         "data/embedding-cache",
			CacheTTL:          0,
		},
		Engine:  recommend.DefaultConfig(),
		Logging: logging.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, the optional YAML file
// at path, and environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// BOOKGRAPH_SERVER_PORT -> server.port
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that cannot serve.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Database.Driver {
	case "duckdb", "memory":
	default:
		return fmt.Errorf("database.driver %q not supported", c.Database.Driver)
	}
	if c.Database.Driver == "duckdb" && c.Database.Path == "" {
		return fmt.Errorf("database.path is required for duckdb")
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}
