// Package config loads engine configuration from an optional YAML file with
// environment variable overrides. Defaults are in code so a bare binary
// runs out of the box.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration of the engine.
type Config struct {
	Port        int    `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	LogLevel    string `yaml:"log_level"`

	// AnalysisTimeoutSeconds bounds one analysis request end to end.
	AnalysisTimeoutSeconds int `yaml:"analysis_timeout_seconds"`
	// Workers bounds the betweenness BFS fan-out; 0 means per-CPU.
	Workers int `yaml:"workers"`
	// DecayFactor is the default per-hop blast-radius attenuation.
	DecayFactor float64 `yaml:"decay_factor"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:                   8080,
		LogLevel:               "info",
		AnalysisTimeoutSeconds: 30,
		DecayFactor:            0.7,
	}
}

// Load reads the YAML file at path (if non-empty), then applies environment
// overrides, then validates.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be in [1,65535], got %d", c.Port)
	}
	if c.AnalysisTimeoutSeconds < 1 {
		return fmt.Errorf("analysis_timeout_seconds must be >= 1, got %d", c.AnalysisTimeoutSeconds)
	}
	if c.DecayFactor <= 0 || c.DecayFactor > 1 {
		return fmt.Errorf("decay_factor must be in (0,1], got %g", c.DecayFactor)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}

// AnalysisTimeout returns the request timeout as a duration.
func (c Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.AnalysisTimeoutSeconds) * time.Second
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SECGRAPH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("SECGRAPH_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SECGRAPH_ANALYSIS_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.AnalysisTimeoutSeconds = secs
		}
	}
	if v := os.Getenv("SECGRAPH_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			cfg.Workers = workers
		}
	}
	if v := os.Getenv("SECGRAPH_DECAY_FACTOR"); v != "" {
		if decay, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DecayFactor = decay
		}
	}
}
