// Package config handles huginn configuration via YAML files and
// environment variables.
//
// Configuration Precedence (highest to lowest):
//  1. Command-line flags (--components, --model, etc.)
//  2. Environment variables (HUGINN_*)
//  3. Config file (huginn.yaml)
//  4. Built-in defaults
//
// Example Usage:
//
//	cfg, err := config.LoadFromFile(config.FindConfigFile())
//	if err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//
// Environment Variables (all use HUGINN_ prefix):
//   - HUGINN_COMPONENTS=2
//   - HUGINN_DATA_DIR="./data"
//   - HUGINN_MODEL="./model.json"
//   - HUGINN_CENTER=true
//   - HUGINN_SEED=42
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all huginn configuration.
type Config struct {
	// Components is the number of principal components to keep.
	Components int `yaml:"components"`
	// DataDir is the model registry directory.
	DataDir string `yaml:"data_dir"`
	// Model is the path of the model JSON file to write or read.
	Model string `yaml:"model"`
	// Center controls whether project/inverse subtract and re-add the
	// fitted mean. On by default; the raw uncentered contract is opt-in.
	Center bool `yaml:"center"`
	// Seed drives the synthetic data generators.
	Seed int64 `yaml:"seed"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Components: 2,
		DataDir:    "./data",
		Center:     true,
		Seed:       42,
	}
}

// LoadFromEnv builds a Config from defaults overridden by HUGINN_* env vars.
func LoadFromEnv() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// LoadFromFile loads YAML config from path, then applies env overrides on
// top. An empty path skips the file and is equivalent to LoadFromEnv.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile returns the first config file that exists out of
// ./huginn.yaml and ~/.config/huginn/config.yaml, or "" when neither does.
func FindConfigFile() string {
	candidates := []string{"huginn.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "huginn", "config.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks invariants that hold regardless of the config source.
func (c *Config) Validate() error {
	if c.Components <= 0 {
		return fmt.Errorf("components must be positive, got %d", c.Components)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Components = getEnvInt("HUGINN_COMPONENTS", c.Components)
	c.DataDir = getEnv("HUGINN_DATA_DIR", c.DataDir)
	c.Model = getEnv("HUGINN_MODEL", c.Model)
	c.Center = getEnvBool("HUGINN_CENTER", c.Center)
	c.Seed = getEnvInt64("HUGINN_SEED", c.Seed)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
