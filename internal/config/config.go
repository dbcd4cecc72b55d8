// Package config loads the service configuration from an optional YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/doctriage/doctriage/internal/llm"
	"github.com/doctriage/doctriage/pkg/models"
)

const (
	defaultListenAddr          = ":8080"
	defaultEscalationThreshold = 0.7
	defaultRetryAttempts       = 3
)

// Config is the full service configuration.
type Config struct {
	LLM                 llm.Config             `yaml:"llm"`
	Thresholds          models.ThresholdConfig `yaml:"thresholds"`
	EscalationThreshold float64                `yaml:"escalation_threshold"`
	DatabaseURL         string                 `yaml:"database_url"`
	ListenAddr          string                 `yaml:"listen_addr"`
}

// Load reads the YAML file at path (skipped when missing), applies
// environment overrides, fills defaults, and validates. A misordered
// threshold triple is logged as a warning and kept as configured.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		path = "config.yaml"
	}
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		path = envPath
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	envOverride(&cfg.LLM.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.LLM.Anthropic.Model, "ANTHROPIC_MODEL")
	envOverride(&cfg.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	envOverride(&cfg.LLM.OpenAI.Model, "OPENAI_MODEL")
	envOverride(&cfg.LLM.OpenAI.BaseURL, "OPENAI_BASE_URL")
	envOverride(&cfg.LLM.Gemini.APIKey, "GEMINI_API_KEY")
	envOverride(&cfg.LLM.Gemini.Model, "GEMINI_MODEL")
	envOverride(&cfg.DatabaseURL, "DATABASE_URL")
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	if err := envOverrideFloat(&cfg.EscalationThreshold, "ESCALATION_THRESHOLD"); err != nil {
		return cfg, err
	}
	if err := envOverrideFloat(&cfg.LLM.RateLimitRPS, "RATE_LIMIT_RPS"); err != nil {
		return cfg, err
	}
	if err := envOverrideInt(&cfg.LLM.RetryAttempts, "RETRY_ATTEMPTS"); err != nil {
		return cfg, err
	}

	// A provider with an API key is enabled unless the file said otherwise
	// by omitting the key.
	if cfg.LLM.Anthropic.APIKey != "" {
		cfg.LLM.Anthropic.Enabled = true
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		cfg.LLM.OpenAI.Enabled = true
	}
	if cfg.LLM.Gemini.APIKey != "" {
		cfg.LLM.Gemini.Enabled = true
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.EscalationThreshold == 0 {
		cfg.EscalationThreshold = defaultEscalationThreshold
	}
	if cfg.LLM.RetryAttempts == 0 {
		cfg.LLM.RetryAttempts = defaultRetryAttempts
	}
	if cfg.Thresholds == (models.ThresholdConfig{}) {
		cfg.Thresholds = models.DefaultThresholds()
	}

	if cfg.EscalationThreshold < 0 || cfg.EscalationThreshold > 1 {
		return cfg, fmt.Errorf("escalation_threshold %.2f must be between 0 and 1", cfg.EscalationThreshold)
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		log.Printf("WARNING: %v", err)
	}

	return cfg, nil
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
