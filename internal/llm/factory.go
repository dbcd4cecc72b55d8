package llm

import (
	"context"
	"fmt"
)

// ProviderConfig configures one model provider.
type ProviderConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Config configures the provider set. With two or more providers enabled
// the engine runs multi-model consensus instead of two-stage analysis.
type Config struct {
	Anthropic ProviderConfig `yaml:"anthropic"`
	OpenAI    ProviderConfig `yaml:"openai"`
	Gemini    ProviderConfig `yaml:"gemini"`

	// RateLimitRPS throttles each provider; zero disables throttling.
	RateLimitRPS float64 `yaml:"rate_limit_rps"`

	// RetryAttempts bounds boundary retries per call; values <= 1 mean
	// a single attempt.
	RetryAttempts int `yaml:"retry_attempts"`
}

// New builds the enabled providers in a fixed order, each wrapped with
// the configured retry and rate-limit middleware.
func New(ctx context.Context, cfg Config) ([]Provider, error) {
	var providers []Provider

	if cfg.Anthropic.Enabled {
		p, err := NewAnthropicProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
		if err != nil {
			return nil, fmt.Errorf("anthropic provider: %w", err)
		}
		providers = append(providers, wrap(p, cfg))
	}
	if cfg.OpenAI.Enabled {
		p, err := NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("openai provider: %w", err)
		}
		providers = append(providers, wrap(p, cfg))
	}
	if cfg.Gemini.Enabled {
		p, err := NewGeminiProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("gemini provider: %w", err)
		}
		providers = append(providers, wrap(p, cfg))
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no model providers enabled")
	}
	return providers, nil
}

func wrap(p Provider, cfg Config) Provider {
	p = WithRetry(p, cfg.RetryAttempts)
	p = WithRateLimit(p, cfg.RateLimitRPS)
	return p
}
