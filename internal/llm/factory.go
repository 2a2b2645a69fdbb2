package llm

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// New creates the configured provider wrapped with request logging.
func New(ctx context.Context, cfg Config, log logrus.FieldLogger) (TextGenerator, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	var base TextGenerator
	var err error

	switch cfg.Provider {
	case "openai", "":
		base, err = NewOpenAIProvider(cfg)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, log), nil
}
