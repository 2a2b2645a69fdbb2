package llm

import "context"

// TextGenerator is the narrow completion contract the quiz features depend on.
// Implementations return the model's raw text; callers own all parsing.
type TextGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
	ModelID() string
}

// Request describes a single-turn completion.
type Request struct {
	// System sets the model's role. Optional.
	System string
	// Prompt is the user message.
	Prompt string
	// Temperature controls randomness, 0.0 - 1.0.
	Temperature float64
	// MaxTokens bounds the response. Zero means the provider default.
	MaxTokens int
}

const defaultMaxTokens = 2048

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}

// resolveModel maps a friendly model name to a provider model ID.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
