package llm

// Config selects and configures one provider.
type Config struct {
	// Provider is one of "openai", "anthropic", "gemini" or "mock".
	Provider string
	APIKey   string
	Model    string
	// BaseURL points the openai provider at any OpenAI-compatible endpoint
	// and overrides the Gemini API host.
	BaseURL string
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case "anthropic":
		return "claude-haiku"
	case "gemini":
		return "gemini-flash"
	default:
		return "gpt-4o-mini"
	}
}
