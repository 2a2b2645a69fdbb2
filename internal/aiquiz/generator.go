package aiquiz

import (
	"context"
	"fmt"
	"strings"

	"hero-quiz-service/internal/domain"
	"hero-quiz-service/internal/llm"
)

const (
	// DefaultTemperature is used for quiz generation.
	DefaultTemperature = 0.7
	// SummaryTemperature keeps summaries close to the source text.
	SummaryTemperature = 0.2
	// DefaultSummarySentences applies when the caller passes zero.
	DefaultSummarySentences = 3
)

// Generator asks a text model for quiz questions and simplified summaries.
type Generator struct {
	llm         llm.TextGenerator
	temperature float64
}

// NewGenerator builds a Generator. A non-positive temperature means the default.
func NewGenerator(gen llm.TextGenerator, temperature float64) *Generator {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &Generator{llm: gen, temperature: temperature}
}

// Quiz generates up to requested questions about hero. Model output is never
// a failure; only errors from the model call itself are returned.
func (g *Generator) Quiz(ctx context.Context, hero domain.Hero, requested int) (domain.QuizPayload, Shape, error) {
	if requested <= 0 {
		requested = DefaultQuestionCount
	}

	text, err := g.llm.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      quizPrompt(hero, requested),
		Temperature: g.temperature,
	})
	if err != nil {
		return domain.QuizPayload{}, "", fmt.Errorf("%w: %w", domain.ErrUpstreamGeneration, err)
	}

	decoded := Decode(text, hero.Name, requested)
	return domain.QuizPayload{Hero: hero.Ref(), Questions: decoded.Questions}, decoded.Shape, nil
}

// Summarize rewrites text as a short plain-language summary.
func (g *Generator) Summarize(ctx context.Context, text string, sentences int) (string, error) {
	if sentences <= 0 {
		sentences = DefaultSummarySentences
	}
	out, err := g.llm.Generate(ctx, llm.Request{
		Prompt:      summaryPrompt(text, sentences),
		Temperature: SummaryTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamGeneration, err)
	}
	return strings.TrimSpace(out), nil
}
