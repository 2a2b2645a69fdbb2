package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"hero-quiz-service/internal/aiquiz"
	"hero-quiz-service/internal/domain"
	"hero-quiz-service/internal/metrics"
	"hero-quiz-service/internal/quiz"
)

// Quiz sources, used as metric labels.
const (
	SourceDeterministic = "deterministic"
	SourceAI            = "ai"
)

// QuizService contains the quiz generation use cases.
type QuizService struct {
	heroes  HeroRepository
	synth   *quiz.Synthesizer
	ai      *aiquiz.Generator
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// NewQuizService wires quiz generation. ai may be nil when no text model is
// configured; the AI operations then fail with ErrUpstreamGeneration.
func NewQuizService(heroes HeroRepository, synth *quiz.Synthesizer, ai *aiquiz.Generator, log logrus.FieldLogger, m *metrics.Metrics) *QuizService {
	if synth == nil {
		synth = quiz.NewSynthesizer(nil)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QuizService{heroes: heroes, synth: synth, ai: ai, log: log, metrics: m}
}

// Generate builds a decoy-based quiz for slug with up to num questions.
func (s *QuizService) Generate(ctx context.Context, slug string, num int) (domain.QuizPayload, error) {
	hero, err := s.heroes.GetHero(ctx, slug)
	if err != nil {
		return domain.QuizPayload{}, err
	}
	all, err := s.heroes.ListHeroes(ctx)
	if err != nil {
		return domain.QuizPayload{}, fmt.Errorf("list heroes: %w", err)
	}

	bank := quiz.BuildDecoyBank(all, hero.Slug)
	questions := s.synth.Build(hero, bank, num)
	s.metrics.QuizGenerated(SourceDeterministic)
	s.log.WithFields(logrus.Fields{"slug": slug, "questions": len(questions)}).Debug("quiz generated")

	return domain.QuizPayload{Hero: hero.Ref(), Questions: questions}, nil
}

// GenerateAI asks the text model for a quiz about slug.
func (s *QuizService) GenerateAI(ctx context.Context, slug string, num int) (domain.QuizPayload, error) {
	hero, err := s.heroes.GetHero(ctx, slug)
	if err != nil {
		return domain.QuizPayload{}, err
	}
	if s.ai == nil {
		return domain.QuizPayload{}, fmt.Errorf("%w: no text model configured", domain.ErrUpstreamGeneration)
	}

	payload, shape, err := s.ai.Quiz(ctx, hero, num)
	if err != nil {
		s.log.WithError(err).WithField("slug", slug).Warn("ai quiz generation failed")
		return domain.QuizPayload{}, err
	}
	s.metrics.QuizGenerated(SourceAI)
	s.metrics.AIDecoded(string(shape))
	if shape != aiquiz.ShapeStrict {
		s.log.WithFields(logrus.Fields{"slug": slug, "shape": shape}).Info("ai quiz output needed repair")
	}
	return payload, nil
}

// Summarize simplifies text into a few plain sentences.
func (s *QuizService) Summarize(ctx context.Context, text string, sentences int) (string, error) {
	if s.ai == nil {
		return "", fmt.Errorf("%w: no text model configured", domain.ErrUpstreamGeneration)
	}
	return s.ai.Summarize(ctx, text, sentences)
}
