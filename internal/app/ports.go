package app

import (
	"context"

	"hero-quiz-service/internal/domain"
)

// HeroRepository loads hero records (from cache/backing store).
type HeroRepository interface {
	GetHero(ctx context.Context, slug string) (domain.Hero, error)
	ListHeroes(ctx context.Context) ([]domain.Hero, error)
}

// HeroWriter persists imported hero records. It reports how many rows were
// written; existing slugs are only replaced when overwrite is set.
type HeroWriter interface {
	UpsertHeroes(ctx context.Context, heroes []domain.Hero, overwrite bool) (int, error)
}

// ScoreStore owns attempts, daily counters, point totals and awards.
// WithinTx runs fn atomically for one user; implementations may call fn more
// than once when a conflicting write forces a retry.
type ScoreStore interface {
	WithinTx(ctx context.Context, userID string, fn func(ctx context.Context, tx ScoreTx) error) error
	Points(ctx context.Context, userID string) (domain.QuizPoints, bool, error)
	Daily(ctx context.Context, userID, day string) (domain.QuizDaily, bool, error)
	// Awards returns at most limit awards, newest first.
	Awards(ctx context.Context, userID string, limit int) ([]domain.QuizAward, error)
}

// ScoreTx is the read-modify-write surface available inside WithinTx.
type ScoreTx interface {
	InsertAttempt(ctx context.Context, attempt domain.QuizAttempt) error
	Daily(ctx context.Context, userID, day string) (domain.QuizDaily, bool, error)
	InsertDaily(ctx context.Context, daily domain.QuizDaily) error
	UpdateDaily(ctx context.Context, daily domain.QuizDaily) error
	Points(ctx context.Context, userID string) (domain.QuizPoints, bool, error)
	InsertPoints(ctx context.Context, points domain.QuizPoints) error
	UpdatePoints(ctx context.Context, points domain.QuizPoints) error
	InsertAward(ctx context.Context, award domain.QuizAward) error
}

// NotificationQueue accepts quiz-result notifications for later delivery.
type NotificationQueue interface {
	Enqueue(ctx context.Context, n domain.QuizResultNotification) error
}

// SummaryPublisher receives a user's fresh points summary after each attempt.
type SummaryPublisher interface {
	Publish(userID string, summary domain.PointsSummary)
}
