package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"hero-quiz-service/internal/auth"
	"hero-quiz-service/internal/domain"
	"hero-quiz-service/internal/metrics"
)

// Points policy.
const (
	DailyCap       = 5
	PointsPerRight = 10
	PerfectBonus   = 10
	// FirstTryBonus is paid on every eligible attempt, not only on a first try.
	FirstTryBonus = 3
)

// Breakdown keys.
const (
	BreakdownBase     = "base"
	BreakdownPerfect  = "perfect"
	BreakdownFirstTry = "firstTry"
)

// ScoringService records quiz attempts and applies the daily points policy.
type ScoringService struct {
	store     ScoreStore
	heroes    HeroRepository
	queue     NotificationQueue
	summaries SummaryPublisher

	now     func() time.Time
	dayKey  DayKeyFunc
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// ScoringOption customizes a ScoringService.
type ScoringOption func(*ScoringService)

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) ScoringOption {
	return func(s *ScoringService) { s.now = now }
}

// WithDayKey overrides the UTC+8 day key.
func WithDayKey(fn DayKeyFunc) ScoringOption {
	return func(s *ScoringService) { s.dayKey = fn }
}

func WithLogger(log logrus.FieldLogger) ScoringOption {
	return func(s *ScoringService) { s.log = log }
}

func WithMetrics(m *metrics.Metrics) ScoringOption {
	return func(s *ScoringService) { s.metrics = m }
}

// WithSummaryPublisher pushes the caller's new summary after every attempt.
func WithSummaryPublisher(p SummaryPublisher) ScoringOption {
	return func(s *ScoringService) { s.summaries = p }
}

// NewScoringService wires the scoring engine. queue may be nil when no
// notifications should be sent.
func NewScoringService(store ScoreStore, heroes HeroRepository, queue NotificationQueue, opts ...ScoringOption) *ScoringService {
	s := &ScoringService{
		store:  store,
		heroes: heroes,
		queue:  queue,
		now:    time.Now,
		dayKey: FixedOffsetDayKey(DefaultDayOffset),
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeBreakdown returns the points an eligible attempt earns. total and
// correct are trusted as given; total == correct counts as perfect even at 0/0.
func ComputeBreakdown(total, correct int) (map[string]int, int, bool) {
	perfect := correct == total
	breakdown := map[string]int{BreakdownBase: PointsPerRight * correct}
	if perfect {
		breakdown[BreakdownPerfect] = PerfectBonus
	}
	breakdown[BreakdownFirstTry] = FirstTryBonus

	sum := 0
	for _, v := range breakdown {
		sum += v
	}
	return breakdown, sum, perfect
}

// RecordAttempt logs an attempt for the calling user and awards points when the
// hero has not been scored today and the daily cap is not reached. Every call
// leaves an attempt row and an award row, even in practice mode.
func (s *ScoringService) RecordAttempt(ctx context.Context, slug string, total, correct int) (domain.AwardResult, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return domain.AwardResult{}, domain.ErrUnauthenticated
	}

	now := s.now()
	day := s.dayKey(now)

	var (
		result      domain.AwardResult
		pointsAfter int
	)
	err := s.store.WithinTx(ctx, id.UserID, func(ctx context.Context, tx ScoreTx) error {
		if err := tx.InsertAttempt(ctx, domain.QuizAttempt{
			UserID:    id.UserID,
			Slug:      slug,
			Total:     total,
			Correct:   correct,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		daily, found, err := tx.Daily(ctx, id.UserID, day)
		if err != nil {
			return err
		}
		if !found {
			daily = domain.QuizDaily{UserID: id.UserID, Day: day, HeroSlugs: []string{}}
			if err := tx.InsertDaily(ctx, daily); err != nil {
				return err
			}
		}

		points, hasPoints, err := tx.Points(ctx, id.UserID)
		if err != nil {
			return err
		}

		eligible := !daily.HasHero(slug) && daily.ScoredCount < DailyCap
		award := domain.QuizAward{
			UserID:    id.UserID,
			Slug:      slug,
			Practice:  !eligible,
			Breakdown: map[string]int{},
			CreatedAt: now,
		}
		isPerfect := correct == total

		if eligible {
			breakdown, awarded, _ := ComputeBreakdown(total, correct)
			award.Points = awarded
			award.Breakdown = breakdown

			if hasPoints {
				points.Points += awarded
				points.UpdatedAt = now
				err = tx.UpdatePoints(ctx, points)
			} else {
				points = domain.QuizPoints{UserID: id.UserID, Points: awarded, UpdatedAt: now}
				err = tx.InsertPoints(ctx, points)
			}
			if err != nil {
				return err
			}

			daily.ScoredCount++
			if !daily.HasHero(slug) {
				daily.HeroSlugs = append(daily.HeroSlugs, slug)
			}
			daily.PerfectToday = daily.PerfectToday || isPerfect
			if err := tx.UpdateDaily(ctx, daily); err != nil {
				return err
			}
		}

		if err := tx.InsertAward(ctx, award); err != nil {
			return err
		}

		pointsAfter = points.Points
		result = domain.AwardResult{
			AwardedPoints:  award.Points,
			Practice:       award.Practice,
			Breakdown:      award.Breakdown,
			IsPerfect:      isPerfect,
			DailyRemaining: max(0, DailyCap-daily.ScoredCount),
		}
		return nil
	})
	if err != nil {
		return domain.AwardResult{}, err
	}

	s.metrics.AttemptRecorded(result.Practice, result.AwardedPoints)
	s.log.WithFields(logrus.Fields{
		"user_id":  id.UserID,
		"slug":     slug,
		"awarded":  result.AwardedPoints,
		"practice": result.Practice,
		"day":      day,
	}).Info("quiz attempt recorded")

	// The attempt is committed; the enqueue must not die with the request.
	s.notify(context.WithoutCancel(ctx), id, slug, total, correct, result)
	if s.summaries != nil {
		s.summaries.Publish(id.UserID, domain.PointsSummary{Total: pointsAfter, DailyRemaining: result.DailyRemaining})
	}
	return result, nil
}

// notify enqueues the result email. Failures never reach the caller.
func (s *ScoringService) notify(ctx context.Context, id auth.Identity, slug string, total, correct int, result domain.AwardResult) {
	if s.queue == nil || id.Email == "" {
		return
	}

	heroName := slug
	if s.heroes != nil {
		hero, err := s.heroes.GetHero(ctx, slug)
		switch {
		case err == nil && hero.Name != "":
			heroName = hero.Name
		case err != nil && !errors.Is(err, domain.ErrHeroNotFound):
			s.log.WithError(err).WithField("slug", slug).Warn("hero lookup for notification failed")
		}
	}

	err := s.queue.Enqueue(ctx, domain.QuizResultNotification{
		Email:     id.Email,
		UserName:  id.Name,
		HeroName:  heroName,
		Total:     total,
		Correct:   correct,
		Awarded:   result.AwardedPoints,
		Practice:  result.Practice,
		Breakdown: result.Breakdown,
	})
	if err != nil {
		s.metrics.NotificationResult("enqueue_failed")
		s.log.WithError(err).WithField("user_id", id.UserID).Warn("enqueue quiz result notification failed")
	}
}
