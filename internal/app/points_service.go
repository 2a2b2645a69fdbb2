package app

import (
	"context"
	"errors"
	"time"

	"hero-quiz-service/internal/auth"
	"hero-quiz-service/internal/domain"
)

const (
	DefaultAwardsLimit = 20
	MaxAwardsLimit     = 100
)

// PointsService is the read side of scoring.
type PointsService struct {
	store  ScoreStore
	heroes HeroRepository
	now    func() time.Time
	dayKey DayKeyFunc
}

// NewPointsService builds a PointsService. dayKey must be the same function the
// ScoringService uses; nil selects the default UTC+8 key.
func NewPointsService(store ScoreStore, heroes HeroRepository, dayKey DayKeyFunc) *PointsService {
	if dayKey == nil {
		dayKey = FixedOffsetDayKey(DefaultDayOffset)
	}
	return &PointsService{store: store, heroes: heroes, now: time.Now, dayKey: dayKey}
}

// Summary returns the caller's total and remaining scored attempts today.
// Anonymous callers get {0, DailyCap}.
func (s *PointsService) Summary(ctx context.Context) (domain.PointsSummary, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return domain.PointsSummary{Total: 0, DailyRemaining: DailyCap}, nil
	}
	return s.SummaryFor(ctx, id.UserID)
}

// SummaryFor is Summary for an explicit user id.
func (s *PointsService) SummaryFor(ctx context.Context, userID string) (domain.PointsSummary, error) {
	points, _, err := s.store.Points(ctx, userID)
	if err != nil {
		return domain.PointsSummary{}, err
	}
	daily, _, err := s.store.Daily(ctx, userID, s.dayKey(s.now()))
	if err != nil {
		return domain.PointsSummary{}, err
	}
	return domain.PointsSummary{
		Total:          points.Points,
		DailyRemaining: max(0, DailyCap-daily.ScoredCount),
	}, nil
}

// ClampAwardsLimit applies the default of 20 and bounds [1, 100].
func ClampAwardsLimit(limit int) int {
	if limit == 0 {
		limit = DefaultAwardsLimit
	}
	return max(1, min(MaxAwardsLimit, limit))
}

// Awards returns the caller's award history, newest first, with hero names
// resolved. Anonymous callers get an empty list.
func (s *PointsService) Awards(ctx context.Context, limit int) ([]domain.AwardHistoryEntry, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return []domain.AwardHistoryEntry{}, nil
	}

	awards, err := s.store.Awards(ctx, id.UserID, ClampAwardsLimit(limit))
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	out := make([]domain.AwardHistoryEntry, 0, len(awards))
	for _, a := range awards {
		name, seen := names[a.Slug]
		if !seen {
			name, err = s.heroName(ctx, a.Slug)
			if err != nil {
				return nil, err
			}
			names[a.Slug] = name
		}
		breakdown := a.Breakdown
		if breakdown == nil {
			breakdown = map[string]int{}
		}
		out = append(out, domain.AwardHistoryEntry{
			Slug:      a.Slug,
			HeroName:  name,
			Points:    a.Points,
			Practice:  a.Practice,
			Breakdown: breakdown,
			CreatedAt: a.CreatedAt,
		})
	}
	return out, nil
}

func (s *PointsService) heroName(ctx context.Context, slug string) (string, error) {
	if s.heroes == nil {
		return slug, nil
	}
	hero, err := s.heroes.GetHero(ctx, slug)
	if errors.Is(err, domain.ErrHeroNotFound) || (err == nil && hero.Name == "") {
		return slug, nil
	}
	if err != nil {
		return "", err
	}
	return hero.Name, nil
}
