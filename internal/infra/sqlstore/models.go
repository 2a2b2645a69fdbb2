package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
	"hero-quiz-service/internal/domain"
)

// HeroModel stores the full hero document next to the columns it is queried by.
type HeroModel struct {
	bun.BaseModel `bun:"table:heroes,alias:h"`

	Slug      string      `bun:"slug,pk"`
	Name      string      `bun:"name,notnull"`
	Era       string      `bun:"era,notnull"`
	Data      domain.Hero `bun:"data,notnull"`
	UpdatedAt time.Time   `bun:"updated_at,notnull"`
}

type AttemptModel struct {
	bun.BaseModel `bun:"table:quiz_attempts,alias:qa"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id,notnull"`
	Slug      string    `bun:"slug,notnull"`
	Total     int       `bun:"total,notnull"`
	Correct   int       `bun:"correct,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type DailyModel struct {
	bun.BaseModel `bun:"table:quiz_daily,alias:qd"`

	UserID       string   `bun:"user_id,pk"`
	Day          string   `bun:"day,pk"`
	ScoredCount  int      `bun:"scored_count,notnull"`
	HeroSlugs    []string `bun:"hero_slugs,notnull"`
	PerfectToday bool     `bun:"perfect_today,notnull"`
}

type PointsModel struct {
	bun.BaseModel `bun:"table:quiz_points,alias:qp"`

	UserID    string    `bun:"user_id,pk"`
	Points    int       `bun:"points,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// AwardModel ids are UUIDv7, so they sort in insertion order.
type AwardModel struct {
	bun.BaseModel `bun:"table:quiz_awards,alias:qw"`

	ID        string         `bun:"id,pk"`
	UserID    string         `bun:"user_id,notnull"`
	Slug      string         `bun:"slug,notnull"`
	Points    int            `bun:"points,notnull"`
	Practice  bool           `bun:"practice,notnull"`
	Breakdown map[string]int `bun:"breakdown,notnull"`
	CreatedAt time.Time      `bun:"created_at,notnull"`
}

type OutboxModel struct {
	bun.BaseModel `bun:"table:notification_outbox,alias:ob"`

	ID          string                        `bun:"id,pk"`
	Payload     domain.QuizResultNotification `bun:"payload,notnull"`
	Attempts    int                           `bun:"attempts,notnull"`
	LastError   string                        `bun:"last_error,nullzero"`
	CreatedAt   time.Time                     `bun:"created_at,notnull"`
	DeliveredAt time.Time                     `bun:"delivered_at,nullzero"`
	DeadAt      time.Time                     `bun:"dead_at,nullzero"`
}

func dailyFromModel(m DailyModel) domain.QuizDaily {
	slugs := m.HeroSlugs
	if slugs == nil {
		slugs = []string{}
	}
	return domain.QuizDaily{
		UserID:       m.UserID,
		Day:          m.Day,
		ScoredCount:  m.ScoredCount,
		HeroSlugs:    slugs,
		PerfectToday: m.PerfectToday,
	}
}

func dailyToModel(d domain.QuizDaily) *DailyModel {
	slugs := d.HeroSlugs
	if slugs == nil {
		slugs = []string{}
	}
	return &DailyModel{
		UserID:       d.UserID,
		Day:          d.Day,
		ScoredCount:  d.ScoredCount,
		HeroSlugs:    slugs,
		PerfectToday: d.PerfectToday,
	}
}
