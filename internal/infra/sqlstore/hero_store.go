package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"hero-quiz-service/internal/domain"
)

// HeroStore reads and writes hero documents. It serves as the hero loader on
// SQLite and as the import writer on both dialects.
type HeroStore struct {
	db    *bun.DB
	clock func() time.Time
}

func NewHeroStore(db *bun.DB) *HeroStore {
	return &HeroStore{db: db, clock: time.Now}
}

func (s *HeroStore) LoadHero(ctx context.Context, slug string) (domain.Hero, error) {
	var row HeroModel
	err := s.db.NewSelect().Model(&row).Where("slug = ?", slug).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hero{}, domain.ErrHeroNotFound
	}
	if err != nil {
		return domain.Hero{}, fmt.Errorf("load hero: %w", err)
	}
	return row.Data, nil
}

func (s *HeroStore) LoadHeroes(ctx context.Context) ([]domain.Hero, error) {
	var rows []HeroModel
	if err := s.db.NewSelect().Model(&rows).Order("slug").Scan(ctx); err != nil {
		return nil, fmt.Errorf("load heroes: %w", err)
	}
	out := make([]domain.Hero, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Data)
	}
	return out, nil
}

// UpsertHeroes inserts heroes and, when overwrite is set, replaces existing
// slugs. It returns the number of rows written.
func (s *HeroStore) UpsertHeroes(ctx context.Context, heroes []domain.Hero, overwrite bool) (int, error) {
	if len(heroes) == 0 {
		return 0, nil
	}
	now := s.clock().UTC()
	rows := make([]HeroModel, 0, len(heroes))
	for _, h := range heroes {
		rows = append(rows, HeroModel{Slug: h.Slug, Name: h.Name, Era: string(h.Era), Data: h, UpdatedAt: now})
	}

	q := s.db.NewInsert().Model(&rows)
	if overwrite {
		q = q.On("CONFLICT (slug) DO UPDATE").
			Set("name = EXCLUDED.name").
			Set("era = EXCLUDED.era").
			Set("data = EXCLUDED.data").
			Set("updated_at = EXCLUDED.updated_at")
	} else {
		q = q.On("CONFLICT (slug) DO NOTHING")
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("upsert heroes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
