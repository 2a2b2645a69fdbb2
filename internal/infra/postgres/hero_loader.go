package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"hero-quiz-service/internal/domain"
)

// HeroLoader loads hero JSONB documents from Postgres.
type HeroLoader struct {
	pool *pgxpool.Pool
}

func NewHeroLoader(pool *pgxpool.Pool) *HeroLoader {
	return &HeroLoader{pool: pool}
}

func (l *HeroLoader) LoadHero(ctx context.Context, slug string) (domain.Hero, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM heroes WHERE slug=$1`, slug).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Hero{}, domain.ErrHeroNotFound
	}
	if err != nil {
		return domain.Hero{}, fmt.Errorf("load hero: %w", err)
	}
	var hero domain.Hero
	if err := json.Unmarshal(raw, &hero); err != nil {
		return domain.Hero{}, fmt.Errorf("unmarshal hero: %w", err)
	}
	return hero, nil
}

func (l *HeroLoader) LoadHeroes(ctx context.Context) ([]domain.Hero, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM heroes ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("load heroes: %w", err)
	}
	defer rows.Close()

	var heroes []domain.Hero
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan hero: %w", err)
		}
		var hero domain.Hero
		if err := json.Unmarshal(raw, &hero); err != nil {
			return nil, fmt.Errorf("unmarshal hero: %w", err)
		}
		heroes = append(heroes, hero)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load heroes: %w", err)
	}
	return heroes, nil
}
