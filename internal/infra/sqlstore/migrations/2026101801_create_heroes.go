package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"hero-quiz-service/internal/infra/sqlstore"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if err := createTables(ctx, db, (*sqlstore.HeroModel)(nil)); err != nil {
				return err
			}
			_, err := db.NewCreateIndex().
				Model((*sqlstore.HeroModel)(nil)).
				Index("heroes_era_idx").
				Column("era").
				IfNotExists().
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			return dropTables(ctx, db, (*sqlstore.HeroModel)(nil))
		},
	)
}
