package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"hero-quiz-service/internal/infra/sqlstore"
)

func init() {
	models := []any{
		(*sqlstore.AttemptModel)(nil),
		(*sqlstore.DailyModel)(nil),
		(*sqlstore.PointsModel)(nil),
		(*sqlstore.AwardModel)(nil),
	}

	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if err := createTables(ctx, db, models...); err != nil {
				return err
			}
			if _, err := db.NewCreateIndex().
				Model((*sqlstore.AttemptModel)(nil)).
				Index("quiz_attempts_user_created_idx").
				Column("user_id", "created_at").
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
			_, err := db.NewCreateIndex().
				Model((*sqlstore.AwardModel)(nil)).
				Index("quiz_awards_user_created_idx").
				Column("user_id", "created_at").
				IfNotExists().
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			return dropTables(ctx, db, models...)
		},
	)
}
