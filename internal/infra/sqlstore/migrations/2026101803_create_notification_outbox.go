package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"hero-quiz-service/internal/infra/sqlstore"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if err := createTables(ctx, db, (*sqlstore.OutboxModel)(nil)); err != nil {
				return err
			}
			_, err := db.NewCreateIndex().
				Model((*sqlstore.OutboxModel)(nil)).
				Index("notification_outbox_pending_idx").
				Column("created_at").
				Where("delivered_at IS NULL AND dead_at IS NULL").
				IfNotExists().
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			return dropTables(ctx, db, (*sqlstore.OutboxModel)(nil))
		},
	)
}
