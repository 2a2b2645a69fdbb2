package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"hero-quiz-service/internal/config"
	"hero-quiz-service/internal/infra/sqlstore/migrations"
	"hero-quiz-service/internal/logging"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logging.New(serviceName, cfg.Log.Level)

			db, err := openDB(cfg, log)
			if err != nil {
				return err
			}
			if db == nil {
				return fmt.Errorf("no database configured: set postgres.url or sqlite.path")
			}
			defer db.Close()
			return runMigrations(cmd.Context(), db, log)
		},
	}
}

func runMigrations(ctx context.Context, db *bun.DB, log logrus.FieldLogger) error {
	group, err := migrations.Apply(ctx, db)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("database is up to date")
		return nil
	}
	log.WithField("group", group.String()).Info("migrations applied")
	return nil
}
