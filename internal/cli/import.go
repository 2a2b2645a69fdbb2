package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"hero-quiz-service/internal/app"
	"hero-quiz-service/internal/config"
	"hero-quiz-service/internal/infra/sqlstore"
	"hero-quiz-service/internal/logging"
)

// NewImportHeroesCmd loads a hero import file into the configured database.
func NewImportHeroesCmd(configPath *string) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "import-heroes <file.json>",
		Short: "Import hero records from a JSON array file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
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
			if err := runMigrations(ctx, db, log); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			records, err := app.ParseRecords(f)
			if err != nil {
				return err
			}

			heroes := app.NewHeroService(nil, sqlstore.NewHeroStore(db), log)
			report, err := heroes.Import(ctx, records, overwrite)
			if err != nil {
				return err
			}
			if client := openRedis(cfg); client != nil {
				defer client.Close()
				if err := newRedisHeroCache(client, cfg, log).Invalidate(ctx); err != nil {
					log.WithError(err).Warn("hero cache invalidation failed")
				}
			}

			log.WithFields(logrus.Fields{
				"file":     args[0],
				"upserted": report.Upserted,
				"skipped":  report.Skipped,
			}).Info("heroes imported")
			fmt.Fprintf(cmd.OutOrStdout(), "upserted %d, skipped %d\n", report.Upserted, report.Skipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace heroes whose slug already exists")
	return cmd
}
