package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"hero-quiz-service/internal/aiquiz"
	"hero-quiz-service/internal/app"
	"hero-quiz-service/internal/config"
	"hero-quiz-service/internal/domain"
	"hero-quiz-service/internal/infra/memory"
	"hero-quiz-service/internal/infra/postgres"
	redisinfra "hero-quiz-service/internal/infra/redis"
	"hero-quiz-service/internal/infra/sqlstore"
	"hero-quiz-service/internal/llm"
	"hero-quiz-service/internal/notify"
	"hero-quiz-service/internal/quiz"
)

const serviceName = "hero-quiz-service"

// openDB opens Postgres when configured, else SQLite, else returns nil.
func openDB(cfg config.Config, log logrus.FieldLogger) (*bun.DB, error) {
	switch {
	case cfg.Postgres.URL != "":
		return sqlstore.Open(sqlstore.DriverPostgres, cfg.Postgres.URL, log)
	case cfg.SQLite.Path != "":
		return sqlstore.Open(sqlstore.DriverSQLite, cfg.SQLite.Path, log)
	default:
		return nil, nil
	}
}

func openRedis(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func newRedisHeroCache(client *redis.Client, cfg config.Config, log logrus.FieldLogger) *redisinfra.HeroRepository {
	// The loader is never reached by Invalidate; reads go through the wired repository.
	return redisinfra.NewHeroRepository(client, memory.NewStaticHeroLoader(nil), heroTTL(cfg), log)
}

func heroTTL(cfg config.Config) time.Duration {
	ttl := cfg.Heroes.TTL
	if ttl == "" {
		ttl = cfg.Redis.TTL
	}
	return config.TTLDuration(ttl, 10*time.Minute)
}

// backends holds every storage handle the server owns.
type backends struct {
	db     *bun.DB
	pool   *pgxpool.Pool
	redis  *redis.Client
	loader memory.HeroLoader
	writer app.HeroWriter
	scores app.ScoreStore
	outbox notify.Outbox
	queue  app.NotificationQueue
}

func (b *backends) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}

// openBackends picks Postgres, SQLite or in-memory storage from cfg and
// applies migrations to whichever database is chosen.
func openBackends(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*backends, error) {
	b := &backends{redis: openRedis(cfg)}

	db, err := openDB(cfg, log)
	if err != nil {
		b.Close()
		return nil, err
	}
	if db == nil {
		heroes, err := loadHeroFile(cfg.Heroes.File, log)
		if err != nil {
			b.Close()
			return nil, err
		}
		outbox := memory.NewOutbox()
		b.loader = memory.NewStaticHeroLoader(heroes)
		b.scores = memory.NewScoreStore()
		b.outbox, b.queue = outbox, outbox
		log.WithField("heroes", len(heroes)).Warn("no database configured, using in-memory storage")
		return b, nil
	}

	b.db = db
	if err := runMigrations(ctx, db, log); err != nil {
		b.Close()
		return nil, err
	}
	store := sqlstore.NewHeroStore(db)
	outbox := sqlstore.NewOutbox(db)
	b.loader, b.writer = store, store
	b.scores = sqlstore.NewScoreStore(db, log)
	b.outbox, b.queue = outbox, outbox

	if cfg.Postgres.URL != "" {
		b.pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.loader = postgres.NewHeroLoader(b.pool)
	}
	return b, nil
}

// loadHeroFile reads an import file for the in-memory catalog. An empty
// path yields an empty catalog.
func loadHeroFile(path string, log logrus.FieldLogger) ([]domain.Hero, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hero file: %w", err)
	}
	defer f.Close()

	records, err := app.ParseRecords(f)
	if err != nil {
		return nil, err
	}
	heroes, skipped := app.NewHeroService(nil, nil, log).Normalize(records)
	if skipped > 0 {
		log.WithFields(logrus.Fields{"file": path, "skipped": skipped}).Warn("hero records skipped")
	}
	return heroes, nil
}

func newHeroRepository(b *backends, cfg config.Config, log logrus.FieldLogger) app.HeroRepository {
	if b.redis != nil {
		return redisinfra.NewHeroRepository(b.redis, b.loader, heroTTL(cfg), log)
	}
	return memory.NewHeroRepository(b.loader, heroTTL(cfg))
}

// newAIGenerator returns nil when no model provider is configured.
func newAIGenerator(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*aiquiz.Generator, error) {
	if cfg.LLM.Provider == "" && cfg.LLM.APIKey == "" {
		log.Info("no LLM provider configured, AI quizzes disabled")
		return nil, nil
	}
	gen, err := llm.New(ctx, llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
	}, log)
	if err != nil {
		return nil, err
	}
	return aiquiz.NewGenerator(gen, cfg.LLM.Temperature), nil
}

func newMailer(cfg config.Config, log logrus.FieldLogger) notify.Mailer {
	if cfg.Mail.APIKey == "" {
		return notify.NewLogMailer(log)
	}
	return notify.NewResendMailer(cfg.Mail.APIKey, cfg.Mail.From)
}

// newSynthesizer seeds question synthesis from cfg; 0 means the wall clock.
func newSynthesizer(seed int64) *quiz.Synthesizer {
	if seed == 0 {
		return quiz.NewSynthesizer(nil)
	}
	return quiz.NewSynthesizer(rand.New(rand.NewSource(seed)))
}
