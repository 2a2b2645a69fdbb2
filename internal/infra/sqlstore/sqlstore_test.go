package sqlstore_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"hero-quiz-service/internal/app"
	"hero-quiz-service/internal/auth"
	"hero-quiz-service/internal/domain"
	"hero-quiz-service/internal/infra/sqlstore"
	"hero-quiz-service/internal/infra/sqlstore/migrations"
)

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sqlstore.Open(sqlstore.DriverSQLite, sqlstore.MemoryDSN(name), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = migrations.Apply(context.Background(), db)
	require.NoError(t, err)
	return db
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := openTestDB(t)
	group, err := migrations.Apply(context.Background(), db)
	require.NoError(t, err)
	assert.True(t, group.IsZero(), "second run must find nothing to apply")
}

func TestHeroStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := sqlstore.NewHeroStore(openTestDB(t))

	heroes := []domain.Hero{
		{Slug: "kartini", Name: "R.A. Kartini", Era: domain.EraColonialWars, Birth: &domain.LifeEvent{Date: "21-04-1879", Place: "Jepara"}},
		{Slug: "bung-tomo", Name: "Bung Tomo", Era: domain.EraRevolution, Highlights: []string{"Pidato radio 10 November."}},
	}
	n, err := store.UpsertHeroes(ctx, heroes, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := store.LoadHero(ctx, "kartini")
	require.NoError(t, err)
	assert.Equal(t, heroes[0], got)

	renamed := heroes[0]
	renamed.Name = "Raden Ajeng Kartini"
	n, err = store.UpsertHeroes(ctx, []domain.Hero{renamed}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "existing slugs are kept without overwrite")

	n, err = store.UpsertHeroes(ctx, []domain.Hero{renamed}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := store.LoadHeroes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bung-tomo", all[0].Slug)
	assert.Equal(t, "Raden Ajeng Kartini", all[1].Name)

	_, err = store.LoadHero(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrHeroNotFound)
}

func TestScoreStoreWithScoringService(t *testing.T) {
	db := openTestDB(t)
	store := sqlstore.NewScoreStore(db, nil)
	now := time.Date(2026, 10, 18, 4, 0, 0, 0, time.UTC)
	scoring := app.NewScoringService(store, nil, nil, app.WithClock(func() time.Time { return now }))
	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: "u1"})

	first, err := scoring.RecordAttempt(ctx, "kartini", 5, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.AwardResult{
		AwardedPoints:  63,
		Breakdown:      map[string]int{"base": 50, "perfect": 10, "firstTry": 3},
		IsPerfect:      true,
		DailyRemaining: 4,
	}, first)

	again, err := scoring.RecordAttempt(ctx, "kartini", 5, 4)
	require.NoError(t, err)
	assert.True(t, again.Practice)
	assert.Equal(t, 0, again.AwardedPoints)

	_, err = scoring.RecordAttempt(ctx, "bung-tomo", 5, 1)
	require.NoError(t, err)

	points, ok, err := store.Points(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 63+13, points.Points)

	daily, ok, err := store.Daily(context.Background(), "u1", "2026-10-18")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, daily.ScoredCount)
	assert.Equal(t, []string{"kartini", "bung-tomo"}, daily.HeroSlugs)
	assert.True(t, daily.PerfectToday)

	awards, err := store.Awards(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, awards, 3)
	assert.Equal(t, "bung-tomo", awards[0].Slug)
	assert.True(t, awards[1].Practice)
	assert.Empty(t, awards[1].Breakdown)
	assert.Equal(t, "kartini", awards[2].Slug)

	attempts, err := store.Attempts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, attempts, 3)
}

func TestScoreStoreRollsBack(t *testing.T) {
	store := sqlstore.NewScoreStore(openTestDB(t), nil)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, "u1", func(ctx context.Context, tx app.ScoreTx) error {
		require.NoError(t, tx.InsertPoints(ctx, domain.QuizPoints{UserID: "u1", Points: 10, UpdatedAt: time.Now()}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok, err := store.Points(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScoreStoreUpdateMissingRow(t *testing.T) {
	store := sqlstore.NewScoreStore(openTestDB(t), nil)
	err := store.WithinTx(context.Background(), "u1", func(ctx context.Context, tx app.ScoreTx) error {
		return tx.UpdatePoints(ctx, domain.QuizPoints{UserID: "u1", Points: 1})
	})
	assert.Error(t, err)
}

func TestScoreStoreConcurrentAttemptsRespectCap(t *testing.T) {
	store := sqlstore.NewScoreStore(openTestDB(t), nil)
	scoring := app.NewScoringService(store, nil, nil)
	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: "u1"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := scoring.RecordAttempt(ctx, "hero-"+string(rune('a'+i)), 5, 5)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	points, _, err := store.Points(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, app.DailyCap*63, points.Points)
}

func TestOutboxStore(t *testing.T) {
	ctx := context.Background()
	outbox := sqlstore.NewOutbox(openTestDB(t))

	require.NoError(t, outbox.Enqueue(ctx, domain.QuizResultNotification{Email: "a@x.id", HeroName: "Hatta", Total: 5, Correct: 4}))
	require.NoError(t, outbox.Enqueue(ctx, domain.QuizResultNotification{Email: "b@x.id", HeroName: "Hatta"}))
	require.NoError(t, outbox.Enqueue(ctx, domain.QuizResultNotification{Email: "c@x.id", HeroName: "Hatta"}))

	jobs, err := outbox.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "a@x.id", jobs[0].Notification.Email)
	assert.Equal(t, 4, jobs[0].Notification.Correct)

	require.NoError(t, outbox.MarkDelivered(ctx, jobs[0].ID))
	require.NoError(t, outbox.MarkFailed(ctx, jobs[1].ID, errors.New("timeout"), false))
	require.NoError(t, outbox.MarkFailed(ctx, jobs[2].ID, errors.New("rejected"), true))

	jobs, err = outbox.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "b@x.id", jobs[0].Notification.Email)
	assert.Equal(t, 1, jobs[0].Attempts)

	assert.Error(t, outbox.MarkDelivered(ctx, "missing"))
}
