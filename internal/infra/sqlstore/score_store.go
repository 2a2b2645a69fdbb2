package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"hero-quiz-service/internal/app"
	"hero-quiz-service/internal/domain"
)

const (
	maxTxAttempts = 10
	retryBackoff  = 5 * time.Millisecond
)

// ScoreStore keeps attempts, daily counters, point totals and awards in SQL.
// On Postgres every transaction runs SERIALIZABLE with row locks and is
// retried on serialization failures, deadlocks and racing first inserts.
type ScoreStore struct {
	db  *bun.DB
	log logrus.FieldLogger
}

func NewScoreStore(db *bun.DB, log logrus.FieldLogger) *ScoreStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ScoreStore{db: db, log: log}
}

func (s *ScoreStore) WithinTx(ctx context.Context, userID string, fn func(ctx context.Context, tx app.ScoreTx) error) error {
	var opts *sql.TxOptions
	if isPostgres(s.db) {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
			return fn(ctx, &scoreTx{db: tx, lock: isPostgres(tx)})
		})
		if err == nil || !retryable(err) || ctx.Err() != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{"user_id": userID, "attempt": attempt}).WithError(err).Debug("retrying score transaction")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt)*retryBackoff + time.Duration(rand.Int63n(int64(retryBackoff)))):
		}
	}
	return fmt.Errorf("score transaction for %s: %w", userID, err)
}

func (s *ScoreStore) Points(ctx context.Context, userID string) (domain.QuizPoints, bool, error) {
	return loadPoints(ctx, s.db, userID, false)
}

func (s *ScoreStore) Daily(ctx context.Context, userID, day string) (domain.QuizDaily, bool, error) {
	return loadDaily(ctx, s.db, userID, day, false)
}

func (s *ScoreStore) Awards(ctx context.Context, userID string, limit int) ([]domain.QuizAward, error) {
	var rows []AwardModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		OrderExpr("created_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load awards: %w", err)
	}
	out := make([]domain.QuizAward, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.QuizAward{
			UserID:    r.UserID,
			Slug:      r.Slug,
			Points:    r.Points,
			Practice:  r.Practice,
			Breakdown: r.Breakdown,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// Attempts returns every attempt logged for userID, oldest first.
func (s *ScoreStore) Attempts(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	var rows []AttemptModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	out := make([]domain.QuizAttempt, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.QuizAttempt{UserID: r.UserID, Slug: r.Slug, Total: r.Total, Correct: r.Correct, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

type scoreTx struct {
	db   bun.IDB
	lock bool
}

func (t *scoreTx) InsertAttempt(ctx context.Context, a domain.QuizAttempt) error {
	_, err := t.db.NewInsert().Model(&AttemptModel{
		ID:        newID(),
		UserID:    a.UserID,
		Slug:      a.Slug,
		Total:     a.Total,
		Correct:   a.Correct,
		CreatedAt: a.CreatedAt.UTC(),
	}).Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (t *scoreTx) Daily(ctx context.Context, userID, day string) (domain.QuizDaily, bool, error) {
	return loadDaily(ctx, t.db, userID, day, t.lock)
}

func (t *scoreTx) InsertDaily(ctx context.Context, d domain.QuizDaily) error {
	if _, err := t.db.NewInsert().Model(dailyToModel(d)).Exec(ctx); err != nil {
		return fmt.Errorf("insert daily: %w", err)
	}
	return nil
}

func (t *scoreTx) UpdateDaily(ctx context.Context, d domain.QuizDaily) error {
	res, err := t.db.NewUpdate().Model(dailyToModel(d)).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update daily: %w", err)
	}
	return expectOneRow(res, "daily %s/%s", d.UserID, d.Day)
}

func (t *scoreTx) Points(ctx context.Context, userID string) (domain.QuizPoints, bool, error) {
	return loadPoints(ctx, t.db, userID, t.lock)
}

func (t *scoreTx) InsertPoints(ctx context.Context, p domain.QuizPoints) error {
	_, err := t.db.NewInsert().Model(&PointsModel{UserID: p.UserID, Points: p.Points, UpdatedAt: p.UpdatedAt.UTC()}).Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert points: %w", err)
	}
	return nil
}

func (t *scoreTx) UpdatePoints(ctx context.Context, p domain.QuizPoints) error {
	res, err := t.db.NewUpdate().
		Model(&PointsModel{UserID: p.UserID, Points: p.Points, UpdatedAt: p.UpdatedAt.UTC()}).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update points: %w", err)
	}
	return expectOneRow(res, "points %s", p.UserID)
}

func (t *scoreTx) InsertAward(ctx context.Context, a domain.QuizAward) error {
	breakdown := a.Breakdown
	if breakdown == nil {
		breakdown = map[string]int{}
	}
	_, err := t.db.NewInsert().Model(&AwardModel{
		ID:        newID(),
		UserID:    a.UserID,
		Slug:      a.Slug,
		Points:    a.Points,
		Practice:  a.Practice,
		Breakdown: breakdown,
		CreatedAt: a.CreatedAt.UTC(),
	}).Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert award: %w", err)
	}
	return nil
}

func loadDaily(ctx context.Context, db bun.IDB, userID, day string, lock bool) (domain.QuizDaily, bool, error) {
	var row DailyModel
	q := db.NewSelect().Model(&row).Where("user_id = ?", userID).Where("day = ?", day)
	if lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.QuizDaily{}, false, nil
		}
		return domain.QuizDaily{}, false, fmt.Errorf("load daily: %w", err)
	}
	return dailyFromModel(row), true, nil
}

func loadPoints(ctx context.Context, db bun.IDB, userID string, lock bool) (domain.QuizPoints, bool, error) {
	var row PointsModel
	q := db.NewSelect().Model(&row).Where("user_id = ?", userID)
	if lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.QuizPoints{}, false, nil
		}
		return domain.QuizPoints{}, false, fmt.Errorf("load points: %w", err)
	}
	return domain.QuizPoints{UserID: row.UserID, Points: row.Points, UpdatedAt: row.UpdatedAt}, true, nil
}

func expectOneRow(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf(format+" not found", args...)
	}
	return nil
}

// retryable reports Postgres errors that a fresh transaction can fix:
// serialization_failure, deadlock_detected and unique_violation.
func retryable(err error) bool {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Field('C') {
	case "40001", "40P01", "23505":
		return true
	}
	return false
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
