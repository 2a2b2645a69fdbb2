package memory

import (
	"context"
	"fmt"
	"sync"

	"hero-quiz-service/internal/app"
	"hero-quiz-service/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreStore. Transactions
// are serialized per user and their writes become visible only on success.
type ScoreStore struct {
	mu        sync.RWMutex
	userLocks map[string]*sync.Mutex
	attempts  []domain.QuizAttempt
	daily     map[dailyKey]domain.QuizDaily
	points    map[string]domain.QuizPoints
	awards    map[string][]domain.QuizAward
}

type dailyKey struct {
	userID string
	day    string
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		userLocks: make(map[string]*sync.Mutex),
		daily:     make(map[dailyKey]domain.QuizDaily),
		points:    make(map[string]domain.QuizPoints),
		awards:    make(map[string][]domain.QuizAward),
	}
}

func (s *ScoreStore) WithinTx(ctx context.Context, userID string, fn func(ctx context.Context, tx app.ScoreTx) error) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	tx := &scoreTx{
		store:  s,
		daily:  make(map[dailyKey]domain.QuizDaily),
		points: make(map[string]domain.QuizPoints),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, tx.attempts...)
	for k, d := range tx.daily {
		s.daily[k] = d
	}
	for k, p := range tx.points {
		s.points[k] = p
	}
	for _, a := range tx.awards {
		s.awards[a.UserID] = append(s.awards[a.UserID], a)
	}
	return nil
}

func (s *ScoreStore) Points(_ context.Context, userID string) (domain.QuizPoints, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.points[userID]
	return p, ok, nil
}

func (s *ScoreStore) Daily(_ context.Context, userID, day string) (domain.QuizDaily, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.daily[dailyKey{userID, day}]
	return copyDaily(d), ok, nil
}

func (s *ScoreStore) Awards(_ context.Context, userID string, limit int) ([]domain.QuizAward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.awards[userID]
	limit = max(0, limit)
	out := make([]domain.QuizAward, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// Attempts returns every attempt recorded for userID, oldest first.
func (s *ScoreStore) Attempts(userID string) []domain.QuizAttempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.QuizAttempt
	for _, a := range s.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

func (s *ScoreStore) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	return l
}

type scoreTx struct {
	store    *ScoreStore
	attempts []domain.QuizAttempt
	daily    map[dailyKey]domain.QuizDaily
	points   map[string]domain.QuizPoints
	awards   []domain.QuizAward
}

func (t *scoreTx) InsertAttempt(_ context.Context, a domain.QuizAttempt) error {
	t.attempts = append(t.attempts, a)
	return nil
}

func (t *scoreTx) Daily(ctx context.Context, userID, day string) (domain.QuizDaily, bool, error) {
	if d, ok := t.daily[dailyKey{userID, day}]; ok {
		return copyDaily(d), true, nil
	}
	return t.store.Daily(ctx, userID, day)
}

func (t *scoreTx) InsertDaily(ctx context.Context, d domain.QuizDaily) error {
	if _, exists, _ := t.Daily(ctx, d.UserID, d.Day); exists {
		return fmt.Errorf("daily %s/%s already exists", d.UserID, d.Day)
	}
	t.daily[dailyKey{d.UserID, d.Day}] = copyDaily(d)
	return nil
}

func (t *scoreTx) UpdateDaily(ctx context.Context, d domain.QuizDaily) error {
	if _, exists, _ := t.Daily(ctx, d.UserID, d.Day); !exists {
		return fmt.Errorf("daily %s/%s not found", d.UserID, d.Day)
	}
	t.daily[dailyKey{d.UserID, d.Day}] = copyDaily(d)
	return nil
}

func (t *scoreTx) Points(ctx context.Context, userID string) (domain.QuizPoints, bool, error) {
	if p, ok := t.points[userID]; ok {
		return p, true, nil
	}
	return t.store.Points(ctx, userID)
}

func (t *scoreTx) InsertPoints(ctx context.Context, p domain.QuizPoints) error {
	if _, exists, _ := t.Points(ctx, p.UserID); exists {
		return fmt.Errorf("points for %s already exist", p.UserID)
	}
	t.points[p.UserID] = p
	return nil
}

func (t *scoreTx) UpdatePoints(ctx context.Context, p domain.QuizPoints) error {
	if _, exists, _ := t.Points(ctx, p.UserID); !exists {
		return fmt.Errorf("points for %s not found", p.UserID)
	}
	t.points[p.UserID] = p
	return nil
}

func (t *scoreTx) InsertAward(_ context.Context, a domain.QuizAward) error {
	breakdown := make(map[string]int, len(a.Breakdown))
	for k, v := range a.Breakdown {
		breakdown[k] = v
	}
	a.Breakdown = breakdown
	t.awards = append(t.awards, a)
	return nil
}

func copyDaily(d domain.QuizDaily) domain.QuizDaily {
	if d.HeroSlugs != nil {
		d.HeroSlugs = append([]string(nil), d.HeroSlugs...)
	}
	return d
}
