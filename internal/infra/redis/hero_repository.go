package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"hero-quiz-service/internal/domain"
	"hero-quiz-service/internal/infra/memory"
)

const allHeroesKey = "heroes:all"

// HeroRepository caches hero documents in Redis and falls back to a loader on
// cache miss. Heroes are stored as JSON strings:
//
//	SET hero:{slug}  {hero}
//	SET heroes:all   [{hero}, ...]
type HeroRepository struct {
	client *redis.Client
	loader memory.HeroLoader
	ttl    time.Duration
	log    logrus.FieldLogger
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewHeroRepository(client *redis.Client, loader memory.HeroLoader, ttl time.Duration, log logrus.FieldLogger) *HeroRepository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HeroRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *HeroRepository) GetHero(ctx context.Context, slug string) (domain.Hero, error) {
	key := heroKey(slug)
	var hero domain.Hero
	if r.cached(ctx, key, &hero) {
		return hero, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		var hero domain.Hero
		if r.cached(ctx, key, &hero) {
			return hero, nil
		}
		hero, err := r.loader.LoadHero(ctx, slug)
		if err != nil {
			return domain.Hero{}, err
		}
		r.store(ctx, key, hero)
		return hero, nil
	})
	if err != nil {
		return domain.Hero{}, err
	}
	return result.(domain.Hero), nil
}

func (r *HeroRepository) ListHeroes(ctx context.Context) ([]domain.Hero, error) {
	var heroes []domain.Hero
	if r.cached(ctx, allHeroesKey, &heroes) {
		return heroes, nil
	}

	result, err, _ := r.sf.Do(allHeroesKey, func() (interface{}, error) {
		var heroes []domain.Hero
		if r.cached(ctx, allHeroesKey, &heroes) {
			return heroes, nil
		}
		heroes, err := r.loader.LoadHeroes(ctx)
		if err != nil {
			return nil, err
		}
		r.store(ctx, allHeroesKey, heroes)
		return heroes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Hero), nil
}

// Invalidate removes every cached hero key, e.g. after an import.
func (r *HeroRepository) Invalidate(ctx context.Context) error {
	keys := []string{allHeroesKey}
	iter := r.client.Scan(ctx, 0, "hero:*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return r.client.Del(ctx, keys...).Err()
}

// cached decodes key into dst. Redis errors count as a miss so the loader
// keeps serving when the cache is down.
func (r *HeroRepository) cached(ctx context.Context, key string, dst any) bool {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WithError(err).WithField("key", key).Warn("hero cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.log.WithError(err).WithField("key", key).Warn("dropping undecodable hero cache entry")
		return false
	}
	return true
}

func (r *HeroRepository) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err(); err != nil {
		r.log.WithError(err).WithField("key", key).Warn("hero cache write failed")
	}
}

func heroKey(slug string) string {
	return "hero:" + slug
}

func (r *HeroRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
