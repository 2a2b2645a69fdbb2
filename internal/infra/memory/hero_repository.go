package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"hero-quiz-service/internal/domain"
)

// HeroLoader fetches hero records from a backing store (e.g., document DB).
type HeroLoader interface {
	LoadHero(ctx context.Context, slug string) (domain.Hero, error)
	LoadHeroes(ctx context.Context) ([]domain.Hero, error)
}

const allHeroesKey = "\x00all"

// HeroRepository caches heroes with TTL to avoid repeated DB hits.
type HeroRepository struct {
	loader HeroLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu     sync.RWMutex
	heroes map[string]cachedHero
	all    *cachedList
}

type cachedHero struct {
	hero      domain.Hero
	expiresAt time.Time
}

type cachedList struct {
	heroes    []domain.Hero
	expiresAt time.Time
}

func NewHeroRepository(loader HeroLoader, ttl time.Duration) *HeroRepository {
	return &HeroRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		heroes: make(map[string]cachedHero),
	}
}

func (r *HeroRepository) GetHero(ctx context.Context, slug string) (domain.Hero, error) {
	if hero, ok := r.cachedHero(slug); ok {
		return hero, nil
	}

	result, err, _ := r.sf.Do(slug, func() (interface{}, error) {
		if hero, ok := r.cachedHero(slug); ok {
			return hero, nil
		}

		now := r.clock()
		hero, err := r.loader.LoadHero(ctx, slug)
		if err != nil {
			return domain.Hero{}, err
		}

		r.mu.Lock()
		r.heroes[slug] = cachedHero{hero: hero, expiresAt: now.Add(r.ttlWithJitter())}
		r.mu.Unlock()
		return hero, nil
	})
	if err != nil {
		return domain.Hero{}, err
	}
	return result.(domain.Hero), nil
}

func (r *HeroRepository) ListHeroes(ctx context.Context) ([]domain.Hero, error) {
	if heroes, ok := r.cachedList(); ok {
		return heroes, nil
	}

	result, err, _ := r.sf.Do(allHeroesKey, func() (interface{}, error) {
		if heroes, ok := r.cachedList(); ok {
			return heroes, nil
		}

		now := r.clock()
		heroes, err := r.loader.LoadHeroes(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.all = &cachedList{heroes: heroes, expiresAt: now.Add(r.ttlWithJitter())}
		r.mu.Unlock()
		return heroes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Hero), nil
}

// Invalidate drops every cached entry, e.g. after an import.
func (r *HeroRepository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heroes = make(map[string]cachedHero)
	r.all = nil
}

func (r *HeroRepository) cachedHero(slug string) (domain.Hero, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.heroes[slug]; ok && entry.expiresAt.After(now) {
		return entry.hero, true
	}
	return domain.Hero{}, false
}

func (r *HeroRepository) cachedList() ([]domain.Hero, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.all != nil && r.all.expiresAt.After(now) {
		return r.all.heroes, true
	}
	return nil, false
}

func (r *HeroRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticHeroLoader serves a fixed hero catalog (tests, demos, file-backed runs).
type StaticHeroLoader struct {
	heroes map[string]domain.Hero
}

func NewStaticHeroLoader(heroes []domain.Hero) *StaticHeroLoader {
	m := make(map[string]domain.Hero, len(heroes))
	for _, h := range heroes {
		m[h.Slug] = h
	}
	return &StaticHeroLoader{heroes: m}
}

func (l *StaticHeroLoader) LoadHero(_ context.Context, slug string) (domain.Hero, error) {
	if hero, ok := l.heroes[slug]; ok {
		return hero, nil
	}
	return domain.Hero{}, domain.ErrHeroNotFound
}

func (l *StaticHeroLoader) LoadHeroes(_ context.Context) ([]domain.Hero, error) {
	out := make([]domain.Hero, 0, len(l.heroes))
	for _, h := range l.heroes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}
