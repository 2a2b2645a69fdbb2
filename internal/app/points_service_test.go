package app_test

import (
	"context"
	"testing"

	"hero-quiz-service/internal/app"
	"hero-quiz-service/internal/infra/memory"
)

func TestPointsSummary(t *testing.T) {
	store := memory.NewScoreStore()
	heroes := newHeroRepo()
	scoring := app.NewScoringService(store, heroes, nil)
	points := app.NewPointsService(store, heroes, nil)

	anon, err := points.Summary(context.Background())
	if err != nil {
		t.Fatalf("anonymous summary: %v", err)
	}
	if anon.Total != 0 || anon.DailyRemaining != app.DailyCap {
		t.Fatalf("unexpected anonymous summary %+v", anon)
	}

	ctx := userCtx("u1")
	fresh, _ := points.Summary(ctx)
	if fresh.Total != 0 || fresh.DailyRemaining != app.DailyCap {
		t.Fatalf("unexpected summary for new user %+v", fresh)
	}

	if _, err := scoring.RecordAttempt(ctx, "kartini", 5, 5); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := scoring.RecordAttempt(ctx, "bung-tomo", 5, 2); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := points.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.Total != 63+23 || got.DailyRemaining != 3 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestPointsAwardsHistory(t *testing.T) {
	store := memory.NewScoreStore()
	heroes := newHeroRepo()
	scoring := app.NewScoringService(store, heroes, nil)
	points := app.NewPointsService(store, heroes, nil)
	ctx := userCtx("u1")

	for _, slug := range []string{"kartini", "gone-hero", "kartini"} {
		if _, err := scoring.RecordAttempt(ctx, slug, 5, 5); err != nil {
			t.Fatalf("record %s: %v", slug, err)
		}
	}

	awards, err := points.Awards(ctx, 0)
	if err != nil {
		t.Fatalf("awards: %v", err)
	}
	if len(awards) != 3 {
		t.Fatalf("expected 3 awards, got %d", len(awards))
	}
	if !awards[0].Practice || awards[0].HeroName != "R.A. Kartini" || awards[0].Breakdown == nil {
		t.Fatalf("unexpected newest award %+v", awards[0])
	}
	if awards[1].HeroName != "gone-hero" {
		t.Fatalf("expected slug fallback for missing hero, got %q", awards[1].HeroName)
	}

	limited, _ := points.Awards(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("expected 1 award with limit 1, got %d", len(limited))
	}

	anon, err := points.Awards(context.Background(), 10)
	if err != nil || len(anon) != 0 {
		t.Fatalf("expected empty history for anonymous caller, got %v %v", anon, err)
	}
}

func TestClampAwardsLimit(t *testing.T) {
	cases := map[int]int{0: 20, -5: 1, 1: 1, 50: 50, 100: 100, 500: 100}
	for in, want := range cases {
		if got := app.ClampAwardsLimit(in); got != want {
			t.Fatalf("ClampAwardsLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
