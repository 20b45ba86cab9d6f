package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/airtrack/internal/lifecycle"
	"github.com/airtrack/internal/model"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testShow(id int64, name string) *model.Show {
	airDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return &model.Show{
		ID:     id,
		Name:   name,
		Status: model.StatusReturning,
		Seasons: []model.Season{{
			SeasonNumber: 1,
			AirDate:      &airDate,
			Episodes: []model.Episode{
				{EpisodeNumber: 1, SeasonNumber: 1, AirDate: &airDate},
			},
		}},
	}
}

func TestFollowAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec, err := s.Follow(ctx, testShow(42, "severed"), lifecycle.StateAiring, testNow)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}

	if rec.ID != 42 || rec.Name != "severed" {
		t.Errorf("record = %+v", rec)
	}
	if rec.State != lifecycle.StateAiring {
		t.Errorf("state = %s", rec.State)
	}
	if rec.LastRefreshedAt == nil || !rec.LastRefreshedAt.Equal(testNow) {
		t.Errorf("lastRefreshedAt = %v", rec.LastRefreshedAt)
	}
	if len(rec.Show.Seasons) != 1 || len(rec.Show.Seasons[0].Episodes) != 1 {
		t.Errorf("snapshot did not round-trip: %+v", rec.Show)
	}

	following, err := s.IsFollowing(ctx, 42)
	if err != nil || !following {
		t.Errorf("IsFollowing = %v, %v", following, err)
	}

	if _, err := s.GetFollowed(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFollowIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Follow(ctx, testShow(1, "old name"), lifecycle.StateAnticipated, testNow)
	if err != nil {
		t.Fatal(err)
	}

	later := testNow.Add(48 * time.Hour)
	second, err := s.Follow(ctx, testShow(1, "new name"), lifecycle.StateAiring, later)
	if err != nil {
		t.Fatal(err)
	}

	if second.Name != "new name" || second.State != lifecycle.StateAiring {
		t.Errorf("snapshot not replaced: %+v", second)
	}
	// Original follow time survives a re-follow.
	if !second.FollowedAt.Equal(first.FollowedAt) {
		t.Errorf("followedAt changed: %v → %v", first.FollowedAt, second.FollowedAt)
	}
}

func TestUnfollow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Follow(ctx, testShow(1, "a"), lifecycle.StateAiring, testNow); err != nil {
		t.Fatal(err)
	}

	if err := s.Unfollow(ctx, 1); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if _, err := s.GetFollowed(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after unfollow, got %v", err)
	}
	if err := s.Unfollow(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("double unfollow should be ErrNotFound, got %v", err)
	}
}

func TestListFollowed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Follow(ctx, testShow(1, "older"), lifecycle.StateAiring, testNow.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Follow(ctx, testShow(2, "newer"), lifecycle.StateAiring, testNow); err != nil {
		t.Fatal(err)
	}

	records, err := s.ListFollowed(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "newer" {
		t.Errorf("expected newest follow first, got %s", records[0].Name)
	}
}

func TestReplaceCachedSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Follow(ctx, testShow(1, "a"), lifecycle.StateAnticipated, testNow); err != nil {
		t.Fatal(err)
	}

	later := testNow.Add(2 * time.Hour)
	if err := s.ReplaceCachedSnapshot(ctx, 1, testShow(1, "a (renamed)"), lifecycle.StateCompleted, later); err != nil {
		t.Fatalf("replace: %v", err)
	}

	rec, err := s.GetFollowed(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Name != "a (renamed)" || rec.State != lifecycle.StateCompleted {
		t.Errorf("record = %+v", rec)
	}
	if rec.LastRefreshedAt == nil || !rec.LastRefreshedAt.Equal(later) {
		t.Errorf("lastRefreshedAt = %v, want %v", rec.LastRefreshedAt, later)
	}

	if err := s.ReplaceCachedSnapshot(ctx, 999, testShow(999, "x"), lifecycle.StateAiring, later); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyUpdates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Follow(ctx, testShow(1, "a"), lifecycle.StateAnticipated, testNow); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Follow(ctx, testShow(2, "b"), lifecycle.StateAnticipated, testNow); err != nil {
		t.Fatal(err)
	}

	refreshedAt := testNow.Add(time.Hour)
	updates := []Update{
		{ID: 1, State: lifecycle.StateAiring}, // state-only
		{ID: 2, State: lifecycle.StateCompleted, Show: testShow(2, "b v2"), RefreshedAt: &refreshedAt},
	}

	if err := s.ApplyUpdates(ctx, updates); err != nil {
		t.Fatalf("apply: %v", err)
	}

	rec1, _ := s.GetFollowed(ctx, 1)
	if rec1.State != lifecycle.StateAiring {
		t.Errorf("rec1 state = %s", rec1.State)
	}
	// State-only update must not disturb the refresh timestamp.
	if rec1.LastRefreshedAt == nil || !rec1.LastRefreshedAt.Equal(testNow) {
		t.Errorf("rec1 lastRefreshedAt = %v, want %v", rec1.LastRefreshedAt, testNow)
	}

	rec2, _ := s.GetFollowed(ctx, 2)
	if rec2.Name != "b v2" || rec2.State != lifecycle.StateCompleted {
		t.Errorf("rec2 = %+v", rec2)
	}
	if rec2.LastRefreshedAt == nil || !rec2.LastRefreshedAt.Equal(refreshedAt) {
		t.Errorf("rec2 lastRefreshedAt = %v, want %v", rec2.LastRefreshedAt, refreshedAt)
	}

	if err := s.ApplyUpdates(ctx, nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}
}

func TestNeedsRefresh(t *testing.T) {
	maxAge := 24 * time.Hour

	tests := []struct {
		name        string
		refreshedAt *time.Time
		want        bool
	}{
		{"never refreshed", nil, true},
		{"refreshed an hour ago", timePtr(testNow.Add(-time.Hour)), false},
		{"refreshed 25 hours ago", timePtr(testNow.Add(-25 * time.Hour)), true},
		{"exactly at the cutoff is not yet stale", timePtr(testNow.Add(-24 * time.Hour)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{LastRefreshedAt: tt.refreshedAt}
			if got := rec.NeedsRefresh(testNow, maxAge); got != tt.want {
				t.Errorf("NeedsRefresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
