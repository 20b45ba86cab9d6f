// Package tracker owns the user-facing follow list: following and
// unfollowing shows and projecting the followed set into the timeline view.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/airtrack/internal/client/catalog"
	"github.com/airtrack/internal/lifecycle"
	"github.com/airtrack/internal/model"
	"github.com/airtrack/internal/store"
	"github.com/airtrack/internal/timeline"
	"github.com/airtrack/pkg/logger"
)

// Store is the slice of the persistence layer the tracker needs.
type Store interface {
	ListFollowed(ctx context.Context) ([]store.Record, error)
	GetFollowed(ctx context.Context, id int64) (*store.Record, error)
	IsFollowing(ctx context.Context, id int64) (bool, error)
	Follow(ctx context.Context, show *model.Show, state lifecycle.State, now time.Time) (*store.Record, error)
	Unfollow(ctx context.Context, id int64) error
}

type Service struct {
	store   Store
	catalog catalog.Client

	now func() time.Time
}

func NewService(st Store, cat catalog.Client) *Service {
	return &Service{
		store:   st,
		catalog: cat,
		now:     time.Now,
	}
}

// Follow fetches the show's current data from the catalog and adds it to
// the followed list. Idempotent: following twice refreshes the snapshot.
func (s *Service) Follow(ctx context.Context, id int64) (*store.Record, error) {
	show, err := s.catalog.FetchShowDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching show %d: %w", id, err)
	}

	now := s.now()
	state := lifecycle.DeriveShow(*show, now)
	rec, err := s.store.Follow(ctx, show, state, now)
	if err != nil {
		return nil, err
	}

	logger.Infof("[tracker] Following %q (id=%d, state=%s)", show.Name, id, state)
	return rec, nil
}

// Unfollow removes a show from the followed list.
func (s *Service) Unfollow(ctx context.Context, id int64) error {
	if err := s.store.Unfollow(ctx, id); err != nil {
		return err
	}
	logger.Infof("[tracker] Unfollowed show id=%d", id)
	return nil
}

// List returns the followed shows as stored.
func (s *Service) List(ctx context.Context) ([]store.Record, error) {
	return s.store.ListFollowed(ctx)
}

// Get returns one followed show.
func (s *Service) Get(ctx context.Context, id int64) (*store.Record, error) {
	return s.store.GetFollowed(ctx, id)
}

// Timeline projects the followed shows into sorted display categories,
// evaluated at the current instant against the cached snapshots.
func (s *Service) Timeline(ctx context.Context) ([]timeline.Group, error) {
	records, err := s.store.ListFollowed(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading followed shows: %w", err)
	}

	shows := make([]model.Show, 0, len(records))
	for _, rec := range records {
		shows = append(shows, rec.Show)
	}

	now := s.now()
	return timeline.SortedCategories(timeline.GroupByCategory(shows, now)), nil
}
