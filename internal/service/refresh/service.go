// Package refresh keeps the followed-show cache consistent with the
// catalog: it re-derives lifecycle tags across day boundaries without any
// network, and re-fetches stale snapshots with per-show failure isolation.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/airtrack/internal/client/catalog"
	"github.com/airtrack/internal/config"
	"github.com/airtrack/internal/lifecycle"
	"github.com/airtrack/internal/model"
	"github.com/airtrack/internal/store"
	"github.com/airtrack/pkg/logger"
)

// Store is the slice of the persistence layer the orchestrator needs.
type Store interface {
	ListFollowed(ctx context.Context) ([]store.Record, error)
	GetFollowed(ctx context.Context, id int64) (*store.Record, error)
	ReplaceCachedSnapshot(ctx context.Context, id int64, show *model.Show, state lifecycle.State, at time.Time) error
	ApplyUpdates(ctx context.Context, updates []store.Update) error
}

// Options controls one batch pass.
type Options struct {
	FetchFromAPI bool // Hit the catalog for stale records
	ForceRefresh bool // Ignore the staleness predicate
}

// ItemResult records what happened to one followed show during a pass.
type ItemResult struct {
	ShowID int64  `json:"show_id"`
	Title  string `json:"title"`
	State  string `json:"state"`
	Action string `json:"action"` // "refreshed", "state_updated", "unchanged", "cancelled", "error"
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

const (
	actionRefreshed    = "refreshed"
	actionStateUpdated = "state_updated"
	actionUnchanged    = "unchanged"
	actionCancelled    = "cancelled"
	actionError        = "error"
)

// Service is the refresh orchestrator.
type Service struct {
	store   Store
	catalog catalog.Client
	cfgMgr  *config.Manager

	now func() time.Time

	mu          sync.RWMutex
	lastRun     time.Time
	lastResults []ItemResult
}

func NewService(st Store, cat catalog.Client, cfgMgr *config.Manager) *Service {
	return &Service{
		store:   st,
		catalog: cat,
		cfgMgr:  cfgMgr,
		now:     time.Now,
	}
}

// RefreshStatesOnly re-derives lifecycle tags from the cached snapshots
// without touching the network. Cheap; runs on every app foreground.
func (s *Service) RefreshStatesOnly(ctx context.Context) []ItemResult {
	return s.refreshAll(ctx, Options{})
}

// RefreshWithAPIData re-derives tags and re-fetches stale snapshots. This is
// the periodic background pass.
func (s *Service) RefreshWithAPIData(ctx context.Context) []ItemResult {
	return s.refreshAll(ctx, Options{FetchFromAPI: true})
}

// ForceRefreshAll re-fetches every followed show regardless of staleness.
func (s *Service) ForceRefreshAll(ctx context.Context) []ItemResult {
	return s.refreshAll(ctx, Options{FetchFromAPI: true, ForceRefresh: true})
}

// refreshAll runs one batch pass. Batch failures are logged, never
// returned: this is best-effort background consistency, not a user-facing
// transaction. Accumulated mutations are persisted in a single batch at the
// end so each record is either fully updated or left untouched.
func (s *Service) refreshAll(ctx context.Context, opts Options) []ItemResult {
	cfg := s.cfgMgr.Get()
	now := s.now()
	start := time.Now()

	records, err := s.store.ListFollowed(ctx)
	if err != nil {
		// Fatal for this invocation only.
		logger.Errorf("[refresh] Failed to load followed shows: %v", err)
		return nil
	}
	if len(records) == 0 {
		logger.Debug("[refresh] No followed shows")
		return nil
	}

	logger.Infof("[refresh] Starting pass over %d shows (fetch=%t force=%t)",
		len(records), opts.FetchFromAPI, opts.ForceRefresh)

	var (
		mu      sync.Mutex
		updates []store.Update
		results = make([]ItemResult, len(records))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Refresh.FetchConcurrency())

	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			result, update := s.processRecord(gctx, rec, opts, cfg.Refresh.MaxAge(), now)
			results[i] = result
			if update != nil {
				mu.Lock()
				updates = append(updates, *update)
				mu.Unlock()
			}
			// Per-item failures never abort the batch.
			return nil
		})
	}
	_ = g.Wait()

	if err := s.store.ApplyUpdates(ctx, updates); err != nil {
		logger.Errorf("[refresh] Failed to persist batch: %v", err)
	}

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastResults = results
	s.mu.Unlock()

	s.printSummary(results, start)
	return results
}

// processRecord is one independent unit of work: re-derive the cached tag,
// and re-fetch the snapshot when requested and stale. It shares no mutable
// state with its siblings.
func (s *Service) processRecord(ctx context.Context, rec store.Record, opts Options, maxAge time.Duration, now time.Time) (ItemResult, *store.Update) {
	result := ItemResult{ShowID: rec.ID, Title: rec.Name}

	// Date-driven tag recompute keeps state fresh across day boundaries
	// even without a network call. Written back only when it differs.
	newState := lifecycle.DeriveShow(rec.Show, now)
	var update *store.Update
	if newState != rec.State {
		update = &store.Update{ID: rec.ID, State: newState}
		result.Action = actionStateUpdated
		result.Reason = fmt.Sprintf("%s → %s", rec.State, newState)
	} else {
		result.Action = actionUnchanged
	}
	result.State = newState.String()

	if !opts.FetchFromAPI || (!opts.ForceRefresh && !rec.NeedsRefresh(now, maxAge)) {
		return result, update
	}

	// Honor cancellation by not issuing new fetches; already-computed
	// state updates still commit.
	if ctx.Err() != nil {
		result.Action = actionCancelled
		result.Reason = "refresh cancelled"
		return result, update
	}

	fresh, err := s.catalog.FetchShowDetails(ctx, rec.ID)
	if err != nil {
		logger.Warnf("[refresh] Fetch failed for %q (id=%d): %v", rec.Name, rec.ID, err)
		result.Action = actionError
		result.Error = err.Error()
		return result, update
	}

	freshState := lifecycle.DeriveShow(*fresh, now)
	refreshedAt := s.now()
	result.Action = actionRefreshed
	result.State = freshState.String()
	result.Title = fresh.Name
	return result, &store.Update{
		ID:          rec.ID,
		State:       freshState,
		Show:        fresh,
		RefreshedAt: &refreshedAt,
	}
}

// RefreshOne re-fetches a single followed show unconditionally and replaces
// its cached snapshot. Unlike the batch path it surfaces errors: it backs a
// user-initiated action.
func (s *Service) RefreshOne(ctx context.Context, id int64) (*store.Record, error) {
	rec, err := s.store.GetFollowed(ctx, id)
	if err != nil {
		return nil, err
	}

	fresh, err := s.catalog.FetchShowDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching show %d: %w", id, err)
	}

	now := s.now()
	state := lifecycle.DeriveShow(*fresh, now)
	if err := s.store.ReplaceCachedSnapshot(ctx, id, fresh, state, now); err != nil {
		return nil, err
	}

	rec.Name = fresh.Name
	rec.Show = *fresh
	rec.State = state
	rec.LastRefreshedAt = &now
	return rec, nil
}

func (s *Service) printSummary(results []ItemResult, start time.Time) {
	var refreshed, stateUpdated, unchanged, cancelled, errored int
	for _, r := range results {
		switch r.Action {
		case actionRefreshed:
			refreshed++
		case actionStateUpdated:
			stateUpdated++
		case actionCancelled:
			cancelled++
		case actionError:
			errored++
		default:
			unchanged++
		}
	}

	logger.Infof("[refresh] Pass complete: %d refreshed, %d state updates, %d unchanged, %d cancelled, %d errors (%v)",
		refreshed, stateUpdated, unchanged, cancelled, errored, time.Since(start).Round(time.Millisecond))

	for _, r := range results {
		if r.Action == actionError {
			logger.Errorf("[refresh]   %s (id=%d): %s", r.Title, r.ShowID, r.Error)
		}
	}
}

// Stats summarizes the most recent pass.
type Stats struct {
	LastRun      time.Time    `json:"last_run"`
	TotalShows   int          `json:"total_shows"`
	Refreshed    int          `json:"refreshed"`
	StateUpdated int          `json:"state_updated"`
	Errors       int          `json:"errors"`
	Results      []ItemResult `json:"results,omitempty"`
}

func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		LastRun:    s.lastRun,
		TotalShows: len(s.lastResults),
		Results:    s.lastResults,
	}
	for _, r := range s.lastResults {
		switch r.Action {
		case actionRefreshed:
			stats.Refreshed++
		case actionStateUpdated:
			stats.StateUpdated++
		case actionError:
			stats.Errors++
		}
	}
	return stats
}
