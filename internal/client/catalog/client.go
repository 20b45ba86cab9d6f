// Package catalog talks to the external TMDB-style catalog service that is
// the source of truth for show, season and episode metadata.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/airtrack/internal/config"
	"github.com/airtrack/internal/model"
)

// ErrNotFound is returned when the catalog doesn't know the requested id.
var ErrNotFound = fmt.Errorf("catalog: not found")

// Client is the capability the rest of the service consumes. Errors are
// opaque beyond being per-item; callers isolate and log, they don't retry
// (the transport already does).
type Client interface {
	FetchShowDetails(ctx context.Context, id int64) (*model.Show, error)
	FetchSeasonDetails(ctx context.Context, showID int64, seasonNumber int) (*model.Season, error)
}

// TMDBClient implements Client against the TMDB v3 API.
type TMDBClient struct {
	client  *resty.Client
	limiter *rate.Limiter
}

func NewTMDB(cfg config.CatalogConfig) *TMDBClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("api_key", cfg.APIKey).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &TMDBClient{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// FetchShowDetails returns the show's full current data, with every regular
// season's episode list hydrated from the per-season endpoint.
func (c *TMDBClient) FetchShowDetails(ctx context.Context, id int64) (*model.Show, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var raw showResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&raw).
		Get(fmt.Sprintf("/tv/%d", id))

	if err != nil {
		return nil, fmt.Errorf("getting show %d: %w", id, err)
	}
	if resp.IsError() {
		if resp.StatusCode() == 404 {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("API error: status=%d", resp.StatusCode())
	}

	show := raw.toModel()

	// The show endpoint only carries season summaries; episode-level air
	// dates need a fetch per season.
	for i := range show.Seasons {
		season, err := c.FetchSeasonDetails(ctx, id, show.Seasons[i].SeasonNumber)
		if err != nil {
			return nil, fmt.Errorf("season %d: %w", show.Seasons[i].SeasonNumber, err)
		}
		season.EpisodeCount = max(season.EpisodeCount, show.Seasons[i].EpisodeCount)
		show.Seasons[i] = *season
	}

	return &show, nil
}

// FetchSeasonDetails returns one season with its episode list.
func (c *TMDBClient) FetchSeasonDetails(ctx context.Context, showID int64, seasonNumber int) (*model.Season, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var raw seasonResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&raw).
		Get(fmt.Sprintf("/tv/%d/season/%d", showID, seasonNumber))

	if err != nil {
		return nil, fmt.Errorf("getting season: %w", err)
	}
	if resp.IsError() {
		if resp.StatusCode() == 404 {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("API error: status=%d", resp.StatusCode())
	}

	season := raw.toModel()
	if season.SeasonNumber == 0 && seasonNumber != 0 {
		season.SeasonNumber = seasonNumber
	}
	return &season, nil
}
