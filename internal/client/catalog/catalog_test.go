package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/airtrack/internal/config"
	"github.com/airtrack/internal/model"
)

const showJSON = `{
	"id": 42,
	"name": "Severance Pay",
	"status": "Returning Series",
	"in_production": true,
	"number_of_seasons": 1,
	"number_of_episodes": 9,
	"first_air_date": "2025-01-17",
	"seasons": [
		{"id": 100, "season_number": 1, "name": "Season 1", "air_date": "2025-01-17", "episode_count": 9}
	]
}`

const seasonJSON = `{
	"id": 100,
	"season_number": 1,
	"name": "Season 1",
	"air_date": "2025-01-17",
	"episodes": [
		{"id": 1001, "season_number": 1, "episode_number": 1, "name": "Pilot", "air_date": "2025-01-17", "episode_type": "standard"},
		{"id": 1002, "season_number": 1, "episode_number": 2, "name": "Closer", "air_date": "2025-03-21", "episode_type": "finale"},
		{"id": 1003, "season_number": 1, "episode_number": 3, "name": "Bonus", "air_date": "", "episode_type": "something_new"}
	]
}`

func newTestClient(t *testing.T, handler http.Handler) *TMDBClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewTMDB(config.CatalogConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
	})
}

func TestFetchShowDetails(t *testing.T) {
	var gotKey string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("api_key")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/tv/42":
			_, _ = w.Write([]byte(showJSON))
		case "/tv/42/season/1":
			_, _ = w.Write([]byte(seasonJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	show, err := client.FetchShowDetails(context.Background(), 42)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("api_key query param = %q", gotKey)
	}
	if show.ID != 42 || show.Name != "Severance Pay" {
		t.Errorf("show = %+v", show)
	}
	if show.Status != model.StatusReturning {
		t.Errorf("status = %s", show.Status)
	}
	if !show.InProduction {
		t.Error("expected in_production")
	}
	if show.FirstAirDate == nil || show.FirstAirDate.Format("2006-01-02") != "2025-01-17" {
		t.Errorf("firstAirDate = %v", show.FirstAirDate)
	}

	if len(show.Seasons) != 1 {
		t.Fatalf("seasons = %d", len(show.Seasons))
	}
	season := show.Seasons[0]
	if len(season.Episodes) != 3 {
		t.Fatalf("episodes = %d", len(season.Episodes))
	}
	// The show summary claims 9 episodes; the season endpoint only lists 3.
	// The larger of the two wins.
	if season.EpisodeCount != 9 {
		t.Errorf("episodeCount = %d", season.EpisodeCount)
	}

	if season.Episodes[1].Type != model.EpisodeTypeFinale {
		t.Errorf("episode 2 type = %s", season.Episodes[1].Type)
	}
	// Unrecognized type strings degrade to standard, missing dates to nil.
	if season.Episodes[2].Type != model.EpisodeTypeStandard {
		t.Errorf("episode 3 type = %s", season.Episodes[2].Type)
	}
	if season.Episodes[2].AirDate != nil {
		t.Errorf("episode 3 airDate = %v", season.Episodes[2].AirDate)
	}
}

func TestFetchShowDetailsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	if _, err := client.FetchShowDetails(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchSeasonDetailsNumberFallback(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Some season payloads omit season_number.
		_, _ = w.Write([]byte(`{"id": 200, "name": "Season 3", "episodes": []}`))
	}))

	season, err := client.FetchSeasonDetails(context.Background(), 42, 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if season.SeasonNumber != 3 {
		t.Errorf("seasonNumber = %d", season.SeasonNumber)
	}
}

func TestFetchSeasonErrorAbortsShow(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/tv/42" {
			_, _ = w.Write([]byte(showJSON))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	if _, err := client.FetchShowDetails(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from season hydration, got %v", err)
	}
}

func TestParseAirDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *time.Time
	}{
		{"empty", "", nil},
		{"garbage", "not-a-date", nil},
		{"valid", "2025-06-15", timePtr(time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAirDate(tt.raw)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parseAirDate(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("parseAirDate(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
