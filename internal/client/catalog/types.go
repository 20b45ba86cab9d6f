package catalog

import (
	"time"

	"github.com/airtrack/internal/model"
)

// Wire shapes for the TMDB-style catalog API. Kept separate from the
// internal model so schema drift upstream stays contained here.

type showResponse struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Status           string          `json:"status"`
	InProduction     bool            `json:"in_production"`
	NumberOfSeasons  int             `json:"number_of_seasons"`
	NumberOfEpisodes int             `json:"number_of_episodes"`
	FirstAirDate     string          `json:"first_air_date"`
	Seasons          []seasonSummary `json:"seasons"`
}

type seasonSummary struct {
	ID           int64  `json:"id"`
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	AirDate      string `json:"air_date"`
	EpisodeCount int    `json:"episode_count"`
}

type seasonResponse struct {
	ID           int64             `json:"id"`
	SeasonNumber int               `json:"season_number"`
	Name         string            `json:"name"`
	AirDate      string            `json:"air_date"`
	Episodes     []episodeResponse `json:"episodes"`
}

type episodeResponse struct {
	ID            int64  `json:"id"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	AirDate       string `json:"air_date"`
	EpisodeType   string `json:"episode_type"`
}

func (r showResponse) toModel() model.Show {
	show := model.Show{
		ID:               r.ID,
		Name:             r.Name,
		Status:           model.ParseStatus(r.Status),
		InProduction:     r.InProduction,
		NumberOfSeasons:  r.NumberOfSeasons,
		NumberOfEpisodes: r.NumberOfEpisodes,
		FirstAirDate:     parseAirDate(r.FirstAirDate),
	}
	for _, s := range r.Seasons {
		show.Seasons = append(show.Seasons, s.toModel())
	}
	return show
}

func (r seasonSummary) toModel() model.Season {
	return model.Season{
		ID:           r.ID,
		SeasonNumber: r.SeasonNumber,
		Name:         r.Name,
		AirDate:      parseAirDate(r.AirDate),
		EpisodeCount: r.EpisodeCount,
	}
}

func (r seasonResponse) toModel() model.Season {
	season := model.Season{
		ID:           r.ID,
		SeasonNumber: r.SeasonNumber,
		Name:         r.Name,
		AirDate:      parseAirDate(r.AirDate),
		EpisodeCount: len(r.Episodes),
	}
	for _, e := range r.Episodes {
		season.Episodes = append(season.Episodes, model.Episode{
			ID:            e.ID,
			SeasonNumber:  e.SeasonNumber,
			EpisodeNumber: e.EpisodeNumber,
			Name:          e.Name,
			Type:          model.ParseEpisodeType(e.EpisodeType),
			AirDate:       parseAirDate(e.AirDate),
		})
	}
	return season
}

// parseAirDate parses the catalog's YYYY-MM-DD dates in the local zone so
// all day-boundary arithmetic happens in one consistent time zone.
func parseAirDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil
	}
	return &t
}
