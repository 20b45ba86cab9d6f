package model

import "time"

// Status is the catalog's production status for a show.
type Status string

const (
	StatusReturning    Status = "returning"
	StatusEnded        Status = "ended"
	StatusCancelled    Status = "cancelled"
	StatusInProduction Status = "in_production"
	StatusPlanned      Status = "planned"
	StatusPilot        Status = "pilot"
)

// ParseStatus maps a catalog status string to a known Status. The catalog
// schema evolves; unknown values degrade to planned rather than failing.
func ParseStatus(raw string) Status {
	switch raw {
	case "Returning Series", string(StatusReturning):
		return StatusReturning
	case "Ended", string(StatusEnded):
		return StatusEnded
	case "Canceled", "Cancelled", string(StatusCancelled):
		return StatusCancelled
	case "In Production", string(StatusInProduction):
		return StatusInProduction
	case "Pilot", string(StatusPilot):
		return StatusPilot
	default:
		return StatusPlanned
	}
}

// Show is a TV show as cached from the catalog.
type Show struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Status           Status     `json:"status"`
	InProduction     bool       `json:"inProduction"`
	NumberOfSeasons  int        `json:"numberOfSeasons"`
	NumberOfEpisodes int        `json:"numberOfEpisodes"`
	FirstAirDate     *time.Time `json:"firstAirDate,omitempty"`
	Seasons          []Season   `json:"seasons,omitempty"`
}

// CurrentSeason picks the season that best represents where the show is
// right now, considering regular seasons only:
//
//  1. a season currently airing
//  2. else the earliest season that hasn't started (upcoming/announced)
//  3. else the latest fully aired season
//
// Returns nil when the show has no regular seasons.
func (s Show) CurrentSeason(now time.Time) *Season {
	var airing, upcoming, complete *Season
	for i := range s.Seasons {
		sea := &s.Seasons[i]
		if sea.IsSpecials() {
			continue
		}
		switch {
		case sea.IsAiring(now):
			if airing == nil || sea.SeasonNumber < airing.SeasonNumber {
				airing = sea
			}
		case !sea.HasStarted(now):
			if upcoming == nil || sea.SeasonNumber < upcoming.SeasonNumber {
				upcoming = sea
			}
		case sea.IsComplete(now):
			if complete == nil || sea.SeasonNumber > complete.SeasonNumber {
				complete = sea
			}
		}
	}
	if airing != nil {
		return airing
	}
	if upcoming != nil {
		return upcoming
	}
	return complete
}

// UpcomingSeason returns the lowest-numbered regular season that hasn't
// started yet, independent of whether another season is airing.
func (s Show) UpcomingSeason(now time.Time) *Season {
	var upcoming *Season
	for i := range s.Seasons {
		sea := &s.Seasons[i]
		if sea.IsSpecials() || sea.HasStarted(now) {
			continue
		}
		if upcoming == nil || sea.SeasonNumber < upcoming.SeasonNumber {
			upcoming = sea
		}
	}
	return upcoming
}

// Season returns the season with the given number, or nil.
func (s Show) Season(number int) *Season {
	for i := range s.Seasons {
		if s.Seasons[i].SeasonNumber == number {
			return &s.Seasons[i]
		}
	}
	return nil
}
