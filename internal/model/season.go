package model

import "time"

// Season is one season of a show with its ordered episode list.
// SeasonNumber 0 holds specials and is excluded from lifecycle logic.
type Season struct {
	ID           int64      `json:"id"`
	SeasonNumber int        `json:"seasonNumber"`
	Name         string     `json:"name,omitempty"`
	AirDate      *time.Time `json:"airDate,omitempty"`
	EpisodeCount int        `json:"episodeCount"`
	WatchedDate  *time.Time `json:"watchedDate,omitempty"`
	Episodes     []Episode  `json:"episodes,omitempty"`
}

// IsSpecials reports whether this is the specials pseudo-season.
func (s Season) IsSpecials() bool {
	return s.SeasonNumber == 0
}

// LastEpisode returns the episode with the highest episode number, or nil
// for an empty season. Strictly max-by-number: episodes added out of order
// by the catalog don't change the answer.
func (s Season) LastEpisode() *Episode {
	var last *Episode
	for i := range s.Episodes {
		if last == nil || s.Episodes[i].EpisodeNumber > last.EpisodeNumber {
			last = &s.Episodes[i]
		}
	}
	return last
}

// Finale resolves which episode is the season finale, best-effort against an
// inconsistently tagged catalog:
//
//   - the last episode is tagged finale → that episode
//   - some episode carries a type tag but the last one isn't the finale →
//     unknown (the catalog types this season, and the finale isn't in yet)
//   - no episode carries any tag (legacy data) → the last episode
//
// This is the single place the tagging policy lives; countdown and category
// logic only ever ask for Finale.
func (s Season) Finale() *Episode {
	last := s.LastEpisode()
	if last == nil {
		return nil
	}
	if last.Type == EpisodeTypeFinale {
		return last
	}
	for _, e := range s.Episodes {
		if e.isTagged() {
			return nil
		}
	}
	return last
}

// HasConfirmedFinale reports whether the finale episode is known.
func (s Season) HasConfirmedFinale() bool {
	return s.Finale() != nil
}

// FinaleDate returns the finale's air date, or nil when the finale or its
// date is unknown.
func (s Season) FinaleDate() *time.Time {
	if fin := s.Finale(); fin != nil {
		return fin.AirDate
	}
	return nil
}

// IsComplete reports whether the season has episodes and every one of them
// has aired. Empty seasons are never complete.
func (s Season) IsComplete(now time.Time) bool {
	if len(s.Episodes) == 0 {
		return false
	}
	for _, e := range s.Episodes {
		if !e.HasAired(now) {
			return false
		}
	}
	return true
}

// HasStarted reports whether the season premiere date is known and past.
func (s Season) HasStarted(now time.Time) bool {
	return s.AirDate != nil && !s.AirDate.After(now)
}

// IsAiring reports whether the season has started but not finished airing.
func (s Season) IsAiring(now time.Time) bool {
	return s.HasStarted(now) && !s.IsComplete(now)
}

// IsWatched reports whether the user finished the season: either an explicit
// season-level watched marker, or every aired episode individually watched.
func (s Season) IsWatched(now time.Time) bool {
	if s.WatchedDate != nil {
		return true
	}
	aired := 0
	for _, e := range s.Episodes {
		if !e.HasAired(now) {
			continue
		}
		aired++
		if !e.IsWatched() {
			return false
		}
	}
	return aired > 0
}

// IsBingeReady reports whether the season is fully aired and not yet
// watched.
func (s Season) IsBingeReady(now time.Time) bool {
	return s.IsComplete(now) && !s.IsWatched(now)
}

// DaysUntilFinale returns the whole-day count until the finale airs,
// inclusive of day 0 (a finale airing today still counts). Nil when the
// finale or its date is unknown, or the finale is already past.
func (s Season) DaysUntilFinale(now time.Time) *int {
	target := s.FinaleDate()
	if target == nil {
		return nil
	}
	d := daysBetween(now, *target)
	if d < 0 {
		return nil
	}
	return &d
}

// DaysUntilPremiere returns the whole-day count until the season premiere.
// Nil when the date is unknown or the season already started.
func (s Season) DaysUntilPremiere(now time.Time) *int {
	if s.AirDate == nil || s.HasStarted(now) {
		return nil
	}
	d := daysBetween(now, *s.AirDate)
	if d < 0 {
		d = 0
	}
	return &d
}

// EpisodesUntilFinale returns how many episodes remain until the confirmed
// finale, counting from the highest-numbered aired episode. Nil when the
// season is complete, the finale is unknown, or nothing remains.
func (s Season) EpisodesUntilFinale(now time.Time) *int {
	if s.IsComplete(now) {
		return nil
	}
	fin := s.Finale()
	if fin == nil {
		return nil
	}
	maxAired := 0
	for _, e := range s.Episodes {
		if e.HasAired(now) && e.EpisodeNumber > maxAired {
			maxAired = e.EpisodeNumber
		}
	}
	remaining := fin.EpisodeNumber - maxAired
	if remaining <= 0 {
		return nil
	}
	return &remaining
}
