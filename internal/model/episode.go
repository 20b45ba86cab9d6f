package model

import "time"

// EpisodeType mirrors the catalog's episode_type tag. The catalog tags
// episodes inconsistently: older records carry no tag at all.
type EpisodeType string

const (
	EpisodeTypeStandard  EpisodeType = "standard"
	EpisodeTypeFinale    EpisodeType = "finale"
	EpisodeTypeMidSeason EpisodeType = "mid_season"
)

// ParseEpisodeType maps a wire value to a known type. Unknown or empty
// values degrade to standard so new upstream tags never break derivation.
func ParseEpisodeType(raw string) EpisodeType {
	switch EpisodeType(raw) {
	case EpisodeTypeFinale:
		return EpisodeTypeFinale
	case EpisodeTypeMidSeason:
		return EpisodeTypeMidSeason
	default:
		return EpisodeTypeStandard
	}
}

// Episode is a single episode as cached from the catalog, plus the user's
// watched marker.
type Episode struct {
	ID            int64       `json:"id"`
	SeasonNumber  int         `json:"seasonNumber"`
	EpisodeNumber int         `json:"episodeNumber"`
	Name          string      `json:"name"`
	Type          EpisodeType `json:"type,omitempty"`
	AirDate       *time.Time  `json:"airDate,omitempty"`
	WatchedDate   *time.Time  `json:"watchedDate,omitempty"`
}

// HasAired reports whether the episode's air date is known and not in the
// future. An unknown air date counts as not aired.
func (e Episode) HasAired(now time.Time) bool {
	return e.AirDate != nil && !e.AirDate.After(now)
}

// IsWatched reports whether the user has marked the episode watched.
func (e Episode) IsWatched() bool {
	return e.WatchedDate != nil
}

// isTagged reports whether the catalog assigned this episode a non-standard
// type. Used to tell a typed dataset apart from legacy untyped data.
func (e Episode) isTagged() bool {
	return e.Type != "" && e.Type != EpisodeTypeStandard
}
