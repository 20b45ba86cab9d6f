package lifecycle

import (
	"time"

	"github.com/airtrack/internal/model"
)

// DeriveShow computes the show-level lifecycle state at the given instant.
// A cancelled catalog status overrides everything; ended means completed
// regardless of season dates; a show with no usable season data is
// anticipated; otherwise the current season decides.
func DeriveShow(show model.Show, now time.Time) State {
	switch show.Status {
	case model.StatusCancelled:
		return StateCancelled
	case model.StatusEnded:
		return StateCompleted
	}
	current := show.CurrentSeason(now)
	if current == nil {
		return StateAnticipated
	}
	return DeriveSeason(show, *current, now)
}

// DeriveSeason computes the lifecycle state of one season within a show.
// A season with at least one unaired episode is always airing once it has
// started; there is no transitional state between "just aired" and
// "complete", so a full-season drop with all dates in the past is
// completed the same day.
func DeriveSeason(show model.Show, season model.Season, now time.Time) State {
	if show.Status == model.StatusCancelled {
		return StateCancelled
	}
	switch {
	case !season.HasStarted(now):
		return StateAnticipated
	case season.IsComplete(now):
		return StateCompleted
	default:
		return StateAiring
	}
}

// IsBingeReady reports whether a show in the given state is safe to watch
// start to finish: it's either fully aired or cancelled.
func IsBingeReady(state State) bool {
	return state == StateCompleted || state == StateCancelled
}
