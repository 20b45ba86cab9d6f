// Package timeline buckets followed shows into display categories and
// annotates each with a premiere or finale countdown. Pure over its input;
// the HTTP layer renders the output as-is.
package timeline

import (
	"time"

	"github.com/airtrack/internal/lifecycle"
	"github.com/airtrack/internal/model"
)

// Category is the display bucket a show sorts into.
type Category string

const (
	CategoryBingeReady     Category = "binge_ready"
	CategoryAiringNow      Category = "airing_now"
	CategoryPremieringSoon Category = "premiering_soon"
	CategoryAnticipated    Category = "anticipated"
)

// DisplayOrder returns the position of the category in the timeline view.
func (c Category) DisplayOrder() int {
	switch c {
	case CategoryBingeReady:
		return 0
	case CategoryAiringNow:
		return 1
	case CategoryPremieringSoon:
		return 2
	default:
		return 3
	}
}

// CountdownType says which event a countdown points at.
type CountdownType string

const (
	CountdownToFinale   CountdownType = "to_finale"
	CountdownToPremiere CountdownType = "to_premiere"
)

// Countdown annotates an entry with days until its next meaningful event.
type Countdown struct {
	Type   CountdownType `json:"type"`
	Days   int           `json:"days"`
	Target time.Time     `json:"target"`
}

// Entry is one show placed in its category, ready for display.
type Entry struct {
	Show      model.Show `json:"show"`
	Category  Category   `json:"category"`
	Countdown *Countdown `json:"countdown,omitempty"`
}

// Group pairs a category with its sorted entries.
type Group struct {
	Category Category `json:"category"`
	Entries  []Entry  `json:"entries"`
}

// Categorize maps a show to exactly one category. Cancelled shows are
// binge-ready; a completed show still in production shows as anticipated
// (more is coming) rather than a stale "ready" card; an anticipated show
// with a known premiere date moves up into premiering-soon.
func Categorize(show model.Show, now time.Time) Category {
	switch lifecycle.DeriveShow(show, now) {
	case lifecycle.StateCancelled:
		return CategoryBingeReady
	case lifecycle.StateCompleted:
		if show.InProduction {
			return CategoryAnticipated
		}
		return CategoryBingeReady
	case lifecycle.StateAiring:
		return CategoryAiringNow
	default:
		if premiereDays(show, now) != nil {
			return CategoryPremieringSoon
		}
		return CategoryAnticipated
	}
}

// NewEntry builds the display entry for a show, attaching a countdown where
// the category calls for one and the underlying dates are available.
func NewEntry(show model.Show, now time.Time) Entry {
	entry := Entry{Show: show, Category: Categorize(show, now)}

	switch entry.Category {
	case CategoryAiringNow:
		current := show.CurrentSeason(now)
		if current == nil {
			break
		}
		days := current.DaysUntilFinale(now)
		target := current.FinaleDate()
		if days != nil && target != nil {
			entry.Countdown = &Countdown{
				Type:   CountdownToFinale,
				Days:   clampDays(*days),
				Target: *target,
			}
		}
	case CategoryPremieringSoon:
		days := premiereDays(show, now)
		target := premiereTarget(show, now)
		if days != nil && target != nil {
			entry.Countdown = &Countdown{
				Type:   CountdownToPremiere,
				Days:   clampDays(*days),
				Target: *target,
			}
		}
	}

	return entry
}

// GroupByCategory buckets shows into all four categories. Every key is
// present even when its bucket is empty.
func GroupByCategory(shows []model.Show, now time.Time) map[Category][]Entry {
	grouped := map[Category][]Entry{
		CategoryBingeReady:     {},
		CategoryAiringNow:      {},
		CategoryPremieringSoon: {},
		CategoryAnticipated:    {},
	}
	for _, show := range shows {
		entry := NewEntry(show, now)
		grouped[entry.Category] = append(grouped[entry.Category], entry)
	}
	return grouped
}

// SortedCategories sorts each bucket with its category's comparator, drops
// empty buckets and returns the remainder in display order.
func SortedCategories(grouped map[Category][]Entry) []Group {
	ordered := []Category{
		CategoryBingeReady,
		CategoryAiringNow,
		CategoryPremieringSoon,
		CategoryAnticipated,
	}

	var groups []Group
	for _, cat := range ordered {
		entries := grouped[cat]
		if len(entries) == 0 {
			continue
		}
		sortEntries(cat, entries)
		groups = append(groups, Group{Category: cat, Entries: entries})
	}
	return groups
}

// premiereDays returns days until the next premiere, preferring the
// upcoming season and falling back to the current one.
func premiereDays(show model.Show, now time.Time) *int {
	if up := show.UpcomingSeason(now); up != nil {
		if d := up.DaysUntilPremiere(now); d != nil {
			return d
		}
	}
	if current := show.CurrentSeason(now); current != nil {
		return current.DaysUntilPremiere(now)
	}
	return nil
}

// premiereTarget resolves the premiere countdown target date.
func premiereTarget(show model.Show, now time.Time) *time.Time {
	if up := show.UpcomingSeason(now); up != nil && up.AirDate != nil {
		return up.AirDate
	}
	if current := show.CurrentSeason(now); current != nil {
		return current.AirDate
	}
	return nil
}

func clampDays(d int) int {
	if d < 0 {
		return 0
	}
	return d
}
