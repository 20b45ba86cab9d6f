package timeline

import (
	"sort"
	"strings"
)

// sortEntries orders a bucket with its category's comparator: binge-ready
// and anticipated alphabetically, the dated categories by (days ascending,
// name ascending). Entries without a countdown take the day-0 key so the
// ordering stays total; callers wanting dated items grouped first apply
// SortDatedFirst on top.
func sortEntries(cat Category, entries []Entry) {
	switch cat {
	case CategoryAiringNow, CategoryPremieringSoon:
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if da, db := sortDays(a), sortDays(b); da != db {
				return da < db
			}
			return lessName(a, b)
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			return lessName(entries[i], entries[j])
		})
	}
}

// SortDatedFirst pushes entries that carry a countdown ahead of those that
// don't, then orders by (days, name) within the dated block and by name
// within the undated block. The full-timeline view uses this.
func SortDatedFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.Countdown != nil && b.Countdown == nil:
			return true
		case a.Countdown == nil && b.Countdown != nil:
			return false
		case a.Countdown != nil && b.Countdown != nil && a.Countdown.Days != b.Countdown.Days:
			return a.Countdown.Days < b.Countdown.Days
		default:
			return lessName(a, b)
		}
	})
}

// sortDays is the day key for the dated comparators. A missing countdown
// counts as day 0; countdown days are already clamped non-negative, so
// undated entries tie with today's events and fall through to the name key.
func sortDays(e Entry) int {
	if e.Countdown == nil {
		return 0
	}
	return e.Countdown.Days
}

func lessName(a, b Entry) bool {
	return strings.ToLower(a.Show.Name) < strings.ToLower(b.Show.Name)
}
