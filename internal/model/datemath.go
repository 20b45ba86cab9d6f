package model

import (
	"math"
	"time"
)

// daysBetween returns the whole-day difference between the calendar day of
// from and the calendar day of to, evaluated in from's location. Both
// instants are truncated to start-of-day first so a 23:59 → 00:01 pair one
// minute apart still counts as one day, and midday pairs never flip near
// midnight. Every countdown in this package goes through this helper.
func daysBetween(from, to time.Time) int {
	a := startOfDay(from)
	b := startOfDay(to.In(from.Location()))
	// Round instead of truncate so DST transitions (23h/25h days) don't
	// shift the result.
	return int(math.Round(b.Sub(a).Hours() / 24))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
