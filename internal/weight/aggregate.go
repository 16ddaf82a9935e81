package weight

import (
	"fmt"
	"math"
	"time"
)

// Aggregate returns the view of obs for the given granularity, most recent first.
// For weekly and monthly views only the most recent observation of each period is kept.
func Aggregate(obs []Observation, granularity Granularity) []Observation {
	sorted := SortDescending(obs)
	if granularity != GranularityWeekly && granularity != GranularityMonthly {
		return sorted
	}

	seen := make(map[string]struct{})
	view := make([]Observation, 0, len(sorted))
	for _, o := range sorted {
		key := BucketKey(o.Date, granularity)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		view = append(view, o)
	}
	return view
}

// BucketKey computes the period discriminator of t, in t's own location.
func BucketKey(t time.Time, granularity Granularity) string {
	switch granularity {
	case GranularityMonthly:
		return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
	case GranularityWeekly:
		year, week := WeekNumber(t)
		return fmt.Sprintf("%04d-W%02d", year, week)
	default:
		return t.Format(time.RFC3339Nano)
	}
}

// WeekNumber returns the ISO-8601 style (year, week) of t: the date is moved
// to the Thursday of its week (Monday based, Sunday counts as day 7) and the
// week is counted from Jan 1 of that Thursday's year.
func WeekNumber(t time.Time) (year, week int) {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	weekday := int(midnight.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	thursday := midnight.AddDate(0, 0, 4-weekday)

	// calendar days since Jan 1, immune to DST shifts
	daysSinceYearStart := thursday.YearDay() - 1
	week = int(math.Ceil(float64(daysSinceYearStart+1) / 7))

	return thursday.Year(), week
}
