// Package engine implements the temporal analytics core of the content
// planner: window resolution, category-partitioned aggregation, net
// published counts under configurable exclusions, fill-forward
// reconstruction of sparse follower snapshots, growth deltas, and
// publishing-behavior statistics. Every function is a pure transformation
// of the collections it is given; the engine keeps no state between calls.
package engine

import (
	"time"

	"almanac/pkg/models"
)

// Window presets. An unknown or empty preset resolves to the unbounded
// window rather than an error.
const (
	PresetLastMonth    = "last-month"
	PresetLast3Months  = "last-3-months"
	PresetLast6Months  = "last-6-months"
	PresetLast12Months = "last-12-months"
	PresetYear         = "year"
	PresetAllTime      = "all-time"
)

// DateFormat is the wire format for explicit window bounds
const DateFormat = "2006-01-02"

// ResolveWindow turns a preset token or explicit bounds into a concrete
// calendar-date window. Explicit bounds take precedence when at least one
// of them parses; month presets are calendar-aligned and always end on the
// last day of the month before now, so the current partial month is never
// included. Resolution never fails: anything unparseable falls through to
// the unbounded window.
func ResolveWindow(preset, explicitStart, explicitEnd string, now time.Time, selectedYear int) models.Window {
	var w models.Window
	if explicitStart != "" {
		if t, err := time.Parse(DateFormat, explicitStart); err == nil {
			w.Start = t
		}
	}
	if explicitEnd != "" {
		if t, err := time.Parse(DateFormat, explicitEnd); err == nil {
			w.End = t
		}
	}
	if !w.Unbounded() {
		return w
	}

	switch preset {
	case PresetLastMonth:
		return lastCompletedMonths(now, 1)
	case PresetLast3Months:
		return lastCompletedMonths(now, 3)
	case PresetLast6Months:
		return lastCompletedMonths(now, 6)
	case PresetLast12Months:
		return lastCompletedMonths(now, 12)
	case PresetYear:
		year := selectedYear
		if year <= 0 {
			year = now.Year()
		}
		return models.Window{
			Start: time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location()),
			End:   time.Date(year, time.December, 31, 0, 0, 0, 0, now.Location()),
		}
	case PresetAllTime:
		return models.Window{}
	}
	return models.Window{}
}

// lastCompletedMonths builds a window covering the n full calendar months
// before the month of now
func lastCompletedMonths(now time.Time, n int) models.Window {
	firstOfCurrent := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := firstOfCurrent.AddDate(0, 0, -1)
	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(n - 1), 0)
	return models.Window{Start: start, End: end}
}

// FilterByWindow returns the items whose timestamps fall inside w
func FilterByWindow(items []models.ContentItem, w models.Window) []models.ContentItem {
	if w.Unbounded() {
		return items
	}
	out := make([]models.ContentItem, 0, len(items))
	for _, item := range items {
		if w.Contains(item.Timestamp) {
			out = append(out, item)
		}
	}
	return out
}

// FilterSeries returns the reconstructed points whose dates fall inside w
func FilterSeries(series []models.ReconstructedPoint, w models.Window) []models.ReconstructedPoint {
	if w.Unbounded() {
		return series
	}
	out := make([]models.ReconstructedPoint, 0, len(series))
	for _, p := range series {
		if w.Contains(p.Date) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByCategories restricts items to the active category filter set.
// An empty filter set means no restriction.
func FilterByCategories(items []models.ContentItem, active []string) []models.ContentItem {
	if len(active) == 0 {
		return items
	}
	allowed := make(map[string]struct{}, len(active))
	for _, cat := range active {
		allowed[cat] = struct{}{}
	}
	out := make([]models.ContentItem, 0, len(items))
	for _, item := range items {
		if _, ok := allowed[item.Category]; ok {
			out = append(out, item)
		}
	}
	return out
}
