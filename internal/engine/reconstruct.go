package engine

import (
	"sort"

	"almanac/pkg/models"
)

// InclusionSet decides which categories contribute to a reconstructed
// point's total. It is deliberately a separate concept from the net-count
// ExclusionSet: one is "sum everything except", the other is "sum exactly
// these", and the two defaults are configured independently even though
// they name the same channels today.
type InclusionSet struct {
	only     map[string]struct{}
	excluded map[string]struct{}
}

// IncludeAllExcept sums every known category except the given ones
func IncludeAllExcept(categories ...string) InclusionSet {
	excluded := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		excluded[cat] = struct{}{}
	}
	return InclusionSet{excluded: excluded}
}

// IncludeOnly sums exactly the given categories
func IncludeOnly(categories ...string) InclusionSet {
	only := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		only[cat] = struct{}{}
	}
	return InclusionSet{only: only}
}

// DefaultInclusion sums everything except the default messaging channels
func DefaultInclusion() InclusionSet {
	return IncludeAllExcept(models.DefaultExcludedCategories...)
}

// Includes reports whether the category contributes to the total
func (s InclusionSet) Includes(category string) bool {
	if s.only != nil {
		_, ok := s.only[category]
		return ok
	}
	if s.excluded != nil {
		_, ok := s.excluded[category]
		return !ok
	}
	return true
}

// ReconstructSeries turns the raw sparse snapshot stream into a dense,
// chronologically ordered series. Each point carries forward the last
// known value of every category seen so far; its total sums the carried
// values restricted to the inclusion set. One point per input record date,
// no interpolation and no backfill.
func ReconstructSeries(records []models.SnapshotRecord, inclusion InclusionSet) []models.ReconstructedPoint {
	if len(records) == 0 {
		return nil
	}

	ordered := make([]models.SnapshotRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	lastKnown := make(map[string]int)
	series := make([]models.ReconstructedPoint, 0, len(ordered))
	for _, rec := range ordered {
		for cat, value := range rec.ValuesByCategory {
			lastKnown[cat] = value
		}

		snapshot := make(map[string]int, len(lastKnown))
		total := 0
		for cat, value := range lastKnown {
			snapshot[cat] = value
			if inclusion.Includes(cat) {
				total += value
			}
		}

		series = append(series, models.ReconstructedPoint{
			Date:             rec.Date,
			Total:            total,
			ValuesByCategory: snapshot,
		})
	}
	return series
}
