package engine

import "almanac/pkg/models"

// ExclusionSet holds the category names removed from the net published
// count. The collaboration lifecycle state is always excluded by state
// check, independent of what the set contains.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds an exclusion set from category names
func NewExclusionSet(categories ...string) ExclusionSet {
	s := make(ExclusionSet, len(categories))
	for _, cat := range categories {
		s[cat] = struct{}{}
	}
	return s
}

// DefaultExclusionSet returns the default net-count exclusions: the two
// messaging channels
func DefaultExclusionSet() ExclusionSet {
	return NewExclusionSet(models.DefaultExcludedCategories...)
}

// Has reports whether the category is excluded
func (s ExclusionSet) Has(category string) bool {
	_, ok := s[category]
	return ok
}

// Toggle flips a category's membership and reports the new state
func (s ExclusionSet) Toggle(category string) bool {
	if s.Has(category) {
		delete(s, category)
		return false
	}
	s[category] = struct{}{}
	return true
}

// Categories returns the excluded category names
func (s ExclusionSet) Categories() []string {
	out := make([]string, 0, len(s))
	for cat := range s {
		out = append(out, cat)
	}
	return out
}

// NetPublishedCount counts the items that are truly published: lifecycle
// state is published and the category is not in the exclusion set. The
// collaboration state is a distinct lifecycle state, so collab items never
// reach the published check regardless of the exclusion contents.
func NetPublishedCount(items []models.ContentItem, excluded ExclusionSet) int {
	count := 0
	for _, item := range items {
		if item.Status != models.StatusPublished || excluded.Has(item.Category) {
			continue
		}
		count++
	}
	return count
}

// CategoryCandidates enumerates every category a user could exclude: the
// configured roster plus every category ever seen in the record set,
// including retired ones. Roster order first, then first-seen order.
func CategoryCandidates(items []models.ContentItem, roster []string) []string {
	seen := make(map[string]struct{}, len(roster))
	out := make([]string, 0, len(roster))
	for _, cat := range roster {
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	for _, item := range items {
		if item.Category == "" {
			continue
		}
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}
