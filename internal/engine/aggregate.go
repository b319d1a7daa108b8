package engine

import (
	"sort"

	"almanac/pkg/models"
)

// Dimension selects the grouping key for AggregateBy
type Dimension string

const (
	DimensionCategory    Dimension = "category"
	DimensionContentType Dimension = "content_type"
	DimensionStatus      Dimension = "status"
	DimensionAssignee    Dimension = "assignee"
)

// UnknownAssigneeLabel is the bucket for items whose assignee reference is
// empty or dangling. Orphaned work stays visible instead of being dropped.
const UnknownAssigneeLabel = "unknown"

// ParseDimension validates a dimension token from the API surface
func ParseDimension(s string) (Dimension, bool) {
	switch Dimension(s) {
	case DimensionCategory, DimensionContentType, DimensionStatus, DimensionAssignee:
		return Dimension(s), true
	}
	return "", false
}

// Bucket is one label of a distribution with its item count
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AggregateBy partitions items along the given dimension and returns the
// counts sorted by descending count. Ties keep the fixedOrder position and
// otherwise first-seen order. Labels listed in fixedOrder are seeded so
// their relative order is stable; zero-count buckets are dropped unless
// keepZeros is set (used with the closed status set so every lifecycle
// state shows even at zero).
func AggregateBy(items []models.ContentItem, dim Dimension, fixedOrder []string, keepZeros bool) []Bucket {
	if _, ok := ParseDimension(string(dim)); !ok {
		return nil
	}

	counts := make(map[string]int)
	order := make([]string, 0, len(fixedOrder))
	for _, label := range fixedOrder {
		if _, seen := counts[label]; !seen {
			counts[label] = 0
			order = append(order, label)
		}
	}

	for _, item := range items {
		label := bucketLabel(dim, item)
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	buckets := make([]Bucket, 0, len(order))
	for _, label := range order {
		if counts[label] == 0 && !keepZeros {
			continue
		}
		buckets = append(buckets, Bucket{Label: label, Count: counts[label]})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
	return buckets
}

// AggregateByStatus groups by lifecycle state over the full closed set, so
// states with zero items still appear
func AggregateByStatus(items []models.ContentItem) []Bucket {
	labels := make([]string, len(models.AllStatuses))
	for i, s := range models.AllStatuses {
		labels[i] = string(s)
	}
	return AggregateBy(items, DimensionStatus, labels, true)
}

// AggregateByAssignee groups by assignee, folding empty and dangling
// references (IDs missing from the roster) into the unknown bucket
func AggregateByAssignee(items []models.ContentItem, roster []string) []Bucket {
	if len(roster) == 0 {
		return AggregateBy(items, DimensionAssignee, nil, false)
	}
	known := make(map[string]struct{}, len(roster))
	for _, id := range roster {
		known[id] = struct{}{}
	}
	resolved := make([]models.ContentItem, len(items))
	copy(resolved, items)
	for i := range resolved {
		if _, ok := known[resolved[i].AssigneeID]; !ok {
			resolved[i].AssigneeID = ""
		}
	}
	return AggregateBy(resolved, DimensionAssignee, nil, false)
}

func bucketLabel(dim Dimension, item models.ContentItem) string {
	switch dim {
	case DimensionCategory:
		return item.Category
	case DimensionContentType:
		return item.ContentType
	case DimensionStatus:
		return string(item.Status)
	case DimensionAssignee:
		if item.AssigneeID == "" {
			return UnknownAssigneeLabel
		}
		return item.AssigneeID
	}
	return ""
}
