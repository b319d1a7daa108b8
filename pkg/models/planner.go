package models

import "time"

// Status is the lifecycle state of a planned content item. The set is
// closed; Category deliberately is not (retired channels must keep
// displaying historically).
type Status string

const (
	StatusIdea      Status = "idea"
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusCollab    Status = "collab"
)

// AllStatuses lists every lifecycle state in display order. Used to keep
// zero-count states visible when aggregating by status.
var AllStatuses = []Status{
	StatusIdea,
	StatusDraft,
	StatusScheduled,
	StatusPublished,
	StatusCollab,
}

// ValidStatus reports whether s is a member of the closed lifecycle set
func ValidStatus(s Status) bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ContentItem represents a single scheduled post on the planning calendar
type ContentItem struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Category    string    `json:"category"` // channel name; free-form, may reference a retired channel
	Status      Status    `json:"status"`
	ContentType string    `json:"content_type"`
	AssigneeID  string    `json:"assignee_id,omitempty"` // weak reference to the team roster; may be dangling
}

// SnapshotRecord represents one day's follower-count snapshot. Only the
// categories updated on that day are present in ValuesByCategory; absence
// means unchanged since the previous record.
type SnapshotRecord struct {
	ID               string         `json:"id"`
	Date             time.Time      `json:"date"`
	ValuesByCategory map[string]int `json:"values_by_category"`
	Total            int            `json:"total"` // stored convenience sum; re-derivable
}

// ReconstructedPoint is one point of a fill-forward reconstructed follower
// series. Derived on every recomputation, never persisted.
type ReconstructedPoint struct {
	Date             time.Time      `json:"date"`
	Total            int            `json:"total"`
	ValuesByCategory map[string]int `json:"values_by_category"`
}

// Window is an inclusive calendar-date range. A zero Start or End leaves
// that side unbounded; the zero Window matches everything.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Unbounded reports whether no date restriction applies on either side
func (w Window) Unbounded() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether t falls inside the window. Bounds are inclusive
// on both ends with end-of-day semantics: a timestamp anytime during the
// End date still matches.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() {
		dayStart := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, t.Location())
		if t.Before(dayStart) {
			return false
		}
	}
	if !w.End.IsZero() {
		dayAfterEnd := time.Date(w.End.Year(), w.End.Month(), w.End.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
		if !t.Before(dayAfterEnd) {
			return false
		}
	}
	return true
}

// DefaultExcludedCategories are the two messaging channels removed from the
// net published count unless the caller reconfigures the exclusion set. The
// reconstruction default (see engine.DefaultInclusion) shares the same two
// names today but is configured independently.
var DefaultExcludedCategories = []string{"telegram", "whatsapp"}
