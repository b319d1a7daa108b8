// Package almanac defines the response shapes of the analytics HTTP API
package almanac

import (
	"time"

	"almanac/internal/engine"
	"almanac/pkg/models"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// OverviewResponse is the combined dashboard payload for a resolved window
// and filter set
type OverviewResponse struct {
	Window        models.Window         `json:"window"`
	TotalItems    int                   `json:"total_items"`
	NetPublished  int                   `json:"net_published"`
	ByCategory    []engine.Bucket       `json:"by_category"`
	ByContentType []engine.Bucket       `json:"by_content_type"`
	ByStatus      []engine.Bucket       `json:"by_status"`
	ByAssignee    []engine.Bucket       `json:"by_assignee"`
	Patterns      engine.PatternSummary `json:"patterns"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

// DistributionResponse is a single-dimension aggregation
type DistributionResponse struct {
	Dimension string          `json:"dimension"`
	Window    models.Window   `json:"window"`
	Buckets   []engine.Bucket `json:"buckets"`
}

// GrowthResponse is the reconstructed follower series restricted to a
// window, with its first-to-last growth
type GrowthResponse struct {
	Window           models.Window               `json:"window"`
	Series           []models.ReconstructedPoint `json:"series"`
	Growth           engine.Growth               `json:"growth"`
	InsufficientData bool                        `json:"insufficient_data"`
}

// StepGrowthResponse is the point-over-point delta series over the full
// snapshot history
type StepGrowthResponse struct {
	Steps []engine.Step `json:"steps"`
}

// PatternsResponse is the behavioral statistics payload
type PatternsResponse struct {
	Window   models.Window         `json:"window"`
	Patterns engine.PatternSummary `json:"patterns"`
}

// CategoriesResponse enumerates every category a user can exclude from the
// net published count
type CategoriesResponse struct {
	Candidates      []string `json:"candidates"`
	DefaultExcluded []string `json:"default_excluded"`
}
