package engine

import (
	"time"

	"almanac/pkg/models"
)

// Growth is the change between the first and last reconstructed point
// inside a window
type Growth struct {
	Diff    int     `json:"diff"`
	Percent float64 `json:"percent"`
}

// Step is one point-over-point delta of the reconstructed series
type Step struct {
	Date time.Time `json:"date"`
	Diff int       `json:"diff"`
}

// WindowGrowth computes absolute and percentage change between the first
// and last available points inside w. Fewer than two points in the window
// means insufficient data and yields the zero value; a zero baseline yields
// percent 0, never NaN or Inf.
func WindowGrowth(series []models.ReconstructedPoint, w models.Window) Growth {
	windowed := FilterSeries(series, w)
	if len(windowed) < 2 {
		return Growth{}
	}

	first := windowed[0]
	last := windowed[len(windowed)-1]
	diff := last.Total - first.Total

	percent := 0.0
	if first.Total > 0 {
		percent = float64(diff) / float64(first.Total) * 100
	}
	return Growth{Diff: diff, Percent: percent}
}

// StepGrowth computes the delta of each point against its predecessor over
// the full series. The first point has no predecessor and is excluded;
// series with fewer than two points produce an empty result.
func StepGrowth(series []models.ReconstructedPoint) []Step {
	if len(series) < 2 {
		return nil
	}
	steps := make([]Step, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		steps = append(steps, Step{
			Date: series[i].Date,
			Diff: series[i].Total - series[i-1].Total,
		})
	}
	return steps
}
